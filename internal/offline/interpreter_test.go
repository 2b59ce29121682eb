package offline

import (
	"errors"
	"testing"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

func TestInterpretMatchesActions(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAction string
	}{
		{name: "english allergy question", input: "check the patient's allergy history", wantAction: "check_allergies_meds"},
		{name: "turkish radiograph request", input: "Periapikal röntgen isteyelim", wantAction: "order_radiograph"},
		{name: "turkish anamnesis", input: "hastadan anamnez alalım", wantAction: "gather_medical_history"},
		{name: "pathergy test", input: "paterji testi yapalım", wantAction: "perform_pathergy_test"},
		{name: "diabetes check", input: "hastanın kan şekeri değerlerine bakalım", wantAction: "check_diabetes"},
	}

	it := NewInterpreter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := it.Interpret(tt.input)
			if err != nil {
				t.Fatalf("Interpret() error = %v", err)
			}
			if got.IntentType != domain.IntentAction {
				t.Errorf("IntentType = %q, want ACTION", got.IntentType)
			}
			if got.InterpretedAction != tt.wantAction {
				t.Errorf("InterpretedAction = %q, want %q", got.InterpretedAction, tt.wantAction)
			}
			if got.ExplanatoryFeedback == "" {
				t.Error("ExplanatoryFeedback is empty")
			}
		})
	}
}

func TestInterpretUnrecognizedTextIsChat(t *testing.T) {
	it := NewInterpreter()
	got, err := it.Interpret("bugün hava çok güzel")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if got.IntentType != domain.IntentChat {
		t.Errorf("IntentType = %q, want CHAT", got.IntentType)
	}
	if got.InterpretedAction != domain.ActionGeneralChat {
		t.Errorf("InterpretedAction = %q, want general_chat", got.InterpretedAction)
	}
}

func TestInterpretEmptyInput(t *testing.T) {
	it := NewInterpreter()
	_, err := it.Interpret("   ")
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Interpret() error = %v, want ErrEmptyInput", err)
	}
}
