package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/llm"
)

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Generate(_ context.Context, _ llm.GenerateRequest) (string, error) {
	return s.response, s.err
}

type stubOffline struct {
	interp domain.Interpretation
	err    error
}

func (s *stubOffline) Interpret(string) (domain.Interpretation, error) {
	return s.interp, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func TestInterpretValidJSON(t *testing.T) {
	provider := &stubProvider{response: `{"intent_type":"ACTION","interpreted_action":"order_radiograph","clinical_intent":"diagnosis","priority":"high","explanatory_feedback":"Radyografi istendi."}`}
	it := NewInterpreter(provider, &stubOffline{}, testLogger())

	got := it.Interpret(context.Background(), "hastadan periapikal film isteyelim", map[string]any{})

	if got.IntentType != domain.IntentAction {
		t.Fatalf("IntentType = %q, want ACTION", got.IntentType)
	}
	if got.InterpretedAction != "order_radiograph" {
		t.Errorf("InterpretedAction = %q, want order_radiograph", got.InterpretedAction)
	}
	if got.Priority != "high" {
		t.Errorf("Priority = %q, want high", got.Priority)
	}
}

func TestInterpretFencedJSON(t *testing.T) {
	provider := &stubProvider{response: "Here is the interpretation:\n```json\n{\"intent_type\":\"ACTION\",\"interpreted_action\":\"check_allergies_meds\"}\n```"}
	it := NewInterpreter(provider, &stubOffline{}, testLogger())

	got := it.Interpret(context.Background(), "alerji var mı", map[string]any{})

	if got.InterpretedAction != "check_allergies_meds" {
		t.Errorf("InterpretedAction = %q, want check_allergies_meds", got.InterpretedAction)
	}
}

func TestInterpretShortProseBecomesChat(t *testing.T) {
	provider := &stubProvider{response: "Merhaba, size nasıl yardımcı olabilirim?"}
	it := NewInterpreter(provider, &stubOffline{}, testLogger())

	got := it.Interpret(context.Background(), "merhaba", map[string]any{})

	if !got.IsChat() {
		t.Fatalf("IntentType = %q, want CHAT", got.IntentType)
	}
	if got.InterpretedAction != domain.ActionGeneralChat {
		t.Errorf("InterpretedAction = %q, want general_chat", got.InterpretedAction)
	}
	if got.ExplanatoryFeedback != "Merhaba, size nasıl yardımcı olabilirim?" {
		t.Errorf("ExplanatoryFeedback = %q", got.ExplanatoryFeedback)
	}
}

func TestInterpretEmptyResponseBecomesChat(t *testing.T) {
	provider := &stubProvider{response: ""}
	it := NewInterpreter(provider, &stubOffline{}, testLogger())

	got := it.Interpret(context.Background(), "merhaba", map[string]any{})

	if !got.IsChat() {
		t.Fatalf("IntentType = %q, want CHAT", got.IntentType)
	}
	if got.InterpretedAction != domain.ActionGeneralChat {
		t.Errorf("InterpretedAction = %q, want general_chat", got.InterpretedAction)
	}
	if got.ExplanatoryFeedback != "" {
		t.Errorf("ExplanatoryFeedback = %q, want empty for the composer to fill", got.ExplanatoryFeedback)
	}
}

func TestInterpretNullPayloadIsFailure(t *testing.T) {
	provider := &stubProvider{response: "null"}
	it := NewInterpreter(provider, &stubOffline{}, testLogger())

	got := it.Interpret(context.Background(), "anamnez al", map[string]any{})

	if !got.IsChat() {
		t.Fatalf("IntentType = %q, want CHAT, a non-object payload must never be scorable", got.IntentType)
	}
	if got.InterpretedAction != domain.ActionError {
		t.Errorf("InterpretedAction = %q, want error", got.InterpretedAction)
	}
	if got.ExplanatoryFeedback != genericFailureMsg {
		t.Errorf("ExplanatoryFeedback = %q, want generic failure message", got.ExplanatoryFeedback)
	}
}

func TestInterpretLongGarbageIsGenericFailure(t *testing.T) {
	provider := &stubProvider{response: strings.Repeat("lorem ipsum ", 30)}
	it := NewInterpreter(provider, &stubOffline{}, testLogger())

	got := it.Interpret(context.Background(), "anamnez al", map[string]any{})

	if !got.IsChat() {
		t.Fatalf("IntentType = %q, want CHAT", got.IntentType)
	}
	if got.InterpretedAction != domain.ActionError {
		t.Errorf("InterpretedAction = %q, want error", got.InterpretedAction)
	}
	if got.ExplanatoryFeedback != genericFailureMsg {
		t.Errorf("ExplanatoryFeedback = %q, want generic failure message", got.ExplanatoryFeedback)
	}
}

func TestInterpretQuotaFallsBackToOffline(t *testing.T) {
	provider := &stubProvider{err: errors.New("openai status 429: quota exceeded")}
	offline := &stubOffline{interp: domain.Interpretation{
		IntentType:          domain.IntentAction,
		InterpretedAction:   "gather_medical_history",
		ClinicalIntent:      "anamnesis",
		Priority:            "medium",
		SafetyConcerns:      []string{},
		ExplanatoryFeedback: "Anamnez alındı.",
		StructuredArgs:      map[string]any{},
	}}
	it := NewInterpreter(provider, offline, testLogger())

	got := it.Interpret(context.Background(), "anamnez alalım", map[string]any{})

	if !got.IsChat() {
		t.Fatalf("IntentType = %q, want CHAT even when substitute recognized an action", got.IntentType)
	}
	if got.InterpretedAction != "gather_medical_history" {
		t.Errorf("InterpretedAction = %q, want substitute action preserved", got.InterpretedAction)
	}
	if !strings.HasPrefix(got.ExplanatoryFeedback, quotaBanner) {
		t.Errorf("ExplanatoryFeedback = %q, want %q prefix", got.ExplanatoryFeedback, quotaBanner)
	}
}

func TestInterpretQuotaWithBrokenOffline(t *testing.T) {
	provider := &stubProvider{err: errors.New("resource_exhausted")}
	offline := &stubOffline{err: errors.New("empty input")}
	it := NewInterpreter(provider, offline, testLogger())

	got := it.Interpret(context.Background(), "", map[string]any{})

	if got.ExplanatoryFeedback != quotaTerminalMessage {
		t.Errorf("ExplanatoryFeedback = %q, want quota terminal message", got.ExplanatoryFeedback)
	}
}

func TestInterpretGenericProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	it := NewInterpreter(provider, &stubOffline{}, testLogger())

	got := it.Interpret(context.Background(), "diş çekelim", map[string]any{})

	if !got.IsChat() {
		t.Fatalf("IntentType = %q, want CHAT", got.IntentType)
	}
	if got.ExplanatoryFeedback != genericFailureMsg {
		t.Errorf("ExplanatoryFeedback = %q, want generic failure message", got.ExplanatoryFeedback)
	}
}

func TestIsQuotaFailure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("openai status 429: too many requests"), true},
		{errors.New("Quota exceeded for project"), true},
		{errors.New("RESOURCE_EXHAUSTED"), true},
		{errors.New("connection reset by peer"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := isQuotaFailure(tt.err); got != tt.want {
			t.Errorf("isQuotaFailure(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
