package scenario

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/cases"
)

type fakeStore struct {
	states map[string]map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[string]map[string]any)}
}

func (f *fakeStore) GetScenarioState(_ context.Context, studentID string) (map[string]any, error) {
	state, ok := f.states[studentID]
	if !ok {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) SetScenarioState(_ context.Context, studentID string, state map[string]any) error {
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	f.states[studentID] = out
	return nil
}

func testManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	return NewManager(store, nil, logger), store
}

func TestGetStateEmptyWhenAbsent(t *testing.T) {
	m, _ := testManager()
	state, err := m.GetState(context.Background(), "student1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if len(state) != 0 {
		t.Errorf("state = %v, want empty", state)
	}
}

func TestStartSessionSeedsFromCase(t *testing.T) {
	m, store := testManager()
	c := cases.Case{
		CaseID: "pulpitis_01",
		Patient: cases.Patient{
			Age:            34,
			ChiefComplaint: "Şiddetli diş ağrısı",
		},
		InitialState: map[string]any{"revealed_findings": []any{}},
	}

	state, err := m.StartSession(context.Background(), "student1", c)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if state["case_id"] != "pulpitis_01" {
		t.Errorf("case_id = %v", state["case_id"])
	}
	patient, ok := state["patient"].(map[string]any)
	if !ok {
		t.Fatalf("patient block missing: %v", state)
	}
	if patient["age"] != 34 || patient["chief_complaint"] != "Şiddetli diş ağrısı" {
		t.Errorf("patient = %v", patient)
	}
	if _, ok := state["revealed_findings"]; !ok {
		t.Error("initial state was not merged in")
	}
	if _, ok := store.states["student1"]; !ok {
		t.Error("state was not persisted")
	}
}

func TestUpdateStateMerges(t *testing.T) {
	m, _ := testManager()
	ctx := context.Background()

	if _, err := m.UpdateState(ctx, "student1", map[string]any{"x": float64(1)}); err != nil {
		t.Fatalf("UpdateState() error = %v", err)
	}
	state, err := m.UpdateState(ctx, "student1", map[string]any{"y": "two"})
	if err != nil {
		t.Fatalf("UpdateState() error = %v", err)
	}
	if state["x"] != float64(1) || state["y"] != "two" {
		t.Errorf("state = %v, want both keys", state)
	}

	// Overwrite wins over existing value.
	state, err = m.UpdateState(ctx, "student1", map[string]any{"x": float64(2)})
	if err != nil {
		t.Fatalf("UpdateState() error = %v", err)
	}
	if state["x"] != float64(2) {
		t.Errorf("x = %v, want 2", state["x"])
	}
}
