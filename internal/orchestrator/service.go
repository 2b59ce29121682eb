// Package orchestrator runs the hybrid interpretation and scoring
// cycle: model interpretation of the student's free-text action,
// deterministic rule scoring, feedback composition, and scenario state
// advancement.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/assessment"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/db"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

type ActionInterpreter interface {
	Interpret(ctx context.Context, rawAction string, state map[string]any) domain.Interpretation
}

type StateManager interface {
	GetState(ctx context.Context, studentID string) (map[string]any, error)
	UpdateState(ctx context.Context, studentID string, updates map[string]any) (map[string]any, error)
}

// SessionRecorder persists chat logs and score totals. All recorder
// failures are logged and swallowed: the cycle result never depends on
// bookkeeping.
type SessionRecorder interface {
	GetSession(ctx context.Context, studentID, caseID string) (db.Session, error)
	SaveChatLog(ctx context.Context, sessionID, role, content string, metadata map[string]any) error
	AddScore(ctx context.Context, studentID, caseID string, delta float64) (float64, error)
}

type OutcomePublisher interface {
	PublishOutcome(outcome domain.Outcome) error
}

type Service struct {
	interpreter ActionInterpreter
	engine      assessment.Engine
	states      StateManager
	recorder    SessionRecorder
	publisher   OutcomePublisher
	logger      *slog.Logger
}

// New builds the orchestrator. recorder and publisher may be nil.
func New(interpreter ActionInterpreter, engine assessment.Engine, states StateManager, recorder SessionRecorder, publisher OutcomePublisher, logger *slog.Logger) *Service {
	return &Service{
		interpreter: interpreter,
		engine:      engine,
		states:      states,
		recorder:    recorder,
		publisher:   publisher,
		logger:      logger,
	}
}

// Process runs one full cycle for a student's raw action and returns
// the outcome. Interpretation never fails; scoring and state advance
// degrade to safe defaults rather than aborting the cycle.
func (s *Service) Process(ctx context.Context, studentID, rawAction string) (domain.Outcome, error) {
	state, err := s.states.GetState(ctx, studentID)
	if err != nil {
		return domain.Outcome{}, err
	}

	caseID := domain.DefaultCaseID
	if v, ok := state["case_id"].(string); ok && v != "" {
		caseID = v
	}

	interp := s.interpreter.Interpret(ctx, rawAction, state)

	// Scoring runs for every interpretation. CHAT suppresses the score
	// in the composed feedback, not the evaluation itself, so rule-side
	// state updates still apply to conversational turns.
	var result *domain.Assessment
	evaluated, err := s.engine.EvaluateAction(ctx, caseID, interp)
	if err != nil {
		s.logger.Warn("assessment failed, continuing without score", "case_id", caseID, "action", interp.InterpretedAction, "error", err)
	} else {
		result = &evaluated
	}

	feedback := composeFeedback(interp, result)

	// State advance is best effort. The cycle reports whatever state
	// is current after the attempt.
	if result != nil {
		if updates := result.Updates(); len(updates) > 0 {
			if _, err := s.states.UpdateState(ctx, studentID, updates); err != nil {
				s.logger.Warn("state update failed", "student_id", studentID, "error", err)
			}
		}
	}
	updatedState, err := s.states.GetState(ctx, studentID)
	if err != nil {
		s.logger.Warn("state re-read failed, returning pre-update state", "student_id", studentID, "error", err)
		updatedState = state
	}

	outcome := domain.Outcome{
		StudentID:         studentID,
		CaseID:            caseID,
		LLMInterpretation: interp,
		FinalFeedback:     feedback,
		UpdatedState:      updatedState,
	}
	if result != nil {
		outcome.Assessment = *result
	}

	s.record(ctx, studentID, caseID, rawAction, outcome)
	s.publish(outcome)

	return outcome, nil
}

func (s *Service) record(ctx context.Context, studentID, caseID, rawAction string, outcome domain.Outcome) {
	if s.recorder == nil {
		return
	}

	session, err := s.recorder.GetSession(ctx, studentID, caseID)
	if err != nil {
		s.logger.Warn("session lookup failed, skipping chat log", "student_id", studentID, "case_id", caseID, "error", err)
		return
	}

	if err := s.recorder.SaveChatLog(ctx, session.ID, "user", rawAction, nil); err != nil {
		s.logger.Warn("save user chat log failed", "session_id", session.ID, "error", err)
	}
	metadata := map[string]any{
		"interpretation": outcome.LLMInterpretation,
		"assessment":     outcome.Assessment,
	}
	if err := s.recorder.SaveChatLog(ctx, session.ID, "assistant", outcome.FinalFeedback, metadata); err != nil {
		s.logger.Warn("save assistant chat log failed", "session_id", session.ID, "error", err)
	}

	if !outcome.LLMInterpretation.IsChat() && outcome.Assessment.Score != 0 {
		if _, err := s.recorder.AddScore(ctx, studentID, caseID, outcome.Assessment.Score); err != nil {
			s.logger.Warn("score accumulation failed", "student_id", studentID, "case_id", caseID, "error", err)
		}
	}
}

func (s *Service) publish(outcome domain.Outcome) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOutcome(outcome); err != nil {
		s.logger.Warn("outcome publish failed", "case_id", outcome.CaseID, "error", err)
	}
}
