// Package agent turns a student's free-text action into a normalized,
// scorable Interpretation using a single model call, with deterministic
// fallbacks for every failure mode.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/extract"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/llm"
)

// shortResponseLimit: an unparseable model response below this length is
// taken as conversational output rather than a failed action payload.
const shortResponseLimit = 200

// OfflineInterpreter is the deterministic substitute used on quota
// exhaustion.
type OfflineInterpreter interface {
	Interpret(rawAction string) (domain.Interpretation, error)
}

type Interpreter struct {
	provider llm.Provider
	offline  OfflineInterpreter
	config   llm.GenerationConfig
	logger   *slog.Logger
}

func NewInterpreter(provider llm.Provider, offline OfflineInterpreter, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		provider: provider,
		offline:  offline,
		config: llm.GenerationConfig{
			Temperature:      0.2,
			TopP:             0.9,
			MaxOutputTokens:  512,
			ResponseMIMEType: "application/json",
		},
		logger: logger,
	}
}

// contextSnippet is the state slice handed to the model purely to
// disambiguate interpretation.
type contextSnippet struct {
	CaseID           any `json:"case_id"`
	PatientAge       any `json:"patient_age"`
	ChiefComplaint   any `json:"chief_complaint"`
	RevealedFindings any `json:"revealed_findings"`
}

func buildContextSnippet(state map[string]any) contextSnippet {
	snippet := contextSnippet{
		CaseID:           state["case_id"],
		RevealedFindings: state["revealed_findings"],
	}
	if patient, ok := state["patient"].(map[string]any); ok {
		snippet.PatientAge = patient["age"]
		snippet.ChiefComplaint = patient["chief_complaint"]
	}
	return snippet
}

// Interpret converts a raw student action into an Interpretation. It
// never returns an error: model, decode, and extraction failures all
// resolve to safe CHAT-typed interpretations.
func (it *Interpreter) Interpret(ctx context.Context, rawAction string, state map[string]any) domain.Interpretation {
	snippet, err := json.Marshal(buildContextSnippet(state))
	if err != nil {
		snippet = []byte("{}")
	}

	prompt := fmt.Sprintf(
		"Student action:\n%s\n\nScenario state (partial):\n%s\n\nReturn STRICT JSON ONLY following the required schema.",
		rawAction, snippet,
	)

	raw, err := it.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:            prompt,
		SystemInstruction: SystemInstruction(),
		Config:            it.config,
	})
	if err != nil {
		return it.resolveFailure(rawAction, err)
	}

	payload, ok := extract.FirstJSONBlock(raw)
	if !ok {
		// A short unstructured reply is conversational output, not a
		// broken action payload. That includes an empty reply: the
		// composer supplies the fallback text for it.
		if trimmed := strings.TrimSpace(raw); len(trimmed) < shortResponseLimit {
			chat := safeChatInterpretation(trimmed)
			chat.InterpretedAction = domain.ActionGeneralChat
			return chat
		}
		return it.resolveFailure(rawAction, fmt.Errorf("failed to extract JSON from model response"))
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return it.resolveFailure(rawAction, fmt.Errorf("decode model payload: %w", err))
	}
	// A bare "null" is valid JSON but not an object; it must never
	// normalize into a scorable interpretation.
	if data == nil {
		return it.resolveFailure(rawAction, fmt.Errorf("model payload is not a JSON object"))
	}

	return normalizeInterpretation(data)
}
