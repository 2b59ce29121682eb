package agent

import (
	"strings"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

// Failure classification states. A model-call or decode failure enters
// stateClassify and always terminates in a safe CHAT-typed
// interpretation; no failure path raises past the interpreter boundary.
type failureState int

const (
	stateClassify failureState = iota
	stateQuotaFallback
	stateGenericFailure
)

// Learner-facing failure strings. The quota banner is prepended to the
// offline substitute's feedback; the terminal message is used when the
// substitute itself cannot produce one.
const (
	quotaBanner          = "⚠️ API kotası doldu (Mock sistem aktif). "
	quotaTerminalMessage = "⏳ API günlük kullanım limiti doldu. Lütfen yarın tekrar deneyin."
	genericFailureMsg    = "Anlaşılamadı (Teknik Hata). Lütfen tekrar dener misiniz?"
)

var quotaTokens = []string{
	"quota",
	"429",
	"rate limit",
	"rate_limit",
	"resource_exhausted",
	"resource has been exhausted",
}

func isQuotaFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, token := range quotaTokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

// resolveFailure runs the failure state machine. Every path forces
// intent_type to CHAT: an uninterpretable action must never silently
// receive a score, and CHAT suppresses scoring downstream.
func (it *Interpreter) resolveFailure(rawAction string, cause error) domain.Interpretation {
	state := stateClassify

	for {
		switch state {
		case stateClassify:
			if isQuotaFailure(cause) {
				state = stateQuotaFallback
			} else {
				state = stateGenericFailure
			}

		case stateQuotaFallback:
			it.logger.Warn("model quota exhausted, using offline interpretation", "error", cause)
			substitute, err := it.offline.Interpret(rawAction)
			if err != nil {
				it.logger.Error("offline interpretation failed", "error", err)
				return safeChatInterpretation(quotaTerminalMessage)
			}
			substitute.IntentType = domain.IntentChat
			substitute.ExplanatoryFeedback = quotaBanner + substitute.ExplanatoryFeedback
			return substitute

		case stateGenericFailure:
			it.logger.Warn("model interpretation failed", "error", cause)
			return safeChatInterpretation(genericFailureMsg)
		}
	}
}

func safeChatInterpretation(feedback string) domain.Interpretation {
	return domain.Interpretation{
		IntentType:          domain.IntentChat,
		InterpretedAction:   domain.ActionError,
		ClinicalIntent:      "other",
		Priority:            "low",
		SafetyConcerns:      []string{},
		ExplanatoryFeedback: feedback,
		StructuredArgs:      map[string]any{},
	}
}
