package orchestrator

import (
	"fmt"
	"strings"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

const (
	fallbackChatFeedback = "Sizi tam anlayamadım."
	unratedOutcome       = "Değerlendirilmedi"
)

// composeFeedback builds the learner-facing message from the
// interpretation and the assessment. CHAT renders only the explanatory
// text; ACTION always carries the objective score and rule outcome.
func composeFeedback(interp domain.Interpretation, assessment *domain.Assessment) string {
	if interp.IsChat() {
		feedback := strings.TrimSpace(interp.ExplanatoryFeedback)
		if feedback == "" {
			return fallbackChatFeedback
		}
		return feedback
	}

	// Safety and score blocks carry their own blank-line separators;
	// the score and outcome lines sit together in one block.
	parts := make([]string, 0, 4)
	if feedback := strings.TrimSpace(interp.ExplanatoryFeedback); feedback != "" {
		parts = append(parts, feedback)
	}
	if len(interp.SafetyConcerns) > 0 {
		parts = append(parts, "\n\n⚠️ **Güvenlik Notları:** "+strings.Join(interp.SafetyConcerns, "; "))
	}

	score := 0.0
	outcome := unratedOutcome
	if assessment != nil {
		score = assessment.Score
		if strings.TrimSpace(assessment.RuleOutcome) != "" {
			outcome = assessment.RuleOutcome
		}
	}
	parts = append(parts, fmt.Sprintf("\n\n**📊 Objektif Puan:** %g", score))
	parts = append(parts, "**📝 Sonuç:** "+outcome)

	return strings.Join(parts, " ")
}
