// Package assessment scores interpreted actions against the objective
// rules of a case. Scoring is advisory: an action the rules do not
// cover gets a zero assessment, never an error.
package assessment

import (
	"context"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/cases"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

const unratedOutcome = "Değerlendirilmedi"

type Engine interface {
	EvaluateAction(ctx context.Context, caseID string, interp domain.Interpretation) (domain.Assessment, error)
}

// RuleEngine scores against the in-process case registry. Rule content
// lives in the case catalog files, not in code.
type RuleEngine struct {
	registry *cases.Registry
}

func NewRuleEngine(registry *cases.Registry) *RuleEngine {
	return &RuleEngine{registry: registry}
}

func (e *RuleEngine) EvaluateAction(_ context.Context, caseID string, interp domain.Interpretation) (domain.Assessment, error) {
	rule, ok := e.registry.Rule(caseID, interp.InterpretedAction)
	if !ok {
		return domain.Assessment{Score: 0, RuleOutcome: unratedOutcome}, nil
	}
	return domain.Assessment{
		Score:        rule.Score,
		RuleOutcome:  rule.Outcome,
		StateUpdates: rule.StateUpdates,
	}, nil
}
