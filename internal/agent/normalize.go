package agent

import (
	"fmt"
	"strings"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

// normalizeInterpretation maps an arbitrary decoded payload onto the
// Interpretation schema. Every field is read with a default, strings
// are trimmed, and wrong types are coerced rather than propagated.
func normalizeInterpretation(data map[string]any) domain.Interpretation {
	return domain.Interpretation{
		IntentType:          intentField(data),
		InterpretedAction:   stringField(data, "interpreted_action", ""),
		ClinicalIntent:      stringFieldNonEmpty(data, "clinical_intent", "other"),
		Priority:            stringFieldNonEmpty(data, "priority", "medium"),
		SafetyConcerns:      stringSliceField(data, "safety_concerns"),
		ExplanatoryFeedback: stringField(data, "explanatory_feedback", ""),
		StructuredArgs:      mapField(data, "structured_args"),
	}
}

// intentField canonicalizes onto the closed set {CHAT, ACTION}. Casing
// variants of CHAT are accepted; everything else, including a missing
// or empty value, is ACTION.
func intentField(data map[string]any) string {
	v := strings.ToUpper(stringFieldNonEmpty(data, "intent_type", domain.IntentAction))
	if v == domain.IntentChat {
		return domain.IntentChat
	}
	return domain.IntentAction
}

func stringField(data map[string]any, key, fallback string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(s)
}

// stringFieldNonEmpty additionally treats a whitespace-only value as
// absent.
func stringFieldNonEmpty(data map[string]any, key, fallback string) string {
	s := stringField(data, key, fallback)
	if s == "" {
		return fallback
	}
	return s
}

func stringSliceField(data map[string]any, key string) []string {
	out := []string{}
	v, ok := data[key]
	if !ok || v == nil {
		return out
	}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		switch t := item.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case nil:
			// skip
		default:
			out = append(out, strings.TrimSpace(fmt.Sprint(t)))
		}
	}
	return out
}

func mapField(data map[string]any, key string) map[string]any {
	v, ok := data[key]
	if !ok || v == nil {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return map[string]any{}
	}
	return m
}
