package domain

// Intent types produced by interpretation. CHAT never surfaces a score;
// ACTION always has one appended to the composed feedback.
const (
	IntentChat   = "CHAT"
	IntentAction = "ACTION"
)

// Sentinel action keys.
const (
	ActionUnspecified = "unspecified_action"
	ActionGeneralChat = "general_chat"
	ActionError       = "error"
)

// DefaultCaseID is used when the scenario state carries no case binding.
const DefaultCaseID = "default_case"

// Interpretation is the normalized result of model output processing.
// Every field is present and type-correct after normalization, whatever
// the model returned.
type Interpretation struct {
	IntentType          string         `json:"intent_type"`
	InterpretedAction   string         `json:"interpreted_action"`
	ClinicalIntent      string         `json:"clinical_intent"`
	Priority            string         `json:"priority"`
	SafetyConcerns      []string       `json:"safety_concerns"`
	ExplanatoryFeedback string         `json:"explanatory_feedback"`
	StructuredArgs      map[string]any `json:"structured_args"`
}

// IsChat reports whether the interpretation routed as conversational
// input. IntentType is canonicalized at construction, so the exact
// comparison is sufficient.
func (i Interpretation) IsChat() bool {
	return i.IntentType == IntentChat
}

// Assessment is the deterministic scoring result returned by the rule
// engine. The engine may report state changes under any one of three
// historical key names; Updates resolves them.
type Assessment struct {
	Score        float64        `json:"score"`
	RuleOutcome  string         `json:"rule_outcome"`
	StateUpdates map[string]any `json:"state_updates,omitempty"`
	StateUpdate  map[string]any `json:"state_update,omitempty"`
	NewStateData map[string]any `json:"new_state_data,omitempty"`
}

// Updates returns the first non-empty state-update mapping.
func (a Assessment) Updates() map[string]any {
	for _, m := range []map[string]any{a.StateUpdates, a.StateUpdate, a.NewStateData} {
		if len(m) > 0 {
			return m
		}
	}
	return nil
}

// Outcome is the final result of one orchestration cycle.
type Outcome struct {
	StudentID         string         `json:"student_id"`
	CaseID            string         `json:"case_id"`
	LLMInterpretation Interpretation `json:"llm_interpretation"`
	Assessment        Assessment     `json:"assessment"`
	FinalFeedback     string         `json:"final_feedback"`
	UpdatedState      map[string]any `json:"updated_state"`
}

// HTTP API payloads.

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	StudentID     string  `json:"student_id"`
	CaseID        string  `json:"case_id"`
	FinalFeedback string  `json:"final_feedback"`
	Score         float64 `json:"score"`
	Metadata      Outcome `json:"metadata"`
}

type RegisterRequest struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	StudentID   string `json:"student_id"`
}

type CaseSummary struct {
	CaseID      string `json:"case_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type SessionInfo struct {
	StudentID    string         `json:"student_id"`
	CaseID       string         `json:"case_id"`
	CurrentScore float64        `json:"current_score"`
	State        map[string]any `json:"state,omitempty"`
}

type ChatLogEntry struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

type ChatHistory struct {
	StudentID    string         `json:"student_id"`
	CaseID       string         `json:"case_id"`
	CurrentScore float64        `json:"current_score"`
	Messages     []ChatLogEntry `json:"messages"`
}
