package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

// RemoteEngine delegates scoring to an external assessment service
// over HTTP. Used when the rule content lives outside this process.
type RemoteEngine struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteEngine(baseURL, apiKey string, timeout time.Duration) *RemoteEngine {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type assessRequest struct {
	CaseID         string                `json:"case_id"`
	Interpretation domain.Interpretation `json:"interpretation"`
}

func (e *RemoteEngine) EvaluateAction(ctx context.Context, caseID string, interp domain.Interpretation) (domain.Assessment, error) {
	payload := assessRequest{CaseID: caseID, Interpretation: interp}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Assessment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/assess", bytes.NewReader(body))
	if err != nil {
		return domain.Assessment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.Assessment{}, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return domain.Assessment{}, fmt.Errorf("assessment status %d: %s", resp.StatusCode, string(respBody))
	}

	var out domain.Assessment
	if err := json.Unmarshal(respBody, &out); err != nil {
		return domain.Assessment{}, fmt.Errorf("decode assessment response: %w", err)
	}
	if strings.TrimSpace(out.RuleOutcome) == "" {
		out.RuleOutcome = unratedOutcome
	}
	return out, nil
}
