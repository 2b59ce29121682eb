// Package cases holds the clinical case catalog: per-case patient
// context, initial scenario state, and the scoring rules keyed by
// action.
package cases

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type Patient struct {
	Age            int    `json:"age"`
	ChiefComplaint string `json:"chief_complaint"`
}

// Rule is the objective scoring entry for one action key. StateUpdates
// is merged into the scenario state when the action is performed.
type Rule struct {
	Score        float64        `json:"score"`
	Outcome      string         `json:"outcome"`
	StateUpdates map[string]any `json:"state_updates,omitempty"`
}

type Case struct {
	CaseID       string          `json:"case_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Patient      Patient         `json:"patient"`
	InitialState map[string]any  `json:"initial_state,omitempty"`
	Rules        map[string]Rule `json:"rules"`
}

type Registry struct {
	mu             sync.RWMutex
	data           map[string]Case
	catalogVersion int64
	lastUpdated    time.Time
}

func NewRegistry() *Registry {
	return &Registry{data: make(map[string]Case)}
}

// Replace swaps in a full catalog snapshot. Stale versions are ignored
// once a versioned snapshot has been accepted; version 0 always wins
// on an empty registry.
func (r *Registry) Replace(catalogVersion int64, catalog []Case) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.catalogVersion > 0 && catalogVersion > 0 && catalogVersion < r.catalogVersion {
		return
	}
	if r.catalogVersion > 0 && catalogVersion == 0 {
		return
	}
	if catalogVersion == 0 {
		catalogVersion = r.catalogVersion
	}

	data := make(map[string]Case, len(catalog))
	for _, c := range catalog {
		if strings.TrimSpace(c.CaseID) == "" {
			continue
		}
		data[c.CaseID] = c
	}

	r.data = data
	r.catalogVersion = catalogVersion
	r.lastUpdated = time.Now()
}

func (r *Registry) Put(c Case) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.TrimSpace(c.CaseID) == "" {
		return
	}
	r.data[c.CaseID] = c
	r.lastUpdated = time.Now()
}

func (r *Registry) Get(caseID string) (Case, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.data[caseID]
	if !ok {
		return Case{}, false
	}
	out := c
	out.InitialState = copyMap(c.InitialState)
	out.Rules = make(map[string]Rule, len(c.Rules))
	for k, rule := range c.Rules {
		rule.StateUpdates = copyMap(rule.StateUpdates)
		out.Rules[k] = rule
	}
	return out, true
}

// Rule looks up the scoring rule for one action key of a case.
func (r *Registry) Rule(caseID, action string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.data[caseID]
	if !ok {
		return Rule{}, false
	}
	rule, ok := c.Rules[action]
	if !ok {
		return Rule{}, false
	}
	rule.StateUpdates = copyMap(rule.StateUpdates)
	return rule, true
}

func (r *Registry) List() []Case {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Case, 0, len(r.data))
	for _, c := range r.data {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaseID < out[j].CaseID })
	return out
}

func (r *Registry) CatalogVersion() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalogVersion
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LoadDir reads every .json file under dir as a single case definition.
func LoadDir(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read case dir: %w", err)
	}

	var catalog []Case
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read case file %s: %w", entry.Name(), err)
		}
		var c Case
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse case file %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(c.CaseID) == "" {
			return nil, fmt.Errorf("case file %s: missing case_id", entry.Name())
		}
		catalog = append(catalog, c)
	}
	return catalog, nil
}
