// Package scenario owns the per-student simulation state: a JSON
// object persisted in Postgres with a Redis read-through cache in
// front of it.
package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/cases"
)

const cacheTTL = 30 * time.Minute

// StateStore is the durable backend for scenario state.
type StateStore interface {
	GetScenarioState(ctx context.Context, studentID string) (map[string]any, error)
	SetScenarioState(ctx context.Context, studentID string, state map[string]any) error
}

type Manager struct {
	store  StateStore
	cache  *redis.Client
	logger *slog.Logger
}

// NewManager builds a state manager. cache may be nil, in which case
// every read and write goes straight to the store.
func NewManager(store StateStore, cache *redis.Client, logger *slog.Logger) *Manager {
	return &Manager{store: store, cache: cache, logger: logger}
}

func cacheKey(studentID string) string {
	return "scenario:" + studentID
}

// GetState returns the student's current scenario state, an empty map
// when no session was started. Cache misses and cache errors fall
// through to the store.
func (m *Manager) GetState(ctx context.Context, studentID string) (map[string]any, error) {
	if m.cache != nil {
		data, err := m.cache.Get(ctx, cacheKey(studentID)).Result()
		if err == nil {
			state := map[string]any{}
			if err := json.Unmarshal([]byte(data), &state); err == nil {
				return state, nil
			}
			m.logger.Warn("corrupt scenario cache entry, falling back to store", "student_id", studentID)
		} else if !errors.Is(err, redis.Nil) {
			m.logger.Warn("scenario cache read failed", "student_id", studentID, "error", err)
		}
	}

	state, err := m.store.GetScenarioState(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = map[string]any{}
	}
	m.writeCache(ctx, studentID, state)
	return state, nil
}

// UpdateState merges updates into the stored state and rewrites the
// cache. Keys in updates overwrite existing keys.
func (m *Manager) UpdateState(ctx context.Context, studentID string, updates map[string]any) (map[string]any, error) {
	state, err := m.store.GetScenarioState(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = map[string]any{}
	}
	for k, v := range updates {
		state[k] = v
	}
	if err := m.store.SetScenarioState(ctx, studentID, state); err != nil {
		return nil, err
	}
	m.writeCache(ctx, studentID, state)
	return state, nil
}

// StartSession seeds the student's state from a case definition,
// replacing whatever was there before.
func (m *Manager) StartSession(ctx context.Context, studentID string, c cases.Case) (map[string]any, error) {
	state := map[string]any{
		"case_id": c.CaseID,
		"patient": map[string]any{
			"age":             c.Patient.Age,
			"chief_complaint": c.Patient.ChiefComplaint,
		},
	}
	for k, v := range c.InitialState {
		state[k] = v
	}
	if err := m.store.SetScenarioState(ctx, studentID, state); err != nil {
		return nil, err
	}
	m.writeCache(ctx, studentID, state)
	return state, nil
}

func (m *Manager) writeCache(ctx context.Context, studentID string, state map[string]any) {
	if m.cache == nil {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, cacheKey(studentID), data, cacheTTL).Err(); err != nil {
		m.logger.Warn("scenario cache write failed", "student_id", studentID, "error", err)
	}
}
