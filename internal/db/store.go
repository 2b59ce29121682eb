package db

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrStudentExists   = errors.New("student already exists")
	ErrSessionNotFound = errors.New("session not found")
)

type Store struct {
	pool *pgxpool.Pool
}

type StudentCredentials struct {
	StudentID    string
	Name         string
	PasswordHash string
}

type Session struct {
	ID           string
	StudentID    string
	CaseID       string
	CurrentScore float64
	StartTime    time.Time
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS students (
			student_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS student_sessions (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
			case_id TEXT NOT NULL,
			current_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			start_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (student_id, case_id)
		);`,
		`CREATE TABLE IF NOT EXISTS chat_logs (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES student_sessions(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_logs_session_created ON chat_logs(session_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS scenario_states (
			student_id TEXT PRIMARY KEY,
			state JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateStudent(ctx context.Context, studentID, name, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO students(student_id, name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO NOTHING
	`, studentID, name, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentExists
	}
	return nil
}

func (s *Store) GetStudentCredentials(ctx context.Context, studentID string) (StudentCredentials, error) {
	var out StudentCredentials
	err := s.pool.QueryRow(ctx, `
		SELECT student_id, name, password_hash
		FROM students
		WHERE student_id=$1
	`, studentID).Scan(&out.StudentID, &out.Name, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return StudentCredentials{}, ErrStudentNotFound
	}
	if err != nil {
		return StudentCredentials{}, err
	}
	return out, nil
}

// UpsertSession returns the existing session for the student and case,
// creating it with a zero score when absent.
func (s *Store) UpsertSession(ctx context.Context, studentID, caseID string) (Session, error) {
	sessionID := "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err := s.pool.Exec(ctx, `
		INSERT INTO student_sessions(id, student_id, case_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, case_id) DO NOTHING
	`, sessionID, studentID, caseID)
	if err != nil {
		return Session{}, err
	}
	return s.GetSession(ctx, studentID, caseID)
}

func (s *Store) GetSession(ctx context.Context, studentID, caseID string) (Session, error) {
	var out Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, student_id, case_id, current_score, start_time
		FROM student_sessions
		WHERE student_id=$1 AND case_id=$2
	`, studentID, caseID).Scan(&out.ID, &out.StudentID, &out.CaseID, &out.CurrentScore, &out.StartTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return out, nil
}

// AddScore accumulates delta onto the session score and returns the new
// total.
func (s *Store) AddScore(ctx context.Context, studentID, caseID string, delta float64) (float64, error) {
	var total float64
	err := s.pool.QueryRow(ctx, `
		UPDATE student_sessions
		SET current_score = current_score + $3
		WHERE student_id=$1 AND case_id=$2
		RETURNING current_score
	`, studentID, caseID, delta).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) SaveChatLog(ctx context.Context, sessionID, role, content string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_logs(session_id, role, content, metadata)
		VALUES ($1, $2, $3, $4::jsonb)
	`, sessionID, role, content, string(raw))
	return err
}

func (s *Store) GetChatHistory(ctx context.Context, sessionID string, limit int) ([]domain.ChatLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT role, content, metadata, created_at
		FROM (
			SELECT role, content, metadata, created_at
			FROM chat_logs
			WHERE session_id=$1
			ORDER BY created_at DESC
			LIMIT $2
		) t
		ORDER BY created_at ASC
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChatLogEntry, 0, limit)
	for rows.Next() {
		var entry domain.ChatLogEntry
		var metadataRaw []byte
		var createdAt time.Time
		if err := rows.Scan(&entry.Role, &entry.Content, &metadataRaw, &createdAt); err != nil {
			return nil, err
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &entry.Metadata); err != nil {
				return nil, err
			}
		}
		entry.Timestamp = createdAt.UTC().Format(time.RFC3339)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetScenarioState returns the stored state for a student, or an empty
// map when none exists yet.
func (s *Store) GetScenarioState(ctx context.Context, studentID string) (map[string]any, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT state
		FROM scenario_states
		WHERE student_id=$1
	`, studentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	state := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (s *Store) SetScenarioState(ctx context.Context, studentID string, state map[string]any) error {
	if state == nil {
		state = map[string]any{}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO scenario_states(student_id, state, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (student_id)
		DO UPDATE SET state=EXCLUDED.state, updated_at=NOW();
	`, studentID, string(raw))
	return err
}
