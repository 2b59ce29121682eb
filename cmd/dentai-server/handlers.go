package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/auth"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/cases"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/db"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/orchestrator"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/scenario"
)

type handlers struct {
	orch         *orchestrator.Service
	store        *db.Store
	registry     *cases.Registry
	states       *scenario.Manager
	authSvc      *auth.Service
	historyLimit int
	llmModel     string
	logger       *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.StudentID == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "student_id and password are required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "registration failed"})
		return
	}
	if err := h.store.CreateStudent(r.Context(), req.StudentID, req.Name, hash); err != nil {
		if errors.Is(err, db.ErrStudentExists) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "student already exists"})
			return
		}
		h.logger.Error("create student failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "registration failed"})
		return
	}

	h.issueToken(w, req.StudentID)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}

	creds, err := h.store.GetStudentCredentials(r.Context(), strings.TrimSpace(req.StudentID))
	if err != nil {
		if errors.Is(err, db.ErrStudentNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid student id or password"})
			return
		}
		h.logger.Error("load credentials failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "login failed"})
		return
	}
	if err := h.authSvc.CheckPassword(creds.PasswordHash, req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid student id or password"})
		return
	}

	h.issueToken(w, creds.StudentID)
}

func (h *handlers) issueToken(w http.ResponseWriter, studentID string) {
	token, err := h.authSvc.IssueToken(studentID)
	if err != nil {
		h.logger.Error("issue token failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "token issuance failed"})
		return
	}
	writeJSON(w, http.StatusOK, domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		StudentID:   studentID,
	})
}

func (h *handlers) listCases(w http.ResponseWriter, _ *http.Request) {
	catalog := h.registry.List()
	out := make([]domain.CaseSummary, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, domain.CaseSummary{
			CaseID:      c.CaseID,
			Title:       c.Title,
			Description: c.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) startCase(w http.ResponseWriter, r *http.Request) {
	studentID := auth.StudentID(r.Context())
	caseID := chi.URLParam(r, "caseID")

	c, ok := h.registry.Get(caseID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "case not found"})
		return
	}

	session, err := h.store.UpsertSession(r.Context(), studentID, caseID)
	if err != nil {
		h.logger.Error("create session failed", "student_id", studentID, "case_id", caseID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not start session"})
		return
	}

	state, err := h.states.StartSession(r.Context(), studentID, c)
	if err != nil {
		h.logger.Error("seed scenario state failed", "student_id", studentID, "case_id", caseID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not start session"})
		return
	}

	writeJSON(w, http.StatusOK, domain.SessionInfo{
		StudentID:    studentID,
		CaseID:       caseID,
		CurrentScore: session.CurrentScore,
		State:        state,
	})
}

func (h *handlers) chatSend(w http.ResponseWriter, r *http.Request) {
	studentID := auth.StudentID(r.Context())

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "message is required"})
		return
	}

	outcome, err := h.orch.Process(r.Context(), studentID, req.Message)
	if err != nil {
		h.logger.Error("process action failed", "student_id", studentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, domain.ChatResponse{
		StudentID:     studentID,
		CaseID:        outcome.CaseID,
		FinalFeedback: outcome.FinalFeedback,
		Score:         outcome.Assessment.Score,
		Metadata:      outcome,
	})
}

func (h *handlers) chatHistory(w http.ResponseWriter, r *http.Request) {
	studentID := auth.StudentID(r.Context())
	caseID := chi.URLParam(r, "caseID")

	session, err := h.store.GetSession(r.Context(), studentID, caseID)
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "session not found"})
			return
		}
		h.logger.Error("load session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "history lookup failed"})
		return
	}

	messages, err := h.store.GetChatHistory(r.Context(), session.ID, h.historyLimit)
	if err != nil {
		h.logger.Error("load chat history failed", "session_id", session.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "history lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, domain.ChatHistory{
		StudentID:    studentID,
		CaseID:       caseID,
		CurrentScore: session.CurrentScore,
		Messages:     messages,
	})
}

// chatStatus reports whether the interpretation service is up and
// which model backs it.
func (h *handlers) chatStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "chat",
		"status":  "operational",
		"model":   h.llmModel,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
