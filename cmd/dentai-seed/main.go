// dentai-seed creates a demo student and starts a session on the first
// case in the catalog so the API can be exercised right after a fresh
// deploy.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/auth"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/cases"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/config"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/db"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/scenario"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("connect db failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate db failed", "error", err)
		os.Exit(1)
	}

	studentID := getenvDefault("SEED_STUDENT_ID", "demo_student")
	password := getenvDefault("SEED_STUDENT_PASSWORD", "demo1234")

	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("hash password failed", "error", err)
		os.Exit(1)
	}
	if err := store.CreateStudent(ctx, studentID, "Demo Öğrenci", hash); err != nil {
		if !errors.Is(err, db.ErrStudentExists) {
			logger.Error("create student failed", "error", err)
			os.Exit(1)
		}
		logger.Info("student already exists", "student_id", studentID)
	} else {
		logger.Info("student created", "student_id", studentID)
	}

	catalog, err := cases.LoadDir(cfg.CasesDir)
	if err != nil {
		logger.Error("load case catalog failed", "dir", cfg.CasesDir, "error", err)
		os.Exit(1)
	}
	if len(catalog) == 0 {
		logger.Error("case catalog is empty", "dir", cfg.CasesDir)
		os.Exit(1)
	}

	first := catalog[0]
	session, err := store.UpsertSession(ctx, studentID, first.CaseID)
	if err != nil {
		logger.Error("create session failed", "case_id", first.CaseID, "error", err)
		os.Exit(1)
	}

	states := scenario.NewManager(store, nil, logger)
	if _, err := states.StartSession(ctx, studentID, first); err != nil {
		logger.Error("seed scenario state failed", "case_id", first.CaseID, "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete",
		"student_id", studentID,
		"case_id", first.CaseID,
		"session_id", session.ID,
	)
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}
