package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"sqldrill/internal/catalog"
	"sqldrill/internal/database"
	"sqldrill/internal/engine"
	"sqldrill/internal/models"
	"sqldrill/internal/repository"
	"sqldrill/internal/verify"
)

func testExercises() []models.Exercise {
	return []models.Exercise{
		{
			ID:     1,
			Prompt: "List all pets by name.",
			SetupStatements: []string{
				"CREATE TABLE pets (id INTEGER, name TEXT)",
				"INSERT INTO pets VALUES (1, 'Rex')",
				"INSERT INTO pets VALUES (2, 'Momo')",
			},
			SolutionQuery:    "SELECT name FROM pets ORDER BY name",
			ExplanationSteps: []string{"ORDER BY name sorts alphabetically."},
			Difficulty:       models.DifficultyBeginner,
			Category:         "basics",
			OrderSensitive:   true,
		},
		{
			ID:     2,
			Prompt: "Count the pets.",
			SetupStatements: []string{
				"CREATE TABLE pets (id INTEGER, name TEXT)",
				"INSERT INTO pets VALUES (1, 'Rex')",
			},
			SolutionQuery:  "SELECT COUNT(*) FROM pets",
			Difficulty:     models.DifficultyBeginner,
			Category:       "basics",
			OrderSensitive: true,
		},
	}
}

func newTestService(t *testing.T) *PracticeService {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cat, err := catalog.New(testExercises())
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}

	return NewPracticeService(cat, engine.New(),
		repository.NewAttemptRepository(db),
		repository.NewSessionRepository(db))
}

func TestSubmitAttemptCorrect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.SubmitAttempt(ctx, 1, 1, "SELECT name FROM pets ORDER BY name", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}

	if !result.Verdict.Correct {
		t.Error("Correct query graded incorrect")
	}
	if !result.FirstSuccess {
		t.Error("First correct attempt not flagged as first success")
	}
	if result.AttemptCount != 1 {
		t.Errorf("AttemptCount = %d, want 1", result.AttemptCount)
	}
	if result.SolutionQuery == "" || len(result.ExplanationSteps) == 0 {
		t.Error("Result missing solution or explanation")
	}
}

func TestSubmitAttemptIncorrectThenCorrect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.SubmitAttempt(ctx, 1, 1, "SELECT name FROM pets ORDER BY name DESC", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	if result.Verdict.Correct {
		t.Fatal("Wrong ordering graded correct")
	}

	result, err = svc.SubmitAttempt(ctx, 1, 1, "SELECT name FROM pets ORDER BY name", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	if !result.Verdict.Correct {
		t.Fatal("Correct retry graded incorrect")
	}
	if result.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, want 2", result.AttemptCount)
	}
	if !result.FirstSuccess {
		t.Error("First correct attempt after a failure not flagged as first success")
	}

	// A repeat success is no longer the first
	result, err = svc.SubmitAttempt(ctx, 1, 1, "SELECT name FROM pets ORDER BY name", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	if result.FirstSuccess {
		t.Error("Repeat success flagged as first success")
	}
}

func TestSubmitAttemptLearnerErrorIsRecorded(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.SubmitAttempt(ctx, 1, 1, "SELECT bogus FROM nowhere", nil)
	if err != nil {
		t.Fatalf("A failing learner query must not escalate: %v", err)
	}
	if result.Verdict.Correct {
		t.Error("Failing query graded correct")
	}
	if result.Verdict.LearnerError == "" {
		t.Error("Verdict missing the learner's execution error")
	}
	// The failed attempt still lands in the ledger
	if result.AttemptCount != 1 {
		t.Errorf("AttemptCount = %d, want 1", result.AttemptCount)
	}
}

func TestSubmitAttemptEmptyQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)

	_, err := svc.SubmitAttempt(context.Background(), 1, 1, "   \n\t", nil)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Expected ErrEmptyQuery, got %v", err)
	}

	// Nothing was recorded
	attempts, err := svc.RecentAttempts(1, 10)
	if err != nil {
		t.Fatalf("RecentAttempts failed: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("Blank submission was recorded: %d attempts", len(attempts))
	}
}

func TestSubmitAttemptUnknownExercise(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)

	_, err := svc.SubmitAttempt(context.Background(), 1, 99, "SELECT 1", nil)
	if !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("Expected ErrExerciseNotFound, got %v", err)
	}
}

func TestSolutionFaultIsNotRecorded(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	broken := models.Exercise{
		ID:              1,
		Prompt:          "p",
		SetupStatements: []string{"CREATE TABLE t (id INTEGER)"},
		SolutionQuery:   "SELECT broken FROM nowhere",
		Difficulty:      models.DifficultyBeginner,
		OrderSensitive:  true,
	}
	cat, err := catalog.New([]models.Exercise{broken})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}

	svc := NewPracticeService(cat, engine.New(),
		repository.NewAttemptRepository(db),
		repository.NewSessionRepository(db))

	_, err = svc.SubmitAttempt(context.Background(), 1, 1, "SELECT id FROM t", nil)
	if err == nil {
		t.Fatal("Broken solution did not escalate")
	}
	var fault *verify.SolutionFaultError
	if !errors.As(err, &fault) {
		t.Fatalf("Expected SolutionFaultError, got %T: %v", err, err)
	}

	attempts, err := svc.RecentAttempts(1, 10)
	if err != nil {
		t.Fatalf("RecentAttempts failed: %v", err)
	}
	if len(attempts) != 0 {
		t.Error("A solution fault recorded an attempt against the learner")
	}
}

func TestCurrentOrFirstExercise(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)

	// No session yet: the first exercise
	ex, err := svc.CurrentOrFirstExercise(1)
	if err != nil {
		t.Fatalf("CurrentOrFirstExercise failed: %v", err)
	}
	if ex.ID != 1 {
		t.Errorf("Expected first exercise, got %d", ex.ID)
	}
}

func TestNextExerciseRequiresSolve(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.NextExercise(1); !errors.Is(err, ErrNotYetSolved) {
		t.Fatalf("Expected ErrNotYetSolved, got %v", err)
	}

	if _, err := svc.SubmitAttempt(ctx, 1, 1, "SELECT name FROM pets ORDER BY name", nil); err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}

	next, err := svc.NextExercise(1)
	if err != nil {
		t.Fatalf("NextExercise failed: %v", err)
	}
	if next.ID != 2 {
		t.Errorf("NextExercise = %d, want 2", next.ID)
	}

	// The session pointer moved with it
	ex, err := svc.CurrentOrFirstExercise(1)
	if err != nil {
		t.Fatalf("CurrentOrFirstExercise failed: %v", err)
	}
	if ex.ID != 2 {
		t.Errorf("Current exercise = %d, want 2", ex.ID)
	}
}

func TestNextExerciseAtEndDeactivates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.ActivateSession(1); err != nil {
		t.Fatalf("ActivateSession failed: %v", err)
	}

	if _, err := svc.SubmitAttempt(ctx, 1, 1, "SELECT name FROM pets ORDER BY name", nil); err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	if _, err := svc.NextExercise(1); err != nil {
		t.Fatalf("NextExercise failed: %v", err)
	}
	if _, err := svc.SubmitAttempt(ctx, 1, 2, "SELECT COUNT(*) FROM pets", nil); err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}

	if _, err := svc.NextExercise(1); !errors.Is(err, ErrNoMoreExercises) {
		t.Fatalf("Expected ErrNoMoreExercises at the end, got %v", err)
	}

	session, err := svc.Session(1)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if session == nil || session.PracticeActive {
		t.Error("Session still active after finishing the catalog")
	}
}

func TestActivateSessionPointsAtFirstExercise(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)

	if err := svc.ActivateSession(1); err != nil {
		t.Fatalf("ActivateSession failed: %v", err)
	}

	session, err := svc.Session(1)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if session == nil || !session.PracticeActive {
		t.Fatal("Session not active after ActivateSession")
	}
	if session.CurrentExerciseID == nil || *session.CurrentExerciseID != 1 {
		t.Error("First activation did not point at the first exercise")
	}
}

func TestAllExercisesWithProgress(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping service test in short mode")
	}

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SubmitAttempt(ctx, 1, 1, "SELECT name FROM pets ORDER BY name", nil); err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}

	exercises, progress, err := svc.AllExercises(1)
	if err != nil {
		t.Fatalf("AllExercises failed: %v", err)
	}
	if len(exercises) != 2 {
		t.Fatalf("Expected 2 exercises, got %d", len(exercises))
	}
	if !progress[1].Completed {
		t.Error("Solved exercise not marked completed")
	}
	if _, ok := progress[2]; ok {
		t.Error("Unattempted exercise has progress")
	}
}
