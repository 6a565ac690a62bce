package handlers

import (
	"time"

	"sqldrill/internal/models"
	"sqldrill/internal/service"
)

// exerciseResponse is the client-facing exercise shape. The canonical
// solution and its explanation are deliberately absent; they are revealed
// only in the submit response.
type exerciseResponse struct {
	ID         int    `json:"id"`
	Prompt     string `json:"prompt"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`

	// Setup statements ship to the client so the browser-side engine can
	// materialize the same dataset locally.
	Setup          []string `json:"setup"`
	OrderSensitive bool     `json:"orderSensitive"`
}

func newExerciseResponse(ex models.Exercise) exerciseResponse {
	return exerciseResponse{
		ID:             ex.ID,
		Prompt:         ex.Prompt,
		Difficulty:     string(ex.Difficulty),
		Category:       ex.Category,
		Setup:          ex.SetupStatements,
		OrderSensitive: ex.OrderSensitive,
	}
}

// exerciseProgressResponse pairs an exercise with the learner's rollup
type exerciseProgressResponse struct {
	Attempts  int  `json:"attempts"`
	Completed bool `json:"completed"`
}

type exerciseListResponse struct {
	Exercises []exerciseResponse               `json:"exercises"`
	Progress  map[int]exerciseProgressResponse `json:"progressByExerciseId"`
}

// submitResponse is returned after grading one attempt
type submitResponse struct {
	Correct              bool     `json:"correct"`
	LearnerError         string   `json:"learnerError,omitempty"`
	AttemptsCountForPair int      `json:"attemptsCountForPair"`
	IsFirstSuccess       bool     `json:"isFirstSuccessForPair"`
	SolutionQuery        string   `json:"solutionQuery"`
	ExplanationSteps     []string `json:"explanationSteps"`
}

func newSubmitResponse(result *service.SubmissionResult) submitResponse {
	return submitResponse{
		Correct:              result.Verdict.Correct,
		LearnerError:         result.Verdict.LearnerError,
		AttemptsCountForPair: result.AttemptCount,
		IsFirstSuccess:       result.FirstSuccess,
		SolutionQuery:        result.SolutionQuery,
		ExplanationSteps:     result.ExplanationSteps,
	}
}

type attemptResponse struct {
	ID             int64     `json:"id"`
	ExerciseID     int       `json:"exerciseId"`
	SubmittedQuery string    `json:"submittedQuery"`
	IsCorrect      bool      `json:"isCorrect"`
	SequenceNumber int       `json:"sequenceNumber"`
	ElapsedSeconds *int      `json:"elapsedSeconds,omitempty"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func newAttemptResponse(a models.Attempt) attemptResponse {
	return attemptResponse{
		ID:             a.ID,
		ExerciseID:     a.ExerciseID,
		SubmittedQuery: a.SubmittedQuery,
		IsCorrect:      a.IsCorrect,
		SequenceNumber: a.SequenceNumber,
		ElapsedSeconds: a.ElapsedSeconds,
		SubmittedAt:    a.SubmittedAt,
	}
}

type progressResponse struct {
	TotalAttempts         int     `json:"totalAttempts"`
	ExercisesAttempted    int     `json:"exercisesAttempted"`
	CorrectAttempts       int     `json:"correctAttempts"`
	SuccessRate           float64 `json:"successRate"`
	AverageElapsedSeconds float64 `json:"averageElapsedSeconds"`
	CompletedExerciseIDs  []int   `json:"completedExerciseIds"`
}

type sessionResponse struct {
	LearnerID         int64     `json:"learnerId"`
	CurrentExerciseID *int      `json:"currentExerciseId"`
	PracticeActive    bool      `json:"practiceActive"`
	LastActivity      time.Time `json:"lastActivity"`
}
