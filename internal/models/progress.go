package models

// ProgressSnapshot aggregates one learner's attempt history. It is derived
// on demand from the attempt ledger, never stored.
type ProgressSnapshot struct {
	TotalAttempts         int
	ExercisesAttempted    int
	CorrectAttempts       int
	SuccessRate           float64
	AverageElapsedSeconds float64
	CompletedExerciseIDs  []int
}

// ExerciseProgress is the per-exercise rollup shown next to the exercise
// list: how many attempts the learner has made and whether any succeeded.
type ExerciseProgress struct {
	ExerciseID int
	Attempts   int
	Completed  bool
}

// Rate returns correct/total as a fraction, 0 when there are no attempts.
func Rate(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
