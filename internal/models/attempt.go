package models

import "time"

// Attempt is one immutable record of a learner's submission and its verdict.
// SequenceNumber is 1-based and contiguous per (learner, exercise) pair.
type Attempt struct {
	ID             int64
	LearnerID      int64
	ExerciseID     int
	SubmittedQuery string
	IsCorrect      bool
	SequenceNumber int
	ElapsedSeconds *int
	SubmittedAt    time.Time
}
