package models

import "time"

// Session is a learner's current position and active/inactive practice flag.
// One row per learner; CurrentExerciseID is nil until the learner has
// started practicing. PracticeActive=false with a nil pointer is the idle
// state.
type Session struct {
	LearnerID         int64
	CurrentExerciseID *int
	PracticeActive    bool
	LastActivity      time.Time
}
