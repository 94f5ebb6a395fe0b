package dto

import "time"

type ExerciseType string

const (
	ExerciseSingleChoice ExerciseType = "single_choice"
	ExerciseFillInBlank  ExerciseType = "fill_in_blank"
)

// Exercise is immutable after generation except for UserAnswer/IsCorrect,
// which are written exactly once when the exercise is graded.
type Exercise struct {
	ID            string       `json:"id"`
	TopicID       string       `json:"topicId"` // attributed for progress aggregation
	Type          ExerciseType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"` // single_choice only
	CorrectAnswer string       `json:"correctAnswer"`     // pipe-delimited variants for fill_in_blank
	Explanation   string       `json:"explanation,omitempty"`
	UserAnswer    *string      `json:"userAnswer,omitempty"`
	IsCorrect     *bool        `json:"isCorrect,omitempty"`
}

// PracticeSessionData lives in Redis under a per-user key; at most one
// active session per user.
type PracticeSessionData struct {
	UserID    int64  `json:"userId"`
	SessionID string `json:"sessionId"`
	TopicID   string `json:"topicId"` // "REVIEW_MIXED" for review mode
	RuleName  string `json:"ruleName"`
	Level     string `json:"level"`

	Exercises            []Exercise `json:"exercises"`
	CurrentExerciseIndex int        `json:"currentExerciseIndex"`

	// Running counters: Total is the number of answers submitted so
	// far (skips included), not the batch size.
	Correct int `json:"correct"`
	Total   int `json:"total"`

	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CreateSessionData carries the caller-supplied part of a new session;
// id, cursor, counters and start time are assigned by the store.
type CreateSessionData struct {
	UserID    int64
	TopicID   string
	RuleName  string
	Level     string
	Exercises []Exercise
}

type SessionAnswer struct {
	ExerciseID string
	UserAnswer string
}
