package model

import "time"

// UserState is the user's position in the conversation flow. It is mutated
// exclusively by the state machine's transition protocol.
type UserState string

const (
	StateOnboarding      UserState = "ONBOARDING"
	StateMainMenu        UserState = "MAIN_MENU"
	StateGrammarTheory   UserState = "GRAMMAR_THEORY"
	StateGrammarPractice UserState = "GRAMMAR_PRACTICE"
	StatePracticeResult  UserState = "PRACTICE_RESULT"
	StateFreeWriting     UserState = "FREE_WRITING"
	StateWritingFeedback UserState = "WRITING_FEEDBACK"
	StateStats           UserState = "STATS"
)

type User struct {
	ID           int64 `gorm:"primaryKey"` // Telegram user ID
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
	State        UserState `gorm:"not null;default:ONBOARDING;size:32"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile is derived once from the onboarding free text and read-only
// afterwards. Goals and Interests are JSON-encoded string lists; the
// serialization lives in UserService, domain code only sees []string.
type UserProfile struct {
	UserID      int64  `gorm:"primaryKey"`
	Level       string `gorm:"not null;size:8"` // CEFR code: A1..C2
	Goals       string `gorm:"type:text"`       // JSON array
	Interests   string `gorm:"type:text"`       // JSON array
	RawResponse string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
