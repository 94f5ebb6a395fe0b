package model

import "time"

// GrammarCategory is reference data seeded at install time (see seed/).
type GrammarCategory struct {
	ID        string `gorm:"primaryKey;size:32"` // "TENSES", "MODALS", ...
	Name      string `gorm:"not null"`
	NameRu    string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GrammarTopic identifies a single grammar rule. Topics are upserted lazily
// whenever the content generator introduces a new one and are never deleted.
type GrammarTopic struct {
	ID         string `gorm:"primaryKey;size:64"` // "PRESENT_PERFECT", ...
	CategoryID string `gorm:"index;size:32"`
	Name       string `gorm:"not null"` // "Present Perfect"
	NameRu     string
	CefrLevel  string `gorm:"size:8"`
	SortOrder  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserTopicProgress accumulates practice results per (user, topic).
// Counts only ever grow; mastery and lastPracticedAt are replaced on update.
type UserTopicProgress struct {
	ID              string `gorm:"primaryKey;type:text"`
	UserID          int64  `gorm:"not null;uniqueIndex:idx_user_topic"`
	TopicID         string `gorm:"not null;uniqueIndex:idx_user_topic;size:64"`
	Exposed         bool   // theory was shown at least once
	PracticeCount   int    `gorm:"default:0;not null"`
	CorrectCount    int    `gorm:"default:0;not null"`
	TotalCount      int    `gorm:"default:0;not null"`
	Mastery         int    `gorm:"default:0;not null"` // 0-100
	LastPracticedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
