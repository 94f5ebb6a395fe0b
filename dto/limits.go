package dto

// RequestType classifies LLM-backed requests for daily quota accounting.
type RequestType string

const (
	RequestTheory      RequestType = "THEORY"
	RequestPractice    RequestType = "PRACTICE"
	RequestFreeWriting RequestType = "FREE_WRITING"
)

type LimitReason string

const (
	TotalLimitReached  LimitReason = "TOTAL_LIMIT_REACHED"
	TheoryLimitReached LimitReason = "THEORY_LIMIT_REACHED"
)

type DailyLimits struct {
	Total     int `json:"total"`
	MaxTheory int `json:"maxTheory"` // configured fraction of Total, default 50%
}

// UsageStats is the per-(user, UTC day) usage record.
// Invariant: TotalUsed == TheoryUsed + PracticeUsed + FreeWritingUsed.
type UsageStats struct {
	UserID          int64  `json:"userId"`
	Date            string `json:"date"` // YYYY-MM-DD, UTC
	TotalUsed       int    `json:"totalUsed"`
	TheoryUsed      int    `json:"theoryUsed"`
	PracticeUsed    int    `json:"practiceUsed"`
	FreeWritingUsed int    `json:"freeWritingUsed"`
}

type LimitCheckResult struct {
	Allowed      bool        `json:"allowed"`
	Reason       LimitReason `json:"reason,omitempty"`
	CurrentUsage UsageStats  `json:"currentUsage"`
	Limits       DailyLimits `json:"limits"`
}
