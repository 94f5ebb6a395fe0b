package dto

// GenerationMode selects how an exercise batch is assembled.
type GenerationMode string

const (
	ModeTopic    GenerationMode = "topic"
	ModeReview   GenerationMode = "review"
	ModeAdaptive GenerationMode = "adaptive" // placeholder, behaves as review
)

type ExerciseGenerationRequest struct {
	Mode      GenerationMode
	UserID    int64
	Level     string // CEFR
	Interests []string
	Goals     []string

	// topic mode
	TopicID  string
	RuleName string

	// review mode
	MaxTopics int // 0 means default (5)
}

// ExercisePayload is the shape each generated exercise must parse into.
// Validated before it is accepted into a session.
type ExercisePayload struct {
	ID            string   `json:"id" validate:"required"`
	TopicID       string   `json:"topicId" validate:"required,topic_code"`
	Type          string   `json:"type" validate:"required,oneof=single_choice fill_in_blank"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"omitempty,max=4,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

type ExerciseBatchPayload struct {
	Exercises []ExercisePayload `json:"exercises" validate:"required,min=1,dive"`
}

// TheoryPayload is the shape of a generated topic explanation.
type TheoryPayload struct {
	TopicID  string `json:"topic_id" validate:"required,topic_code"`
	RuleName string `json:"rule_name" validate:"required"`
	Level    string `json:"level" validate:"required,cefr"`
	Theory   string `json:"theory" validate:"required"`
}

// ProfilePayload is the shape of the onboarding analysis.
type ProfilePayload struct {
	Level     string   `json:"level" validate:"required,cefr"`
	Goals     []string `json:"goals" validate:"required,min=1"`
	Interests []string `json:"interests" validate:"required,min=1"`
	Summary   string   `json:"summary" validate:"required"`
}

// WritingFeedbackPayload is the shape of a free-writing evaluation.
type WritingFeedbackPayload struct {
	Corrected       string   `json:"corrected" validate:"required"`
	GrammarNotes    []string `json:"grammar_notes"`
	VocabularyNotes []string `json:"vocabulary_notes"`
	Overall         string   `json:"overall" validate:"required"`
}
