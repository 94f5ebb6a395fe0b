package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	appContext "github.com/alphabatem/common/context"
	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/shared"
	log "github.com/sirupsen/logrus"
)

// ExerciseService turns grammar topics and user profiles into generated
// content: exercise batches, theory explanations, onboarding analysis and
// writing feedback.
type ExerciseService struct {
	appContext.DefaultService

	llmSvc     *LLMService
	grammarSvc *GrammarService
}

const EXERCISE_SVC = "exercise_svc"

const exercisesPerSession = 5

func (svc ExerciseService) Id() string {
	return EXERCISE_SVC
}

func (svc *ExerciseService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ExerciseService) Start() error {
	svc.llmSvc = svc.Service(LLM_SVC).(*LLMService)
	svc.grammarSvc = svc.Service(GRAMMAR_SVC).(*GrammarService)
	return nil
}

// GenerateExercises produces a graded exercise batch for a practice
// session. Topic mode drills one rule; review mode mixes the user's
// weakest topics. Adaptive mode currently behaves as review.
func (svc *ExerciseService) GenerateExercises(ctx context.Context, req dto.ExerciseGenerationRequest) ([]dto.Exercise, error) {
	var user string
	switch req.Mode {
	case dto.ModeTopic:
		user = topicExercisePrompt(req)
	case dto.ModeReview, dto.ModeAdaptive:
		topics, err := svc.reviewTopicNames(req.UserID, req.MaxTopics)
		if err != nil {
			return nil, err
		}
		user = reviewExercisePrompt(req, topics)
	default:
		return nil, fmt.Errorf("unknown generation mode: %s", req.Mode)
	}

	raw, err := svc.llmSvc.Generate(ctx, exerciseSystemPrompt, user, exerciseResponseSchema)
	if err != nil {
		return nil, err
	}

	exercises, err := parseExerciseBatch(raw)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": req.UserID,
		"mode":    req.Mode,
		"count":   len(exercises),
	}).Info("Exercises generated")
	return exercises, nil
}

func (svc *ExerciseService) reviewTopicNames(userID int64, maxTopics int) ([]string, error) {
	review, err := svc.grammarSvc.ReviewTopics(userID, maxTopics)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(review))
	for _, p := range review {
		topic, err := svc.grammarSvc.Topic(p.TopicID)
		if err != nil {
			// topic removed from the catalog; the code alone still works
			names = append(names, p.TopicID)
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", topic.ID, topic.Name))
	}
	return names, nil
}

// validationError flattens validator output into one readable error for
// the invalid-response report.
func validationError(err error) error {
	fields := dto.FormatValidationErrors(err)
	if len(fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Message)
	}
	return errors.New(strings.Join(parts, "; "))
}

// parseExerciseBatch decodes and validates a generated batch, then maps it
// into session exercises.
func parseExerciseBatch(raw json.RawMessage) ([]dto.Exercise, error) {
	var batch dto.ExerciseBatchPayload
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := dto.GetValidator().Struct(&batch); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: validationError(err)}
	}

	exercises := make([]dto.Exercise, 0, len(batch.Exercises))
	seen := make(map[string]bool, len(batch.Exercises))
	for _, p := range batch.Exercises {
		if seen[p.ID] {
			return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("duplicate exercise id %q", p.ID)}
		}
		seen[p.ID] = true

		exerciseType := dto.ExerciseType(p.Type)
		if exerciseType == dto.ExerciseSingleChoice {
			if len(p.Options) < 2 {
				return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("exercise %q needs at least two options", p.ID)}
			}
			if !answerInOptions(p.CorrectAnswer, p.Options) {
				return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("exercise %q answer not among options", p.ID)}
			}
		}

		exercises = append(exercises, dto.Exercise{
			ID:            p.ID,
			TopicID:       p.TopicID,
			Type:          exerciseType,
			Question:      p.Question,
			Options:       p.Options,
			CorrectAnswer: p.CorrectAnswer,
			Explanation:   p.Explanation,
		})
	}
	return exercises, nil
}

func answerInOptions(answer string, options []string) bool {
	for _, option := range options {
		if shared.CheckAnswer(option, answer) {
			return true
		}
	}
	return false
}

// GenerateTheory produces a level-appropriate explanation of one topic.
func (svc *ExerciseService) GenerateTheory(ctx context.Context, topicID, ruleName, level string, interests []string) (*dto.TheoryPayload, error) {
	raw, err := svc.llmSvc.Generate(ctx, theorySystemPrompt, theoryPrompt(topicID, ruleName, level, interests), theoryResponseSchema)
	if err != nil {
		return nil, err
	}

	var payload dto.TheoryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := dto.GetValidator().Struct(&payload); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: validationError(err)}
	}
	return &payload, nil
}

// AnalyzeProfile derives a CEFR level, goals and interests from the
// user's free-form onboarding answers.
func (svc *ExerciseService) AnalyzeProfile(ctx context.Context, answers []string) (*dto.ProfilePayload, error) {
	raw, err := svc.llmSvc.Generate(ctx, profileSystemPrompt, strings.Join(answers, "\n---\n"), profileResponseSchema)
	if err != nil {
		return nil, err
	}

	var payload dto.ProfilePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := dto.GetValidator().Struct(&payload); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: validationError(err)}
	}
	return &payload, nil
}

// EvaluateWriting reviews a free-writing submission.
func (svc *ExerciseService) EvaluateWriting(ctx context.Context, text, level string) (*dto.WritingFeedbackPayload, error) {
	raw, err := svc.llmSvc.Generate(ctx, writingSystemPrompt, writingPrompt(text, level), writingFeedbackSchema)
	if err != nil {
		return nil, err
	}

	var payload dto.WritingFeedbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := dto.GetValidator().Struct(&payload); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: validationError(err)}
	}
	return &payload, nil
}
