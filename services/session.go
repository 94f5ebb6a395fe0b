package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/shared"
	log "github.com/sirupsen/logrus"
)

// sessionStore is the slice of RedisService the session service rides on.
type sessionStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// PracticeSessionService stores the per-user practice session in Redis.
// One key per user, so starting a new session silently replaces whatever
// was there.
type PracticeSessionService struct {
	appContext.DefaultService

	store sessionStore
}

const PRACTICE_SESSION_SVC = "practice_session_svc"

const (
	sessionTTL         = 24 * time.Hour
	completedRetention = time.Hour
)

var (
	ErrNoActiveSession  = errors.New("no active practice session")
	ErrSessionCompleted = errors.New("practice session already completed")
	ErrExerciseMismatch = errors.New("answer does not target the current exercise")
	ErrAlreadyAnswered  = errors.New("current exercise already answered")
)

func (svc PracticeSessionService) Id() string {
	return PRACTICE_SESSION_SVC
}

func (svc *PracticeSessionService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *PracticeSessionService) Start() error {
	svc.store = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%s%d", shared.KeyPrefixSession, userID)
}

func newSessionData(data dto.CreateSessionData) *dto.PracticeSessionData {
	id, _ := uuid.NewV7()
	return &dto.PracticeSessionData{
		UserID:    data.UserID,
		SessionID: id.String(),
		TopicID:   data.TopicID,
		RuleName:  data.RuleName,
		Level:     data.Level,
		Exercises: data.Exercises,
		StartTime: time.Now().UTC(),
	}
}

func (svc *PracticeSessionService) Create(ctx context.Context, data dto.CreateSessionData) (*dto.PracticeSessionData, error) {
	if len(data.Exercises) == 0 {
		return nil, errors.New("cannot create a session without exercises")
	}

	session := newSessionData(data)
	if err := svc.save(ctx, session, sessionTTL); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    data.UserID,
		"session_id": session.SessionID,
		"topic_id":   data.TopicID,
		"exercises":  len(session.Exercises),
	}).Info("Practice session created")
	return session, nil
}

func (svc *PracticeSessionService) Get(ctx context.Context, userID int64) (*dto.PracticeSessionData, error) {
	var session dto.PracticeSessionData
	if err := svc.store.GetJSON(ctx, sessionKey(userID), &session); err != nil {
		return nil, err
	}
	if session.SessionID == "" {
		return nil, ErrNoActiveSession
	}
	return &session, nil
}

// CurrentExercise returns the exercise at the cursor, or nil when the
// session ran out of exercises.
func CurrentExercise(session *dto.PracticeSessionData) *dto.Exercise {
	if session.CurrentExerciseIndex >= len(session.Exercises) {
		return nil
	}
	return &session.Exercises[session.CurrentExerciseIndex]
}

// SubmitAnswer grades the answer against the cursor exercise, advances the
// cursor and persists the session. Answers for any exercise other than the
// cursor one are rejected; a stale tap on an old inline keyboard must not
// corrupt the session.
func (svc *PracticeSessionService) SubmitAnswer(ctx context.Context, userID int64, answer dto.SessionAnswer) (*dto.PracticeSessionData, *dto.Exercise, error) {
	session, err := svc.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	graded, err := applyAnswer(session, answer)
	if err != nil {
		return nil, nil, err
	}

	ttl := sessionTTL
	if session.CompletedAt != nil {
		ttl = completedRetention
	}
	if err := svc.save(ctx, session, ttl); err != nil {
		return nil, nil, err
	}
	return session, graded, nil
}

func applyAnswer(session *dto.PracticeSessionData, answer dto.SessionAnswer) (*dto.Exercise, error) {
	if session.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}

	current := CurrentExercise(session)
	if current == nil {
		return nil, ErrSessionCompleted
	}
	if current.ID != answer.ExerciseID {
		return nil, ErrExerciseMismatch
	}
	if current.UserAnswer != nil {
		return nil, ErrAlreadyAnswered
	}

	isCorrect := shared.CheckAnswer(answer.UserAnswer, current.CorrectAnswer)
	current.UserAnswer = &answer.UserAnswer
	current.IsCorrect = &isCorrect
	session.Total++
	if isCorrect {
		session.Correct++
	}

	session.CurrentExerciseIndex++
	if session.CurrentExerciseIndex >= len(session.Exercises) {
		now := time.Now().UTC()
		session.EndTime = &now
		session.CompletedAt = &now
	}
	return current, nil
}

// Complete force-finishes the session, leaving unanswered exercises as
// they are. Used when the user bails out to the result screen early.
func (svc *PracticeSessionService) Complete(ctx context.Context, userID int64) (*dto.PracticeSessionData, error) {
	session, err := svc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.CompletedAt == nil {
		now := time.Now().UTC()
		session.EndTime = &now
		session.CompletedAt = &now
		if err := svc.save(ctx, session, completedRetention); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (svc *PracticeSessionService) Delete(ctx context.Context, userID int64) error {
	return svc.store.Delete(ctx, sessionKey(userID))
}

// HasActive reports whether a session is stored for the user,
// completed-but-retained ones included.
func (svc *PracticeSessionService) HasActive(ctx context.Context, userID int64) (bool, error) {
	return svc.store.Exists(ctx, sessionKey(userID))
}

// ActiveSessions loads every stored session. Operator tooling only; KEYS
// is fine at this bot's scale.
func (svc *PracticeSessionService) ActiveSessions(ctx context.Context) ([]dto.PracticeSessionData, error) {
	keys, err := svc.store.Keys(ctx, shared.KeyPrefixSession+"*")
	if err != nil {
		return nil, err
	}

	sessions := make([]dto.PracticeSessionData, 0, len(keys))
	for _, key := range keys {
		var session dto.PracticeSessionData
		if err := svc.store.GetJSON(ctx, key, &session); err != nil {
			return nil, err
		}
		if session.SessionID == "" {
			// expired between KEYS and GET
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (svc *PracticeSessionService) save(ctx context.Context, session *dto.PracticeSessionData, ttl time.Duration) error {
	payload, err := shared.JSONAPI().Marshal(session)
	if err != nil {
		return err
	}
	return svc.store.Set(ctx, sessionKey(session.UserID), payload, ttl)
}
