package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoExerciseSession() *dto.PracticeSessionData {
	return newSessionData(dto.CreateSessionData{
		UserID:   7,
		TopicID:  "PRESENT_SIMPLE",
		RuleName: "Present Simple",
		Level:    "B1",
		Exercises: []dto.Exercise{
			{ID: "ex_01", TopicID: "PRESENT_SIMPLE", Type: dto.ExerciseSingleChoice,
				Question: "She ___ to work.", Options: []string{"go", "goes"}, CorrectAnswer: "goes"},
			{ID: "ex_02", TopicID: "PRESENT_SIMPLE", Type: dto.ExerciseFillInBlank,
				Question: "They ___ not agree.", CorrectAnswer: "do not|don't"},
		},
	})
}

func TestNewSessionData(t *testing.T) {
	session := twoExerciseSession()

	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, 0, session.CurrentExerciseIndex)
	assert.Equal(t, 0, session.Correct)
	assert.Equal(t, 0, session.Total)
	assert.Len(t, session.Exercises, 2)
	assert.Nil(t, session.CompletedAt)
	assert.False(t, session.StartTime.IsZero())

	other := twoExerciseSession()
	assert.NotEqual(t, session.SessionID, other.SessionID)
}

func TestApplyAnswerGradesAndAdvances(t *testing.T) {
	session := twoExerciseSession()

	graded, err := applyAnswer(session, dto.SessionAnswer{ExerciseID: "ex_01", UserAnswer: "goes"})
	require.NoError(t, err)
	require.NotNil(t, graded.IsCorrect)
	assert.True(t, *graded.IsCorrect)
	assert.Equal(t, 1, session.Correct)
	assert.Equal(t, 1, session.Total)
	assert.Equal(t, 1, session.CurrentExerciseIndex)
	assert.Nil(t, session.CompletedAt)

	// fill-in-blank variant answer, wrong this time
	graded, err = applyAnswer(session, dto.SessionAnswer{ExerciseID: "ex_02", UserAnswer: "did not"})
	require.NoError(t, err)
	assert.False(t, *graded.IsCorrect)
	assert.Equal(t, 1, session.Correct)
	assert.Equal(t, 2, session.Total)

	// last answer completes the session
	require.NotNil(t, session.CompletedAt)
	require.NotNil(t, session.EndTime)
}

func TestApplyAnswerRejectsOutOfOrder(t *testing.T) {
	session := twoExerciseSession()

	_, err := applyAnswer(session, dto.SessionAnswer{ExerciseID: "ex_02", UserAnswer: "don't"})
	assert.ErrorIs(t, err, ErrExerciseMismatch)
	assert.Equal(t, 0, session.CurrentExerciseIndex)

	_, err = applyAnswer(session, dto.SessionAnswer{ExerciseID: "missing", UserAnswer: "x"})
	assert.ErrorIs(t, err, ErrExerciseMismatch)
}

func TestApplyAnswerRejectsCompletedSession(t *testing.T) {
	session := twoExerciseSession()
	_, err := applyAnswer(session, dto.SessionAnswer{ExerciseID: "ex_01", UserAnswer: "goes"})
	require.NoError(t, err)
	_, err = applyAnswer(session, dto.SessionAnswer{ExerciseID: "ex_02", UserAnswer: "don't"})
	require.NoError(t, err)

	_, err = applyAnswer(session, dto.SessionAnswer{ExerciseID: "ex_02", UserAnswer: "don't"})
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestCurrentExercise(t *testing.T) {
	session := twoExerciseSession()
	require.NotNil(t, CurrentExercise(session))
	assert.Equal(t, "ex_01", CurrentExercise(session).ID)

	session.CurrentExerciseIndex = 2
	assert.Nil(t, CurrentExercise(session))
}

// stubSessionStore keeps session payloads in memory, mirroring the
// RedisService surface the session service uses.
type stubSessionStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (s *stubSessionStore) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	payload, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected value type %T", value)
	}
	s.data[key] = payload
	s.ttls[key] = expiration
	return nil
}

// A missing key leaves dest untouched, like RedisService.GetJSON.
func (s *stubSessionStore) GetJSON(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.data[key]
	if !ok {
		return nil
	}
	return shared.JSONAPI().Unmarshal(payload, dest)
}

func (s *stubSessionStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
		delete(s.ttls, key)
	}
	return nil
}

func (s *stubSessionStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.data[key]
	return ok, nil
}

func (s *stubSessionStore) Keys(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func TestSessionKeyIsPerUser(t *testing.T) {
	assert.Equal(t, "session:practice:7", sessionKey(7))
	assert.Equal(t, sessionKey(7), sessionKey(7))
	assert.NotEqual(t, sessionKey(7), sessionKey(8))
}

func TestCreateReplacesExistingSession(t *testing.T) {
	store := newStubSessionStore()
	svc := &PracticeSessionService{store: store}
	ctx := context.Background()

	first, err := svc.Create(ctx, dto.CreateSessionData{
		UserID:  7,
		TopicID: "PRESENT_SIMPLE",
		Exercises: []dto.Exercise{
			{ID: "ex_01", TopicID: "PRESENT_SIMPLE", CorrectAnswer: "goes"},
		},
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx, dto.CreateSessionData{
		UserID:  7,
		TopicID: "ARTICLES",
		Exercises: []dto.Exercise{
			{ID: "ex_01", TopicID: "ARTICLES", CorrectAnswer: "a"},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)

	// one key per user: the second session took the first one's place
	assert.Len(t, store.data, 1)
	got, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, second.SessionID, got.SessionID)
	assert.Equal(t, "ARTICLES", got.TopicID)
}

func TestHasActiveFollowsSessionLifecycle(t *testing.T) {
	store := newStubSessionStore()
	svc := &PracticeSessionService{store: store}
	ctx := context.Background()

	active, err := svc.HasActive(ctx, 7)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = svc.Create(ctx, dto.CreateSessionData{
		UserID:    7,
		TopicID:   "MODALS",
		Exercises: []dto.Exercise{{ID: "ex_01", TopicID: "MODALS", CorrectAnswer: "must"}},
	})
	require.NoError(t, err)

	active, err = svc.HasActive(ctx, 7)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, svc.Delete(ctx, 7))
	active, err = svc.HasActive(ctx, 7)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestActiveSessionsDeserializesStoredSessions(t *testing.T) {
	store := newStubSessionStore()
	svc := &PracticeSessionService{store: store}
	ctx := context.Background()

	for _, userID := range []int64{7, 8} {
		_, err := svc.Create(ctx, dto.CreateSessionData{
			UserID:    userID,
			TopicID:   "GERUNDS",
			Exercises: []dto.Exercise{{ID: "ex_01", TopicID: "GERUNDS", CorrectAnswer: "swimming"}},
		})
		require.NoError(t, err)
	}

	sessions, err := svc.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, session := range sessions {
		assert.NotEmpty(t, session.SessionID)
		assert.Equal(t, "GERUNDS", session.TopicID)
	}
}
