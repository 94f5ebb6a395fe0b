package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	"github.com/lingokit/grambot/shared"
	log "github.com/sirupsen/logrus"
)

// GrammarPracticeState runs a practice session: generates a batch on
// entry, then walks the exercises one at a time. Single-choice answers
// arrive as callbacks, fill-in-blank answers as plain text.
type GrammarPracticeState struct {
	grammarSvc  *GrammarService
	exerciseSvc *ExerciseService
	limitSvc    *LimitService
	sessionSvc  *PracticeSessionService
	userSvc     *UserService
}

const staleAnswerNotice = "That question is no longer active. Answer the latest one. 🙂"

func (s *GrammarPracticeState) State() model.UserState {
	return model.StateGrammarPractice
}

func (s *GrammarPracticeState) OnEnter(ev *Event) (model.UserState, error) {
	check, err := s.limitSvc.CheckLimit(ev.Ctx, ev.User.ID, dto.RequestPractice)
	if err != nil {
		return "", err
	}
	if !check.Allowed {
		if err := ev.Responder.Reply(limitMessage(check.Reason), nil); err != nil {
			return "", err
		}
		return model.StateMainMenu, nil
	}

	level := "B1"
	var interests, goals []string
	if profile, err := s.userSvc.GetProfile(ev.User.ID); err == nil && profile != nil {
		level = profile.Level
		interests = profile.Interests
		goals = profile.Goals
	}

	req := dto.ExerciseGenerationRequest{
		UserID:    ev.User.ID,
		Level:     level,
		Interests: interests,
		Goals:     goals,
	}
	topicID := ev.TopicID
	ruleName := ev.RuleName
	if topicID != "" {
		req.Mode = dto.ModeTopic
		req.TopicID = topicID
		req.RuleName = ruleName
	} else {
		req.Mode = dto.ModeReview
		topicID = shared.ReviewMixedTopic
		ruleName = "Mixed review"
	}

	if err := ev.Responder.Reply("Putting your exercises together…", nil); err != nil {
		return "", err
	}

	exercises, err := s.exerciseSvc.GenerateExercises(ev.Ctx, req)
	if err != nil {
		if errors.Is(err, ErrNoReviewTopics) {
			if err := ev.Responder.Reply("No topics to review yet — read some theory in 📚 Grammar first!", nil); err != nil {
				return "", err
			}
			return model.StateMainMenu, nil
		}
		log.WithField("user_id", ev.User.ID).WithError(err).Error("Exercise generation failed")
		if err := ev.Responder.Reply("I couldn't build a session right now. Please try again in a minute.", nil); err != nil {
			return "", err
		}
		return model.StateMainMenu, nil
	}

	session, err := s.sessionSvc.Create(ev.Ctx, dto.CreateSessionData{
		UserID:    ev.User.ID,
		TopicID:   topicID,
		RuleName:  ruleName,
		Level:     level,
		Exercises: exercises,
	})
	if err != nil {
		return "", err
	}

	if err := s.limitSvc.RecordUsage(ev.Ctx, ev.User.ID, dto.RequestPractice); err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Error("Failed to record practice usage")
	}

	return "", s.sendExercise(ev, session)
}

func (s *GrammarPracticeState) sendExercise(ev *Event, session *dto.PracticeSessionData) error {
	exercise := CurrentExercise(session)
	if exercise == nil {
		return nil
	}

	header := fmt.Sprintf("Exercise %d of %d\n\n%s",
		session.CurrentExerciseIndex+1, len(session.Exercises), exercise.Question)

	opts := &dto.ReplyOptions{Markup: &dto.ReplyMarkup{}}
	if exercise.Type == dto.ExerciseSingleChoice {
		var rows [][]dto.InlineButton
		for i, option := range exercise.Options {
			rows = append(rows, []dto.InlineButton{{
				Text: option,
				Data: shared.AnswerCallback(exercise.ID, i),
			}})
		}
		rows = append(rows, []dto.InlineButton{
			{Text: shared.ButtonSkip, Data: shared.CallbackPracticeSkip},
			{Text: shared.ButtonFinish, Data: shared.CallbackPracticeFinish},
		})
		opts.Markup.Inline = rows
	} else {
		header += "\n\nType your answer:"
		opts.Markup.Keyboard = [][]string{
			{shared.ButtonSkip, shared.ButtonFinish},
			{shared.ButtonBackToMenu},
		}
	}
	return ev.Responder.Reply(header, opts)
}

func (s *GrammarPracticeState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback != nil {
		return s.handleCallback(ev)
	}

	switch ev.Text {
	case shared.ButtonBackToMenu:
		return model.StateMainMenu, nil
	case shared.ButtonSkip:
		return s.skipCurrent(ev)
	case shared.ButtonFinish:
		// result screen counts whatever was answered so far
		return model.StatePracticeResult, nil
	}
	if ev.Text != "" {
		return s.handleTextAnswer(ev)
	}
	return "", nil
}

// skipCurrent grades the current exercise as an empty, incorrect answer
// and advances the cursor.
func (s *GrammarPracticeState) skipCurrent(ev *Event) (model.UserState, error) {
	session, err := s.sessionSvc.Get(ev.Ctx, ev.User.ID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return s.expiredSession(ev)
		}
		return "", err
	}

	current := CurrentExercise(session)
	if current == nil {
		return model.StatePracticeResult, nil
	}
	return s.submit(ev, dto.SessionAnswer{ExerciseID: current.ID, UserAnswer: ""})
}

func (s *GrammarPracticeState) handleCallback(ev *Event) (model.UserState, error) {
	data := ev.Callback.Data
	if err := ev.Responder.AnswerCallback(ev.Callback.ID); err != nil {
		log.WithError(err).Debug("Callback ack failed")
	}

	switch data {
	case shared.CallbackPracticeSkip:
		return s.skipCurrent(ev)
	case shared.CallbackPracticeFinish:
		return model.StatePracticeResult, nil
	}

	if !strings.HasPrefix(data, shared.CallbackAnswerPrefix) {
		return "", nil
	}
	exerciseID, optionIndex, err := shared.ParseAnswerCallback(data)
	if err != nil {
		return "", nil
	}

	session, err := s.sessionSvc.Get(ev.Ctx, ev.User.ID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return s.expiredSession(ev)
		}
		return "", err
	}

	current := CurrentExercise(session)
	if current == nil || current.ID != exerciseID {
		// tap on an earlier exercise's keyboard
		return "", ev.Responder.Reply(staleAnswerNotice, nil)
	}
	if optionIndex >= len(current.Options) {
		return "", nil
	}
	return s.submit(ev, dto.SessionAnswer{ExerciseID: exerciseID, UserAnswer: current.Options[optionIndex]})
}

func (s *GrammarPracticeState) handleTextAnswer(ev *Event) (model.UserState, error) {
	session, err := s.sessionSvc.Get(ev.Ctx, ev.User.ID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return s.expiredSession(ev)
		}
		return "", err
	}

	current := CurrentExercise(session)
	if current == nil {
		return model.StatePracticeResult, nil
	}
	if current.Type != dto.ExerciseFillInBlank {
		return "", ev.Responder.Reply("Use the answer buttons for this one. 🙂", nil)
	}
	return s.submit(ev, dto.SessionAnswer{ExerciseID: current.ID, UserAnswer: ev.Text})
}

func (s *GrammarPracticeState) submit(ev *Event, answer dto.SessionAnswer) (model.UserState, error) {
	session, graded, err := s.sessionSvc.SubmitAnswer(ev.Ctx, ev.User.ID, answer)
	if err != nil {
		switch {
		case errors.Is(err, ErrExerciseMismatch), errors.Is(err, ErrAlreadyAnswered):
			return "", ev.Responder.Reply(staleAnswerNotice, nil)
		case errors.Is(err, ErrNoActiveSession), errors.Is(err, ErrSessionCompleted):
			return s.expiredSession(ev)
		}
		return "", err
	}

	feedback := answerFeedback(graded)
	if err := ev.Responder.Reply(feedback, nil); err != nil {
		return "", err
	}

	if session.CompletedAt != nil {
		return model.StatePracticeResult, nil
	}
	return "", s.sendExercise(ev, session)
}

func answerFeedback(exercise *dto.Exercise) string {
	if exercise.IsCorrect != nil && *exercise.IsCorrect {
		if exercise.Explanation != "" {
			return "✅ Correct!\n" + exercise.Explanation
		}
		return "✅ Correct!"
	}

	correct := exercise.CorrectAnswer
	// show only the first accepted variant
	if i := strings.Index(correct, "|"); i > 0 {
		correct = correct[:i]
	}
	feedback := fmt.Sprintf("❌ Not quite. The answer is: %s", correct)
	if exercise.Explanation != "" {
		feedback += "\n" + exercise.Explanation
	}
	return feedback
}

func (s *GrammarPracticeState) expiredSession(ev *Event) (model.UserState, error) {
	if err := ev.Responder.Reply("That session has expired. Let's start fresh!", nil); err != nil {
		return "", err
	}
	return model.StateMainMenu, nil
}

func (s *GrammarPracticeState) OnExit(ev *Event) error {
	return nil
}
