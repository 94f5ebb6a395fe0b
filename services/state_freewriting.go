package services

import (
	"fmt"
	"strings"

	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	"github.com/lingokit/grambot/shared"
	log "github.com/sirupsen/logrus"
)

// FreeWritingState takes a free-form text and returns tutor feedback.
type FreeWritingState struct {
	exerciseSvc *ExerciseService
	limitSvc    *LimitService
	userSvc     *UserService
}

const minWritingLength = 20

func (s *FreeWritingState) State() model.UserState {
	return model.StateFreeWriting
}

func (s *FreeWritingState) OnEnter(ev *Event) (model.UserState, error) {
	opts := &dto.ReplyOptions{Markup: &dto.ReplyMarkup{Keyboard: [][]string{{shared.ButtonBackToMenu}}}}
	return "", ev.Responder.Reply(
		"📝 Write me a few sentences in English — about your day, a plan, anything. I'll correct them and explain the mistakes.",
		opts)
}

func (s *FreeWritingState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback != nil {
		return "", ev.Responder.AnswerCallback(ev.Callback.ID)
	}
	if ev.Text == shared.ButtonBackToMenu {
		return model.StateMainMenu, nil
	}
	if ev.Text == "" {
		return "", nil
	}
	if len(strings.TrimSpace(ev.Text)) < minWritingLength {
		return "", ev.Responder.Reply("Give me a bit more to work with — a few full sentences. 🙂", nil)
	}

	check, err := s.limitSvc.CheckLimit(ev.Ctx, ev.User.ID, dto.RequestFreeWriting)
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
	if profile, err := s.userSvc.GetProfile(ev.User.ID); err == nil && profile != nil {
		level = profile.Level
	}

	if err := ev.Responder.Reply("Reading it now…", nil); err != nil {
		return "", err
	}

	payload, err := s.exerciseSvc.EvaluateWriting(ev.Ctx, ev.Text, level)
	if err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Error("Writing evaluation failed")
		return "", ev.Responder.Reply("I couldn't review that right now. Please send it again in a minute.", nil)
	}

	if err := s.limitSvc.RecordUsage(ev.Ctx, ev.User.ID, dto.RequestFreeWriting); err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Error("Failed to record writing usage")
	}

	if err := ev.Responder.Reply(formatWritingFeedback(payload), nil); err != nil {
		return "", err
	}
	return model.StateWritingFeedback, nil
}

func formatWritingFeedback(payload *dto.WritingFeedbackPayload) string {
	var b strings.Builder
	b.WriteString("✏️ Corrected version:\n")
	b.WriteString(payload.Corrected)
	b.WriteString("\n")

	if len(payload.GrammarNotes) > 0 {
		b.WriteString("\nGrammar:\n")
		for _, note := range payload.GrammarNotes {
			fmt.Fprintf(&b, "· %s\n", note)
		}
	}
	if len(payload.VocabularyNotes) > 0 {
		b.WriteString("\nVocabulary:\n")
		for _, note := range payload.VocabularyNotes {
			fmt.Fprintf(&b, "· %s\n", note)
		}
	}

	b.WriteString("\n")
	b.WriteString(payload.Overall)
	return b.String()
}

func (s *FreeWritingState) OnExit(ev *Event) error {
	return nil
}
