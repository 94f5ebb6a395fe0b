package services

import (
	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	"github.com/lingokit/grambot/shared"
)

// WritingFeedbackState is the landing spot after a writing review.
type WritingFeedbackState struct{}

const buttonWriteMore = "✍️ Write another"

func (s *WritingFeedbackState) State() model.UserState {
	return model.StateWritingFeedback
}

func (s *WritingFeedbackState) OnEnter(ev *Event) (model.UserState, error) {
	opts := &dto.ReplyOptions{Markup: &dto.ReplyMarkup{
		Keyboard: [][]string{{buttonWriteMore}, {shared.ButtonBackToMenu}},
	}}
	return "", ev.Responder.Reply("Want to try another one?", opts)
}

func (s *WritingFeedbackState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback != nil {
		return "", ev.Responder.AnswerCallback(ev.Callback.ID)
	}
	switch ev.Text {
	case buttonWriteMore:
		return model.StateFreeWriting, nil
	case shared.ButtonBackToMenu:
		return model.StateMainMenu, nil
	}
	return model.StateMainMenu, nil
}

func (s *WritingFeedbackState) OnExit(ev *Event) error {
	return nil
}
