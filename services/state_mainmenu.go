package services

import (
	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	"github.com/lingokit/grambot/shared"
)

// MainMenuState is the hub every flow returns to.
type MainMenuState struct{}

func mainMenuMarkup() *dto.ReplyOptions {
	return &dto.ReplyOptions{
		Markup: &dto.ReplyMarkup{
			Keyboard: [][]string{
				{shared.ButtonGrammar, shared.ButtonPractice},
				{shared.ButtonFreeWriting, shared.ButtonStats},
			},
		},
	}
}

func (s *MainMenuState) State() model.UserState {
	return model.StateMainMenu
}

func (s *MainMenuState) OnEnter(ev *Event) (model.UserState, error) {
	return "", ev.Responder.Reply("What would you like to do?", mainMenuMarkup())
}

func (s *MainMenuState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback != nil {
		// stale inline keyboard from a previous flow
		return "", ev.Responder.AnswerCallback(ev.Callback.ID)
	}

	switch ev.Text {
	case shared.ButtonGrammar:
		return model.StateGrammarTheory, nil
	case shared.ButtonPractice:
		return model.StateGrammarPractice, nil
	case shared.ButtonFreeWriting:
		return model.StateFreeWriting, nil
	case shared.ButtonStats:
		return model.StateStats, nil
	default:
		return "", ev.Responder.Reply("Please pick an option from the menu below. 👇", mainMenuMarkup())
	}
}

func (s *MainMenuState) OnExit(ev *Event) error {
	return nil
}
