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

// GrammarTheoryState explains grammar rules. Entering the state picks
// the next unseen (or weakest) topic and generates its explanation right
// away; browsing the catalog by category stays available as an extra
// affordance.
type GrammarTheoryState struct {
	grammarSvc  *GrammarService
	exerciseSvc *ExerciseService
	limitSvc    *LimitService
	userSvc     *UserService
}

func (s *GrammarTheoryState) State() model.UserState {
	return model.StateGrammarTheory
}

func (s *GrammarTheoryState) OnEnter(ev *Event) (model.UserState, error) {
	return s.sendNextTheory(ev, "")
}

// sendNextTheory picks a topic for the user and explains it, skipping
// excludeID so "show another" moves on to a different rule.
func (s *GrammarTheoryState) sendNextTheory(ev *Event, excludeID string) (model.UserState, error) {
	topic, err := s.grammarSvc.NextTheoryTopic(ev.User.ID, excludeID)
	if err != nil {
		if errors.Is(err, ErrNoTopics) {
			if err := ev.Responder.Reply("The topic catalog is empty right now. Please try again later.", nil); err != nil {
				return "", err
			}
			return model.StateMainMenu, nil
		}
		return "", err
	}
	return s.sendTheory(ev, topic.ID)
}

func (s *GrammarTheoryState) sendCategories(ev *Event) error {
	categories, err := s.grammarSvc.Categories()
	if err != nil {
		return err
	}

	var rows [][]dto.InlineButton
	for _, category := range categories {
		rows = append(rows, []dto.InlineButton{{
			Text: category.Name,
			Data: shared.CallbackCategoryPrefix + category.ID,
		}})
	}
	rows = append(rows, []dto.InlineButton{{Text: shared.ButtonBackToMenu, Data: shared.CallbackBackToMenu}})
	opts := &dto.ReplyOptions{Markup: &dto.ReplyMarkup{Inline: rows}}
	return ev.Responder.Reply("📚 Pick a grammar area:", opts)
}

func (s *GrammarTheoryState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback == nil {
		if ev.Text == shared.ButtonBackToMenu {
			return model.StateMainMenu, nil
		}
		return "", ev.Responder.Reply("Use the buttons to browse topics, or go back to the menu.", nil)
	}

	data := ev.Callback.Data
	if err := ev.Responder.AnswerCallback(ev.Callback.ID); err != nil {
		log.WithError(err).Debug("Callback ack failed")
	}

	switch {
	case data == shared.CallbackBackToMenu:
		return model.StateMainMenu, nil

	case data == shared.CallbackTheoryBrowse:
		return "", s.sendCategories(ev)

	case strings.HasPrefix(data, shared.CallbackCategoryPrefix):
		return "", s.sendTopics(ev, strings.TrimPrefix(data, shared.CallbackCategoryPrefix))

	case strings.HasPrefix(data, shared.CallbackTheoryNext):
		return s.sendNextTheory(ev, strings.TrimPrefix(data, shared.CallbackTheoryNext))

	case strings.HasPrefix(data, shared.CallbackTheoryPrefix):
		return s.sendTheory(ev, strings.TrimPrefix(data, shared.CallbackTheoryPrefix))

	case strings.HasPrefix(data, shared.CallbackPracticePrefix):
		topicID, ruleName, err := shared.ParsePracticeCallback(data)
		if err != nil {
			return "", nil
		}
		ev.TopicID = topicID
		ev.RuleName = ruleName
		return model.StateGrammarPractice, nil
	}
	return "", nil
}

func (s *GrammarTheoryState) sendTopics(ev *Event, categoryID string) error {
	topics, err := s.grammarSvc.TopicsByCategory(categoryID)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return ev.Responder.Reply("Nothing in this area yet. Try another one!", nil)
	}

	var rows [][]dto.InlineButton
	for _, topic := range topics {
		rows = append(rows, []dto.InlineButton{{
			Text: fmt.Sprintf("%s · %s", topic.CefrLevel, topic.Name),
			Data: shared.CallbackTheoryPrefix + topic.ID,
		}})
	}
	opts := &dto.ReplyOptions{Markup: &dto.ReplyMarkup{Inline: rows}}
	return ev.Responder.Reply("Pick a topic:", opts)
}

func (s *GrammarTheoryState) sendTheory(ev *Event, topicID string) (model.UserState, error) {
	check, err := s.limitSvc.CheckLimit(ev.Ctx, ev.User.ID, dto.RequestTheory)
	if err != nil {
		return "", err
	}
	if !check.Allowed {
		if err := ev.Responder.Reply(limitMessage(check.Reason), nil); err != nil {
			return "", err
		}
		return model.StateMainMenu, nil
	}

	topic, err := s.grammarSvc.Topic(topicID)
	if err != nil {
		return "", err
	}

	level := "B1"
	var interests []string
	if profile, err := s.userSvc.GetProfile(ev.User.ID); err == nil && profile != nil {
		level = profile.Level
		interests = profile.Interests
	}

	if err := ev.Responder.Reply("One moment, preparing the explanation…", nil); err != nil {
		return "", err
	}

	payload, err := s.exerciseSvc.GenerateTheory(ev.Ctx, topic.ID, topic.Name, level, interests)
	if err != nil {
		log.WithFields(log.Fields{"user_id": ev.User.ID, "topic_id": topicID}).WithError(err).Error("Theory generation failed")
		return "", ev.Responder.Reply("I couldn't prepare that topic right now. Please try again in a minute.", nil)
	}

	// quota burns only after a successful generation
	if err := s.limitSvc.RecordUsage(ev.Ctx, ev.User.ID, dto.RequestTheory); err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Error("Failed to record theory usage")
	}
	// the generator may narrow onto a sub-rule of the catalog topic;
	// register it so progress rows resolve to a named topic
	if payload.TopicID != topic.ID {
		taught := &model.GrammarTopic{
			ID:         payload.TopicID,
			CategoryID: topic.CategoryID,
			Name:       payload.RuleName,
			CefrLevel:  payload.Level,
		}
		if err := s.grammarSvc.UpsertTopic(taught); err != nil {
			log.WithField("topic_id", payload.TopicID).WithError(err).Error("Failed to upsert generated topic")
		}
	}
	if err := s.grammarSvc.MarkExposed(ev.User.ID, payload.TopicID); err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Error("Failed to mark topic exposed")
	}

	opts := &dto.ReplyOptions{Markup: &dto.ReplyMarkup{Inline: [][]dto.InlineButton{
		{{Text: "✍️ Practice this topic", Data: shared.PracticeCallback(payload.TopicID, payload.RuleName)}},
		{{Text: "🔄 Show another", Data: shared.CallbackTheoryNext + topic.ID}},
		{{Text: "📂 Browse topics", Data: shared.CallbackTheoryBrowse}},
		{{Text: shared.ButtonBackToMenu, Data: shared.CallbackBackToMenu}},
	}}}
	return "", ev.Responder.Reply(fmt.Sprintf("📖 %s\n\n%s", payload.RuleName, payload.Theory), opts)
}

func limitMessage(reason dto.LimitReason) string {
	switch reason {
	case dto.TheoryLimitReached:
		return "You've used today's theory request. Practicing works even better: try ✍️ Practice!"
	default:
		return "That's all your requests for today. Come back tomorrow — the counter resets at midnight UTC. 🌙"
	}
}

func (s *GrammarTheoryState) OnExit(ev *Event) error {
	return nil
}
