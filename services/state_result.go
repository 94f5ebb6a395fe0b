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

// PracticeResultState closes a session: per-topic results are folded into
// lifetime progress and shown to the user. Unanswered exercises count as
// incorrect so bailing out early cannot inflate mastery.
type PracticeResultState struct {
	grammarSvc *GrammarService
	sessionSvc *PracticeSessionService
}

type topicStat struct {
	Correct int
	Total   int
}

func (s *PracticeResultState) State() model.UserState {
	return model.StatePracticeResult
}

func (s *PracticeResultState) OnEnter(ev *Event) (model.UserState, error) {
	session, err := s.sessionSvc.Complete(ev.Ctx, ev.User.ID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return model.StateMainMenu, nil
		}
		return "", err
	}

	stats := calculateTopicStats(session)
	for topicID, stat := range stats {
		if err := s.grammarSvc.UpdateProgress(ev.User.ID, topicID, stat.Correct, stat.Total); err != nil {
			log.WithFields(log.Fields{
				"user_id":  ev.User.ID,
				"topic_id": topicID,
			}).WithError(err).Error("Failed to update topic progress")
		}
	}

	ev.TopicID = ""
	ev.RuleName = ""
	if session.TopicID != shared.ReviewMixedTopic {
		ev.TopicID = session.TopicID
		ev.RuleName = session.RuleName
	}

	opts := &dto.ReplyOptions{Markup: &dto.ReplyMarkup{Inline: [][]dto.InlineButton{
		{{Text: "🔁 Practice again", Data: shared.CallbackPracticeAgain}},
		{{Text: shared.ButtonBackToMenu, Data: shared.CallbackBackToMenu}},
	}}}
	return "", ev.Responder.Reply(formatSessionResult(session, stats), opts)
}

// calculateTopicStats attributes every exercise of the session to its
// topic. Answered-and-correct counts as correct; everything else,
// including unanswered, counts against the topic.
func calculateTopicStats(session *dto.PracticeSessionData) map[string]topicStat {
	stats := make(map[string]topicStat)
	for _, exercise := range session.Exercises {
		stat := stats[exercise.TopicID]
		stat.Total++
		if exercise.IsCorrect != nil && *exercise.IsCorrect {
			stat.Correct++
		}
		stats[exercise.TopicID] = stat
	}
	return stats
}

func formatSessionResult(session *dto.PracticeSessionData, stats map[string]topicStat) string {
	size := len(session.Exercises)

	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Session finished: %d of %d correct.\n", session.Correct, size)

	answered := 0
	for _, exercise := range session.Exercises {
		if exercise.UserAnswer != nil {
			answered++
		}
	}
	if answered < size {
		fmt.Fprintf(&b, "(%d left unanswered — they count as mistakes.)\n", size-answered)
	}

	if len(stats) > 1 {
		b.WriteString("\nBy topic:\n")
		for topicID, stat := range stats {
			fmt.Fprintf(&b, "· %s: %d/%d\n", topicID, stat.Correct, stat.Total)
		}
	}

	switch {
	case size > 0 && session.Correct == size:
		b.WriteString("\nPerfect run! 🎉")
	case size > 0 && session.Correct*2 >= size:
		b.WriteString("\nNice work — keep it up!")
	default:
		b.WriteString("\nTricky one. Another round will help it stick.")
	}
	return b.String()
}

func (s *PracticeResultState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback != nil {
		data := ev.Callback.Data
		if err := ev.Responder.AnswerCallback(ev.Callback.ID); err != nil {
			log.WithError(err).Debug("Callback ack failed")
		}
		switch data {
		case shared.CallbackPracticeAgain:
			// the completed session is retained for a while; reuse its topic
			if session, err := s.sessionSvc.Get(ev.Ctx, ev.User.ID); err == nil && session.TopicID != shared.ReviewMixedTopic {
				ev.TopicID = session.TopicID
				ev.RuleName = session.RuleName
			}
			return model.StateGrammarPractice, nil
		case shared.CallbackBackToMenu:
			return model.StateMainMenu, nil
		}
		return "", nil
	}

	if ev.Text == shared.ButtonBackToMenu {
		return model.StateMainMenu, nil
	}
	return model.StateMainMenu, nil
}

func (s *PracticeResultState) OnExit(ev *Event) error {
	return nil
}
