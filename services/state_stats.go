package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	"github.com/lingokit/grambot/shared"
)

// StatsState shows topic progress and today's remaining quota.
type StatsState struct {
	grammarSvc *GrammarService
	limitSvc   *LimitService
}

func (s *StatsState) State() model.UserState {
	return model.StateStats
}

func (s *StatsState) OnEnter(ev *Event) (model.UserState, error) {
	progress, err := s.grammarSvc.UserProgress(ev.User.ID)
	if err != nil {
		return "", err
	}
	usage, err := s.limitSvc.GetUsage(ev.Ctx, ev.User.ID)
	if err != nil {
		return "", err
	}

	opts := &dto.ReplyOptions{
		Markup: &dto.ReplyMarkup{Keyboard: [][]string{{shared.ButtonBackToMenu}}},
	}
	return "", ev.Responder.Reply(formatStats(progress, *usage, s.limitSvc.Limits()), opts)
}

func formatStats(progress []model.UserTopicProgress, usage dto.UsageStats, limits dto.DailyLimits) string {
	var b strings.Builder
	b.WriteString("📊 Your progress\n\n")

	var practiced []model.UserTopicProgress
	exposedOnly := 0
	for _, p := range progress {
		if p.PracticeCount > 0 {
			practiced = append(practiced, p)
		} else if p.Exposed {
			exposedOnly++
		}
	}

	if len(practiced) == 0 {
		b.WriteString("You haven't practiced any topics yet. Pick one from 📚 Grammar to get going!\n")
	} else {
		sort.SliceStable(practiced, func(i, j int) bool {
			return practiced[i].Mastery > practiced[j].Mastery
		})
		for _, p := range practiced {
			fmt.Fprintf(&b, "%s %s — %d%% (%d/%d correct)\n",
				masteryBadge(p.Mastery), p.TopicID, p.Mastery, p.CorrectCount, p.TotalCount)
		}
	}
	if exposedOnly > 0 {
		fmt.Fprintf(&b, "\nTheory seen but not practiced yet: %d topic(s).\n", exposedOnly)
	}

	remaining := limits.Total - usage.TotalUsed
	if remaining < 0 {
		remaining = 0
	}
	fmt.Fprintf(&b, "\nToday: %d of %d requests left.", remaining, limits.Total)
	return b.String()
}

func masteryBadge(mastery int) string {
	switch {
	case mastery >= masteryThreshold:
		return "🟢"
	case mastery >= 40:
		return "🟡"
	default:
		return "🔴"
	}
}

func (s *StatsState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback != nil {
		return "", ev.Responder.AnswerCallback(ev.Callback.ID)
	}
	if ev.Text == shared.ButtonBackToMenu {
		return model.StateMainMenu, nil
	}
	return model.StateMainMenu, nil
}

func (s *StatsState) OnExit(ev *Event) error {
	return nil
}
