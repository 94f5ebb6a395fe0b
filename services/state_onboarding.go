package services

import (
	"fmt"
	"time"

	"github.com/lingokit/grambot/model"
	log "github.com/sirupsen/logrus"
)

// OnboardingState interviews a new user and distills the answers into a
// profile. Pending answers sit in Redis so a restart mid-interview does
// not lose them.
type OnboardingState struct {
	userSvc     *UserService
	exerciseSvc *ExerciseService
	redisSvc    *RedisService
}

var onboardingQuestions = []string{
	"Hi! I'm your English grammar coach. 👋\n\nFirst, tell me a bit about yourself and your experience with English.",
	"Why are you learning English? Work, travel, exams, or something else?",
	"And what are you into? A few hobbies or topics you enjoy — I'll use them in your exercises.",
}

const onboardingTTL = 7 * 24 * time.Hour

func onboardingKey(userID int64) string {
	return fmt.Sprintf("onboarding:%d", userID)
}

func (s *OnboardingState) State() model.UserState {
	return model.StateOnboarding
}

func (s *OnboardingState) OnEnter(ev *Event) (model.UserState, error) {
	// re-entry restarts the interview from scratch
	if err := s.redisSvc.Delete(ev.Ctx, onboardingKey(ev.User.ID)); err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Warn("Failed to clear onboarding answers")
	}
	return "", ev.Responder.Reply(onboardingQuestions[0], nil)
}

func (s *OnboardingState) OnEvent(ev *Event) (model.UserState, error) {
	if ev.Callback != nil {
		return "", ev.Responder.AnswerCallback(ev.Callback.ID)
	}
	if ev.Text == "" {
		return "", nil
	}
	var answers []string
	if err := s.redisSvc.GetJSON(ev.Ctx, onboardingKey(ev.User.ID), &answers); err != nil {
		return "", err
	}
	answers = append(answers, ev.Text)

	if len(answers) < len(onboardingQuestions) {
		if err := s.redisSvc.Set(ev.Ctx, onboardingKey(ev.User.ID), answers, onboardingTTL); err != nil {
			return "", err
		}
		return "", ev.Responder.Reply(onboardingQuestions[len(answers)], nil)
	}

	if err := ev.Responder.Reply("Great, give me a second to put your profile together…", nil); err != nil {
		return "", err
	}

	payload, err := s.exerciseSvc.AnalyzeProfile(ev.Ctx, answers)
	if err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Error("Profile analysis failed")
		// keep the answers, drop the last one so the user can retry it
		answers = answers[:len(answers)-1]
		if err := s.redisSvc.Set(ev.Ctx, onboardingKey(ev.User.ID), answers, onboardingTTL); err != nil {
			return "", err
		}
		return "", ev.Responder.Reply("Something went wrong on my side. Could you send that last answer again?", nil)
	}

	profile := &Profile{
		Level:     payload.Level,
		Goals:     payload.Goals,
		Interests: payload.Interests,
		Summary:   payload.Summary,
	}
	if err := s.userSvc.SaveProfile(ev.User.ID, profile); err != nil {
		return "", err
	}
	if err := s.redisSvc.Delete(ev.Ctx, onboardingKey(ev.User.ID)); err != nil {
		log.WithField("user_id", ev.User.ID).WithError(err).Warn("Failed to clear onboarding answers")
	}

	text := fmt.Sprintf("Done! Your level looks like %s.\n%s\n\nLet's get started.", payload.Level, payload.Summary)
	if err := ev.Responder.Reply(text, nil); err != nil {
		return "", err
	}
	return model.StateMainMenu, nil
}

func (s *OnboardingState) OnExit(ev *Event) error {
	return nil
}
