package services

import (
	"context"
	"fmt"

	appContext "github.com/alphabatem/common/context"
	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	log "github.com/sirupsen/logrus"
)

// CallbackEvent is an inline keyboard tap.
type CallbackEvent struct {
	ID   string
	Data string
}

// Event is one incoming update, resolved to a user and ready for the
// user's current state handler.
type Event struct {
	Ctx       context.Context
	User      *model.User
	Text      string
	Callback  *CallbackEvent
	Responder dto.Responder

	// Topic selected earlier in the flow, handed from the theory state to
	// the practice state across a transition.
	TopicID  string
	RuleName string
}

// StateHandler implements one conversation state. OnEvent and OnEnter may
// name a follow-up state; empty string means stay.
type StateHandler interface {
	State() model.UserState
	OnEnter(ev *Event) (model.UserState, error)
	OnEvent(ev *Event) (model.UserState, error)
	OnExit(ev *Event) error
}

type stateStore interface {
	SetState(userID int64, state model.UserState) error
}

// StateMachineService routes events to the handler of the user's current
// state and runs transitions: exit hook, persisted state write, then the
// next state's enter hook. The state write is the commit point; when it
// fails the user stays where they were.
type StateMachineService struct {
	appContext.DefaultService

	handlers map[model.UserState]StateHandler
	states   stateStore
}

const STATE_MACHINE_SVC = "state_machine_svc"

// Transitions chained through OnEnter are capped to catch handler cycles.
const maxTransitionHops = 4

func (svc StateMachineService) Id() string {
	return STATE_MACHINE_SVC
}

func (svc *StateMachineService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StateMachineService) Start() error {
	userSvc := svc.Service(USER_SVC).(*UserService)
	grammarSvc := svc.Service(GRAMMAR_SVC).(*GrammarService)
	sessionSvc := svc.Service(PRACTICE_SESSION_SVC).(*PracticeSessionService)
	limitSvc := svc.Service(LIMIT_SVC).(*LimitService)
	exerciseSvc := svc.Service(EXERCISE_SVC).(*ExerciseService)
	redisSvc := svc.Service(REDIS_SVC).(*RedisService)

	svc.states = userSvc
	svc.register(
		&OnboardingState{userSvc: userSvc, exerciseSvc: exerciseSvc, redisSvc: redisSvc},
		&MainMenuState{},
		&GrammarTheoryState{grammarSvc: grammarSvc, exerciseSvc: exerciseSvc, limitSvc: limitSvc, userSvc: userSvc},
		&GrammarPracticeState{grammarSvc: grammarSvc, exerciseSvc: exerciseSvc, limitSvc: limitSvc, sessionSvc: sessionSvc, userSvc: userSvc},
		&PracticeResultState{grammarSvc: grammarSvc, sessionSvc: sessionSvc},
		&FreeWritingState{exerciseSvc: exerciseSvc, limitSvc: limitSvc, userSvc: userSvc},
		&WritingFeedbackState{},
		&StatsState{grammarSvc: grammarSvc, limitSvc: limitSvc},
	)
	return nil
}

func (svc *StateMachineService) register(handlers ...StateHandler) {
	if svc.handlers == nil {
		svc.handlers = make(map[model.UserState]StateHandler, len(handlers))
	}
	for _, h := range handlers {
		svc.handlers[h.State()] = h
	}
}

// ChangeState bypasses the current state's event handling and moves the
// user straight to the given state, running the full transition
// protocol. Used by the /start entry command.
func (svc *StateMachineService) ChangeState(ev *Event, next model.UserState) error {
	return svc.transition(ev, next)
}

// Dispatch runs one event through the user's current state.
func (svc *StateMachineService) Dispatch(ev *Event) error {
	current := ev.User.State
	handler, ok := svc.handlers[current]
	if !ok {
		// a persisted state with no registered handler is a
		// configuration error, not a user mistake
		log.WithFields(log.Fields{
			"user_id": ev.User.ID,
			"state":   current,
		}).Error("No handler registered for state, recovering to main menu")
		if err := ev.Responder.Reply("I lost track of where we were. Let's restart from the menu: /start", nil); err != nil {
			return err
		}
		return svc.transition(ev, model.StateMainMenu)
	}

	next, err := handler.OnEvent(ev)
	if err != nil {
		return err
	}
	if next == "" || next == current {
		return nil
	}
	return svc.transition(ev, next)
}

func (svc *StateMachineService) transition(ev *Event, next model.UserState) error {
	for hops := 0; ; hops++ {
		if hops >= maxTransitionHops {
			return fmt.Errorf("transition loop from state %s", ev.User.State)
		}

		current := ev.User.State
		if currentHandler, ok := svc.handlers[current]; ok {
			if err := currentHandler.OnExit(ev); err != nil {
				log.WithFields(log.Fields{
					"user_id": ev.User.ID,
					"state":   current,
				}).WithError(err).Warn("State exit hook failed")
			}
		}

		nextHandler, ok := svc.handlers[next]
		if !ok {
			return fmt.Errorf("no handler for state %s", next)
		}

		if err := svc.states.SetState(ev.User.ID, next); err != nil {
			return fmt.Errorf("persist state %s: %w", next, err)
		}
		ev.User.State = next

		log.WithFields(log.Fields{
			"user_id": ev.User.ID,
			"from":    current,
			"to":      next,
		}).Debug("State transition")

		chained, err := nextHandler.OnEnter(ev)
		if err != nil {
			return err
		}
		if chained == "" || chained == next {
			return nil
		}
		next = chained
	}
}
