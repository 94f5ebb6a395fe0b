package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStateStore struct {
	writes []model.UserState
	err    error
}

func (s *stubStateStore) SetState(userID int64, state model.UserState) error {
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, state)
	return nil
}

type stubResponder struct {
	replies []string
	acks    []string
}

func (r *stubResponder) Reply(text string, opts *dto.ReplyOptions) error {
	r.replies = append(r.replies, text)
	return nil
}

func (r *stubResponder) AnswerCallback(callbackID string) error {
	r.acks = append(r.acks, callbackID)
	return nil
}

type stubHandler struct {
	state     model.UserState
	eventNext model.UserState
	enterNext model.UserState
	enterErr  error

	entered int
	exited  int
	events  int
}

func (h *stubHandler) State() model.UserState { return h.state }

func (h *stubHandler) OnEnter(ev *Event) (model.UserState, error) {
	h.entered++
	return h.enterNext, h.enterErr
}

func (h *stubHandler) OnEvent(ev *Event) (model.UserState, error) {
	h.events++
	return h.eventNext, nil
}

func (h *stubHandler) OnExit(ev *Event) error {
	h.exited++
	return nil
}

func testEvent(state model.UserState) (*Event, *stubResponder) {
	responder := &stubResponder{}
	return &Event{
		Ctx:       context.Background(),
		User:      &model.User{ID: 1, State: state},
		Responder: responder,
	}, responder
}

func TestDispatchStaysWithoutTransition(t *testing.T) {
	store := &stubStateStore{}
	menu := &stubHandler{state: model.StateMainMenu}
	svc := &StateMachineService{states: store}
	svc.register(menu)

	ev, _ := testEvent(model.StateMainMenu)
	require.NoError(t, svc.Dispatch(ev))

	assert.Equal(t, 1, menu.events)
	assert.Zero(t, menu.exited)
	assert.Empty(t, store.writes)
}

func TestDispatchRunsTransitionProtocol(t *testing.T) {
	store := &stubStateStore{}
	menu := &stubHandler{state: model.StateMainMenu, eventNext: model.StateStats}
	stats := &stubHandler{state: model.StateStats}
	svc := &StateMachineService{states: store}
	svc.register(menu, stats)

	ev, _ := testEvent(model.StateMainMenu)
	require.NoError(t, svc.Dispatch(ev))

	assert.Equal(t, 1, menu.exited)
	assert.Equal(t, []model.UserState{model.StateStats}, store.writes)
	assert.Equal(t, model.StateStats, ev.User.State)
	assert.Equal(t, 1, stats.entered)
}

func TestDispatchAbortsWhenPersistFails(t *testing.T) {
	store := &stubStateStore{err: errors.New("db down")}
	menu := &stubHandler{state: model.StateMainMenu, eventNext: model.StateStats}
	stats := &stubHandler{state: model.StateStats}
	svc := &StateMachineService{states: store}
	svc.register(menu, stats)

	ev, _ := testEvent(model.StateMainMenu)
	err := svc.Dispatch(ev)
	require.Error(t, err)

	// user stays where they were, target state never entered
	assert.Equal(t, model.StateMainMenu, ev.User.State)
	assert.Zero(t, stats.entered)
}

func TestDispatchChainsOnEnterTransitions(t *testing.T) {
	store := &stubStateStore{}
	menu := &stubHandler{state: model.StateMainMenu, eventNext: model.StateGrammarPractice}
	// practice immediately bounces back, as it does when the quota is spent
	practice := &stubHandler{state: model.StateGrammarPractice, enterNext: model.StateMainMenu}
	svc := &StateMachineService{states: store}
	svc.register(menu, practice)

	ev, _ := testEvent(model.StateMainMenu)
	require.NoError(t, svc.Dispatch(ev))

	assert.Equal(t, []model.UserState{model.StateGrammarPractice, model.StateMainMenu}, store.writes)
	assert.Equal(t, model.StateMainMenu, ev.User.State)
	assert.Equal(t, 1, practice.entered)
	assert.Equal(t, 1, practice.exited)
	assert.Equal(t, 1, menu.entered)
}

func TestDispatchBreaksTransitionCycles(t *testing.T) {
	store := &stubStateStore{}
	a := &stubHandler{state: model.StateMainMenu, eventNext: model.StateStats, enterNext: model.StateStats}
	b := &stubHandler{state: model.StateStats, enterNext: model.StateMainMenu}
	svc := &StateMachineService{states: store}
	svc.register(a, b)

	ev, _ := testEvent(model.StateMainMenu)
	err := svc.Dispatch(ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition loop")
}

func TestDispatchRecoversUnknownState(t *testing.T) {
	store := &stubStateStore{}
	menu := &stubHandler{state: model.StateMainMenu}
	svc := &StateMachineService{states: store}
	svc.register(menu)

	ev, responder := testEvent(model.UserState("LEGACY_STATE"))
	require.NoError(t, svc.Dispatch(ev))

	assert.Equal(t, model.StateMainMenu, ev.User.State)
	assert.Equal(t, 1, menu.entered)

	// the user hears about the restart before landing in the menu
	require.NotEmpty(t, responder.replies)
	assert.Contains(t, responder.replies[0], "/start")
}
