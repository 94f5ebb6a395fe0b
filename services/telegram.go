package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/model"
	log "github.com/sirupsen/logrus"
)

// TelegramService owns the bot connection: it pulls updates, resolves
// them to users and feeds them through the state machine. Updates are
// handled on a single goroutine, so state transitions for a user never
// race each other.
type TelegramService struct {
	appContext.DefaultService

	bot      *tgbotapi.BotAPI
	userSvc  *UserService
	stateSvc *StateMachineService

	alertChatID int64
	logUpdates  bool

	done chan struct{}
}

const TELEGRAM_SVC = "telegram_svc"

const updateTimeoutSeconds = 30

func (svc TelegramService) Id() string {
	return TELEGRAM_SVC
}

func (svc *TelegramService) Configure(ctx *appContext.Context) error {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return errors.New("BOT_TOKEN is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram auth failed: %w", err)
	}
	svc.bot = bot

	if v := os.Getenv("ERROR_ALERT_CHAT_ID"); v != "" {
		if chatID, err := strconv.ParseInt(v, 10, 64); err == nil {
			svc.alertChatID = chatID
		}
	}
	svc.logUpdates = os.Getenv("LOG_UPDATES") == "true"
	svc.done = make(chan struct{})

	return svc.DefaultService.Configure(ctx)
}

func (svc *TelegramService) Start() error {
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.stateSvc = svc.Service(STATE_MACHINE_SVC).(*StateMachineService)

	log.WithField("bot", svc.bot.Self.UserName).Info("Telegram bot authorized")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeoutSeconds
	updates := svc.bot.GetUpdatesChan(updateConfig)

	go svc.pollUpdates(updates)
	return nil
}

func (svc *TelegramService) Shutdown() {
	svc.bot.StopReceivingUpdates()
	close(svc.done)
}

func (svc *TelegramService) pollUpdates(updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-svc.done:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			svc.handleUpdate(update)
		}
	}
}

func (svc *TelegramService) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic while handling update")
			svc.reportError(fmt.Errorf("panic: %v", r), update)
		}
	}()

	from, chatID := updateOrigin(update)
	if from == nil {
		return
	}

	if svc.logUpdates {
		log.WithFields(log.Fields{
			"update_id": update.UpdateID,
			"user_id":   from.ID,
		}).Debug("Update received")
	}

	user, _, err := svc.userSvc.EnsureUser(TelegramUser{
		ID:           from.ID,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		Username:     from.UserName,
		LanguageCode: from.LanguageCode,
	})
	if err != nil {
		log.WithField("user_id", from.ID).WithError(err).Error("Failed to resolve user")
		svc.reportError(err, update)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ev := &Event{
		Ctx:       ctx,
		User:      user,
		Responder: &telegramResponder{bot: svc.bot, chatID: chatID},
	}
	if update.Message != nil {
		ev.Text = update.Message.Text
	}
	if update.CallbackQuery != nil {
		ev.Callback = &CallbackEvent{
			ID:   update.CallbackQuery.ID,
			Data: update.CallbackQuery.Data,
		}
	}

	err = svc.routeEvent(ev, update)
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": user.ID,
			"state":   user.State,
		}).WithError(err).Error("Event handling failed")
		svc.reportError(err, update)

		// clear the button spinner even when handling blew up
		if ev.Callback != nil {
			if err := ev.Responder.AnswerCallback(ev.Callback.ID); err != nil {
				log.WithError(err).Debug("Callback ack failed")
			}
		}

		msg := tgbotapi.NewMessage(chatID, "Something went wrong on my side. Please try again. 🙏")
		if _, err := svc.bot.Send(msg); err != nil {
			log.WithError(err).Warn("Failed to send error notice")
		}
	}
}

// routeEvent sends /start straight through the transition protocol; a
// fresh user lands in the interview, everyone else back at the menu.
// All other updates go to the current state's handler.
func (svc *TelegramService) routeEvent(ev *Event, update tgbotapi.Update) error {
	if update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "start" {
		target := model.StateMainMenu
		if ev.User.State == model.StateOnboarding {
			target = model.StateOnboarding
		}
		return svc.stateSvc.ChangeState(ev, target)
	}
	return svc.stateSvc.Dispatch(ev)
}

func updateOrigin(update tgbotapi.Update) (*tgbotapi.User, int64) {
	switch {
	case update.Message != nil:
		return update.Message.From, update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From, update.CallbackQuery.Message.Chat.ID
	}
	return nil, 0
}

// reportError forwards failures to the operator alert chat, when one is
// configured.
func (svc *TelegramService) reportError(cause error, update tgbotapi.Update) {
	if svc.alertChatID == 0 {
		return
	}

	userID := int64(0)
	if from, _ := updateOrigin(update); from != nil {
		userID = from.ID
	}
	text := fmt.Sprintf("⚠️ grambot error\nuser: %d\nupdate: %d\n%v", userID, update.UpdateID, cause)

	msg := tgbotapi.NewMessage(svc.alertChatID, text)
	if _, err := svc.bot.Send(msg); err != nil {
		log.WithError(err).Warn("Failed to deliver error alert")
	}
}

// telegramResponder maps the transport-neutral reply types onto the
// Telegram API for one chat.
type telegramResponder struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func (r *telegramResponder) Reply(text string, opts *dto.ReplyOptions) error {
	msg := tgbotapi.NewMessage(r.chatID, text)
	if opts != nil {
		if opts.ParseMode != "" {
			msg.ParseMode = opts.ParseMode
		}
		if opts.Markup != nil {
			msg.ReplyMarkup = buildMarkup(opts.Markup)
		}
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *telegramResponder) AnswerCallback(callbackID string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

func buildMarkup(markup *dto.ReplyMarkup) interface{} {
	switch {
	case len(markup.Inline) > 0:
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, row := range markup.Inline {
			var buttons []tgbotapi.InlineKeyboardButton
			for _, button := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)

	case len(markup.Keyboard) > 0:
		var rows [][]tgbotapi.KeyboardButton
		for _, row := range markup.Keyboard {
			var buttons []tgbotapi.KeyboardButton
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.ResizeKeyboard = true
		return keyboard

	case markup.Remove:
		return tgbotapi.NewRemoveKeyboard(false)
	}
	return nil
}
