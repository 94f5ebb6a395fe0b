package services

import (
	"errors"
	"fmt"

	"github.com/alphabatem/common/context"
	"github.com/lingokit/grambot/model"
	"github.com/lingokit/grambot/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// TelegramUser is the identity slice of an incoming update the user store
// needs. Matches the fields Telegram sends on every message.
type TelegramUser struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// EnsureUser loads the user row for an incoming update, creating it in
// ONBOARDING state on first contact. Known users get their Telegram
// identity fields refreshed when they changed.
func (svc *UserService) EnsureUser(tg TelegramUser) (*model.User, bool, error) {
	user, err := svc.sqlSvc.GetUser(tg.ID)
	if err == nil {
		if svc.refreshIdentity(user, tg) {
			if err := svc.sqlSvc.UpdateUser(user); err != nil {
				log.WithField("user_id", tg.ID).WithError(err).Warn("Failed to refresh user identity")
			}
		}
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, svc.sqlSvc.HandleError(err)
	}

	user = &model.User{
		ID:           tg.ID,
		FirstName:    tg.FirstName,
		LastName:     tg.LastName,
		Username:     tg.Username,
		LanguageCode: tg.LanguageCode,
		State:        model.StateOnboarding,
	}
	if err := svc.sqlSvc.CreateUser(user); err != nil {
		return nil, false, err
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("New user registered")
	return user, true, nil
}

func (svc *UserService) refreshIdentity(user *model.User, tg TelegramUser) bool {
	changed := false
	if user.FirstName != tg.FirstName {
		user.FirstName = tg.FirstName
		changed = true
	}
	if user.LastName != tg.LastName {
		user.LastName = tg.LastName
		changed = true
	}
	if user.Username != tg.Username {
		user.Username = tg.Username
		changed = true
	}
	if user.LanguageCode != tg.LanguageCode {
		user.LanguageCode = tg.LanguageCode
		changed = true
	}
	return changed
}

func (svc *UserService) GetUser(userID int64) (*model.User, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return user, nil
}

func (svc *UserService) SetState(userID int64, state model.UserState) error {
	return svc.sqlSvc.UpdateUserState(userID, state)
}

// Profile is the decoded form of a stored UserProfile row.
type Profile struct {
	Level     string   `json:"level"`
	Goals     []string `json:"goals"`
	Interests []string `json:"interests"`
	Summary   string   `json:"summary"`
}

func (svc *UserService) GetProfile(userID int64) (*Profile, error) {
	row, err := svc.sqlSvc.GetProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	profile := &Profile{Level: row.Level, Summary: row.RawResponse}
	if row.Goals != "" {
		if err := shared.JSONAPI().Unmarshal([]byte(row.Goals), &profile.Goals); err != nil {
			return nil, fmt.Errorf("corrupt goals for user %d: %w", userID, err)
		}
	}
	if row.Interests != "" {
		if err := shared.JSONAPI().Unmarshal([]byte(row.Interests), &profile.Interests); err != nil {
			return nil, fmt.Errorf("corrupt interests for user %d: %w", userID, err)
		}
	}
	return profile, nil
}

func (svc *UserService) SaveProfile(userID int64, profile *Profile) error {
	goals, err := shared.JSONAPI().Marshal(profile.Goals)
	if err != nil {
		return err
	}
	interests, err := shared.JSONAPI().Marshal(profile.Interests)
	if err != nil {
		return err
	}

	row := &model.UserProfile{
		UserID:      userID,
		Level:       profile.Level,
		Goals:       string(goals),
		Interests:   string(interests),
		RawResponse: profile.Summary,
	}
	return svc.sqlSvc.UpsertProfile(row)
}
