package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lingokit/grambot/model"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("POSTGRES_DSN")
	if ds.database == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "grambot"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			host, user, password, dbname, port, sslmode)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	models := []interface{}{
		&model.User{},
		&model.UserProfile{},
		&model.GrammarCategory{},
		&model.GrammarTopic{},
		&model.UserTopicProgress{},
	}

	if err = ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

func (ds *PostgresService) GetUser(userID int64) (*model.User, error) {
	var user model.User
	if err := ds.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) CreateUser(user *model.User) error {
	if err := ds.db.Create(user).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	if err := ds.db.Save(user).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) UpdateUserState(userID int64, state model.UserState) error {
	res := ds.db.Model(&model.User{}).Where("id = ?", userID).Update("state", state)
	if res.Error != nil {
		return ds.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ds.HandleError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (ds *PostgresService) GetProfile(userID int64) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := ds.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (ds *PostgresService) UpsertProfile(profile *model.UserProfile) error {
	err := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(profile).Error
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) GetCategories() ([]model.GrammarCategory, error) {
	var categories []model.GrammarCategory
	if err := ds.db.Order("sort_order asc").Find(&categories).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return categories, nil
}

func (ds *PostgresService) GetTopicsByCategory(categoryID string) ([]model.GrammarTopic, error) {
	var topics []model.GrammarTopic
	if err := ds.db.Where("category_id = ?", categoryID).Order("sort_order asc").Find(&topics).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return topics, nil
}

func (ds *PostgresService) GetTopics() ([]model.GrammarTopic, error) {
	var topics []model.GrammarTopic
	if err := ds.db.Order("category_id, sort_order").Find(&topics).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return topics, nil
}

func (ds *PostgresService) GetTopic(topicID string) (*model.GrammarTopic, error) {
	var topic model.GrammarTopic
	if err := ds.db.First(&topic, "id = ?", topicID).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// UpsertTopic inserts a topic or refreshes its display name. Seeded
// metadata (category, localization, ordering) is left untouched on
// conflict so lazily-learned topics never clobber the curated catalog.
func (ds *PostgresService) UpsertTopic(topic *model.GrammarTopic) error {
	err := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(topic).Error
	return ds.HandleError(err)
}

func (ds *PostgresService) GetTopicProgress(userID int64, topicID string) (*model.UserTopicProgress, error) {
	var progress model.UserTopicProgress
	err := ds.db.Where("user_id = ? AND topic_id = ?", userID, topicID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (ds *PostgresService) GetUserProgress(userID int64) ([]model.UserTopicProgress, error) {
	var progress []model.UserTopicProgress
	err := ds.db.Where("user_id = ?", userID).
		Order("last_practiced_at DESC NULLS LAST").
		Find(&progress).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return progress, nil
}

func (ds *PostgresService) SaveTopicProgress(progress *model.UserTopicProgress) error {
	if progress.ID == "" {
		id, _ := uuid.NewV7()
		progress.ID = id.String()
	}

	now := time.Now()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}
	progress.UpdatedAt = now

	if err := ds.db.Save(progress).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}
