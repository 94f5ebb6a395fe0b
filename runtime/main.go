package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/lingokit/grambot/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.RedisService{},

		&services.UserService{},
		&services.GrammarService{},
		&services.LimitService{},
		&services.PracticeSessionService{},

		&services.LLMService{},
		&services.ExerciseService{},

		&services.StateMachineService{},
		&services.TelegramService{},
		&services.HttpService{},
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to build service context")
		return
	}

	if err := ctx.Run(); err != nil {
		log.WithError(err).Fatal("Service context stopped")
	}
}
