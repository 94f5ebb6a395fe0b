package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/lingokit/grambot/shared"
)

// HttpService exposes a small operator API next to the bot: a health
// probe and debug views of live sessions and daily usage. It is meant to
// stay behind the deployment's private network.
type HttpService struct {
	context.DefaultService

	sqlSvc     *PostgresService
	redisSvc   *RedisService
	sessionSvc *PracticeSessionService
	limitSvc   *LimitService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.sessionSvc = svc.Service(PRACTICE_SESSION_SVC).(*PracticeSessionService)
	svc.limitSvc = svc.Service(LIMIT_SVC).(*LimitService)

	svc.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	svc.app.Use(recover.New())

	svc.app.Get("/health", svc.health)
	svc.app.Get("/debug/sessions", svc.listSessions)
	svc.app.Get("/debug/sessions/:userId", svc.getSession)
	svc.app.Get("/debug/usage/:userId", svc.getUsage)
	svc.app.Delete("/debug/usage/:userId", svc.resetUsage)

	go func() {
		log.WithField("port", svc.port).Info("Ops HTTP listening")
		if err := svc.app.Listen(fmt.Sprintf(":%d", svc.port)); err != nil {
			log.WithError(err).Error("Ops HTTP stopped")
		}
	}()
	return nil
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		if err := svc.app.Shutdown(); err != nil {
			log.WithError(err).Warn("Ops HTTP shutdown failed")
		}
	}
}

func (svc *HttpService) health(c *fiber.Ctx) error {
	sqlDB, err := svc.sqlSvc.Db().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Context())
	}
	if err != nil {
		return shared.ResponseInternalError(c, err)
	}

	if err := svc.redisSvc.GetClient().Ping(c.Context()).Err(); err != nil {
		return shared.ResponseInternalError(c, err)
	}

	return shared.ResponseOK(c, fiber.Map{"status": "ok"})
}

func (svc *HttpService) listSessions(c *fiber.Ctx) error {
	sessions, err := svc.sessionSvc.ActiveSessions(c.Context())
	if err != nil {
		return shared.ResponseInternalError(c, err)
	}
	return shared.ResponseOK(c, fiber.Map{"count": len(sessions), "sessions": sessions})
}

func (svc *HttpService) getSession(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return shared.ResponseBadRequest(c, "invalid user id")
	}

	session, err := svc.sessionSvc.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return shared.ResponseNotFound(c)
		}
		return shared.ResponseInternalError(c, err)
	}
	return shared.ResponseOK(c, session)
}

func (svc *HttpService) getUsage(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return shared.ResponseBadRequest(c, "invalid user id")
	}

	usage, err := svc.limitSvc.GetUsage(c.Context(), userID)
	if err != nil {
		return shared.ResponseInternalError(c, err)
	}

	resetsIn := int64(0)
	if ttl, err := svc.limitSvc.UsageTTL(c.Context(), userID); err == nil && ttl > 0 {
		resetsIn = int64(ttl.Seconds())
	}

	return shared.ResponseOK(c, fiber.Map{
		"usage":           usage,
		"limits":          svc.limitSvc.Limits(),
		"resetsInSeconds": resetsIn,
	})
}

func (svc *HttpService) resetUsage(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return shared.ResponseBadRequest(c, "invalid user id")
	}

	if err := svc.limitSvc.ResetUsage(c.Context(), userID); err != nil {
		return shared.ResponseInternalError(c, err)
	}
	return shared.ResponseOK(c, nil)
}
