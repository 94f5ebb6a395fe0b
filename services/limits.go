package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lingokit/grambot/dto"
	"github.com/lingokit/grambot/shared"
	log "github.com/sirupsen/logrus"
)

// LimitService enforces the per-user daily quota on LLM-backed requests.
// Usage lives in Redis under one key per user and UTC day; the key expires
// at the next UTC midnight so a new day always starts from zero.
type LimitService struct {
	appContext.DefaultService

	redisSvc *RedisService

	limits dto.DailyLimits
}

const LIMIT_SVC = "limit_svc"

const (
	defaultDailyTotal  = 2
	defaultTheoryRatio = 0.5
)

func (svc LimitService) Id() string {
	return LIMIT_SVC
}

func (svc *LimitService) Configure(ctx *appContext.Context) error {
	total := defaultDailyTotal
	if v := os.Getenv("LIMIT_DAILY_TOTAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			total = n
		}
	}

	ratio := defaultTheoryRatio
	if v := os.Getenv("LIMIT_THEORY_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			ratio = f
		}
	}

	maxTheory := int(float64(total) * ratio)
	if maxTheory < 1 {
		maxTheory = 1
	}

	svc.limits = dto.DailyLimits{Total: total, MaxTheory: maxTheory}
	return svc.DefaultService.Configure(ctx)
}

func (svc *LimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	log.WithFields(log.Fields{
		"daily_total": svc.limits.Total,
		"max_theory":  svc.limits.MaxTheory,
	}).Info("Daily limits configured")
	return nil
}

func (svc *LimitService) Limits() dto.DailyLimits {
	return svc.limits
}

func usageKey(userID int64, day time.Time) string {
	return fmt.Sprintf("%s%d:%s", shared.KeyPrefixLimits, userID, day.UTC().Format("2006-01-02"))
}

func nextUTCMidnight(now time.Time) time.Duration {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return midnight.Sub(now)
}

// CheckLimit reports whether the user may spend one more request of the
// given type today. Read-only.
func (svc *LimitService) CheckLimit(ctx context.Context, userID int64, reqType dto.RequestType) (*dto.LimitCheckResult, error) {
	usage, err := svc.GetUsage(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := evaluateLimit(*usage, svc.limits, reqType)
	return &result, nil
}

func evaluateLimit(usage dto.UsageStats, limits dto.DailyLimits, reqType dto.RequestType) dto.LimitCheckResult {
	result := dto.LimitCheckResult{
		Allowed:      true,
		CurrentUsage: usage,
		Limits:       limits,
	}

	if usage.TotalUsed >= limits.Total {
		result.Allowed = false
		result.Reason = dto.TotalLimitReached
		return result
	}

	if reqType == dto.RequestTheory && usage.TheoryUsed >= limits.MaxTheory {
		result.Allowed = false
		result.Reason = dto.TheoryLimitReached
	}
	return result
}

// RecordUsage increments today's counters after a successful LLM request.
// Rewrites the whole record and refreshes its TTL to the next UTC
// midnight; the last writer of a day also sets its expiry.
func (svc *LimitService) RecordUsage(ctx context.Context, userID int64, reqType dto.RequestType) error {
	usage, err := svc.GetUsage(ctx, userID)
	if err != nil {
		return err
	}

	usage.TotalUsed++
	switch reqType {
	case dto.RequestTheory:
		usage.TheoryUsed++
	case dto.RequestPractice:
		usage.PracticeUsed++
	case dto.RequestFreeWriting:
		usage.FreeWritingUsed++
	default:
		return fmt.Errorf("unknown request type: %s", reqType)
	}

	now := time.Now()
	return svc.redisSvc.Set(ctx, usageKey(userID, now), usage, nextUTCMidnight(now))
}

func (svc *LimitService) GetUsage(ctx context.Context, userID int64) (*dto.UsageStats, error) {
	now := time.Now()
	usage := dto.UsageStats{
		UserID: userID,
		Date:   now.UTC().Format("2006-01-02"),
	}
	if err := svc.redisSvc.GetJSON(ctx, usageKey(userID, now), &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// ResetUsage clears today's counters. Operator tooling only.
// UsageTTL returns how long until the user's counters expire, which is
// the time left to the UTC midnight reset. Negative when no usage is
// recorded today.
func (svc *LimitService) UsageTTL(ctx context.Context, userID int64) (time.Duration, error) {
	return svc.redisSvc.TTL(ctx, usageKey(userID, time.Now()))
}

func (svc *LimitService) ResetUsage(ctx context.Context, userID int64) error {
	return svc.redisSvc.Delete(ctx, usageKey(userID, time.Now()))
}
