package services

import (
	"testing"
	"time"

	"github.com/lingokit/grambot/dto"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateLimitAllowsUnderQuota(t *testing.T) {
	limits := dto.DailyLimits{Total: 2, MaxTheory: 1}

	result := evaluateLimit(dto.UsageStats{}, limits, dto.RequestTheory)
	assert.True(t, result.Allowed)
	assert.Empty(t, result.Reason)

	result = evaluateLimit(dto.UsageStats{TotalUsed: 1, PracticeUsed: 1}, limits, dto.RequestPractice)
	assert.True(t, result.Allowed)
}

func TestEvaluateLimitTotalExhausted(t *testing.T) {
	limits := dto.DailyLimits{Total: 2, MaxTheory: 1}
	usage := dto.UsageStats{TotalUsed: 2, TheoryUsed: 1, PracticeUsed: 1}

	for _, reqType := range []dto.RequestType{dto.RequestTheory, dto.RequestPractice, dto.RequestFreeWriting} {
		result := evaluateLimit(usage, limits, reqType)
		assert.False(t, result.Allowed)
		assert.Equal(t, dto.TotalLimitReached, result.Reason)
	}
}

func TestEvaluateLimitTheoryExhausted(t *testing.T) {
	limits := dto.DailyLimits{Total: 4, MaxTheory: 1}
	usage := dto.UsageStats{TotalUsed: 1, TheoryUsed: 1}

	result := evaluateLimit(usage, limits, dto.RequestTheory)
	assert.False(t, result.Allowed)
	assert.Equal(t, dto.TheoryLimitReached, result.Reason)

	// other request types still pass
	result = evaluateLimit(usage, limits, dto.RequestPractice)
	assert.True(t, result.Allowed)

	// total exhaustion wins over the theory cap
	usage = dto.UsageStats{TotalUsed: 4, TheoryUsed: 1}
	result = evaluateLimit(usage, limits, dto.RequestTheory)
	assert.Equal(t, dto.TotalLimitReached, result.Reason)
}

func TestUsageKeyIsUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:30 local on Mar 2 is still Mar 1 in UTC
	at := time.Date(2025, 3, 2, 2, 30, 0, 0, loc)
	assert.Equal(t, "limits:42:2025-03-01", usageKey(42, at))
}

func TestNextUTCMidnight(t *testing.T) {
	at := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, nextUTCMidnight(at))

	at = time.Date(2025, 3, 1, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, 24*time.Hour-time.Second, nextUTCMidnight(at))
}
