package services

import (
	"testing"

	"github.com/lingokit/grambot/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func TestCalculateTopicStatsCountsUnansweredAsIncorrect(t *testing.T) {
	session := &dto.PracticeSessionData{
		Exercises: []dto.Exercise{
			{ID: "ex_01", TopicID: "PRESENT_SIMPLE", UserAnswer: strPtr("goes"), IsCorrect: boolPtr(true)},
			{ID: "ex_02", TopicID: "PRESENT_SIMPLE", UserAnswer: strPtr("go"), IsCorrect: boolPtr(false)},
			{ID: "ex_03", TopicID: "PRESENT_SIMPLE"}, // never answered
		},
	}

	stats := calculateTopicStats(session)
	require.Len(t, stats, 1)
	assert.Equal(t, topicStat{Correct: 1, Total: 3}, stats["PRESENT_SIMPLE"])
}

func TestCalculateTopicStatsGroupsByTopic(t *testing.T) {
	session := &dto.PracticeSessionData{
		Exercises: []dto.Exercise{
			{ID: "ex_01", TopicID: "ARTICLES", IsCorrect: boolPtr(true), UserAnswer: strPtr("a")},
			{ID: "ex_02", TopicID: "CONDITIONALS", IsCorrect: boolPtr(true), UserAnswer: strPtr("would")},
			{ID: "ex_03", TopicID: "ARTICLES", IsCorrect: boolPtr(false), UserAnswer: strPtr("the")},
			{ID: "ex_04", TopicID: "CONDITIONALS"},
		},
	}

	stats := calculateTopicStats(session)
	require.Len(t, stats, 2)
	assert.Equal(t, topicStat{Correct: 1, Total: 2}, stats["ARTICLES"])
	assert.Equal(t, topicStat{Correct: 1, Total: 2}, stats["CONDITIONALS"])
}

func TestFormatSessionResultMentionsUnanswered(t *testing.T) {
	session := &dto.PracticeSessionData{
		Correct: 1,
		Total:   2,
		Exercises: []dto.Exercise{
			{ID: "ex_01", TopicID: "T", UserAnswer: strPtr("x"), IsCorrect: boolPtr(true)},
			{ID: "ex_02", TopicID: "T", UserAnswer: strPtr("y"), IsCorrect: boolPtr(false)},
			{ID: "ex_03", TopicID: "T"},
		},
	}

	text := formatSessionResult(session, calculateTopicStats(session))
	assert.Contains(t, text, "1 of 3 correct")
	assert.Contains(t, text, "1 left unanswered")
}
