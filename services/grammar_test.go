package services

import (
	"testing"

	"github.com/lingokit/grambot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeProgressAccumulates(t *testing.T) {
	progress := &model.UserTopicProgress{UserID: 1, TopicID: "PRESENT_SIMPLE", Exposed: true}

	mergeProgress(progress, 3, 5)
	assert.Equal(t, 1, progress.PracticeCount)
	assert.Equal(t, 3, progress.CorrectCount)
	assert.Equal(t, 5, progress.TotalCount)
	assert.Equal(t, 60, progress.Mastery)
	require.NotNil(t, progress.LastPracticedAt)

	mergeProgress(progress, 5, 5)
	assert.Equal(t, 2, progress.PracticeCount)
	assert.Equal(t, 8, progress.CorrectCount)
	assert.Equal(t, 10, progress.TotalCount)
	assert.Equal(t, 80, progress.Mastery)
}

func TestMergeProgressRoundsMastery(t *testing.T) {
	progress := &model.UserTopicProgress{}
	mergeProgress(progress, 1, 3)
	assert.Equal(t, 33, progress.Mastery)

	progress = &model.UserTopicProgress{}
	mergeProgress(progress, 2, 3)
	assert.Equal(t, 67, progress.Mastery)
}

func TestSelectReviewTopicsWeakestFirst(t *testing.T) {
	progress := []model.UserTopicProgress{
		{TopicID: "A", Exposed: true, PracticeCount: 2, Mastery: 85, TotalCount: 10},
		{TopicID: "B", Exposed: true, PracticeCount: 1, Mastery: 40, TotalCount: 5},
		{TopicID: "C", Exposed: true, PracticeCount: 0},
		{TopicID: "D", Exposed: false},
		{TopicID: "E", Exposed: true, PracticeCount: 3, Mastery: 65, TotalCount: 15},
	}

	selected, err := selectReviewTopics(progress, 5)
	require.NoError(t, err)
	require.Len(t, selected, 3)
	// never-practiced C carries mastery 0 and sorts first
	assert.Equal(t, "C", selected[0].TopicID)
	assert.Equal(t, "B", selected[1].TopicID)
	assert.Equal(t, "E", selected[2].TopicID)
}

func TestSelectReviewTopicsCapsAtMax(t *testing.T) {
	var progress []model.UserTopicProgress
	ids := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, id := range ids {
		progress = append(progress, model.UserTopicProgress{
			TopicID: id, Exposed: true, PracticeCount: 1, Mastery: i * 10, TotalCount: 5,
		})
	}

	selected, err := selectReviewTopics(progress, 0)
	require.NoError(t, err)
	assert.Len(t, selected, 5)
	assert.Equal(t, "A", selected[0].TopicID)

	selected, err = selectReviewTopics(progress, 2)
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func TestSelectReviewTopicsFallbackWhenAllMastered(t *testing.T) {
	progress := []model.UserTopicProgress{
		{TopicID: "A", Exposed: true, PracticeCount: 1, Mastery: 90, TotalCount: 10},
		{TopicID: "B", Exposed: true, PracticeCount: 1, Mastery: 95, TotalCount: 10},
		{TopicID: "C", Exposed: true, PracticeCount: 1, Mastery: 80, TotalCount: 10},
		{TopicID: "D", Exposed: true, PracticeCount: 1, Mastery: 75, TotalCount: 10},
	}

	selected, err := selectReviewTopics(progress, 5)
	require.NoError(t, err)
	assert.Len(t, selected, 3)
}

func TestSelectReviewTopicsErrorsWithoutExposure(t *testing.T) {
	_, err := selectReviewTopics(nil, 5)
	assert.ErrorIs(t, err, ErrNoReviewTopics)

	_, err = selectReviewTopics([]model.UserTopicProgress{{TopicID: "A", Exposed: false}}, 5)
	assert.ErrorIs(t, err, ErrNoReviewTopics)
}

func theoryCatalog() []model.GrammarTopic {
	return []model.GrammarTopic{
		{ID: "PRESENT_SIMPLE", CategoryID: "TENSES", SortOrder: 1},
		{ID: "PRESENT_PERFECT", CategoryID: "TENSES", SortOrder: 2},
		{ID: "ARTICLES_BASIC", CategoryID: "ARTICLES", SortOrder: 1},
	}
}

func TestSelectNextTopicPrefersUnexposed(t *testing.T) {
	progress := []model.UserTopicProgress{
		{TopicID: "PRESENT_SIMPLE", Exposed: true, Mastery: 40},
	}

	topic, err := selectNextTopic(theoryCatalog(), progress, "")
	require.NoError(t, err)
	assert.Equal(t, "PRESENT_PERFECT", topic.ID)
}

func TestSelectNextTopicSkipsExcluded(t *testing.T) {
	topic, err := selectNextTopic(theoryCatalog(), nil, "PRESENT_SIMPLE")
	require.NoError(t, err)
	assert.Equal(t, "PRESENT_PERFECT", topic.ID)
}

func TestSelectNextTopicFallsBackToWeakest(t *testing.T) {
	progress := []model.UserTopicProgress{
		{TopicID: "PRESENT_SIMPLE", Exposed: true, Mastery: 90},
		{TopicID: "PRESENT_PERFECT", Exposed: true, Mastery: 30},
		{TopicID: "ARTICLES_BASIC", Exposed: true, Mastery: 60},
	}

	topic, err := selectNextTopic(theoryCatalog(), progress, "")
	require.NoError(t, err)
	assert.Equal(t, "PRESENT_PERFECT", topic.ID)

	// the rule just shown is passed over even when it is the weakest
	topic, err = selectNextTopic(theoryCatalog(), progress, "PRESENT_PERFECT")
	require.NoError(t, err)
	assert.Equal(t, "ARTICLES_BASIC", topic.ID)
}

func TestSelectNextTopicSingleTopicCatalog(t *testing.T) {
	catalog := theoryCatalog()[:1]
	progress := []model.UserTopicProgress{
		{TopicID: "PRESENT_SIMPLE", Exposed: true, Mastery: 90},
	}

	// nothing else to rotate to: the excluded topic comes back
	topic, err := selectNextTopic(catalog, progress, "PRESENT_SIMPLE")
	require.NoError(t, err)
	assert.Equal(t, "PRESENT_SIMPLE", topic.ID)
}

func TestSelectNextTopicEmptyCatalog(t *testing.T) {
	_, err := selectNextTopic(nil, nil, "")
	assert.ErrorIs(t, err, ErrNoTopics)
}
