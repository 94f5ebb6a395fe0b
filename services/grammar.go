package services

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/lingokit/grambot/model"
	log "github.com/sirupsen/logrus"
)

// GrammarService owns the grammar catalog and per-user topic progress.
type GrammarService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const GRAMMAR_SVC = "grammar_svc"

// A topic counts as mastered once its score reaches this threshold; below
// it the topic stays in the review pool.
const masteryThreshold = 70

var (
	ErrNoReviewTopics = errors.New("no topics available for review")
	ErrNoTopics       = errors.New("no topics in the grammar catalog")
)

func (svc GrammarService) Id() string {
	return GRAMMAR_SVC
}

func (svc *GrammarService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *GrammarService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

func (svc *GrammarService) Categories() ([]model.GrammarCategory, error) {
	return svc.sqlSvc.GetCategories()
}

func (svc *GrammarService) TopicsByCategory(categoryID string) ([]model.GrammarTopic, error) {
	return svc.sqlSvc.GetTopicsByCategory(categoryID)
}

func (svc *GrammarService) Topic(topicID string) (*model.GrammarTopic, error) {
	topic, err := svc.sqlSvc.GetTopic(topicID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return topic, nil
}

// NextTheoryTopic picks the topic to explain next: the first catalog
// topic the user has not been exposed to yet, else the weakest
// already-seen one. excludeID keeps "show another" from repeating the
// rule just shown.
func (svc *GrammarService) NextTheoryTopic(userID int64, excludeID string) (*model.GrammarTopic, error) {
	topics, err := svc.sqlSvc.GetTopics()
	if err != nil {
		return nil, err
	}
	progress, err := svc.sqlSvc.GetUserProgress(userID)
	if err != nil {
		return nil, err
	}
	return selectNextTopic(topics, progress, excludeID)
}

func selectNextTopic(topics []model.GrammarTopic, progress []model.UserTopicProgress, excludeID string) (*model.GrammarTopic, error) {
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}

	byTopic := make(map[string]model.UserTopicProgress, len(progress))
	for _, p := range progress {
		byTopic[p.TopicID] = p
	}

	for i := range topics {
		if topics[i].ID == excludeID {
			continue
		}
		if p, ok := byTopic[topics[i].ID]; !ok || !p.Exposed {
			return &topics[i], nil
		}
	}

	var weakest *model.GrammarTopic
	weakestMastery := 0
	for i := range topics {
		if topics[i].ID == excludeID {
			continue
		}
		if p := byTopic[topics[i].ID]; weakest == nil || p.Mastery < weakestMastery {
			weakest = &topics[i]
			weakestMastery = p.Mastery
		}
	}
	if weakest == nil {
		// the catalog holds nothing but the excluded topic
		return &topics[0], nil
	}
	return weakest, nil
}

// UpsertTopic registers a topic the content generator introduced outside
// the seeded catalog, so progress rows always resolve to a named topic.
func (svc *GrammarService) UpsertTopic(topic *model.GrammarTopic) error {
	return svc.sqlSvc.UpsertTopic(topic)
}

// MarkExposed records that the user has seen the topic's theory. Counters
// are untouched; exposure alone qualifies a topic for review.
func (svc *GrammarService) MarkExposed(userID int64, topicID string) error {
	progress, err := svc.sqlSvc.GetTopicProgress(userID, topicID)
	if err != nil {
		return err
	}
	if progress == nil {
		progress = &model.UserTopicProgress{UserID: userID, TopicID: topicID}
	}
	if progress.Exposed {
		return nil
	}
	progress.Exposed = true
	return svc.sqlSvc.SaveTopicProgress(progress)
}

// UpdateProgress folds one finished practice round into the user's record
// for the topic. Counts accumulate across rounds; mastery is recomputed
// from the lifetime totals.
func (svc *GrammarService) UpdateProgress(userID int64, topicID string, correct, total int) error {
	if total <= 0 {
		return nil
	}

	progress, err := svc.sqlSvc.GetTopicProgress(userID, topicID)
	if err != nil {
		return err
	}
	if progress == nil {
		// practiced without ever seeing the theory; exposure stays unset
		progress = &model.UserTopicProgress{UserID: userID, TopicID: topicID}
	}

	mergeProgress(progress, correct, total)

	if err := svc.sqlSvc.SaveTopicProgress(progress); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"topic_id": topicID,
		"mastery":  progress.Mastery,
	}).Debug("Topic progress updated")
	return nil
}

func mergeProgress(progress *model.UserTopicProgress, correct, total int) {
	now := time.Now().UTC()
	progress.PracticeCount++
	progress.CorrectCount += correct
	progress.TotalCount += total
	if progress.TotalCount > 0 {
		progress.Mastery = int(math.Round(float64(progress.CorrectCount) / float64(progress.TotalCount) * 100))
	}
	progress.LastPracticedAt = &now
}

func (svc *GrammarService) UserProgress(userID int64) ([]model.UserTopicProgress, error) {
	return svc.sqlSvc.GetUserProgress(userID)
}

// ReviewTopics picks the weakest exposed topics for a review session:
// never practiced, or below the mastery threshold. Weakest first. When
// everything is mastered it falls back to a few exposed topics so review
// always has material, and errors only when nothing was exposed at all.
func (svc *GrammarService) ReviewTopics(userID int64, maxTopics int) ([]model.UserTopicProgress, error) {
	progress, err := svc.sqlSvc.GetUserProgress(userID)
	if err != nil {
		return nil, err
	}
	return selectReviewTopics(progress, maxTopics)
}

func selectReviewTopics(progress []model.UserTopicProgress, maxTopics int) ([]model.UserTopicProgress, error) {
	if maxTopics <= 0 {
		maxTopics = 5
	}

	var candidates []model.UserTopicProgress
	var exposed []model.UserTopicProgress
	for _, p := range progress {
		if !p.Exposed {
			continue
		}
		exposed = append(exposed, p)
		if p.PracticeCount == 0 || (p.Mastery < masteryThreshold && p.TotalCount > 0) {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) == 0 {
		if len(exposed) == 0 {
			return nil, ErrNoReviewTopics
		}
		if len(exposed) > 3 {
			exposed = exposed[:3]
		}
		return exposed, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Mastery < candidates[j].Mastery
	})
	if len(candidates) > maxTopics {
		candidates = candidates[:maxTopics]
	}
	return candidates, nil
}
