package services

import (
	"fmt"
	"strings"

	"github.com/lingokit/grambot/dto"
)

const exerciseSystemPrompt = `You are an English grammar exercise writer for a Telegram tutoring bot.
Write clear, unambiguous exercises. For single_choice, options must contain
the correct answer exactly once. For fill_in_blank, correctAnswer may list
several accepted variants separated by "|". Keep explanations to one or two
sentences. Respond with JSON only.`

const theorySystemPrompt = `You are an English grammar teacher. Explain one grammar topic for a
learner at the given CEFR level: short intro, the rule, 3-4 examples, and
common mistakes. Use plain Telegram-friendly text, no markdown headers.
Respond with JSON only.`

const profileSystemPrompt = `You assess English learners from their own words. Given a learner's
answers about their background, goals and interests, estimate a CEFR level
(be conservative) and extract their goals and interests as short phrases.
Respond with JSON only.`

const writingSystemPrompt = `You are an English writing tutor. Correct the learner's text, keep their
meaning and voice, and note the most instructive grammar and vocabulary
issues. Be encouraging. Respond with JSON only.`

func topicExercisePrompt(req dto.ExerciseGenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d exercises for the grammar topic %s (%s), CEFR level %s.\n",
		exercisesPerSession, req.TopicID, req.RuleName, req.Level)
	fmt.Fprintf(&b, "Use topicId %q for every exercise. Mix single_choice and fill_in_blank.\n", req.TopicID)
	appendPersonalization(&b, req.Interests, req.Goals)
	return b.String()
}

func reviewExercisePrompt(req dto.ExerciseGenerationRequest, topics []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d mixed review exercises, CEFR level %s, covering these topics the learner struggles with:\n",
		exercisesPerSession, req.Level)
	for _, topic := range topics {
		fmt.Fprintf(&b, "- %s\n", topic)
	}
	b.WriteString("Attribute each exercise to its topic via topicId (the code before the parentheses).\n")
	appendPersonalization(&b, req.Interests, req.Goals)
	return b.String()
}

func appendPersonalization(b *strings.Builder, interests, goals []string) {
	if len(interests) > 0 {
		fmt.Fprintf(b, "Where natural, draw example sentences from: %s.\n", strings.Join(interests, ", "))
	}
	if len(goals) > 0 {
		fmt.Fprintf(b, "The learner's goals: %s.\n", strings.Join(goals, ", "))
	}
}

func theoryPrompt(topicID, ruleName, level string, interests []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain the topic %s (%s) for CEFR level %s.\n", topicID, ruleName, level)
	fmt.Fprintf(&b, "Use topic_id %q in the response.\n", topicID)
	if len(interests) > 0 {
		fmt.Fprintf(&b, "Where natural, use examples about: %s.\n", strings.Join(interests, ", "))
	}
	return b.String()
}

func writingPrompt(text, level string) string {
	return fmt.Sprintf("Learner level: %s.\nLearner text:\n%s\n", level, text)
}
