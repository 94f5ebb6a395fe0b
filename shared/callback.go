package shared

import (
	"errors"
	"strconv"
	"strings"
)

var ErrBadCallback = errors.New("malformed callback payload")

// ParseAnswerCallback extracts the exercise id and chosen option index
// from an "answer_{exerciseId}_{optionIndex}" payload. Exercise ids may
// themselves contain underscores, so the index is the final segment.
func ParseAnswerCallback(data string) (exerciseID string, optionIndex int, err error) {
	rest, ok := strings.CutPrefix(data, CallbackAnswerPrefix)
	if !ok {
		return "", 0, ErrBadCallback
	}
	sep := strings.LastIndex(rest, "_")
	if sep <= 0 || sep == len(rest)-1 {
		return "", 0, ErrBadCallback
	}
	idx, err := strconv.Atoi(rest[sep+1:])
	if err != nil || idx < 0 {
		return "", 0, ErrBadCallback
	}
	return rest[:sep], idx, nil
}

// ParsePracticeCallback extracts the topic id and rule name from a
// "practice_grammar:{topicId}:{ruleName}" payload.
func ParsePracticeCallback(data string) (topicID, ruleName string, err error) {
	rest, ok := strings.CutPrefix(data, CallbackPracticePrefix)
	if !ok {
		return "", "", ErrBadCallback
	}
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrBadCallback
	}
	return parts[0], parts[1], nil
}

func AnswerCallback(exerciseID string, optionIndex int) string {
	return CallbackAnswerPrefix + exerciseID + "_" + strconv.Itoa(optionIndex)
}

func PracticeCallback(topicID, ruleName string) string {
	return CallbackPracticePrefix + topicID + ":" + ruleName
}
