package shared

import "strings"

// CheckAnswer grades a user answer against the stored correct answer.
// Comparison is case-insensitive after trimming. Fill-in-blank answers may
// list several accepted variants separated by "|"; any variant matches.
func CheckAnswer(userAnswer, correctAnswer string) bool {
	user := normalizeAnswer(userAnswer)
	if strings.Contains(correctAnswer, "|") {
		for _, variant := range strings.Split(correctAnswer, "|") {
			if user == normalizeAnswer(variant) {
				return true
			}
		}
		return false
	}
	return user == normalizeAnswer(correctAnswer)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
