package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswerCallback(t *testing.T) {
	id, idx, err := ParseAnswerCallback("answer_ex_01_2")
	require.NoError(t, err)
	assert.Equal(t, "ex_01", id)
	assert.Equal(t, 2, idx)

	// ids keep their own underscores
	id, idx, err = ParseAnswerCallback("answer_ex_fill_03_0")
	require.NoError(t, err)
	assert.Equal(t, "ex_fill_03", id)
	assert.Equal(t, 0, idx)
}

func TestParseAnswerCallbackRejectsMalformed(t *testing.T) {
	for _, data := range []string{
		"answer_",
		"answer_ex01",
		"answer_ex01_x",
		"answer_ex01_-1",
		"practice_grammar:X:Y",
		"",
	} {
		_, _, err := ParseAnswerCallback(data)
		assert.ErrorIs(t, err, ErrBadCallback, data)
	}
}

func TestPracticeCallbackRoundTrip(t *testing.T) {
	data := PracticeCallback("PRESENT_PERFECT", "Present Perfect")
	topicID, ruleName, err := ParsePracticeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, "PRESENT_PERFECT", topicID)
	assert.Equal(t, "Present Perfect", ruleName)

	_, _, err = ParsePracticeCallback("practice_grammar:ONLY_TOPIC")
	assert.ErrorIs(t, err, ErrBadCallback)
}
