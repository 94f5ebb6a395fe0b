package services

import (
	"encoding/json"
	"testing"

	"github.com/lingokit/grambot/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBatch = `{
	"exercises": [
		{
			"id": "ex_01",
			"topicId": "PRESENT_SIMPLE",
			"type": "single_choice",
			"question": "She ___ to work every day.",
			"options": ["go", "goes", "going"],
			"correctAnswer": "goes",
			"explanation": "Third person singular takes -s."
		},
		{
			"id": "ex_02",
			"topicId": "PRESENT_SIMPLE",
			"type": "fill_in_blank",
			"question": "They ___ (not/agree) with me.",
			"options": [],
			"correctAnswer": "do not agree|don't agree",
			"explanation": "Negation with do."
		}
	]
}`

func TestParseExerciseBatch(t *testing.T) {
	exercises, err := parseExerciseBatch(json.RawMessage(validBatch))
	require.NoError(t, err)
	require.Len(t, exercises, 2)

	assert.Equal(t, "ex_01", exercises[0].ID)
	assert.Equal(t, dto.ExerciseSingleChoice, exercises[0].Type)
	assert.Len(t, exercises[0].Options, 3)
	assert.Equal(t, dto.ExerciseFillInBlank, exercises[1].Type)
	assert.Nil(t, exercises[1].UserAnswer)
}

func TestParseExerciseBatchRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":        `exercises: []`,
		"empty batch":     `{"exercises": []}`,
		"bad topic code":  `{"exercises": [{"id":"ex_01","topicId":"present simple","type":"single_choice","question":"q","options":["a","b"],"correctAnswer":"a","explanation":""}]}`,
		"unknown type":    `{"exercises": [{"id":"ex_01","topicId":"T","type":"essay","question":"q","options":[],"correctAnswer":"a","explanation":""}]}`,
		"missing question": `{"exercises": [{"id":"ex_01","topicId":"T","type":"fill_in_blank","options":[],"correctAnswer":"a","explanation":""}]}`,
	}

	for name, payload := range cases {
		_, err := parseExerciseBatch(json.RawMessage(payload))
		invalid := &ErrInvalidResponse{}
		assert.ErrorAs(t, err, &invalid, name)
	}
}

func TestParseExerciseBatchRejectsDuplicateIDs(t *testing.T) {
	payload := `{"exercises": [
		{"id":"ex_01","topicId":"T","type":"fill_in_blank","question":"q1","options":[],"correctAnswer":"a","explanation":""},
		{"id":"ex_01","topicId":"T","type":"fill_in_blank","question":"q2","options":[],"correctAnswer":"b","explanation":""}
	]}`

	_, err := parseExerciseBatch(json.RawMessage(payload))
	invalid := &ErrInvalidResponse{}
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "duplicate exercise id")
}

func TestParseExerciseBatchSingleChoiceConsistency(t *testing.T) {
	// answer missing from the options
	payload := `{"exercises": [
		{"id":"ex_01","topicId":"T","type":"single_choice","question":"q","options":["a","b"],"correctAnswer":"c","explanation":""}
	]}`
	_, err := parseExerciseBatch(json.RawMessage(payload))
	assert.Error(t, err)

	// a single option is not a choice
	payload = `{"exercises": [
		{"id":"ex_01","topicId":"T","type":"single_choice","question":"q","options":["a"],"correctAnswer":"a","explanation":""}
	]}`
	_, err = parseExerciseBatch(json.RawMessage(payload))
	assert.Error(t, err)
}
