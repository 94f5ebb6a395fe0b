package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAnswer(t *testing.T) {
	assert.True(t, CheckAnswer("goes", "goes"))
	assert.True(t, CheckAnswer("  Goes ", "goes"))
	assert.True(t, CheckAnswer("GOES", "Goes"))
	assert.False(t, CheckAnswer("go", "goes"))
	assert.False(t, CheckAnswer("", "goes"))
}

func TestCheckAnswerVariants(t *testing.T) {
	assert.True(t, CheckAnswer("don't", "do not|don't"))
	assert.True(t, CheckAnswer("Do Not", "do not|don't"))
	assert.True(t, CheckAnswer(" has gone ", "has gone|'s gone"))
	assert.False(t, CheckAnswer("did not", "do not|don't"))

	// a literal pipe answer never matches partially
	assert.False(t, CheckAnswer("do not|don't", "do not|don't"))
}
