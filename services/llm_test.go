package services

import (
	"context"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatClient struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (c *stubChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.lastReq = req
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{
		Model: req.Model,
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.content}},
		},
	}, nil
}

func newTestLLM(client ChatClient) *LLMService {
	return &LLMService{client: client, model: "test-model", timeout: 5 * time.Second}
}

func TestGenerateValidatesAgainstSchema(t *testing.T) {
	client := &stubChatClient{content: `{"level":"B1","goals":["work"],"interests":["music"],"summary":"ok"}`}
	svc := newTestLLM(client)

	raw, err := svc.Generate(context.Background(), "system", "user", profileResponseSchema)
	require.NoError(t, err)
	assert.JSONEq(t, client.content, string(raw))

	// schema was forwarded as a structured output request
	require.NotNil(t, client.lastReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, client.lastReq.ResponseFormat.Type)
	assert.Equal(t, "user-profile", client.lastReq.ResponseFormat.JSONSchema.Name)
}

func TestGenerateRejectsSchemaViolations(t *testing.T) {
	// enum violation: not a CEFR level
	client := &stubChatClient{content: `{"level":"native","goals":["work"],"interests":["music"],"summary":"ok"}`}
	svc := newTestLLM(client)

	_, err := svc.Generate(context.Background(), "system", "user", profileResponseSchema)
	invalid := &ErrInvalidResponse{}
	require.ErrorAs(t, err, &invalid)
	assert.NotEmpty(t, invalid.Content)
}

func TestGenerateRejectsNonJSON(t *testing.T) {
	client := &stubChatClient{content: `Sorry, I cannot do that.`}
	svc := newTestLLM(client)

	_, err := svc.Generate(context.Background(), "system", "user", profileResponseSchema)
	invalid := &ErrInvalidResponse{}
	assert.ErrorAs(t, err, &invalid)
}

func TestGenerateMapsRateLimitErrors(t *testing.T) {
	client := &stubChatClient{err: &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}}
	svc := newTestLLM(client)

	_, err := svc.Generate(context.Background(), "system", "user", nil)
	rateLimited := &ErrRateLimit{}
	assert.ErrorAs(t, err, &rateLimited)

	client.err = &openai.APIError{HTTPStatusCode: 503, Message: "down"}
	_, err = svc.Generate(context.Background(), "system", "user", nil)
	unavailable := &ErrProviderUnavailable{}
	assert.ErrorAs(t, err, &unavailable)
}

func TestGenerateWithoutSchemaReturnsRawContent(t *testing.T) {
	client := &stubChatClient{content: `plain text answer`}
	svc := newTestLLM(client)

	raw, err := svc.Generate(context.Background(), "system", "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text answer", string(raw))
}
