// Package llm wraps the external text-generation API with bounded timeouts
// and retry/backoff classification. Only the insight engine calls it.
package llm

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// maxAttempts bounds one GenerateCompletion call, first try included.
	maxAttempts = 4
	// attemptTimeout bounds a single request to the remote API.
	attemptTimeout = 20 * time.Second
	// baseDelay is the backoff unit: delay before attempt N is
	// baseDelay * 2^(N-1) plus up to maxJitter.
	baseDelay = 1 * time.Second
	maxJitter = 250 * time.Millisecond
)

// ErrEmptyCompletion is returned when the API answered but the completion
// text was empty. Retryable.
var ErrEmptyCompletion = errors.New("empty completion")

// Message is one chat-style prompt message.
type Message struct {
	Role    string
	Content string
}

// completionAPI is the part of the OpenAI-compatible client the wrapper uses.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client calls a remote OpenAI-compatible completion API with retries.
// Rate limits, request timeouts, 5xx responses, and empty bodies are retried
// with exponential backoff and jitter; other 4xx responses are terminal and
// propagate immediately.
type Client struct {
	api   completionAPI
	model string
	sleep func(time.Duration)
}

// NewClient returns a Client for the given API key and model. baseURL is
// optional and overrides the default endpoint (for proxies or compatible
// providers).
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
		sleep: time.Sleep,
	}
}

// GenerateCompletion sends the prompt and returns the completion text.
// It retries retryable failures up to maxAttempts total attempts and returns
// the last error when all attempts fail.
func (c *Client) GenerateCompletion(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.sleep(backoffDelay(attempt))
		}

		text, err := c.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		if !Retryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(attemptCtx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// backoffDelay is the wait before the given attempt (2-based):
// baseDelay * 2^(attempt-2) plus random jitter in [0, maxJitter).
func backoffDelay(attempt int) time.Duration {
	d := baseDelay << (attempt - 2)
	return d + time.Duration(rand.Int63n(int64(maxJitter)))
}

// Retryable classifies an error from the completion API. Rate limits,
// request timeouts, 5xx responses, empty completions, and transport failures
// are retryable; any other client error is terminal.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyCompletion) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	// Transport-level failure with no status: worth retrying.
	return true
}

func retryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}
