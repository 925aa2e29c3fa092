package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	apperrors "careercompass/internal/errors"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

var errEmptyCompletion = errors.New("empty completion")

// Completer sends a prompt to a text-completion service and returns the raw text.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// GenerateFunc performs a single upstream completion call.
type GenerateFunc func(ctx context.Context, model, prompt string) (string, error)

// CompletionOptions bound every upstream call.
type CompletionOptions struct {
	// Timeout caps one attempt; zero disables it.
	Timeout time.Duration
	// Attempts is the total number of tries, at least 1.
	Attempts int
	// Backoff is multiplied by the attempt number between tries.
	Backoff time.Duration
	// BreakerFailures consecutive failures open the circuit for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// CompletionOptionsFor returns the defaults with the configured timeout and
// attempt count applied.
func CompletionOptionsFor(timeout time.Duration, attempts int) CompletionOptions {
	opts := DefaultCompletionOptions()
	opts.Timeout = timeout
	if attempts > 0 {
		opts.Attempts = attempts
	}
	return opts
}

// DefaultCompletionOptions makes one attempt per request.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Timeout:         90 * time.Second,
		Attempts:        1,
		Backoff:         500 * time.Millisecond,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// CompletionClient guards a GenerateFunc with a timeout, bounded retry and a
// circuit breaker. Every failure surfaces as *errors.ServiceError.
type CompletionClient struct {
	generate GenerateFunc
	opts     CompletionOptions
	breaker  *gobreaker.CircuitBreaker
}

var _ Completer = (*CompletionClient)(nil)

// NewCompletionClient wraps generate with the given options.
func NewCompletionClient(generate GenerateFunc, opts CompletionOptions) *CompletionClient {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown == 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	failures := opts.BreakerFailures
	return &CompletionClient{
		generate: generate,
		opts:     opts,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "completion",
			Timeout: opts.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			// a caller hanging up says nothing about the upstream
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// NewGeminiClient builds a completion client backed by the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string, opts CompletionOptions) (*CompletionClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	generate := func(ctx context.Context, model, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return NewCompletionClient(generate, opts), nil
}

// Complete implements Completer.
func (c *CompletionClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	text, err := retry(ctx, c.opts.Attempts, c.opts.Backoff, func(ctx context.Context) (string, error) {
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.attempt(ctx, model, prompt)
		})
		if err != nil {
			return "", err
		}
		return out.(string), nil
	})
	if err != nil {
		return "", &apperrors.ServiceError{Op: "complete with " + model, Err: err}
	}
	return text, nil
}

func (c *CompletionClient) attempt(ctx context.Context, model, prompt string) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	text, err := c.generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

// retry calls fn up to attempts times with linear backoff. It stops early when
// the context ends or the circuit is open.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	tries := 0

	for tries < attempts {
		result, err := fn(ctx)
		tries++
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || tries == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", tries, ctx.Err())
		case <-time.After(backoff * time.Duration(tries)):
		}
	}
	if tries > 1 {
		return zero, fmt.Errorf("after %d attempts: %w", tries, lastErr)
	}
	return zero, lastErr
}
