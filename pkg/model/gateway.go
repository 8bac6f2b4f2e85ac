// Package model implements the generate gateway: the single choke-point
// through which solvers request model completions.
//
// The gateway owns admission control (a counting semaphore bounding
// in-flight generations across all concurrent runs) and retry-with-backoff
// for transient backend faults. Solvers never talk to a ModelClient
// directly; they receive a Generate closure bound to a Gateway.
package model

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/ports"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultMaxConnections bounds concurrently in-flight generations.
	DefaultMaxConnections = 10

	// DefaultMaxRetries is the retry ceiling for transient faults.
	DefaultMaxRetries = 3

	defaultBaseDelay = 250 * time.Millisecond
	defaultMaxDelay  = 10 * time.Second
)

// Gateway mediates all generation calls against one backend.
type Gateway struct {
	client     ports.ModelClient
	config     ports.GenerateConfig
	sem        *semaphore.Weighted
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *slog.Logger
	onGenerate func(context.Context, *domain.GenerateEvent)
}

// Option defines a functional option for configuring the Gateway.
type Option func(*Gateway)

// WithMaxConnections sets the admission-control budget: the maximum number
// of concurrently in-flight generation calls across all runs.
func WithMaxConnections(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMaxRetries sets the retry ceiling for transient backend errors.
func WithMaxRetries(n int) Option {
	return func(g *Gateway) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// WithBaseDelay sets the initial backoff delay between retries.
func WithBaseDelay(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.baseDelay = d
		}
	}
}

// WithConfig sets the generation parameters sent on every call.
func WithConfig(config ports.GenerateConfig) Option {
	return func(g *Gateway) {
		g.config = config
	}
}

// WithLogger sets a custom structured logger for the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithGenerateHook registers a callback fired after every gateway call,
// successful or not.
func WithGenerateHook(hook func(context.Context, *domain.GenerateEvent)) Option {
	return func(g *Gateway) {
		g.onGenerate = hook
	}
}

// NewGateway creates a gateway for the given backend.
func NewGateway(client ports.ModelClient, opts ...Option) *Gateway {
	g := &Gateway{
		client:     client,
		sem:        semaphore.NewWeighted(DefaultMaxConnections),
		maxRetries: DefaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Client returns the backend this gateway mediates.
func (g *Gateway) Client() ports.ModelClient { return g.client }

// Generate invokes the backend with the state's current messages, appends
// the resulting assistant message, and sets the state's output. It blocks
// while waiting for admission; cancellation is honored at every stage.
func (g *Gateway) Generate(ctx context.Context, state *domain.TaskState) (*domain.TaskState, error) {
	if len(state.Messages) == 0 {
		return nil, domain.ErrNoMessages
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.sem.Release(1)

	start := time.Now()
	output, retries, err := g.generateWithRetry(ctx, state.Messages)
	g.emit(ctx, output, retries, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	state.Append(output.Message())
	state.Output = output
	return state, nil
}

func (g *Gateway) generateWithRetry(ctx context.Context, messages []domain.ChatMessage) (*domain.ModelOutput, int, error) {
	delay := g.baseDelay
	for attempt := 0; ; attempt++ {
		output, err := g.client.Generate(ctx, messages, g.config)
		if err == nil {
			return output, attempt, nil
		}

		if !g.retryable(err) || attempt >= g.maxRetries {
			return nil, attempt, g.terminal(err)
		}

		g.logger.Warn("generation failed, retrying",
			"model", g.client.Name(),
			"attempt", attempt+1,
			"max_retries", g.maxRetries,
			"delay", delay,
			"err", err)

		if err := sleep(ctx, jitter(delay)); err != nil {
			return nil, attempt, err
		}
		delay = min(delay*2, g.maxDelay)
	}
}

// retryable reports whether the gateway may retry the fault. Cancellation
// is never retried.
func (g *Gateway) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var genErr *domain.GenerationError
	return errors.As(err, &genErr) && genErr.Temporary
}

// terminal normalizes backend failures to a *domain.GenerationError so
// callers see a single error type once retries are exhausted.
func (g *Gateway) terminal(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return &domain.GenerationError{Model: g.client.Name(), Temporary: false, Err: genErr.Err}
	}
	return &domain.GenerationError{Model: g.client.Name(), Temporary: false, Err: err}
}

func (g *Gateway) emit(ctx context.Context, output *domain.ModelOutput, retries int, duration time.Duration, err error) {
	if g.onGenerate == nil {
		return
	}
	event := &domain.GenerateEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventGenerate},
		Model:     g.client.Name(),
		Duration:  duration,
		Retries:   retries,
		Err:       err,
	}
	if output != nil {
		event.Usage = output.Usage
	}
	g.onGenerate(ctx, event)
}

func jitter(d time.Duration) time.Duration {
	return d/2 + time.Duration(rand.Int63n(int64(d)))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
