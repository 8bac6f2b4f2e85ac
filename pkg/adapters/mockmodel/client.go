// Package mockmodel provides a scripted ModelClient for tests and offline
// runs. It replays a fixed sequence of completions or failures, records
// every conversation it was called with, and can simulate latency for
// admission-control tests.
package mockmodel

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/ports"
)

// Step is one scripted backend response.
type Step struct {
	output *domain.ModelOutput
	err    error
}

// Reply scripts a successful completion.
func Reply(completion string) Step {
	return Step{output: &domain.ModelOutput{
		Completion: completion,
		StopReason: domain.StopReasonStop,
		Usage:      domain.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}}
}

// Fail scripts a terminal generation failure.
func Fail(err error) Step {
	return Step{err: err}
}

// FailTemporary scripts a transient failure the gateway is allowed to retry.
func FailTemporary(err error) Step {
	return Step{err: &domain.GenerationError{Temporary: true, Err: err}}
}

// Client is a scripted generation backend. The zero value is not usable;
// construct with New.
type Client struct {
	name    string
	latency time.Duration

	mu     sync.Mutex
	script []Step
	next   int
	calls  [][]domain.ChatMessage
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithName overrides the reported model name (default "mockmodel").
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// WithLatency makes every call sleep before responding.
func WithLatency(d time.Duration) Option {
	return func(c *Client) {
		c.latency = d
	}
}

// New creates a client that replays the given steps in order. Once the
// script is exhausted the last step repeats, so a single Reply behaves as
// a constant backend.
func New(script []Step, opts ...Option) *Client {
	if len(script) == 0 {
		script = []Step{Reply("mock completion")}
	}
	c := &Client{name: "mockmodel", script: script}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Constant creates a client that always answers with the same completion.
func Constant(completion string) *Client {
	return New([]Step{Reply(completion)})
}

func (c *Client) Name() string { return c.name }

// Generate implements ports.ModelClient.
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage, config ports.GenerateConfig) (*domain.ModelOutput, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.mu.Lock()
	step := c.script[c.next]
	if c.next < len(c.script)-1 {
		c.next++
	}
	c.calls = append(c.calls, append([]domain.ChatMessage(nil), messages...))
	c.mu.Unlock()

	if step.err != nil {
		return nil, step.err
	}
	output := *step.output
	output.Model = c.name
	return &output, nil
}

// CallCount returns how many times Generate was invoked.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Call returns the conversation of the i-th Generate invocation.
func (c *Client) Call(i int) []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[i]
}
