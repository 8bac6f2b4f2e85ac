package inquest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/inquest/internal/logging"
	"github.com/aretw0/inquest/internal/runtime"
	"github.com/aretw0/inquest/pkg/adapters/memory"
	"github.com/aretw0/inquest/pkg/adapters/middleware"
	"github.com/aretw0/inquest/pkg/domain"
	"github.com/aretw0/inquest/pkg/model"
	"github.com/aretw0/inquest/pkg/ports"
	"github.com/aretw0/inquest/pkg/registry"
	"github.com/aretw0/inquest/pkg/solver"
)

// Engine is the high-level entry point for the Inquest library.
// It binds a model backend to the gateway and the plan executor, and
// provides a simplified API for consumers.
type Engine struct {
	client   ports.ModelClient
	gateway  *model.Gateway
	executor *runtime.Executor
	registry *registry.Registry
	store    ports.RunStore
	scorer   ports.Scorer
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	maxMessages     int
	gatewayOpts     []model.Option
	storeMiddleware []middleware.Middleware
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStore sets the run store. Defaults to an in-memory store.
func WithStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithStoreMiddleware decorates the run store (default or WithStore's)
// with store-level behavior such as encryption at rest or PII masking.
// Middlewares are applied so the first listed is outermost: it sees Save
// calls first and Load results last.
func WithStoreMiddleware(mws ...middleware.Middleware) Option {
	return func(e *Engine) {
		e.storeMiddleware = append(e.storeMiddleware, mws...)
	}
}

// WithScorer sets the scorer applied to final states by the runner.
func WithScorer(scorer ports.Scorer) Option {
	return func(e *Engine) {
		e.scorer = scorer
	}
}

// WithRegistry replaces the default solver registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithMaxMessages sets the default conversation-length ceiling for runs.
func WithMaxMessages(n int) Option {
	return func(e *Engine) {
		e.maxMessages = n
	}
}

// WithMaxConnections bounds concurrent in-flight generations.
func WithMaxConnections(n int) Option {
	return func(e *Engine) {
		e.gatewayOpts = append(e.gatewayOpts, model.WithMaxConnections(n))
	}
}

// WithMaxRetries bounds gateway retries for transient generation faults.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		e.gatewayOpts = append(e.gatewayOpts, model.WithMaxRetries(n))
	}
}

// WithGenerateConfig sets the generation parameters sent with every call.
func WithGenerateConfig(config ports.GenerateConfig) Option {
	return func(e *Engine) {
		e.gatewayOpts = append(e.gatewayOpts, model.WithConfig(config))
	}
}

// New initializes an Inquest Engine around the given model backend.
func New(client ports.ModelClient, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("model client is required")
	}

	eng := &Engine{client: client}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.registry == nil {
		eng.registry = registry.Default()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	for i := len(eng.storeMiddleware) - 1; i >= 0; i-- {
		eng.store = eng.storeMiddleware[i](eng.store)
	}
	eng.logger = eng.logger.With("model", client.Name())

	gatewayOpts := []model.Option{model.WithLogger(eng.logger)}
	if eng.hooks.OnGenerate != nil {
		gatewayOpts = append(gatewayOpts, model.WithGenerateHook(eng.hooks.OnGenerate))
	}
	gatewayOpts = append(gatewayOpts, eng.gatewayOpts...)
	eng.gateway = model.NewGateway(client, gatewayOpts...)

	eng.executor = runtime.New(eng.gateway.Generate,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxMessages(eng.maxMessages),
	)

	return eng, nil
}

// Solve executes the plan against the state and returns the terminal
// state. The error, if any, is the run's single fatal outcome.
func (e *Engine) Solve(ctx context.Context, plan *solver.Plan, state *domain.TaskState) (*domain.TaskState, error) {
	return e.executor.Run(ctx, plan, state, runtime.Limits{})
}

// Registry returns the solver registry used to build plans from task files.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Store returns the engine's run store.
func (e *Engine) Store() ports.RunStore {
	return e.store
}

// Client returns the underlying model backend.
func (e *Engine) Client() ports.ModelClient {
	return e.client
}
