package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/observability"
)

// ErrDuplicateTool is returned when a tool name is registered twice.
var ErrDuplicateTool = errors.New("duplicate tool")

// Registry is the named set of tools. It is populated at startup and
// read concurrently afterwards.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.Named("tools"),
	}
}

// Register adds a tool. Returns ErrDuplicateTool if the name exists.
func (r *Registry) Register(t Tool) error {
	name := t.Descriptor().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Descriptors returns all tool descriptors sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute runs the named tool and always returns exactly one ToolResult.
// Unknown tools and panics become error results.
func (r *Registry) Execute(ctx context.Context, name string, args Args) (res domain.ToolResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = domain.Failure(name, fmt.Sprintf("tool panicked: %v", p))
			r.logger.Error("tool panicked", zap.String("tool", name), zap.Any("panic", p))
		}
		res.Tool = name
		res.Latency = time.Since(start)
		observability.RecordToolCall(name, res.Outcome.String(), res.Latency.Seconds())
		r.logger.Debug("tool call finished",
			zap.String("tool", name),
			zap.String("address", args.Address),
			zap.String("outcome", res.Outcome.String()),
			zap.String("reason", res.Reason),
			zap.Duration("latency", res.Latency),
		)
	}()

	t, ok := r.Get(name)
	if !ok {
		return domain.Failure(name, fmt.Sprintf("unknown tool %q", name))
	}
	return t.Call(ctx, args)
}
