package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"luxstay/internal/adapters/observability"
	"luxstay/internal/domain"
)

// AgentFunc is one routable tool. It may return any value; the router
// wraps non-mapping results into an envelope.
type AgentFunc func(ctx context.Context, task domain.Task) (any, error)

// Router dispatches tasks to registered agents and stamps every reply
// with a uniform envelope: status, agent, task_id and latency_ms. It
// never panics and never returns a malformed envelope, whatever the
// agent does.
type Router struct {
	mu     sync.RWMutex
	agents map[string]AgentFunc
	log    zerolog.Logger
}

func NewRouter(log zerolog.Logger) *Router {
	return &Router{agents: make(map[string]AgentFunc), log: log}
}

// Register binds an agent name to its handler, replacing any previous
// binding.
func (r *Router) Register(name string, fn AgentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[name] = fn
}

// Route dispatches one task and returns its stamped envelope. A missing
// task id is replaced with a fresh UUID so every reply is correlatable.
func (r *Router) Route(ctx context.Context, task domain.Task) map[string]any {
	corrID := task.TaskID
	if corrID == "" {
		corrID = uuid.NewString()
	}
	task.TaskID = corrID

	r.mu.RLock()
	fn, ok := r.agents[task.Agent]
	r.mu.RUnlock()
	if !ok {
		r.log.Warn().Str("agent", task.Agent).Str("task_id", corrID).Msg("unknown agent")
		observability.ObserveAgent(task.Agent, "error", 0)
		return map[string]any{
			"status":     "error",
			"error":      fmt.Sprintf("unknown agent: %s", task.Agent),
			"agent":      task.Agent,
			"task_id":    corrID,
			"latency_ms": int64(0),
		}
	}

	start := time.Now()
	result, err := r.invoke(ctx, fn, task)
	elapsed := time.Since(start)
	latency := elapsed.Milliseconds()
	if latency < 0 {
		latency = 0
	}

	out := envelope(result, err)
	out["agent"] = task.Agent
	out["task_id"] = corrID
	out["latency_ms"] = latency
	if _, ok := out["status"]; !ok {
		out["status"] = "ok"
	}

	status, _ := out["status"].(string)
	observability.ObserveAgent(task.Agent, status, elapsed)
	r.log.Debug().
		Str("agent", task.Agent).
		Str("task_id", corrID).
		Str("status", status).
		Int64("latency_ms", latency).
		Msg("task routed")
	return out
}

// invoke shields the router from panicking agents.
func (r *Router) invoke(ctx context.Context, fn AgentFunc, task domain.Task) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("agent", task.Agent).Any("panic", rec).Msg("agent panicked")
			err = fmt.Errorf("agent %s panicked: %v", task.Agent, rec)
		}
	}()
	return fn(ctx, task)
}

// envelope normalizes an agent result. Mapping results are shallow
// copied so stamping never mutates what the agent returned.
func envelope(result any, err error) map[string]any {
	if err != nil {
		return map[string]any{"status": "error", "error": err.Error()}
	}
	if m, ok := result.(map[string]any); ok {
		out := make(map[string]any, len(m)+4)
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return map[string]any{"status": "ok", "data": result}
}
