package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/internal/util"
	"github.com/hupe1980/ragmesh/logging"
	"github.com/hupe1980/ragmesh/tool"
)

// Decision is the outcome of inspecting an assistant reply. An empty ToolCalls
// slice means the reply is final for the turn.
type Decision struct {
	ToolCalls []core.ToolCall
}

// IsToolCall reports whether the reply requested tool execution.
func (d Decision) IsToolCall() bool { return len(d.ToolCalls) > 0 }

// Options configure the Engine.
type Options struct {
	Logger logging.Logger
}

// Engine executes tool calls against a frozen registry. It holds no
// per-conversation state and is shared by all sessions.
type Engine struct {
	registry *tool.Registry
	logger   logging.Logger
}

// New creates an Engine over the given registry. The registry is frozen here
// if the caller has not done so already.
func New(registry *tool.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	registry.Freeze()
	return &Engine{registry: registry, logger: opts.Logger}
}

// Inspect examines an assistant reply for embedded tool calls. It is pure and
// side-effect free; non-assistant messages never carry calls.
func (e *Engine) Inspect(msg core.Message) Decision {
	if msg.Role != core.RoleAssistant {
		return Decision{}
	}
	return Decision{ToolCalls: msg.ToolCalls}
}

// Execute runs a single tool call and renders the outcome as a tool-role
// message. Unknown tools, invalid arguments, handler errors and handler
// panics all become messages describing the failure, so the model can
// self-correct; a call is never retried automatically.
func (e *Engine) Execute(ctx context.Context, call core.ToolCall) core.Message {
	impl, ok := e.registry.Lookup(call.Name)
	if !ok {
		e.logger.Warn("engine.tool.unknown", "tool", call.Name)
		return failureMessage(tool.NewToolError(call.Name, "no tool registered under this name", tool.CodeUnknownTool))
	}

	// Arguments are validated at this boundary for every tool, never left to
	// the handler to discover.
	if err := util.ValidateParameters(call.Arguments, impl.Parameters()); err != nil {
		e.logger.Warn("engine.tool.validation_failed", "tool", call.Name, "error", err.Error())
		return failureMessage(&tool.ToolError{
			Tool:    call.Name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    tool.CodeValidationError,
			Details: err,
		})
	}

	start := time.Now()
	result, err := e.invoke(ctx, impl, call.Arguments)
	e.logger.Info(
		"engine.tool.executed",
		"tool", call.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		if toolErr, ok := err.(*tool.ToolError); ok {
			return failureMessage(toolErr)
		}
		return failureMessage(tool.NewToolError(call.Name, err.Error(), tool.CodeExecutionError))
	}
	return successMessage(call.Name, result)
}

// invoke runs the handler with panic recovery so a misbehaving tool cannot
// take down the conversation loop.
func (e *Engine) invoke(ctx context.Context, impl tool.Tool, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine.tool.panic", "tool", impl.Name(), "recover", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
			err = tool.NewToolError(impl.Name(), fmt.Sprintf("handler panicked: %v", r), tool.CodeExecutionError)
		}
	}()
	return impl.Call(ctx, args)
}

func successMessage(name string, result any) core.Message {
	content, err := json.Marshal(map[string]any{"tool": name, "result": result})
	if err != nil {
		// Result is not JSON-serializable; fall back to formatting.
		content = []byte(fmt.Sprintf(`{"tool":%q,"result":%q}`, name, fmt.Sprintf("%v", result)))
	}
	return core.NewToolMessage(string(content))
}

func failureMessage(toolErr *tool.ToolError) core.Message {
	content, err := json.Marshal(map[string]any{
		"tool":  toolErr.Tool,
		"error": toolErr.Message,
		"code":  toolErr.Code,
	})
	if err != nil {
		content = []byte(fmt.Sprintf(`{"tool":%q,"error":%q}`, toolErr.Tool, toolErr.Message))
	}
	return core.NewToolMessage(string(content))
}
