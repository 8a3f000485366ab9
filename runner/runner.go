package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/engine"
	"github.com/hupe1980/ragmesh/internal/util"
	"github.com/hupe1980/ragmesh/logging"
	"github.com/hupe1980/ragmesh/memory"
	"github.com/hupe1980/ragmesh/model"
)

// ErrToolLoopExceeded reports that a turn hit the configured bound on
// consecutive tool-call iterations without the model producing a final
// answer. It is surfaced to the caller, never silently dropped.
var ErrToolLoopExceeded = errors.New("tool call loop exceeded configured bound")

// TurnError wraps any failure of a single turn. The conversation's prior
// history stays intact; messages appended during the failed turn remain in
// the transcript so the model keeps full context on a retried turn.
type TurnError struct {
	TurnID string
	Err    error
}

// Error implements the error interface.
func (e *TurnError) Error() string {
	return fmt.Sprintf("turn %s failed: %v", e.TurnID, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *TurnError) Unwrap() error { return e.Err }

// Options holds configuration overrides passed to New().
type Options struct {
	// MaxToolIterations bounds consecutive tool-call iterations per user turn
	// so a model that keeps requesting tools cannot loop forever.
	MaxToolIterations int
	// Memory enables retrieval augmentation when non-nil.
	Memory memory.Memory
	// RetrievalTopK limits how many recalled texts are injected per turn.
	RetrievalTopK int
	// ContinueWithoutRetrieval degrades a turn gracefully when recall fails:
	// the store error is logged and augmentation skipped. When false a recall
	// failure aborts the turn.
	ContinueWithoutRetrieval bool
	// Logger receives structured turn progress events.
	Logger logging.Logger
}

// Runner orchestrates turns of a conversation against a gateway and a tool
// engine. A Runner holds no per-conversation state and may serve many
// conversations concurrently, but turns of the same Conversation must be
// executed sequentially (transcript appends are strictly ordered).
type Runner struct {
	gateway model.Gateway
	engine  *engine.Engine
	opts    Options
}

// New constructs a Runner with optional overrides.
func New(gateway model.Gateway, eng *engine.Engine, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxToolIterations:        5,
		RetrievalTopK:            3,
		ContinueWithoutRetrieval: true,
		Logger:                   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{gateway: gateway, engine: eng, opts: opts}
}

// RunTurn executes one user turn: the user text is appended, optionally
// augmented with recalled context, and the gateway/engine loop runs until the
// model answers without tool calls. The returned string is the final
// assistant content; the updated Conversation is the observable side effect.
func (r *Runner) RunTurn(ctx context.Context, conv *core.Conversation, userText string) (string, error) {
	turnID := util.NewID()
	logger := r.opts.Logger

	logger.Info("runner.turn.start", "turn_id", turnID, "transcript_len", conv.Len())

	if err := conv.Append(core.NewUserMessage(userText)); err != nil {
		return "", &TurnError{TurnID: turnID, Err: err}
	}

	if r.opts.Memory != nil {
		if err := r.augment(ctx, conv, userText, turnID); err != nil {
			return "", &TurnError{TurnID: turnID, Err: err}
		}
	}

	for iteration := 0; iteration <= r.opts.MaxToolIterations; iteration++ {
		reply, err := r.gateway.Chat(ctx, conv.Messages())
		if err != nil {
			logger.Error("runner.turn.chat_failed", "turn_id", turnID, "iteration", iteration, "error", err.Error())
			return "", &TurnError{TurnID: turnID, Err: err}
		}
		if err := conv.Append(reply); err != nil {
			return "", &TurnError{TurnID: turnID, Err: err}
		}

		decision := r.engine.Inspect(reply)
		if !decision.IsToolCall() {
			logger.Info("runner.turn.complete", "turn_id", turnID, "iterations", iteration)
			return reply.Content, nil
		}

		logger.Debug("runner.turn.tool_calls", "turn_id", turnID, "iteration", iteration, "count", len(decision.ToolCalls))
		for _, call := range decision.ToolCalls {
			result := r.engine.Execute(ctx, call)
			if err := conv.Append(result); err != nil {
				return "", &TurnError{TurnID: turnID, Err: err}
			}
		}
	}

	logger.Warn("runner.turn.tool_loop_exceeded", "turn_id", turnID, "max_iterations", r.opts.MaxToolIterations)
	return "", &TurnError{TurnID: turnID, Err: ErrToolLoopExceeded}
}

// augment recalls related texts for the user input and appends them as a
// system message ahead of the model call. Retrieval is an enhancement, not a
// requirement: store failures degrade to a skipped augmentation when
// configured to continue.
func (r *Runner) augment(ctx context.Context, conv *core.Conversation, userText, turnID string) error {
	results, err := r.opts.Memory.Recall(ctx, userText, r.opts.RetrievalTopK)
	if err != nil {
		if r.opts.ContinueWithoutRetrieval {
			r.opts.Logger.Warn("runner.turn.retrieval_skipped", "turn_id", turnID, "error", err.Error())
			return nil
		}
		return err
	}
	if len(results) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("Relevant context recalled from memory:")
	for _, res := range results {
		sb.WriteString("\n- ")
		sb.WriteString(res.Content)
	}

	r.opts.Logger.Debug("runner.turn.retrieval", "turn_id", turnID, "hits", len(results))
	return conv.Append(core.NewSystemMessage(sb.String()))
}
