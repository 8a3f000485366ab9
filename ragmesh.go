// Package ragmesh provides a high-level façade over the turn runner and its
// collaborators (inference gateway, tool registry, semantic memory, logging)
// enabling rapid construction of retrieval-augmented conversational agents.
// Most applications interact with this package by:
//  1. Creating an Agent via New() with a model.Gateway (optionally overriding
//     tools, memory and logging)
//  2. Calling Ask() per user turn (or AskIn() for named sessions)
//  3. Inspecting Conversation() for the full transcript
//
// The façade delegates orchestration to runner.Runner while keeping setup and
// usage ergonomics concise. Defaults are safe for local development; wire a
// VectorMemory backed by a real store for production retrieval.
package ragmesh

import (
	"context"

	"github.com/hupe1980/ragmesh/config"
	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/engine"
	"github.com/hupe1980/ragmesh/logging"
	"github.com/hupe1980/ragmesh/memory"
	"github.com/hupe1980/ragmesh/model"
	"github.com/hupe1980/ragmesh/model/ollama"
	"github.com/hupe1980/ragmesh/runner"
	"github.com/hupe1980/ragmesh/session"
	"github.com/hupe1980/ragmesh/tool"
	"github.com/hupe1980/ragmesh/vectorstore"
	"github.com/hupe1980/ragmesh/vectorstore/qdrant"
)

// DefaultSessionID names the session used by Ask() and Conversation().
const DefaultSessionID = "default"

// Options configure the Agent façade.
type Options struct {
	// Tools registered for the model to call. The registry is frozen when the
	// Agent is constructed.
	Tools []tool.Tool
	// Memory enables retrieval augmentation when non-nil.
	Memory memory.Memory
	// Sessions stores per-session transcripts (in-memory store if nil).
	Sessions session.Store
	// SystemPrompt seeds every fresh conversation when non-empty.
	SystemPrompt string
	// MaxToolIterations bounds consecutive tool-call iterations per turn.
	MaxToolIterations int
	// RetrievalTopK limits injected context items per turn.
	RetrievalTopK int
	// ContinueWithoutRetrieval skips augmentation on store failures instead of
	// aborting the turn.
	ContinueWithoutRetrieval bool
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Agent serves conversations through the runner, one transcript per session
// id. Safe for concurrent use across different sessions; turns within one
// session must run sequentially.
type Agent struct {
	runner       *runner.Runner
	sessions     session.Store
	systemPrompt string
}

// New creates an Agent around the given gateway with optional overrides.
func New(gateway model.Gateway, optFns ...func(o *Options)) *Agent {
	opts := Options{
		MaxToolIterations:        5,
		RetrievalTopK:            3,
		ContinueWithoutRetrieval: true,
		Logger:                   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore()
	}

	eng := engine.New(tool.NewRegistry(opts.Tools...), func(o *engine.Options) {
		o.Logger = opts.Logger
	})

	r := runner.New(gateway, eng, func(o *runner.Options) {
		o.MaxToolIterations = opts.MaxToolIterations
		o.Memory = opts.Memory
		o.RetrievalTopK = opts.RetrievalTopK
		o.ContinueWithoutRetrieval = opts.ContinueWithoutRetrieval
		o.Logger = opts.Logger
	})

	return &Agent{runner: r, sessions: opts.Sessions, systemPrompt: opts.SystemPrompt}
}

// FromConfig wires an Agent from application configuration: Ollama gateway,
// Qdrant-backed vector memory and structured logging.
func FromConfig(cfg *config.Config, tools ...tool.Tool) *Agent {
	logger := logging.New(&logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	gateway := ollama.New(cfg.Ollama.Host, func(o *ollama.Options) {
		o.Model = cfg.Ollama.Model
		o.EmbedModel = cfg.Ollama.EmbedModel
	})

	var mem memory.Memory
	if cfg.Retrieval.Enabled {
		policy := vectorstore.AppendIfExists
		if cfg.Qdrant.ResetOnReuse {
			policy = vectorstore.ResetOnExists
		}
		store := qdrant.New(cfg.Qdrant.URL, func(o *qdrant.Options) {
			o.ResetPolicy = policy
			o.APIKey = cfg.Qdrant.APIKey
		})
		mem = memory.NewVectorMemory(gateway, store, cfg.Qdrant.Collection, cfg.Qdrant.Dimensions,
			func(o *memory.Options) {
				o.Quantization = cfg.Qdrant.Quantization
				o.Logger = logger
			})
	}

	return New(gateway, func(o *Options) {
		o.Tools = tools
		o.Memory = mem
		o.SystemPrompt = cfg.Agent.SystemPrompt
		o.MaxToolIterations = cfg.Agent.MaxToolIterations
		o.RetrievalTopK = cfg.Retrieval.TopK
		o.ContinueWithoutRetrieval = cfg.Retrieval.ContinueWithoutRetrieval
		o.Logger = logger
	})
}

// Ask runs one user turn in the default session and returns the model's final
// answer.
func (a *Agent) Ask(ctx context.Context, userText string) (string, error) {
	return a.AskIn(ctx, DefaultSessionID, userText)
}

// AskIn runs one user turn in the named session. Each session id owns an
// independent transcript; a fresh session is seeded with the configured
// system prompt.
func (a *Agent) AskIn(ctx context.Context, sessionID, userText string) (string, error) {
	conv := a.conversationFor(sessionID)
	return a.runner.RunTurn(ctx, conv, userText)
}

// Conversation exposes the default session's transcript.
func (a *Agent) Conversation() *core.Conversation {
	return a.conversationFor(DefaultSessionID)
}

// ConversationIn exposes the named session's transcript, creating it if
// absent.
func (a *Agent) ConversationIn(sessionID string) *core.Conversation {
	return a.conversationFor(sessionID)
}

// Reset drops the named session's transcript. The next turn starts clean.
func (a *Agent) Reset(sessionID string) {
	a.sessions.Delete(sessionID)
}

func (a *Agent) conversationFor(sessionID string) *core.Conversation {
	conv, created := a.sessions.GetOrCreate(sessionID)
	if created && a.systemPrompt != "" {
		// A fresh conversation cannot fail the append invariant here.
		_ = conv.Append(core.NewSystemMessage(a.systemPrompt))
	}
	return conv
}
