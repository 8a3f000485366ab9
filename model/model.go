package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/ragmesh/core"
)

// Gateway is the typed client contract for a remote inference service. All
// operations are stateless across calls: the caller supplies the full
// transcript each time and no server-side session is assumed.
//
// Failure modes map onto the shared taxonomy in core: *core.TransportError for
// network/timeout failures (retryable by the caller), *core.DecodeError when a
// response body does not match the expected schema, and *core.ShapeError when
// an embedding batch size diverges from the input batch.
type Gateway interface {
	// Complete sends a single prompt and returns the raw text response.
	Complete(ctx context.Context, prompt string) (string, error)

	// Chat sends the full ordered transcript and returns exactly one new
	// assistant message, which may carry tool calls.
	Chat(ctx context.Context, transcript []core.Message) (core.Message, error)

	// Embed returns one embedding per input text, same order and count.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Info contains metadata about a gateway implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "ollama", "openai", "mock", etc.
}

// MockGateway is a lightweight in-memory Gateway useful for tests & examples.
// Chat replies are consumed in FIFO order from a script, so multi-step tool
// call loops can be rehearsed deterministically. Embeddings are derived from a
// registered fixture map, falling back to a zero vector of the configured
// dimension.
type MockGateway struct {
	mu         sync.Mutex
	script     []core.Message
	embeddings map[string][]float32
	dimensions int
	calls      int
}

// NewMockGateway constructs a MockGateway producing embeddings of the given dimension.
func NewMockGateway(dimensions int) *MockGateway {
	return &MockGateway{
		embeddings: make(map[string][]float32),
		dimensions: dimensions,
	}
}

// EnqueueReply appends an assistant message to the chat script.
func (m *MockGateway) EnqueueReply(msg core.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, msg)
}

// AddEmbedding registers a deterministic embedding for a text.
func (m *MockGateway) AddEmbedding(text string, vector []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings[text] = vector
}

// ChatCalls reports how many Chat invocations the mock has served.
func (m *MockGateway) ChatCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Gateway by echoing the prompt through the chat script.
func (m *MockGateway) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.script) > 0 {
		reply := m.script[0]
		m.script = m.script[1:]
		return reply.Content, nil
	}
	return fmt.Sprintf("mock completion for: %s", prompt), nil
}

// Chat implements Gateway by dequeuing the next scripted reply.
func (m *MockGateway) Chat(_ context.Context, transcript []core.Message) (core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(transcript) == 0 {
		return core.Message{}, fmt.Errorf("empty transcript")
	}
	if len(m.script) == 0 {
		last := transcript[len(transcript)-1]
		return core.NewAssistantMessage(fmt.Sprintf("mock reply to: %s", last.Content)), nil
	}
	reply := m.script[0]
	m.script = m.script[1:]
	return reply, nil
}

// Embed implements Gateway using registered fixtures.
func (m *MockGateway) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := m.embeddings[text]; ok {
			out[i] = vec
			continue
		}
		out[i] = make([]float32, m.dimensions)
	}
	return out, nil
}
