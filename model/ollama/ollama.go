// Package ollama implements model.Gateway against an Ollama-compatible
// inference server speaking JSON over HTTP POST (/api/generate, /api/chat,
// /api/embed). Streaming is always disabled; every call carries the full
// transcript and a mandatory timeout.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/model"
)

// DefaultHost is the conventional local Ollama endpoint.
const DefaultHost = "http://localhost:11434"

// Options configure the Ollama gateway.
type Options struct {
	// Model used for generate and chat calls.
	Model string
	// EmbedModel used for embedding calls; falls back to Model when empty.
	EmbedModel string
	// Timeout applied per call. Calls without a deadline would otherwise hang
	// on a stuck server, so zero falls back to DefaultTimeout.
	Timeout time.Duration
	// HTTPClient allows injecting a custom transport (tests, proxies).
	HTTPClient *http.Client
	// Limiter optionally throttles outbound calls client-side.
	Limiter *rate.Limiter
}

// DefaultTimeout bounds a single inference call.
const DefaultTimeout = 120 * time.Second

// Gateway is an HTTP client for the Ollama wire contract implementing
// model.Gateway. It is stateless and safe for concurrent use.
type Gateway struct {
	host string
	opts Options
}

var _ model.Gateway = (*Gateway)(nil)

// New creates a Gateway for the given host (e.g. "http://localhost:11434").
// An empty host selects DefaultHost.
func New(host string, optFns ...func(o *Options)) *Gateway {
	if host == "" {
		host = DefaultHost
	}
	opts := Options{
		Model:   "llama3.1",
		Timeout: DefaultTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Gateway{host: host, opts: opts}
}

// Info returns gateway metadata.
func (g *Gateway) Info() model.Info {
	return model.Info{Name: g.opts.Model, Provider: "ollama"}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type wireToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Message struct {
		Role      string         `json:"role"`
		Content   string         `json:"content"`
		ToolCalls []wireToolCall `json:"tool_calls"`
	} `json:"message"`
	Done bool `json:"done"`
}

type embedRequest struct {
	Model  string   `json:"model"`
	Input  []string `json:"input"`
	Stream bool     `json:"stream"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Complete implements model.Gateway via /api/generate.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := g.post(ctx, "generate", "/api/generate", generateRequest{
		Model:  g.opts.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &core.DecodeError{Op: "generate", Err: err}
	}
	return decoded.Response, nil
}

// Chat implements model.Gateway via /api/chat. Outbound messages carry role
// and content only; tool calls on assistant turns are a client-side concern.
func (g *Gateway) Chat(ctx context.Context, transcript []core.Message) (core.Message, error) {
	messages := make([]wireMessage, len(transcript))
	for i, msg := range transcript {
		messages[i] = wireMessage{Role: msg.Role.String(), Content: msg.Content}
	}

	body, err := g.post(ctx, "chat", "/api/chat", chatRequest{
		Model:    g.opts.Model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return core.Message{}, err
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return core.Message{}, &core.DecodeError{Op: "chat", Err: err}
	}
	if decoded.Message.Role != core.RoleAssistant.String() {
		return core.Message{}, &core.DecodeError{
			Op:  "chat",
			Err: fmt.Errorf("expected assistant reply, got role %q", decoded.Message.Role),
		}
	}

	toolCalls := make([]core.ToolCall, 0, len(decoded.Message.ToolCalls))
	for _, tc := range decoded.Message.ToolCalls {
		args, err := decodeArguments(tc.Function.Arguments)
		if err != nil {
			return core.Message{}, &core.DecodeError{
				Op:  "chat",
				Err: fmt.Errorf("tool call %q arguments: %w", tc.Function.Name, err),
			}
		}
		toolCalls = append(toolCalls, core.ToolCall{Name: tc.Function.Name, Arguments: args})
	}

	return core.NewAssistantMessage(decoded.Message.Content, toolCalls...), nil
}

// Embed implements model.Gateway via /api/embed. The returned batch must have
// the same length and order as the input; a count mismatch is a ShapeError.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embedModel := g.opts.EmbedModel
	if embedModel == "" {
		embedModel = g.opts.Model
	}

	body, err := g.post(ctx, "embed", "/api/embed", embedRequest{
		Model:  embedModel,
		Input:  texts,
		Stream: false,
	})
	if err != nil {
		return nil, err
	}

	var decoded embedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &core.DecodeError{Op: "embed", Err: err}
	}
	if len(decoded.Embeddings) != len(texts) {
		return nil, &core.ShapeError{Op: "embed", Want: len(texts), Got: len(decoded.Embeddings)}
	}
	return decoded.Embeddings, nil
}

// post sends one JSON request and returns the raw response body. Network and
// status failures surface as *core.TransportError so callers can apply a
// retry policy.
func (g *Gateway) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	url := g.host + path

	if g.opts.Limiter != nil {
		if err := g.opts.Limiter.Wait(ctx); err != nil {
			return nil, &core.TransportError{Op: op, URL: url, Err: err}
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &core.DecodeError{Op: op, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.TransportError{
			Op:  op,
			URL: url,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}
	return body, nil
}

// decodeArguments normalizes a tool call argument payload. Servers deliver
// arguments either as a JSON object or as a JSON-encoded string containing an
// object; both forms decode to the same map.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	parsed := gjson.ParseBytes(raw)
	if parsed.Type == gjson.String {
		parsed = gjson.Parse(parsed.String())
	}
	if !parsed.IsObject() {
		return nil, fmt.Errorf("arguments are not a JSON object: %s", raw)
	}

	args, ok := parsed.Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("arguments are not a JSON object: %s", raw)
	}
	return args, nil
}
