// Package openai implements model.Gateway on top of the official OpenAI Go
// SDK (chat completions + embeddings). It lets deployments without a local
// inference host drive the same orchestrator; the wire protocol is the SDK's
// concern, this adapter only maps messages and the error taxonomy.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/model"
)

// Options configure the OpenAI gateway.
type Options struct {
	Model       string
	EmbedModel  string
	Temperature float64
}

// Gateway wraps an OpenAI client behind the generic model.Gateway interface.
type Gateway struct {
	client *openai.Client
	opts   Options
}

var _ model.Gateway = (*Gateway)(nil)

// New creates a Gateway using the default client (API key from environment).
func New(optFns ...func(o *Options)) *Gateway {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a Gateway from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
		EmbedModel:  openai.EmbeddingModelTextEmbedding3Small,
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Info returns gateway metadata.
func (g *Gateway) Info() model.Info {
	return model.Info{Name: g.opts.Model, Provider: "openai"}
}

// Complete implements model.Gateway as a single-turn chat call.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	reply, err := g.Chat(ctx, []core.Message{core.NewUserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// Chat implements model.Gateway. Outbound messages carry role and content
// only; tool calls in the reply are decoded into core.ToolCall values.
func (g *Gateway) Chat(ctx context.Context, transcript []core.Message) (core.Message, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case core.RoleTool:
			// Without provider tool-call ids the result is presented as user
			// context, mirroring the outbound chat contract.
			messages = append(messages, openai.UserMessage(msg.Content))
		default:
			return core.Message{}, fmt.Errorf("unsupported role %v", msg.Role)
		}
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       g.opts.Model,
		Temperature: openai.Float(g.opts.Temperature),
	})
	if err != nil {
		return core.Message{}, &core.TransportError{Op: "chat", URL: "openai", Err: err}
	}
	if len(completion.Choices) == 0 {
		return core.Message{}, &core.DecodeError{Op: "chat", Err: fmt.Errorf("response contained no choices")}
	}

	choice := completion.Choices[0].Message
	toolCalls := make([]core.ToolCall, 0, len(choice.ToolCalls))
	for _, tc := range choice.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return core.Message{}, &core.DecodeError{
					Op:  "chat",
					Err: fmt.Errorf("tool call %q arguments: %w", tc.Function.Name, err),
				}
			}
		}
		toolCalls = append(toolCalls, core.ToolCall{Name: tc.Function.Name, Arguments: args})
	}

	return core.NewAssistantMessage(choice.Content, toolCalls...), nil
}

// Embed implements model.Gateway via the embeddings endpoint.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: g.opts.EmbedModel,
	})
	if err != nil {
		return nil, &core.TransportError{Op: "embed", URL: "openai", Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &core.ShapeError{Op: "embed", Want: len(texts), Got: len(resp.Data)}
	}

	out := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
