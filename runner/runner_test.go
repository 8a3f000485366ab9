package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/engine"
	"github.com/hupe1980/ragmesh/memory"
	"github.com/hupe1980/ragmesh/model"
	"github.com/hupe1980/ragmesh/tool"
	"github.com/hupe1980/ragmesh/vectorstore"
)

func echoRegistry() *tool.Registry {
	echo := tool.NewFunctionTool("echo", "Echo back the input",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["text"], nil
		})
	return tool.NewRegistry(echo)
}

func TestRunTurnPlainAnswer(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.EnqueueReply(core.NewAssistantMessage("the sky is blue"))

	r := New(gw, engine.New(echoRegistry()))
	conv := core.NewConversation()

	answer, err := r.RunTurn(context.Background(), conv, "why is the sky blue?")
	require.NoError(t, err)
	assert.Equal(t, "the sky is blue", answer)

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
}

func TestRunTurnExecutesToolThenAnswers(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.EnqueueReply(core.NewAssistantMessage("", core.ToolCall{
		Name:      "echo",
		Arguments: map[string]any{"text": "ping"},
	}))
	gw.EnqueueReply(core.NewAssistantMessage("tool said ping"))

	r := New(gw, engine.New(echoRegistry()))
	conv := core.NewConversation()

	answer, err := r.RunTurn(context.Background(), conv, "use the echo tool")
	require.NoError(t, err)
	assert.Equal(t, "tool said ping", answer)

	// user, assistant(tool call), tool result, assistant(final)
	msgs := conv.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleTool, msgs[2].Role)
	assert.Contains(t, msgs[2].Content, "ping")
	assert.Equal(t, 2, gw.ChatCalls())
}

func TestRunTurnInvalidToolCallFeedsErrorBack(t *testing.T) {
	gw := model.NewMockGateway(3)
	// Model calls the tool with a missing required argument, then corrects itself.
	gw.EnqueueReply(core.NewAssistantMessage("", core.ToolCall{Name: "echo", Arguments: map[string]any{}}))
	gw.EnqueueReply(core.NewAssistantMessage("recovered"))

	r := New(gw, engine.New(echoRegistry()))
	conv := core.NewConversation()

	answer, err := r.RunTurn(context.Background(), conv, "go")
	require.NoError(t, err)
	assert.Equal(t, "recovered", answer)

	msgs := conv.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleTool, msgs[2].Role)
	assert.Contains(t, msgs[2].Content, tool.CodeValidationError)
}

func TestRunTurnToolLoopExceeded(t *testing.T) {
	gw := model.NewMockGateway(3)
	// The model never stops requesting tools.
	for i := 0; i < 10; i++ {
		gw.EnqueueReply(core.NewAssistantMessage("", core.ToolCall{
			Name:      "echo",
			Arguments: map[string]any{"text": "again"},
		}))
	}

	r := New(gw, engine.New(echoRegistry()), func(o *Options) { o.MaxToolIterations = 2 })
	conv := core.NewConversation()

	_, err := r.RunTurn(context.Background(), conv, "loop forever")
	require.ErrorIs(t, err, ErrToolLoopExceeded)

	var turnErr *TurnError
	require.ErrorAs(t, err, &turnErr)

	// Bound of 2 tool iterations means exactly 3 chat calls were made.
	assert.Equal(t, 3, gw.ChatCalls())
}

func TestRunTurnRetrievalAugmentation(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.AddEmbedding("small dog", []float32{0.9, 0.1, 0.0})
	gw.AddEmbedding("big wild dog", []float32{0.8, 0.4, 0.2})
	gw.EnqueueReply(core.NewAssistantMessage("a small dog, as remembered"))

	mem := memory.NewVectorMemory(gw, vectorstore.NewInMemoryStore(vectorstore.AppendIfExists), "memories", 3)
	require.NoError(t, mem.Remember(context.Background(), []string{"small dog", "big wild dog"}))

	r := New(gw, engine.New(echoRegistry()), func(o *Options) {
		o.Memory = mem
		o.RetrievalTopK = 1
	})
	conv := core.NewConversation()

	answer, err := r.RunTurn(context.Background(), conv, "small dog")
	require.NoError(t, err)
	assert.Equal(t, "a small dog, as remembered", answer)

	// user, system(context), assistant
	msgs := conv.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleSystem, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "small dog")
	assert.NotContains(t, msgs[1].Content, "big wild dog")
}

func TestRunTurnRetrievalFailureDegradesGracefully(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.EnqueueReply(core.NewAssistantMessage("answered without memory"))

	// Recall hits a store with no collection -> StoreError.
	mem := memory.NewVectorMemory(gw, vectorstore.NewInMemoryStore(vectorstore.AppendIfExists), "absent", 3)

	r := New(gw, engine.New(echoRegistry()), func(o *Options) { o.Memory = mem })
	conv := core.NewConversation()

	answer, err := r.RunTurn(context.Background(), conv, "anything")
	require.NoError(t, err)
	assert.Equal(t, "answered without memory", answer)
	assert.Equal(t, 2, conv.Len(), "no augmentation message was appended")
}

func TestRunTurnRetrievalFailureAbortsWhenConfigured(t *testing.T) {
	gw := model.NewMockGateway(3)
	mem := memory.NewVectorMemory(gw, vectorstore.NewInMemoryStore(vectorstore.AppendIfExists), "absent", 3)

	r := New(gw, engine.New(echoRegistry()), func(o *Options) {
		o.Memory = mem
		o.ContinueWithoutRetrieval = false
	})
	conv := core.NewConversation()

	_, err := r.RunTurn(context.Background(), conv, "anything")
	var storeErr *vectorstore.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, 0, gw.ChatCalls(), "the model is never called on an aborted turn")
}

type failingGateway struct{ model.Gateway }

func (failingGateway) Chat(context.Context, []core.Message) (core.Message, error) {
	return core.Message{}, &core.TransportError{Op: "chat", URL: "test", Err: errors.New("connection refused")}
}

func TestRunTurnChatFailureKeepsHistory(t *testing.T) {
	r := New(failingGateway{}, engine.New(echoRegistry()))
	conv := core.NewConversation()
	require.NoError(t, conv.Append(core.NewUserMessage("earlier question")))
	require.NoError(t, conv.Append(core.NewAssistantMessage("earlier answer")))

	_, err := r.RunTurn(context.Background(), conv, "next question")

	var turnErr *TurnError
	require.ErrorAs(t, err, &turnErr)
	var transportErr *core.TransportError
	require.ErrorAs(t, err, &transportErr)

	// Prior history is intact for a retried turn.
	msgs := conv.Messages()
	assert.Equal(t, "earlier question", msgs[0].Content)
	assert.Equal(t, "earlier answer", msgs[1].Content)
}
