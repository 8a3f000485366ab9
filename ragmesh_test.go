package ragmesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/model"
	"github.com/hupe1980/ragmesh/tool"
)

func TestAskSeedsSystemPrompt(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.EnqueueReply(core.NewAssistantMessage("hi there"))

	agent := New(gw, func(o *Options) {
		o.SystemPrompt = "You are terse."
	})

	answer, err := agent.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", answer)

	msgs := agent.Conversation().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are terse.", msgs[0].Content)
	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Equal(t, core.RoleAssistant, msgs[2].Role)
}

func TestAskInKeepsSessionsIndependent(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.EnqueueReply(core.NewAssistantMessage("answer one"))
	gw.EnqueueReply(core.NewAssistantMessage("answer two"))

	agent := New(gw)

	_, err := agent.AskIn(context.Background(), "alice", "question one")
	require.NoError(t, err)
	_, err = agent.AskIn(context.Background(), "bob", "question two")
	require.NoError(t, err)

	assert.Equal(t, 2, agent.ConversationIn("alice").Len())
	assert.Equal(t, 2, agent.ConversationIn("bob").Len())
	assert.NotSame(t, agent.ConversationIn("alice"), agent.ConversationIn("bob"))
}

func TestResetDropsTranscript(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.EnqueueReply(core.NewAssistantMessage("remembered answer"))

	agent := New(gw, func(o *Options) { o.SystemPrompt = "prompt" })

	_, err := agent.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 3, agent.Conversation().Len())

	agent.Reset(DefaultSessionID)

	// A fresh conversation is reseeded with the system prompt only.
	assert.Equal(t, 1, agent.Conversation().Len())
}

func TestToolsAreWired(t *testing.T) {
	gw := model.NewMockGateway(3)
	gw.EnqueueReply(core.NewAssistantMessage("", core.ToolCall{
		Name:      "shout",
		Arguments: map[string]any{"text": "hey"},
	}))
	gw.EnqueueReply(core.NewAssistantMessage("HEY"))

	shout := tool.NewFunctionTool("shout", "Upper-case the input",
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

	agent := New(gw, func(o *Options) { o.Tools = []tool.Tool{shout} })

	answer, err := agent.Ask(context.Background(), "shout hey")
	require.NoError(t, err)
	assert.Equal(t, "HEY", answer)
	assert.Equal(t, 4, agent.Conversation().Len())
}
