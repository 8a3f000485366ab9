package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationAppendOrder(t *testing.T) {
	conv := NewConversation()

	_, ok := conv.Last()
	assert.False(t, ok)

	require.NoError(t, conv.Append(NewUserMessage("first")))
	require.NoError(t, conv.Append(NewAssistantMessage("second")))
	require.NoError(t, conv.Append(NewUserMessage("third")))

	msgs := conv.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
	assert.Equal(t, "third", msgs[2].Content)

	last, ok := conv.Last()
	require.True(t, ok)
	assert.Equal(t, "third", last.Content)
}

func TestConversationRejectsInvalidMessage(t *testing.T) {
	conv := NewConversation()
	bad := Message{Role: RoleTool, ToolCalls: []ToolCall{{Name: "x"}}}
	assert.Error(t, conv.Append(bad))
	assert.Equal(t, 0, conv.Len())
}

func TestConversationMessagesIsACopy(t *testing.T) {
	conv := NewConversation()
	require.NoError(t, conv.Append(NewUserMessage("original")))

	msgs := conv.Messages()
	msgs[0].Content = "mutated"

	fresh := conv.Messages()
	assert.Equal(t, "original", fresh[0].Content)
}

func TestConversationGrowthPerTurn(t *testing.T) {
	// After N tool-free turns the transcript holds exactly 2N messages,
	// alternating user / assistant.
	conv := NewConversation()
	const turns = 4
	for i := 0; i < turns; i++ {
		require.NoError(t, conv.Append(NewUserMessage(fmt.Sprintf("q%d", i))))
		require.NoError(t, conv.Append(NewAssistantMessage(fmt.Sprintf("a%d", i))))
	}

	msgs := conv.Messages()
	require.Len(t, msgs, 2*turns)
	for i, msg := range msgs {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, msg.Role)
		} else {
			assert.Equal(t, RoleAssistant, msg.Role)
		}
	}
}
