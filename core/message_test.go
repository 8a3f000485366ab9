package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool} {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRole("moderator")
	assert.Error(t, err)
}

func TestRoleJSON(t *testing.T) {
	data, err := json.Marshal(RoleAssistant)
	require.NoError(t, err)
	assert.Equal(t, `"assistant"`, string(data))

	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"tool"`), &r))
	assert.Equal(t, RoleTool, r)

	assert.Error(t, json.Unmarshal([]byte(`"oracle"`), &r))
}

func TestMessageValidate(t *testing.T) {
	call := ToolCall{Name: "lookup", Arguments: map[string]any{"q": "x"}}

	assert.NoError(t, NewAssistantMessage("", call).Validate())
	assert.NoError(t, NewUserMessage("hi").Validate())

	// Tool calls on non-assistant roles violate the transcript invariant.
	bad := Message{Role: RoleUser, Content: "hi", ToolCalls: []ToolCall{call}}
	assert.Error(t, bad.Validate())
}

func TestMessageHasToolCalls(t *testing.T) {
	assert.False(t, NewAssistantMessage("plain answer").HasToolCalls())
	assert.True(t, NewAssistantMessage("", ToolCall{Name: "t"}).HasToolCalls())
}
