package core

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author category of a Message. The set is closed;
// consumers should switch exhaustively and treat unknown values as a decode
// failure rather than falling through silently.
type Role int

const (
	// RoleSystem marks instructions injected by the application (including
	// retrieval-augmented context).
	RoleSystem Role = iota
	// RoleUser marks end-user input.
	RoleUser
	// RoleAssistant marks model output; the only role allowed to carry tool calls.
	RoleAssistant
	// RoleTool marks tool execution results fed back to the model.
	RoleTool
)

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleTool:
		return "tool"
	default:
		return "unknown"
	}
}

// ParseRole converts a wire name into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "system":
		return RoleSystem, nil
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	case "tool":
		return RoleTool, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// MarshalJSON encodes the role as its lowercase wire name.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a lowercase wire name into a Role.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ToolCall is a structured request, embedded in assistant output, to invoke a
// registered tool. Instances are only ever created by decoding an assistant
// message's tool_calls field; they are never user-authored.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Message is one entry of a conversation transcript. It is immutable once
// appended to a Conversation. Only assistant messages may carry ToolCalls;
// use the constructors below to preserve that invariant.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// NewSystemMessage creates a system-authored message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message, optionally carrying the
// tool calls the model requested.
func NewAssistantMessage(content string, toolCalls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// NewToolMessage creates a tool-result message fed back to the model.
func NewToolMessage(content string) Message {
	return Message{Role: RoleTool, Content: content}
}

// Validate checks the message invariant: tool calls are restricted to
// assistant messages.
func (m Message) Validate() error {
	if len(m.ToolCalls) > 0 && m.Role != RoleAssistant {
		return fmt.Errorf("message with role %s must not carry tool calls", m.Role)
	}
	return nil
}

// HasToolCalls reports whether the message requests tool execution.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }
