package core

import "sync"

// Conversation is an ordered, append-only transcript of messages. It is owned
// exclusively by one active session: turns of the same conversation must not
// run concurrently, but the read path (Messages, Last, Len) is guarded so an
// observer may inspect the transcript while a turn is in flight.
//
// Entries are never mutated or removed once appended; start a new
// Conversation instead of clearing one.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversation creates an empty transcript.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a message to the end of the transcript after checking the
// Message invariant. The stored value is a copy; later changes to the caller's
// message are not reflected.
func (c *Conversation) Append(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

// Last returns the most recent message and true, or a zero Message and false
// for an empty transcript.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Messages returns a defensive copy of the full ordered transcript.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of appended messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
