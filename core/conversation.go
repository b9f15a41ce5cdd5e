package core

import "sync"

// Conversation is an append-only chat log. ReplaceAll swaps the whole log
// when the conversation focus changes.
type Conversation struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

func NewConversation(initial ...ChatMessage) *Conversation {
	return &Conversation{messages: append([]ChatMessage(nil), initial...)}
}

func (c *Conversation) Append(msg ...ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg...)
}

func (c *Conversation) ReplaceAll(messages []ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append([]ChatMessage(nil), messages...)
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ChatMessage(nil), c.messages...)
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
