package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversation_AppendKeepsOrder(t *testing.T) {
	c := NewConversation(ChatMessage{Sender: SenderAgent, Text: "hello"})
	c.Append(ChatMessage{Sender: SenderUser, Text: "a"}, ChatMessage{Sender: SenderSystem, Text: "b"})

	msgs := c.Messages()
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"hello", "a", "b"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
}

func TestConversation_MessagesIsACopy(t *testing.T) {
	c := NewConversation(ChatMessage{Text: "x"})
	msgs := c.Messages()
	msgs[0].Text = "changed"

	assert.Equal(t, "x", c.Messages()[0].Text)
}

func TestConversation_ReplaceAll(t *testing.T) {
	c := NewConversation(ChatMessage{Text: "1"}, ChatMessage{Text: "2"})
	c.ReplaceAll([]ChatMessage{{Text: "only"}})
	assert.Equal(t, []ChatMessage{{Text: "only"}}, c.Messages())
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	c := NewConversation()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Append(ChatMessage{Sender: SenderUser, Text: "m"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
