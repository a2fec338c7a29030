package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, m *Manager, id string, buffer int) *Client {
	t.Helper()
	client := &Client{ID: id, Send: make(chan []byte, buffer)}
	m.Register(client)
	require.True(t, m.IsRegistered(id))
	return client
}

func TestManager_SendToTable(t *testing.T) {
	m := NewManager(nil)
	alice := register(t, m, "alice", 4)
	bob := register(t, m, "bob", 4)

	assert.True(t, m.AddTableToClient("alice", "t1"))
	assert.True(t, m.AddTableToClient("alice", "t1"))
	assert.False(t, m.AddTableToClient("nobody", "t1"))

	assert.Equal(t, 1, m.SendToTable("t1", []byte("hello")))
	assert.Equal(t, "hello", string(<-alice.Send))
	assert.Empty(t, bob.Send)

	assert.True(t, m.IsClientAtTable("alice", "t1"))
	assert.True(t, m.RemoveTableFromClient("alice", "t1"))
	assert.False(t, m.IsClientAtTable("alice", "t1"))
	assert.Equal(t, 0, m.SendToTable("t1", []byte("again")))
}

func TestManager_SendDropsWhenBufferFull(t *testing.T) {
	m := NewManager(nil)
	client := register(t, m, "slow", 1)

	assert.True(t, m.SendToClient("slow", []byte("one")))
	assert.False(t, m.SendToClient("slow", []byte("two")))
	assert.False(t, m.SendToClient("missing", []byte("three")))
	assert.Equal(t, "one", string(<-client.Send))
}

func TestManager_UnregisterClosesSend(t *testing.T) {
	m := NewManager(nil)
	client := register(t, m, "gone", 1)

	m.Unregister(client)
	assert.False(t, m.IsRegistered("gone"))
	m.Unregister(client)

	_, open := <-client.Send
	assert.False(t, open)
}
