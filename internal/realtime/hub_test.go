package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_RegisterLookup(t *testing.T) {
	hub := NewHub()
	alice := &Client{}

	_, ok := hub.Lookup("alice")
	assert.False(t, ok)

	hub.Register("alice", alice)

	got, ok := hub.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, alice, got)
}

func TestHub_LastRegistrationWins(t *testing.T) {
	hub := NewHub()
	first, second := &Client{}, &Client{}

	hub.Register("alice", first)
	hub.Register("alice", second)

	got, ok := hub.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, second, got)

	// the displaced client no longer owns the name
	_, removed := hub.Unregister(first)
	assert.False(t, removed)

	got, ok = hub.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestHub_ReRegisterMovesBinding(t *testing.T) {
	hub := NewHub()
	c := &Client{}

	hub.Register("alice", c)
	hub.Register("bob", c)

	_, ok := hub.Lookup("alice")
	assert.False(t, ok)

	got, ok := hub.Lookup("bob")
	assert.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, hub.Len())
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	c := &Client{}

	_, ok := hub.Unregister(c)
	assert.False(t, ok)

	hub.Register("alice", c)

	username, ok := hub.Unregister(c)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)

	_, ok = hub.Lookup("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())
}

func TestHub_Concurrent(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &Client{}
			name := fmt.Sprintf("user%d", i)
			hub.Register(name, c)
			hub.Lookup(name)
			if i%2 == 0 {
				hub.Unregister(c)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, hub.Len())
}

func TestClient_SendDropsWhenFull(t *testing.T) {
	c := &Client{send: make(chan []byte, 1), done: make(chan struct{})}

	assert.True(t, c.Send([]byte("one")))
	assert.False(t, c.Send([]byte("two")))

	close(c.done)
	<-c.send
	assert.False(t, c.Send([]byte("three")))
}
