package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	sent    [][]byte
	pings   int
	closed  bool
	sendErr error
	pingErr error
}

func (c *fakeConn) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, message)
	return nil
}

func (c *fakeConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pings++
	return c.pingErr
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, m := range c.sent {
		out = append(out, string(m))
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRegistry_BroadcastOnlyReachesKey(t *testing.T) {
	registry := NewRegistry()
	kitchen := &fakeConn{}
	counter := &fakeConn{}
	other := &fakeConn{}
	require.NoError(t, registry.Add("restaurant:1", kitchen))
	require.NoError(t, registry.Add("restaurant:1", counter))
	require.NoError(t, registry.Add("restaurant:2", other))

	delivered := registry.Broadcast("restaurant:1", []byte("hello"))

	assert.Equal(t, 2, delivered)
	assert.Equal(t, []string{"hello"}, kitchen.messages())
	assert.Equal(t, []string{"hello"}, counter.messages())
	assert.Empty(t, other.messages())
}

func TestRegistry_BroadcastWithoutSubscribers(t *testing.T) {
	registry := NewRegistry()
	assert.Equal(t, 0, registry.Broadcast("customer:9", []byte("x")))
}

func TestRegistry_PrunesDeadConnections(t *testing.T) {
	registry := NewRegistry()
	alive := &fakeConn{}
	dead := &fakeConn{sendErr: errors.New("broken pipe")}
	require.NoError(t, registry.Add("customer:7", alive))
	require.NoError(t, registry.Add("customer:7", dead))

	delivered := registry.Broadcast("customer:7", []byte("update"))

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, registry.Count("customer:7"))
	assert.True(t, dead.isClosed())
	assert.False(t, alive.isClosed())
}

func TestRegistry_RemoveDropsEmptyKey(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}
	require.NoError(t, registry.Add("restaurant:3", conn))

	registry.Remove("restaurant:3", conn)
	registry.Remove("restaurant:3", conn)

	assert.Equal(t, 0, registry.Count("restaurant:3"))
}

func TestRegistry_CloseRejectsNewConnections(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}
	require.NoError(t, registry.Add("restaurant:1", conn))

	registry.Close()
	registry.Close()

	assert.True(t, conn.isClosed())
	assert.ErrorIs(t, registry.Add("restaurant:1", &fakeConn{}), ErrRegistryClosed)
	assert.Equal(t, 0, registry.Broadcast("restaurant:1", []byte("late")))
}

func TestRegistry_RunPingsUntilCancelled(t *testing.T) {
	registry := NewRegistry()
	registry.period = 5 * time.Millisecond
	alive := &fakeConn{}
	dead := &fakeConn{pingErr: errors.New("timeout")}
	require.NoError(t, registry.Add("restaurant:1", alive))
	require.NoError(t, registry.Add("restaurant:1", dead))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		registry.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return dead.isClosed() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, registry.Count("restaurant:1"))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, alive.isClosed())
}
