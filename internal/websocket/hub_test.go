package websocket

import (
	"context"
	"testing"
	"time"

	"storefront-admin/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{ID: uuid.New(), Hub: h, Send: make(chan []byte, buffer)}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func TestHubBroadcastReachesEveryClient(t *testing.T) {
	h, _ := startHub(t)
	a, b := newTestClient(h, 4), newTestClient(h, 4)
	require.True(t, h.join(a))
	require.True(t, h.join(b))
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte(`{"type":"QUERY_INVALIDATED"}`))

	assert.Equal(t, `{"type":"QUERY_INVALIDATED"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"QUERY_INVALIDATED"}`, string(<-b.Send))
}

func TestHubLeaveClosesSendOnce(t *testing.T) {
	h, _ := startHub(t)
	c := newTestClient(h, 1)
	require.True(t, h.join(c))

	h.leave(c)
	h.leave(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHubDropsSlowClient(t *testing.T) {
	h, _ := startHub(t)
	slow := newTestClient(h, 1)
	require.True(t, h.join(slow))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte("1"))
	h.Broadcast([]byte("2"))

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubDisconnectAllAndShutdown(t *testing.T) {
	h, cancel := startHub(t)
	c := newTestClient(h, 1)
	require.True(t, h.join(c))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.DisconnectAll()
	assert.Equal(t, 0, h.ClientCount())

	cancel()
	<-h.done
	assert.False(t, h.join(newTestClient(h, 1)))
}
