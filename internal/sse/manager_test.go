package sse

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := newTestManager(t)

	client, err := m.Connect()
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Disconnecting twice is a no-op.
	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())
}

func TestManager_EmitReachesClients(t *testing.T) {
	m := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	clientA, err := m.Connect()
	require.NoError(t, err)
	clientB, err := m.Connect()
	require.NoError(t, err)

	m.Emit(NewEvent(EventSelectionChanged, map[string]string{"genre": "Fiction"}))

	for _, client := range []*Client{clientA, clientB} {
		select {
		case evt := <-client.EventChan:
			assert.Equal(t, EventSelectionChanged, evt.Type)
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s did not receive the event", client.ID)
		}
	}
}

func TestManager_EmitIgnoresNonEvents(t *testing.T) {
	m := newTestManager(t)

	// Must not panic or queue anything.
	m.Emit("not an event")
	assert.Len(t, m.events, 0)
}

func TestManager_SlowClientDropsEvents(t *testing.T) {
	m := newTestManager(t)

	client, err := m.Connect()
	require.NoError(t, err)

	// Fill the client's buffer without draining it; further broadcasts must
	// not block.
	for i := 0; i < cap(client.EventChan)+10; i++ {
		m.broadcast(NewHeartbeatEvent())
	}

	assert.Equal(t, cap(client.EventChan), len(client.EventChan))
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	m := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	client, err := m.Connect()
	require.NoError(t, err)

	cancel()

	select {
	case <-client.Done:
	case <-time.After(2 * time.Second):
		t.Fatal("client was not closed on manager stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, m.Shutdown(shutdownCtx))

	// Events after shutdown are dropped silently.
	m.Emit(NewHeartbeatEvent())
}
