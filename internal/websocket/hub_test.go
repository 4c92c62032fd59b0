package websocket

import (
	"encoding/json"
	"testing"

	"tumaini-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Debug(string, string, map[string]interface{}) {}
func (quietLogger) Info(string, string, map[string]interface{})  {}
func (quietLogger) Warn(string, string, map[string]interface{})  {}
func (quietLogger) Error(string, string, map[string]interface{}) {}
func (quietLogger) Sync() error                                  { return nil }
func (quietLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (quietLogger) GetLogById(string) (*logger.LogEntry, error) { return nil, nil }

// attach registers a dashboard connection directly, bypassing the
// register channel so tests do not need Run() pumping.
func attach(h *Hub) *Client {
	c := &Client{Hub: h, Send: make(chan []byte, 4)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func TestBroadcastReachesLocalDashboards(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	c := attach(h)

	h.Broadcast("DONATION_COMPLETED", map[string]interface{}{"reference": "DON-20260801120000-A1B2C3"})

	require.Len(t, c.Send, 1)
	var envelope struct {
		Type   string                 `json:"type"`
		Data   map[string]interface{} `json:"data"`
		Origin string                 `json:"origin"`
	}
	require.NoError(t, json.Unmarshal(<-c.Send, &envelope))
	assert.Equal(t, "DONATION_COMPLETED", envelope.Type)
	assert.Equal(t, "DON-20260801120000-A1B2C3", envelope.Data["reference"])
	assert.Equal(t, h.id, envelope.Origin)
}

func TestRelayedEventFromSelfIsNotDeliveredTwice(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	c := attach(h)

	// The event as this instance would publish it to Redis.
	own, err := json.Marshal(map[string]interface{}{
		"type":   "DONATION_COMPLETED",
		"origin": h.id,
	})
	require.NoError(t, err)

	// Broadcast already pushed locally; the relay coming back must be a
	// no-op or every dashboard sees the event twice.
	h.handleFeedMessage(own)
	assert.Len(t, c.Send, 0)
}

func TestRelayedEventFromOtherInstanceIsDelivered(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	c := attach(h)

	foreign, err := json.Marshal(map[string]interface{}{
		"type":   "DONATION_FAILED",
		"origin": "some-other-instance",
	})
	require.NoError(t, err)

	h.handleFeedMessage(foreign)
	require.Len(t, c.Send, 1)

	// Garbage on the channel is dropped, not delivered.
	h.handleFeedMessage([]byte("not json"))
	assert.Len(t, c.Send, 1)
}
