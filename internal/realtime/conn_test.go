package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type onlyVolunteers struct{}

func (onlyVolunteers) CanJoin(_ context.Context, caller models.Caller, room string) error {
	if room == RoomVolunteers && caller.IsVolunteer() {
		return nil
	}
	return errors.New("denied")
}

func startServer(t *testing.T, hub *Hub, guard RoomGuard, caller models.Caller) *websocket.Conn {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	srv := NewServer(hub, guard, logger)
	upgrader := websocket.Upgrader{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		srv.Serve(r.Context(), conn, caller)
	}))
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestServer_JoinAndReceive(t *testing.T) {
	hub := newTestHub(t, 8)
	conn := startServer(t, hub, onlyVolunteers{}, models.Caller{ID: uuid.New(), Role: models.RoleVolunteer})

	require.NoError(t, conn.WriteJSON(map[string]any{"event": CmdJoinVolunteers}))
	joined := readFrame(t, conn)
	assert.Equal(t, "room-joined", joined.Event)

	frame, err := EncodeFrame(EventNewRequest, map[string]string{"title": "water"})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Deliver(RoomVolunteers, frame))

	got := readFrame(t, conn)
	assert.Equal(t, EventNewRequest, got.Event)
	assert.JSONEq(t, `{"title":"water"}`, string(got.Data))
}

func TestServer_JoinDenied(t *testing.T) {
	hub := newTestHub(t, 8)
	conn := startServer(t, hub, onlyVolunteers{}, models.Caller{ID: uuid.New(), Role: models.RoleCivilian})

	require.NoError(t, conn.WriteJSON(map[string]any{"event": CmdJoinVolunteer, "data": uuid.NewString()}))

	got := readFrame(t, conn)
	assert.Equal(t, "room-error", got.Event)
	assert.Equal(t, 0, hub.RoomSize(RoomVolunteers))
}

func TestServer_UnknownCommand(t *testing.T) {
	hub := newTestHub(t, 8)
	conn := startServer(t, hub, nil, models.Caller{ID: uuid.New(), Role: models.RoleAdmin})

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "dance"}))

	got := readFrame(t, conn)
	assert.Equal(t, "room-error", got.Event)
}
