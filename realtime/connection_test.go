package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay/domain/event"
	"chat-relay/errors"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsPipe upgrades a loopback websocket and returns both ends.
func wsPipe(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err == nil {
			accepted <- ws
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never accepted")
	}
	return server, client
}

func TestDeliver_Writes_Enveloped_Event(t *testing.T) {
	req := require.New(t)
	server, client := wsPipe(t)
	conn := NewConnection(server, 16)
	conn.Start()
	defer conn.Close(websocket.CloseNormalClosure, "")

	err := conn.Deliver(context.Background(), event.Typing{RoomID: "a|b", Identity: "a"})
	req.NoError(err)

	req.NoError(client.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, payload, err := client.ReadMessage()
	req.NoError(err)

	var frame struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	req.NoError(json.Unmarshal(payload, &frame))
	req.Equal("typing", frame.Event)
	req.JSONEq(`{"roomId":"a|b","identity":"a"}`, string(frame.Data))
}

func TestDeliver_Full_Buffer_Fails_Fast_And_Closes(t *testing.T) {
	req := require.New(t)
	server, _ := wsPipe(t)
	// No write loop running, so the buffer never drains
	conn := NewConnection(server, 1)

	req.NoError(conn.Deliver(context.Background(), event.Typing{RoomID: "a|b", Identity: "a"}))

	err := conn.Deliver(context.Background(), event.Typing{RoomID: "a|b", Identity: "a"})
	req.ErrorIs(err, errors.ErrSendBufferFull)

	// The overflow closed the connection; later deliveries see that
	err = conn.Deliver(context.Background(), event.Typing{RoomID: "a|b", Identity: "a"})
	req.ErrorIs(err, errors.ErrConnectionClosed)
}

func TestClose_Is_Idempotent(t *testing.T) {
	server, _ := wsPipe(t)
	conn := NewConnection(server, 1)
	conn.Close(websocket.CloseNormalClosure, "")
	conn.Close(websocket.CloseNormalClosure, "")
}

func TestConnection_IDs_Are_Unique(t *testing.T) {
	req := require.New(t)
	server, _ := wsPipe(t)
	a := NewConnection(server, 1)
	b := NewConnection(server, 1)
	req.NotEqual(a.ID(), b.ID())
}
