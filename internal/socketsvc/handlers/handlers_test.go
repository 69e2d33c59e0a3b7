package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/avvvet/onecard-services/internal/socketsvc/ws"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoForwarder struct{}

func (echoForwarder) Request(ctx context.Context, msg *comm.WSMessage) (*comm.WSMessage, error) {
	return comm.NewMessage(msg.Type+comm.ResponseSuffix, comm.PlayerResponse{ID: "alice"}, msg.SocketId)
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	s := ws.NewWs(nil)
	s.Broker = echoForwarder{}
	h := NewHandler(s, nil)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWebSocketRelaysReply(t *testing.T) {
	conn := dial(t)

	require.NoError(t, conn.WriteJSON(&comm.WSMessage{Type: comm.TypeCreatePlayer, Data: []byte(`{"id":"alice"}`)}))

	reply := &comm.WSMessage{}
	require.NoError(t, conn.ReadJSON(reply))
	assert.Equal(t, "create-player-response", reply.Type)
	assert.NotEmpty(t, reply.SocketId)
	assert.Nil(t, reply.Error)
}

func TestWebSocketRejectsMalformedMessage(t *testing.T) {
	conn := dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	reply := &comm.WSMessage{}
	require.NoError(t, conn.ReadJSON(reply))
	assert.Equal(t, comm.TypeError, reply.Type)
	require.NotNil(t, reply.Error)
	assert.Equal(t, "C001", reply.Error.Code)
}
