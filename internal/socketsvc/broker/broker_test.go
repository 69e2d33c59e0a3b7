package broker

import (
	"encoding/json"
	"testing"

	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	target string
	msg    *comm.WSMessage
}

type fakeSockets struct {
	rooms   []delivery
	players []delivery
}

func (f *fakeSockets) SendToRoom(roomId string, m *comm.WSMessage) {
	f.rooms = append(f.rooms, delivery{roomId, m})
}

func (f *fakeSockets) SendToPlayer(playerId string, m *comm.WSMessage) {
	f.players = append(f.players, delivery{playerId, m})
}

func natsMsg(t *testing.T, subject string, m *comm.WSMessage) *nats.Msg {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return &nats.Msg{Subject: subject, Data: data}
}

func TestHandleMessagesRoutesRoomTopic(t *testing.T) {
	sockets := &fakeSockets{}
	b := NewBroker(nil, sockets)

	b.handleMessages(natsMsg(t, comm.RoomTopic("room-1"), &comm.WSMessage{Type: "join-room-response"}))

	require.Len(t, sockets.rooms, 1)
	assert.Equal(t, "room-1", sockets.rooms[0].target)
	assert.Equal(t, "join-room-response", sockets.rooms[0].msg.Type)
	assert.Empty(t, sockets.players)
}

func TestHandleMessagesRoutesPlayerQueue(t *testing.T) {
	sockets := &fakeSockets{}
	b := NewBroker(nil, sockets)

	b.handleMessages(natsMsg(t, comm.PlayerQueue("alice.smith"), &comm.WSMessage{Type: comm.TypeGameInfo}))

	require.Len(t, sockets.players, 1)
	assert.Equal(t, "alice.smith", sockets.players[0].target)
	assert.Empty(t, sockets.rooms)
}

func TestHandleMessagesDropsGarbage(t *testing.T) {
	sockets := &fakeSockets{}
	b := NewBroker(nil, sockets)

	b.handleMessages(&nats.Msg{Subject: comm.RoomTopic("room-1"), Data: []byte("{")})
	b.handleMessages(natsMsg(t, "elsewhere", &comm.WSMessage{Type: "x"}))
	b.handleMessages(natsMsg(t, comm.PlayerQueuePrefix+"!!", &comm.WSMessage{Type: "x"}))

	assert.Empty(t, sockets.rooms)
	assert.Empty(t, sockets.players)
}
