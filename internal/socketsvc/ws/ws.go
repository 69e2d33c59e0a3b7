package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/avvvet/onecard-services/internal/monitor"
	"github.com/avvvet/onecard-services/internal/onecard"
	log "github.com/sirupsen/logrus"
)

const DefaultTimeout = 10 * time.Second

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Forwarder sends a client message to the game service and returns its reply.
type Forwarder interface {
	Request(ctx context.Context, msg *comm.WSMessage) (*comm.WSMessage, error)
}

// Socket serializes writes to one connection; gorilla connections allow a
// single concurrent writer.
type Socket struct {
	mu   sync.Mutex
	conn Conn
}

func (s *Socket) Send(m *comm.WSMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(m)
}

type Ws struct {
	connMap   sync.Map // socketId -> *Socket
	roomMap   sync.Map // socketId -> roomId
	playerMap sync.Map // socketId -> playerId

	Broker  Forwarder
	Metrics *monitor.Metrics
	Timeout time.Duration
}

func NewWs(metrics *monitor.Metrics) *Ws {
	return &Ws{Metrics: metrics, Timeout: DefaultTimeout}
}

var forwarded = map[string]bool{
	comm.TypeJoinApp:      true,
	comm.TypeCreatePlayer: true,
	comm.TypeCreateRoom:   true,
	comm.TypeJoinRoom:     true,
	comm.TypeStartGame:    true,
	comm.TypeDeleteRoom:   true,
	comm.TypeResetGame:    true,
	comm.TypeGetRoom:      true,
}

// handle socket message from web clients
func (s *Ws) SocketMessage(ctx context.Context, socketId string, message *comm.WSMessage) {
	message.SocketId = socketId
	if !forwarded[message.Type] {
		log.Warnf("unknown event received: %s", message.Type)
		s.Send(socketId, comm.NewErrorMessage(message.Type+comm.ResponseSuffix, onecard.ErrBadRequest, socketId))
		return
	}

	// the joiner must already be listening when the join is broadcast
	var prevRoom string
	var hadRoom bool
	if message.Type == comm.TypeJoinRoom {
		req := comm.JoinRoomRequest{}
		if err := json.Unmarshal(message.Data, &req); err == nil && req.RoomID != "" {
			prevRoom, hadRoom = s.GetRoom(socketId)
			s.StoreRoom(socketId, req.RoomID)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	reply, err := s.Broker.Request(ctx, message)
	if err != nil {
		log.Errorf("Failed to forward %s from socket %s: %v", message.Type, socketId, err)
		reply = comm.NewErrorMessage(message.Type+comm.ResponseSuffix, onecard.ErrInternal, socketId)
	}

	if reply.Error == nil {
		s.afterReply(socketId, message, reply)
	} else if message.Type == comm.TypeJoinRoom {
		if hadRoom {
			s.StoreRoom(socketId, prevRoom)
		} else {
			s.roomMap.Delete(socketId)
		}
	}

	s.Send(socketId, reply)
}

// afterReply updates the socket bindings a successful reply implies.
func (s *Ws) afterReply(socketId string, req, reply *comm.WSMessage) {
	switch req.Type {
	case comm.TypeJoinApp:
		rsp := comm.JoinAppResponse{}
		if err := json.Unmarshal(reply.Data, &rsp); err == nil {
			s.StorePlayer(socketId, rsp.PlayerID)
		}
	case comm.TypeCreateRoom:
		rsp := comm.RoomResponse{}
		if err := json.Unmarshal(reply.Data, &rsp); err == nil {
			s.StoreRoom(socketId, rsp.ID)
		}
	case comm.TypeDeleteRoom:
		rsp := comm.RoomResponse{}
		if err := json.Unmarshal(reply.Data, &rsp); err == nil {
			s.LeaveRoom(rsp.ID)
		}
	}
}

func (s *Ws) StoreConnection(socketId string, conn Conn) {
	s.connMap.Store(socketId, &Socket{conn: conn})
	s.Metrics.IncOnlineSockets()
}

func (s *Ws) GetConnection(socketId string) (*Socket, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*Socket), true
}

// HandleDisconnect forgets everything bound to the socket.
func (s *Ws) HandleDisconnect(socketId string) {
	if _, ok := s.connMap.LoadAndDelete(socketId); ok {
		s.Metrics.DecOnlineSockets()
	}
	s.roomMap.Delete(socketId)
	s.playerMap.Delete(socketId)
}

func (s *Ws) Send(socketId string, m *comm.WSMessage) {
	sock, ok := s.GetConnection(socketId)
	if !ok {
		return
	}
	if err := sock.Send(m); err != nil {
		log.Errorf("Failed to write to socket %s: %v", socketId, err)
	}
}

func (s *Ws) StoreRoom(socketId string, roomId string) {
	s.roomMap.Store(socketId, roomId)
}

func (s *Ws) GetRoom(socketId string) (string, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return "", false
	}
	return room.(string), true
}

// LeaveRoom unbinds every socket from roomId.
func (s *Ws) LeaveRoom(roomId string) {
	for _, socketId := range s.GetRoomSockets(roomId) {
		s.roomMap.CompareAndDelete(socketId, roomId)
	}
}

func (s *Ws) GetRoomSockets(roomId string) []string {
	return collect(&s.roomMap, roomId)
}

func (s *Ws) StorePlayer(socketId, playerId string) {
	s.playerMap.Store(socketId, playerId)
}

func (s *Ws) GetPlayerSockets(playerId string) []string {
	return collect(&s.playerMap, playerId)
}

func collect(m *sync.Map, want string) []string {
	var sockets []string
	m.Range(func(key, value interface{}) bool {
		if value.(string) == want {
			sockets = append(sockets, key.(string))
		}
		return true // continue iterating
	})
	return sockets
}

func (s *Ws) SendToRoom(roomId string, m *comm.WSMessage) {
	for _, socketId := range s.GetRoomSockets(roomId) {
		s.Send(socketId, m)
	}
}

func (s *Ws) SendToPlayer(playerId string, m *comm.WSMessage) {
	for _, socketId := range s.GetPlayerSockets(playerId) {
		s.Send(socketId, m)
	}
}
