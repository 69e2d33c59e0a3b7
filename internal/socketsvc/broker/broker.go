package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Sockets delivers game service pushes to the connected web clients.
type Sockets interface {
	SendToRoom(roomId string, m *comm.WSMessage)
	SendToPlayer(playerId string, m *comm.WSMessage)
}

type Broker struct {
	Conn    *nats.Conn
	Sockets Sockets
}

func NewBroker(conn *nats.Conn, sockets Sockets) *Broker {
	return &Broker{
		Conn:    conn,
		Sockets: sockets,
	}
}

// Request forwards a client message to the game service queue group and
// waits for its reply.
func (b *Broker) Request(ctx context.Context, msg *comm.WSMessage) (*comm.WSMessage, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	res, err := b.Conn.RequestWithContext(ctx, comm.GameServiceSubject, payload)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", msg.Type, err)
	}

	reply := &comm.WSMessage{}
	if err := json.Unmarshal(res.Data, reply); err != nil {
		return nil, fmt.Errorf("decode %s reply: %w", msg.Type, err)
	}
	return reply, nil
}

// Subscribe listens to every room topic and player queue. Each socket
// service instance receives all of them and keeps those it has sockets for.
func (b *Broker) Subscribe() ([]*nats.Subscription, error) {
	var subs []*nats.Subscription
	for _, topic := range []string{comm.RoomTopicPrefix + "*", comm.PlayerQueuePrefix + "*"} {
		sub, err := b.Conn.Subscribe(topic, b.handleMessages)
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// handleMessages receive message from game service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	if err := json.Unmarshal(msgNats.Data, message); err != nil {
		log.Errorf("Error decoding %s: %s", msgNats.Subject, err)
		return
	}

	if roomId, ok := comm.ParseRoomTopic(msgNats.Subject); ok {
		b.Sockets.SendToRoom(roomId, message)
		return
	}
	if playerId, ok := comm.ParsePlayerQueue(msgNats.Subject); ok {
		b.Sockets.SendToPlayer(playerId, message)
		return
	}
	log.Warnf("Unknown subject %s", msgNats.Subject)
}
