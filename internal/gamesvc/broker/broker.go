package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/avvvet/onecard-services/internal/gamesvc/service"
	"github.com/avvvet/onecard-services/internal/monitor"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 10 * time.Second

// Publisher is the part of *nats.Conn the broker pushes with.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type Broker struct {
	pub           Publisher
	RoomService   *service.RoomService
	PlayerService *service.PlayerService
	Metrics       *monitor.Metrics
	Timeout       time.Duration
}

func NewBroker(pub Publisher, roomService *service.RoomService, playerService *service.PlayerService, metrics *monitor.Metrics) *Broker {
	return &Broker{
		pub:           pub,
		RoomService:   roomService,
		PlayerService: playerService,
		Metrics:       metrics,
		Timeout:       DefaultTimeout,
	}
}

// Subscribe joins the game service queue group so requests are spread over
// every running game service.
func (b *Broker) Subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return nc.QueueSubscribe(comm.GameServiceSubject, comm.GameServiceQueue, b.handleMessage)
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	var reply *comm.WSMessage
	if err := json.Unmarshal(msgNat.Data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		reply = comm.NewErrorMessage(comm.TypeError, onecard.ErrBadRequest, "")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
		defer cancel()
		reply = b.Handle(ctx, msg)
	}

	if msgNat.Reply == "" {
		return
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	if err := msgNat.Respond(payload); err != nil {
		log.Errorf("Error responding to %s: %s", msg.Type, err)
	}
}

// Handle runs one request and returns its reply. Side messages (room
// broadcasts, private views) are published before it returns.
func (b *Broker) Handle(ctx context.Context, msg *comm.WSMessage) *comm.WSMessage {
	start := time.Now()
	respType := msg.Type + comm.ResponseSuffix

	data, err := b.dispatch(ctx, msg)
	if err != nil {
		e := onecard.Classify(err)
		if e == onecard.ErrInternal {
			log.Errorf("Error [%s] %s", msg.Type, err)
		}
		b.Metrics.ObserveRequest(msg.Type, e.Code, time.Since(start))
		return comm.NewErrorMessage(respType, e, msg.SocketId)
	}

	reply, err := comm.NewMessage(respType, data, msg.SocketId)
	if err != nil {
		log.Errorf("Error marshal %s: %s", respType, err)
		b.Metrics.ObserveRequest(msg.Type, onecard.ErrInternal.Code, time.Since(start))
		return comm.NewErrorMessage(respType, onecard.ErrInternal, msg.SocketId)
	}
	b.Metrics.ObserveRequest(msg.Type, "", time.Since(start))
	return reply
}

func (b *Broker) dispatch(ctx context.Context, msg *comm.WSMessage) (any, error) {
	switch msg.Type {
	case comm.TypeCreateRoom:
		req, err := decode[comm.CreateRoomRequest](msg)
		if err != nil {
			return nil, err
		}
		if req.AdminID == "" {
			return nil, onecard.ErrBadRequest
		}
		room, err := b.RoomService.CreateRoom(ctx, req.Name, req.AdminID)
		if err != nil {
			return nil, err
		}
		return comm.NewRoomResponse(room), nil

	case comm.TypeJoinRoom:
		req, err := decode[comm.JoinRoomRequest](msg)
		if err != nil {
			return nil, err
		}
		if req.RoomID == "" || req.PlayerID == "" {
			return nil, onecard.ErrBadRequest
		}
		room, err := b.RoomService.JoinRoom(ctx, req.RoomID, req.PlayerID)
		if err != nil {
			b.broadcastError(req.RoomID, msg, err)
			return nil, err
		}
		b.broadcast(req.RoomID, msg.Type+comm.ResponseSuffix, comm.NewRoomInfo(room))
		return comm.NewRoomResponse(room), nil

	case comm.TypeDeleteRoom:
		req, err := decodeRoom(msg)
		if err != nil {
			return nil, err
		}
		room, err := b.RoomService.DeleteRoom(ctx, req.RoomID)
		if err != nil {
			return nil, err
		}
		return comm.NewRoomResponse(room), nil

	case comm.TypeStartGame:
		req, err := decodeRoom(msg)
		if err != nil {
			return nil, err
		}
		room, views, err := b.RoomService.StartGame(ctx, req.RoomID)
		if err != nil {
			b.broadcastError(req.RoomID, msg, err)
			return nil, err
		}
		b.PublishGameInfo(views)
		return comm.StartGameResponse{RoomID: room.ID, Players: room.PlayerIDs}, nil

	case comm.TypeResetGame:
		req, err := decodeRoom(msg)
		if err != nil {
			return nil, err
		}
		room, err := b.RoomService.ResetGame(ctx, req.RoomID)
		if err != nil {
			return nil, err
		}
		return comm.NewRoomResponse(room), nil

	case comm.TypeGetRoom:
		req, err := decodeRoom(msg)
		if err != nil {
			return nil, err
		}
		room, err := b.RoomService.GetRoom(ctx, req.RoomID)
		if err != nil {
			return nil, err
		}
		return comm.NewRoomInfo(room), nil

	case comm.TypeCreatePlayer:
		req, err := decode[comm.CreatePlayerRequest](msg)
		if err != nil {
			return nil, err
		}
		if req.ID == "" {
			return nil, onecard.ErrBadRequest
		}
		p, err := b.PlayerService.CreatePlayer(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		return comm.PlayerResponse{ID: p.ID}, nil

	case comm.TypeJoinApp:
		req, err := decode[comm.JoinAppRequest](msg)
		if err != nil {
			return nil, err
		}
		if req.SessionID == "" {
			req.SessionID = msg.SocketId
		}
		if req.PlayerID == "" {
			return nil, onecard.ErrBadRequest
		}
		p, err := b.PlayerService.JoinApp(ctx, req.PlayerID, req.SessionID)
		if err != nil {
			return nil, err
		}
		return comm.JoinAppResponse{PlayerID: p.ID, SessionID: p.SessionID}, nil

	default:
		log.Warnf("Unknown message %q", msg.Type)
		return nil, onecard.ErrBadRequest
	}
}

// PublishGameInfo pushes every player's private view to their queue.
func (b *Broker) PublishGameInfo(views map[string]onecard.View) {
	var g errgroup.Group
	for playerID, view := range views {
		g.Go(func() error {
			msg, err := comm.NewMessage(comm.TypeGameInfo, comm.GameInfo(view), "")
			if err != nil {
				return err
			}
			return b.Publish(comm.PlayerQueue(playerID), msg)
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorf("Error [PublishGameInfo] %s", err)
	}
}

func (b *Broker) broadcast(roomID, msgType string, v any) {
	msg, err := comm.NewMessage(msgType, v, "")
	if err != nil {
		log.Errorf("Error marshal %s: %s", msgType, err)
		return
	}
	if err := b.Publish(comm.RoomTopic(roomID), msg); err != nil {
		log.Errorf("Error broadcast to room %s: %s", roomID, err)
	}
}

func (b *Broker) broadcastError(roomID string, req *comm.WSMessage, err error) {
	msg := comm.NewErrorMessage(req.Type+comm.ResponseSuffix, onecard.Classify(err), req.SocketId)
	if err := b.Publish(comm.RoomTopic(roomID), msg); err != nil {
		log.Errorf("Error broadcast to room %s: %s", roomID, err)
	}
}

func (b *Broker) Publish(subject string, msg *comm.WSMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.pub.Publish(subject, payload)
}

func decode[T any](msg *comm.WSMessage) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		return v, onecard.ErrBadRequest
	}
	return v, nil
}

func decodeRoom(msg *comm.WSMessage) (comm.RoomRequest, error) {
	req, err := decode[comm.RoomRequest](msg)
	if err == nil && req.RoomID == "" {
		err = onecard.ErrBadRequest
	}
	return req, err
}
