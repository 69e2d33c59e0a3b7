// cmd/robosvc/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	config "github.com/avvvet/onecard-services/configs"
	"github.com/avvvet/onecard-services/internal/comm"
	natscli "github.com/avvvet/onecard-services/internal/nats"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "robot"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.LoadEnv(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
}

// robot is a scripted player talking to the game service over NATS.
type robot struct {
	id    string
	conn  *nats.Conn
	views chan comm.GameInfo
	sub   *nats.Subscription
}

func robotIDs(n int, prefix string) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return ids
}

func main() {
	players := flag.Int("players", 3, "robots seated per round")
	rounds := flag.Int("rounds", 1, "rounds to play")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	prefix := flag.String("prefix", "robot", "robot player id prefix")
	flag.Parse()

	if *players < onecard.MinPlayers || *players > onecard.DefaultMaxPlayers {
		fmt.Fprintf(os.Stderr, "players must be between %d and %d\n", onecard.MinPlayers, onecard.DefaultMaxPlayers)
		os.Exit(2)
	}

	log.Printf("Starting Robot Service...")

	n, err := natscli.Connect("onecard-" + SERVICE_NAME + "-" + instanceId)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}
	defer n.Conn.Close()

	robots := make([]*robot, 0, *players)
	for _, id := range robotIDs(*players, *prefix) {
		r, err := newRobot(n.Conn, id)
		if err != nil {
			log.Fatalf("robot %s: %v", id, err)
		}
		defer r.sub.Unsubscribe()
		robots = append(robots, r)
	}

	for round := 1; round <= *rounds; round++ {
		if err := playRound(robots, round, *timeout); err != nil {
			log.Errorf("round %d failed: %v", round, err)
			fmt.Fprintf(os.Stderr, "round %d failed: %v\n", round, err)
			os.Exit(1)
		}
		fmt.Printf("round %d ok\n", round)
	}
}

func newRobot(nc *nats.Conn, id string) (*robot, error) {
	r := &robot{id: id, conn: nc, views: make(chan comm.GameInfo, 1)}

	sub, err := nc.Subscribe(comm.PlayerQueue(id), func(m *nats.Msg) {
		msg := &comm.WSMessage{}
		if err := json.Unmarshal(m.Data, msg); err != nil || msg.Type != comm.TypeGameInfo {
			return
		}
		var view comm.GameInfo
		if err := json.Unmarshal(msg.Data, &view); err != nil {
			log.Errorf("robot %s: bad game info %v", id, err)
			return
		}
		select {
		case r.views <- view:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	r.sub = sub

	// robots survive restarts, so an existing id is fine
	err = r.request(context.Background(), comm.TypeCreatePlayer, comm.CreatePlayerRequest{ID: id}, nil)
	if err != nil && !isCode(err, onecard.ErrPlayerIDDuplicated.Code) {
		sub.Unsubscribe()
		return nil, err
	}
	return r, nil
}

func (r *robot) request(ctx context.Context, msgType string, payload, out any) error {
	msg, err := comm.NewMessage(msgType, payload, "robot-"+r.id)
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	res, err := r.conn.RequestWithContext(ctx, comm.GameServiceSubject, data)
	if err != nil {
		return fmt.Errorf("%s: %w", msgType, err)
	}
	reply := &comm.WSMessage{}
	if err := json.Unmarshal(res.Data, reply); err != nil {
		return err
	}
	if reply.Error != nil {
		return &onecard.Error{Code: reply.Error.Code, Message: reply.Error.Message}
	}
	if out != nil {
		return json.Unmarshal(reply.Data, out)
	}
	return nil
}

func isCode(err error, code string) bool {
	e, ok := onecard.AsError(err)
	return ok && e.Code == code
}

// playRound seats every robot in a fresh room, deals, checks each robot got
// a consistent view, then tears the room down.
func playRound(robots []*robot, round int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	admin := robots[0]
	room := comm.RoomResponse{}
	name := fmt.Sprintf("robots-%s-%d", instanceId[:8], round)
	if err := admin.request(ctx, comm.TypeCreateRoom, comm.CreateRoomRequest{Name: name, AdminID: admin.id}, &room); err != nil {
		return err
	}
	defer admin.request(context.Background(), comm.TypeDeleteRoom, comm.RoomRequest{RoomID: room.ID}, nil)

	for _, r := range robots[1:] {
		if err := r.request(ctx, comm.TypeJoinRoom, comm.JoinRoomRequest{RoomID: room.ID, PlayerID: r.id}, nil); err != nil {
			return err
		}
	}

	ack := comm.StartGameResponse{}
	if err := admin.request(ctx, comm.TypeStartGame, comm.RoomRequest{RoomID: room.ID}, &ack); err != nil {
		return err
	}
	log.Infof("room %s started with %v", room.ID, ack.Players)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, r := range robots {
		wg.Add(1)
		go func(r *robot) {
			defer wg.Done()
			if err := r.checkView(ctx, len(robots)); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("robot %s: %w", r.id, err))
				mu.Unlock()
			}
		}(r)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (r *robot) checkView(ctx context.Context, seated int) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("no game info: %w", ctx.Err())
	case view := <-r.views:
		if len(view.MyHand) != onecard.HandSize {
			return fmt.Errorf("dealt %d cards", len(view.MyHand))
		}
		if len(view.RemainingCards) != seated {
			return fmt.Errorf("view lists %d players", len(view.RemainingCards))
		}
		if view.OpenedCard == nil {
			return errors.New("no opened card")
		}
		log.Infof("robot %s holds %v, opened %s, turn %s", r.id, view.MyHand, view.OpenedCard, view.CurTurn)
		return nil
	}
}
