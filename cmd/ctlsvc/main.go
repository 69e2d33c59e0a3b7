package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/onecard-services/configs"
	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/avvvet/onecard-services/internal/gamesvc/db"
	"github.com/avvvet/onecard-services/internal/gamesvc/store"
	natscli "github.com/avvvet/onecard-services/internal/nats"
	"github.com/nats-io/nats.go"
)

const SERVICE_NAME = "ctl"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.LoadEnv(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
}

const usage = `usage: ctlsvc [-timeout 10s] <command> [args]

commands:
  create-player <playerId>
  create-room   <name> <adminId>
  join          <roomId> <playerId>
  start         <roomId>
  reset         <roomId>
  delete        <roomId>
  get           <roomId>
  watch         <roomId> [playerId]   print room broadcasts and private views
  history       <roomId> [limit]      list started games (needs POSTGRES_URL)
`

// command maps a CLI verb to a game service request.
type command struct {
	msgType string
	args    int
	payload func(args []string) any
}

var commands = map[string]command{
	"create-player": {comm.TypeCreatePlayer, 1, func(a []string) any { return comm.CreatePlayerRequest{ID: a[0]} }},
	"create-room":   {comm.TypeCreateRoom, 2, func(a []string) any { return comm.CreateRoomRequest{Name: a[0], AdminID: a[1]} }},
	"join":          {comm.TypeJoinRoom, 2, func(a []string) any { return comm.JoinRoomRequest{RoomID: a[0], PlayerID: a[1]} }},
	"start":         {comm.TypeStartGame, 1, func(a []string) any { return comm.RoomRequest{RoomID: a[0]} }},
	"reset":         {comm.TypeResetGame, 1, func(a []string) any { return comm.RoomRequest{RoomID: a[0]} }},
	"delete":        {comm.TypeDeleteRoom, 1, func(a []string) any { return comm.RoomRequest{RoomID: a[0]} }},
	"get":           {comm.TypeGetRoom, 1, func(a []string) any { return comm.RoomRequest{RoomID: a[0]} }},
}

func main() {
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(args[0], args[1:], *timeout); err != nil {
		log.Errorf("ctl %s: %v", args[0], err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(verb string, args []string, timeout time.Duration) error {
	if verb == "history" {
		return history(args, timeout)
	}

	// Connect to NATS
	n, err := natscli.Connect("onecard-" + SERVICE_NAME + "-" + instanceId)
	if err != nil {
		return fmt.Errorf("unable to connect to NATS server: %w", err)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	if verb == "watch" {
		return watch(n.Conn, args)
	}

	cmd, ok := commands[verb]
	if !ok || len(args) != cmd.args {
		flag.Usage()
		return fmt.Errorf("bad command line")
	}

	msg, err := comm.NewMessage(cmd.msgType, cmd.payload(args), "ctl-"+instanceId)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := n.Conn.RequestWithContext(ctx, comm.GameServiceSubject, payload)
	if err != nil {
		return fmt.Errorf("request %s: %w", cmd.msgType, err)
	}

	reply := &comm.WSMessage{}
	if err := json.Unmarshal(res.Data, reply); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if reply.Error != nil {
		return fmt.Errorf("%s: %s", reply.Error.Code, reply.Error.Message)
	}
	return printJSON(reply.Data)
}

func watch(nc *nats.Conn, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		flag.Usage()
		return fmt.Errorf("bad command line")
	}

	printMsg := func(m *nats.Msg) {
		fmt.Printf("%s %s\n", m.Subject, m.Data)
	}

	subjects := []string{comm.RoomTopic(args[0])}
	if len(args) == 2 {
		subjects = append(subjects, comm.PlayerQueue(args[1]))
	}
	for _, subject := range subjects {
		sub, err := nc.Subscribe(subject, printMsg)
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	return nil
}

func history(args []string, timeout time.Duration) error {
	if len(args) < 1 || len(args) > 2 {
		flag.Usage()
		return fmt.Errorf("bad command line")
	}
	limit := 20
	if len(args) == 2 {
		if _, err := fmt.Sscan(args[1], &limit); err != nil || limit <= 0 {
			return fmt.Errorf("invalid limit %q", args[1])
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// pg connection
	dbpool, err := db.Connect(ctx, os.Getenv("POSTGRES_URL"), "onecard-"+SERVICE_NAME)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer dbpool.Close()

	records, err := store.NewGameRecordStore(dbpool).ListByRoom(ctx, args[0], limit)
	if err != nil {
		return err
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return printJSON(data)
}

func printJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
