package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/onecard-services/configs"
	mongodb "github.com/avvvet/onecard-services/internal/db"
	"github.com/avvvet/onecard-services/internal/gamesvc/broker"
	gameconfig "github.com/avvvet/onecard-services/internal/gamesvc/config"
	"github.com/avvvet/onecard-services/internal/gamesvc/db"
	handlers "github.com/avvvet/onecard-services/internal/gamesvc/handlers"
	"github.com/avvvet/onecard-services/internal/gamesvc/service"
	"github.com/avvvet/onecard-services/internal/gamesvc/store"
	"github.com/avvvet/onecard-services/internal/monitor"
	nats "github.com/avvvet/onecard-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.LoadEnv(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
}

type roomCounter interface {
	Count(ctx context.Context) (int64, error)
}

// seedRooms starts the active rooms gauge from the stored room count.
func seedRooms(ctx context.Context, rooms roomCounter, metrics *monitor.Metrics) {
	n, err := rooms.Count(ctx)
	if err != nil {
		log.Warnf("unable to count stored rooms: %v", err)
		return
	}
	metrics.SetRooms(int(n))
}

// stores picks the room and player stores for the configured driver. The
// returned func releases the driver connection.
func stores(ctx context.Context, cfg gameconfig.Config, metrics *monitor.Metrics) (service.RoomStore, service.PlayerStore, func(), error) {
	switch cfg.StoreDriver {
	case gameconfig.StoreRedis:
		client, err := mongodb.ConnectToRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, nil, err
		}
		rooms := store.NewRedisRoomStore(client)
		seedRooms(ctx, rooms, metrics)
		log.Infof("redis connection established %s", cfg.RedisAddr)
		return rooms, store.NewRedisPlayerStore(client), func() { client.Close() }, nil

	case gameconfig.StoreMemory:
		log.Warn("using in-memory store, rooms are lost on restart")
		return store.NewMemoryRoomStore(), store.NewMemoryPlayerStore(), func() {}, nil

	default:
		database, err := mongodb.ConnectToDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := mongodb.CreateSessionIndex(ctx, database, store.PlayerCollection); err != nil {
			log.Warnf("%s", err)
		}
		rooms := store.NewRoomStore(database)
		seedRooms(ctx, rooms, metrics)
		log.Infof("mongodb connection established, database %s", database.Name())
		return rooms, store.NewPlayerStore(database), func() { database.Client().Disconnect(context.Background()) }, nil
	}
}

func main() {
	cfg, err := gameconfig.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	metrics := monitor.NewMetrics(SERVICE_NAME)

	roomStore, playerStore, closeStore, err := stores(ctx, cfg, metrics)
	if err != nil {
		log.Fatalf("Failed to connect to %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	opts := []service.RoomOption{
		service.WithMetrics(metrics),
		service.WithMaxRetries(cfg.MaxRetries),
	}

	// pg connection, game history is optional
	if cfg.PostgresURL != "" {
		dbpool, err := db.Connect(ctx, cfg.PostgresURL, "onecard-"+SERVICE_NAME)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dbpool.Close()

		records := store.NewGameRecordStore(dbpool)
		if err := records.EnsureSchema(ctx); err != nil {
			log.Fatalf("%v", err)
		}
		opts = append(opts, service.WithRecorder(records))
		log.Printf("pg connection established successfully")
	}

	roomService := service.NewRoomService(roomStore, opts...)
	playerService := service.NewPlayerService(playerStore)

	// Connect to NATS
	n, err := nats.Connect("onecard-" + SERVICE_NAME + "-" + instanceId)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init peer message broker
	b := broker.NewBroker(n.Conn, roomService, playerService, metrics)
	b.Timeout = cfg.RequestTimeout

	// serve requests from socket services
	sub, err := b.Subscribe(n.Conn)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to queue %v", err)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(roomService, playerService, metrics)
	h.Port = cfg.Port
	h.InitAuth(cfg.JWTSecret)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// let in-flight requests finish before the connections close
	if err := sub.Drain(); err != nil {
		log.Errorf("drain failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
