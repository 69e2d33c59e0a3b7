package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avvvet/onecard-services/internal/monitor"
	"github.com/avvvet/onecard-services/internal/nats"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/onecard-services/configs"
	gameconfig "github.com/avvvet/onecard-services/internal/gamesvc/config"

	"github.com/avvvet/onecard-services/internal/socketsvc/broker"
	"github.com/avvvet/onecard-services/internal/socketsvc/handlers"
	"github.com/avvvet/onecard-services/internal/socketsvc/routes"
	"github.com/avvvet/onecard-services/internal/socketsvc/ws"
)

const SERVICE_NAME = "socket"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.LoadEnv(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
}

func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func main() {
	cfg, err := gameconfig.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	port := os.Getenv("SOCKET_SERVICE_PORT")
	if port == "" {
		port = "8082"
	}

	// Connect to NATS
	n, err := nats.Connect("onecard-" + SERVICE_NAME + "-" + instanceId)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	metrics := monitor.NewMetrics(SERVICE_NAME)

	// Initialize websocket handler
	s := ws.NewWs(metrics)
	s.Timeout = cfg.RequestTimeout

	// broker relays client requests to the game service and pushes back
	// room and player messages
	b := broker.NewBroker(n.Conn, s)
	s.Broker = b

	subs, err := b.Subscribe()
	if err != nil {
		log.Fatalf("Error: unable to subscribe to game service topics %v", err)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Initialize routes
	h := handlers.NewHandler(s, allowOrigin(config.Origins()))
	h.Port = port
	routes.InitAuth(cfg.JWTSecret)
	routes.SetRoutes(r, h, metrics)

	// Create server with timeout settings
	server := &http.Server{
		Addr:        ":" + port,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
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

	for _, sub := range subs {
		sub.Unsubscribe()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
