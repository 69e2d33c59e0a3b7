package routes

import (
	"time"

	"github.com/avvvet/onecard-services/internal/monitor"
	"github.com/avvvet/onecard-services/internal/socketsvc/handlers"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

var tokenAuth *jwtauth.JWTAuth

func SetRoutes(r chi.Router, h *handlers.Handler, metrics *monitor.Metrics) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
		r.Handle("/metrics", metrics.Handler())

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)

		})
	})
}

func InitAuth(secret string) *jwtauth.JWTAuth {
	tokenAuth = jwtauth.New("HS256", []byte(secret), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := tokenAuth.Encode(map[string]interface{}{
		"service_id": "onecard-socket",
		"exp":        expirationTime,
	})

	log.Debugf("JWT for testing expires in 7 days: %s", tokenString)
	return tokenAuth
}
