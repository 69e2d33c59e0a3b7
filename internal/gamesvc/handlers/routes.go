package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Route("/one-card/rooms", func(r chi.Router) {
			r.Post("/", h.CreateRoom)
			r.Get("/{id}", h.GetRoom)
			r.Delete("/{id}", h.DeleteRoom)
			r.Post("/{id}/reset", h.ResetGame)
		})
		r.Post("/players", h.CreatePlayer)
		r.Handle("/metrics", h.Metrics.Handler())

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)

		})
	})
}

func (h *Handler) InitAuth(secret string) {
	h.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": "onecard-game",
		"exp":        expirationTime,
	})

	log.Debugf("JWT for testing expires in 7 days: %s", tokenString)
}
