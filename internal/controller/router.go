package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Handle("/metrics", c.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Route("/instances", func(r chi.Router) {
			r.Post("/", c.createInstance)
			r.Route("/{instance-id}", func(r chi.Router) {
				r.Get("/", c.getInstance)
				r.Post("/participants", c.addParticipant)
			})
		})
		r.Route("/ws", func(r chi.Router) {
			r.Get("/instances/{instance-id}", c.connectParticipant)
		})
	})

	return r
}
