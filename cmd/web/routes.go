package main

import (
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/events"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	svc            *service.TournamentService
	hub            *events.Hub
	sessionManager *scs.SessionManager
	logger         *zap.Logger
}

func newRouter(app *application, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// The websocket upgrade needs the raw connection, so it skips sessions.
	r.Get("/tournaments/{id}/ws", app.watchTournament)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(middleware.LoadPlayer(app.sessionManager))

		r.Post("/auth/guest", app.guestLogin)
		r.Get("/auth/{provider}", app.beginAuth)
		r.Get("/auth/{provider}/callback", app.completeAuth)
		r.Post("/logout", app.logout)

		r.Get("/tournaments", app.listTournaments)
		r.Get("/tournaments/{id}", app.getTournament)
		r.Get("/tournaments/{id}/standings", app.standings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePlayer)

			r.Get("/me", app.me)
			r.Post("/tournaments", app.createTournament)
			r.Post("/tournaments/{id}/participants", app.register)
			r.Delete("/tournaments/{id}/participants", app.withdraw)
			r.Post("/tournaments/{id}/activate", app.activate)
			r.Post("/tournaments/{id}/cancel", app.cancel)
			r.Post("/matches/{id}/result", app.reportResult)
		})
	})

	return r
}
