package main

import (
	"net/http"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	users "github.com/AdamBeresnev/bracket-engine/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
	"go.uber.org/zap"
)

type guestRequest struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

type createTournamentRequest struct {
	Name            string         `json:"name"`
	Format          bracket.Format `json:"format"`
	MaxPlayers      int            `json:"max_players"`
	EntryFee        int64          `json:"entry_fee"`
	PrizeTable      map[int]int64  `json:"prize_table"`
	Seeding         string         `json:"seeding"`
	GrandFinalReset bool           `json:"grand_final_reset"`
	StartsAt        *time.Time     `json:"starts_at"`
}

type resultRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

type resultResponse struct {
	TournamentID uuid.UUID           `json:"tournament_id"`
	WinnerID     uuid.UUID           `json:"winner_id"`
	Completed    bool                `json:"completed"`
	Tournament   *bracket.Tournament `json:"tournament"`
}

func (app *application) idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, app.logger, "Invalid ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func (app *application) login(w http.ResponseWriter, r *http.Request, p *users.Player) {
	if err := middleware.Login(r.Context(), app.sessionManager, p); err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	app.logger.Info("player logged in", zap.Stringer("player_id", p.ID), zap.String("provider", p.Provider))
	httputil.JSON(w, http.StatusOK, p)
}

func (app *application) guestLogin(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Error(w, app.logger, err)
			return
		}
	}
	p := users.NewGuest(req.Name)
	p.Rating = req.Rating
	app.login(w, r, p)
}

func (app *application) beginAuth(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	gothic.BeginAuthHandler(w, r)
}

func (app *application) completeAuth(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, app.logger, "Authentication failure", err)
		return
	}
	app.login(w, r, users.FromGoth(gothUser))
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) me(w http.ResponseWriter, r *http.Request) {
	p, _ := users.FromContext(r.Context())
	httputil.JSON(w, http.StatusOK, p)
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Status: bracket.TournamentStatus(q.Get("status")),
		Format: bracket.Format(q.Get("format")),
	}

	tournaments, err := app.svc.ListTournaments(r.Context(), filter)
	if err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	if tournaments == nil {
		tournaments = []*bracket.Tournament{}
	}
	httputil.JSON(w, http.StatusOK, tournaments)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	p, _ := users.FromContext(r.Context())

	t, err := app.svc.CreateTournament(r.Context(), service.CreateTournamentInput{
		Name:            req.Name,
		Format:          req.Format,
		MaxPlayers:      req.MaxPlayers,
		EntryFee:        req.EntryFee,
		PrizeTable:      req.PrizeTable,
		Seeding:         req.Seeding,
		GrandFinalReset: req.GrandFinalReset,
		StartsAt:        req.StartsAt,
		CreatedBy:       p.ID,
	})
	if err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, t)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r)
	if !ok {
		return
	}
	app.respond(w, http.StatusOK)(app.svc.GetTournament(r.Context(), id))
}

func (app *application) standings(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r)
	if !ok {
		return
	}

	standings, err := app.svc.Standings(r.Context(), id)
	if err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, standings)
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r)
	if !ok {
		return
	}
	p, _ := users.FromContext(r.Context())

	app.respond(w, http.StatusOK)(app.svc.RegisterParticipant(r.Context(), id, service.RegistrationInput{
		ID:     p.ID,
		Name:   p.Name,
		Rating: p.Rating,
	}))
}

func (app *application) withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r)
	if !ok {
		return
	}
	p, _ := users.FromContext(r.Context())
	app.respond(w, http.StatusOK)(app.svc.WithdrawParticipant(r.Context(), id, p.ID))
}

func (app *application) activate(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r)
	if !ok {
		return
	}
	p, _ := users.FromContext(r.Context())
	app.respond(w, http.StatusOK)(app.svc.StartTournament(r.Context(), id, p.ID))
}

func (app *application) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r)
	if !ok {
		return
	}
	p, _ := users.FromContext(r.Context())
	app.respond(w, http.StatusOK)(app.svc.CancelTournament(r.Context(), id, p.ID))
}

func (app *application) reportResult(w http.ResponseWriter, r *http.Request) {
	matchID, ok := app.idParam(w, r)
	if !ok {
		return
	}

	var req resultRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, app.logger, err)
		return
	}

	res, err := app.svc.ReportMatchResult(r.Context(), matchID, req.Score1, req.Score2)
	if err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	httputil.JSON(w, http.StatusOK, resultResponse{
		TournamentID: res.TournamentID,
		WinnerID:     res.WinnerID,
		Completed:    res.Completed,
		Tournament:   res.Tournament,
	})
}

func (app *application) watchTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := app.idParam(w, r)
	if !ok {
		return
	}
	if _, err := app.svc.GetTournament(r.Context(), id); err != nil {
		httputil.Error(w, app.logger, err)
		return
	}
	app.hub.ServeWS(w, r, id)
}

// respond writes the tournament a command returned, or its error.
func (app *application) respond(w http.ResponseWriter, status int) func(*bracket.Tournament, error) {
	return func(t *bracket.Tournament, err error) {
		if err != nil {
			httputil.Error(w, app.logger, err)
			return
		}
		httputil.JSON(w, status, t)
	}
}
