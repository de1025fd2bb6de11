package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coinflip-gg/bracketry/manager"
)

func newRouter(m *manager.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)
	r.Use(metricsMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	h := &handlers{m: m}

	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", h.createTournament)
		r.Get("/{tournamentID}", h.getTournamentData)
		r.Delete("/{tournamentID}", h.deleteTournament)
		r.Get("/{tournamentID}/seeding", h.getSeeding)
	})

	r.Route("/stages", func(r chi.Router) {
		r.Post("/", h.createStage)
		r.Get("/{stageID}", h.getStageData)
		r.Delete("/{stageID}", h.deleteStage)
		r.Get("/{stageID}/standings", h.getFinalStandings)
		r.Get("/{stageID}/race/{participantID}", h.getCurrentRace)
		r.Get("/{stageID}/matches/{matchID}/location", h.getMatchLocation)
		r.Put("/{stageID}/seeding", h.updateSeeding)
		r.Post("/{stageID}/seeding/confirm", h.confirmSeeding)
		r.Post("/{stageID}/seeding/reset", h.resetSeeding)
	})

	r.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.getMatch)
		r.Delete("/{matchID}", h.deleteMatch)
		r.Patch("/{matchID}", h.updateMatch)
		r.Post("/{matchID}/reset", h.resetMatch)
		r.Get("/{matchID}/next", h.getNextMatches)
		r.Get("/{matchID}/previous", h.getPreviousMatches)
		r.Get("/{matchID}/games", h.getMatchGames)
	})

	r.Route("/match-games", func(r chi.Router) {
		r.Patch("/{gameID}", h.updateMatchGame)
		r.Post("/{gameID}/reset", h.resetMatchGame)
	})

	return r
}
