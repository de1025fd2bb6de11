package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/engine"
	"github.com/coinflip-gg/bracketry/internal/httputil"
	"github.com/coinflip-gg/bracketry/manager"
)

type handlers struct {
	m *manager.Manager
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.BadRequest(w, "invalid JSON body", err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httputil.BadRequest(w, param+" must be an integer", err)
		return 0, false
	}
	return id, true
}

// -- tournaments --------------------------------------------------------

type createTournamentRequest struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

func (h *handlers) createTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tournament, participants, err := h.m.Create.Tournament(r.Context(), req.Name, req.Participants)
	if err != nil {
		httputil.WriteError(w, "create tournament", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"tournament": tournament, "participants": participants})
}

func (h *handlers) getTournamentData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tournamentID")
	if !ok {
		return
	}
	data, err := h.m.Get.TournamentData(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get tournament", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *handlers) deleteTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tournamentID")
	if !ok {
		return
	}
	deleted, err := h.m.Delete.Tournament(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "delete tournament", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *handlers) getSeeding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tournamentID")
	if !ok {
		return
	}
	participants, err := h.m.Get.Seeding(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get seeding", err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

// -- stages ---------------------------------------------------------------

type createStageRequest struct {
	TournamentID   int64                   `json:"tournamentId"`
	Name           string                  `json:"name"`
	Type           bracketry.StageType     `json:"type"`
	Number         int                     `json:"number"`
	Settings       bracketry.StageSettings `json:"settings"`
	ParticipantIDs []int64                 `json:"participantIds"`
}

func (h *handlers) createStage(w http.ResponseWriter, r *http.Request) {
	var req createStageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	stage, err := h.m.Create.Stage(r.Context(), manager.StageInput{
		TournamentID:   req.TournamentID,
		Name:           req.Name,
		Type:           req.Type,
		Number:         req.Number,
		Settings:       req.Settings,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		httputil.WriteError(w, "create stage", err)
		return
	}
	writeJSON(w, http.StatusCreated, stage)
}

func (h *handlers) getStageData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	data, err := h.m.Get.StageData(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get stage", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *handlers) deleteStage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	deleted, err := h.m.Delete.Stage(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "delete stage", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *handlers) getFinalStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	standings, err := h.m.Get.FinalStandings(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get standings", err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (h *handlers) getCurrentRace(w http.ResponseWriter, r *http.Request) {
	stageID, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	participantID, ok := pathID(w, r, "participantID")
	if !ok {
		return
	}
	ref, found, err := h.m.Get.CurrentRace(r.Context(), stageID, participantID)
	if err != nil {
		httputil.WriteError(w, "get current race", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": found, "match": ref})
}

func (h *handlers) getMatchLocation(w http.ResponseWriter, r *http.Request) {
	stageID, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	matchID, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	ref, found, err := h.m.Find.MatchLocation(r.Context(), stageID, matchID)
	if err != nil {
		httputil.WriteError(w, "find match location", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": found, "location": ref})
}

type seedOrderRequest struct {
	SeedOrder []int64 `json:"seedOrder"`
}

func (h *handlers) updateSeeding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	var req seedOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	stage, err := h.m.Update.Seeding(r.Context(), id, req.SeedOrder)
	if err != nil {
		httputil.WriteError(w, "update seeding", err)
		return
	}
	writeJSON(w, http.StatusOK, stage)
}

func (h *handlers) confirmSeeding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	var req seedOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.m.Update.ConfirmSeeding(r.Context(), id, req.SeedOrder); err != nil {
		httputil.WriteError(w, "confirm seeding", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"confirmed": true})
}

func (h *handlers) resetSeeding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "stageID")
	if !ok {
		return
	}
	stage, err := h.m.Reset.Seeding(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "reset seeding", err)
		return
	}
	writeJSON(w, http.StatusOK, stage)
}

// -- matches ----------------------------------------------------------------

type opponentUpdateRequest struct {
	Score   *int              `json:"score"`
	Result  *bracketry.Result `json:"result"`
	Forfeit bool              `json:"forfeit"`
}

type updateMatchRequest struct {
	Opponent1 *opponentUpdateRequest `json:"opponent1"`
	Opponent2 *opponentUpdateRequest `json:"opponent2"`
}

func toEngineUpdate(slot bracketry.Slot, req *opponentUpdateRequest) *engine.Update {
	if req == nil {
		return nil
	}
	return &engine.Update{Slot: slot, Score: req.Score, Result: req.Result, Forfeit: req.Forfeit}
}

func (h *handlers) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	match, err := h.m.Find.Match(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get match", err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *handlers) deleteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	deleted, err := h.m.Delete.Match(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "delete match", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *handlers) updateMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	var req updateMatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	match, err := h.m.Update.Match(r.Context(), id, manager.MatchInput{
		Opponent1: toEngineUpdate(bracketry.SlotOpponent1, req.Opponent1),
		Opponent2: toEngineUpdate(bracketry.SlotOpponent2, req.Opponent2),
	})
	if err != nil {
		httputil.WriteError(w, "update match", err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *handlers) resetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	match, err := h.m.Reset.MatchResults(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "reset match", err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *handlers) getNextMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	matches, err := h.m.Find.NextMatches(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get next matches", err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *handlers) getPreviousMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	matches, err := h.m.Find.PreviousMatches(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get previous matches", err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *handlers) getMatchGames(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "matchID")
	if !ok {
		return
	}
	games, err := h.m.Get.MatchGames(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get match games", err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// -- match games --------------------------------------------------------

func (h *handlers) updateMatchGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "gameID")
	if !ok {
		return
	}
	var req opponentUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	slot := bracketry.SlotOpponent1
	if r.URL.Query().Get("slot") == "2" {
		slot = bracketry.SlotOpponent2
	}
	game, err := h.m.Update.MatchGame(r.Context(), id, engine.Update{
		Slot: slot, Score: req.Score, Result: req.Result, Forfeit: req.Forfeit,
	})
	if err != nil {
		httputil.WriteError(w, "update match game", err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *handlers) resetMatchGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "gameID")
	if !ok {
		return
	}
	game, err := h.m.Reset.MatchGameResults(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "reset match game", err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}
