package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazharichir/blackjack/cards"
	"github.com/lazharichir/blackjack/server/events"
	"github.com/lazharichir/blackjack/sim"
	"github.com/lazharichir/blackjack/table"
)

// RecommendRequest asks for a recommendation on a fresh shoe, without a table
type RecommendRequest struct {
	Player      []string `json:"player"`
	Dealer      []string `json:"dealer"`
	Decks       int      `json:"decks"`
	Simulations int      `json:"simulations"`
	AllowSplit  *bool    `json:"allow_split"`
	Seed        *int64   `json:"seed"`
}

type ActionRequest struct {
	Action string `json:"action"`
}

// ActionResponse carries the table after an action, and the result once the round settled
type ActionResponse struct {
	Table  table.RoundView    `json:"table"`
	Result *table.RoundResult `json:"result,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	player, err := cards.ParseRanks(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dealer, err := cards.ParseRanks(req.Dealer)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(player) == 0 || len(dealer) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("player and dealer cards are required"))
		return
	}
	if req.Decks > cards.MaxDecks {
		writeError(w, http.StatusBadRequest, fmt.Errorf("at most %d decks", cards.MaxDecks))
		return
	}
	if req.Simulations > maxSimulations {
		writeError(w, http.StatusBadRequest, fmt.Errorf("at most %d simulations per action", maxSimulations))
		return
	}

	cfg := s.lobby.Config()
	decks := cfg.NumDecks
	if req.Decks > 0 {
		decks = req.Decks
	}
	nSim := cfg.NumSimulations
	if req.Simulations > 0 {
		nSim = req.Simulations
	}
	allowSplit := cfg.AllowSplit
	if req.AllowSplit != nil {
		allowSplit = *req.AllowSplit
	}

	shoeSeed := time.Now().UnixNano()
	if req.Seed != nil {
		shoeSeed = *req.Seed
	}
	shoe := cards.NewShoe(decks, rand.New(rand.NewSource(shoeSeed)))
	simu := sim.New(shoe, cfg.BlackjackPayout, req.Seed, sim.WithWorkers(cfg.Workers), sim.WithLogger(s.logger))

	rec, err := simu.EvaluateAll(player, dealer, nSim, allowSplit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetTables(w http.ResponseWriter, r *http.Request) {
	tables := s.lobby.GetTables()
	views := make([]table.RoundView, 0, len(tables))
	for _, t := range tables {
		views = append(views, t.View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	t := s.lobby.CreateTable()
	writeJSON(w, http.StatusCreated, t.View())
}

// tableFromURL writes a 404 and returns nil when the table does not exist
func (s *Server) tableFromURL(w http.ResponseWriter, r *http.Request) *table.Manager {
	t, err := s.lobby.GetTable(chi.URLParam(r, "tableID"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return nil
	}
	return t
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	if t := s.tableFromURL(w, r); t != nil {
		writeJSON(w, http.StatusOK, t.View())
	}
}

func (s *Server) handleCloseTable(w http.ResponseWriter, r *http.Request) {
	if err := s.lobby.CloseTable(chi.URLParam(r, "tableID")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStartRound starts a round and deals the opening cards
func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	t := s.tableFromURL(w, r)
	if t == nil {
		return
	}

	if err := t.StartRound(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	deal, err := t.DealInitial(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, deal)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	t := s.tableFromURL(w, r)
	if t == nil {
		return
	}

	rec, err := t.Recommend(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	t := s.tableFromURL(w, r)
	if t == nil {
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	action, err := sim.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := t.Apply(r.Context(), action); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := ActionResponse{Table: t.View()}
	if res, err := t.Result(); err == nil {
		resp.Result = &res
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	t := s.tableFromURL(w, r)
	if t == nil {
		return
	}

	res, err := t.Result()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleEvents returns the table's event log as named envelopes, optionally
// narrowed to one round with ?round=
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	t := s.tableFromURL(w, r)
	if t == nil {
		return
	}

	loaded, err := s.lobby.EventStore().LoadRound(r.Context(), t.ID, r.URL.Query().Get("round"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	envelopes := make([]events.EventEnvelope, 0, len(loaded))
	for _, e := range loaded {
		payload, err := json.Marshal(e)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		envelopes = append(envelopes, events.EventEnvelope{Name: e.EventName(), Payload: payload})
	}
	writeJSON(w, http.StatusOK, envelopes)
}
