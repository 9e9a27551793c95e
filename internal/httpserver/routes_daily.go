// internal/httpserver/routes_daily.go
//
// HTTP routes for the Daily Challenge mode.
// Endpoints under /daily:
//   - GET  /daily             → today's board (lazy-created; ?reveal=1 shows
//                               the secret once completed)
//   - POST /daily/guess       → submit a guess (today by default, or a date)
//   - POST /daily/giveup      → fail today's board
//   - GET  /daily/history     → the caller's solved days
//   - GET  /daily/leaderboard → top completions for today (or a given date)
//   - GET  /daily/{date}      → a past board snapshot, never lazy-created
//
// Every owner gets the same secret for a given UTC day because both sides
// derive it from the date; nothing needs to be distributed.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/daily"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/store"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyToday)
		r.Post("/guess", s.handleDailyGuess)
		r.Post("/giveup", s.handleDailyGiveUp)
		r.Get("/history", s.handleDailyHistory)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
		r.Get("/{date}", s.handleDailyDetail)
	})
}

// -----------------------------------------------------------------------------
// GET /daily

// handleDailyToday returns today's challenge, creating it on first
// access. The secret stays hidden unless ?reveal=1 is passed and the
// board is completed.
func (s *Server) handleDailyToday(w http.ResponseWriter, r *http.Request) {
	reveal := r.URL.Query().Get("reveal") == "1"
	d, err := s.eng.TodayChallenge(r.Context(), s.ownerID(w, r), reveal)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}

// -----------------------------------------------------------------------------
// POST /daily/guess

// dailyGuessReq is the payload for /daily/guess. Date is optional and
// defaults to today; a past date is rejected as expired.
type dailyGuessReq struct {
	Guess string `json:"guess"`
	Date  string `json:"date"`
}

// handleDailyGuess submits one guess against the daily board.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	var req dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	res, err := s.eng.SubmitDailyGuess(r.Context(), s.ownerID(w, r), req.Date, req.Guess)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// POST /daily/giveup

// giveUpRes reports where the board ended up after giving up.
type giveUpRes struct {
	State game.ChallengeState `json:"state"`
}

// handleDailyGiveUp fails today's board. Safe to call twice.
func (s *Server) handleDailyGiveUp(w http.ResponseWriter, r *http.Request) {
	state, err := s.eng.GiveUpChallenge(r.Context(), s.ownerID(w, r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(giveUpRes{State: state})
}

// -----------------------------------------------------------------------------
// GET /daily/history

// handleDailyHistory lists the caller's solved challenges, newest first.
func (s *Server) handleDailyHistory(w http.ResponseWriter, r *http.Request) {
	sums, err := s.eng.CompletedChallenges(r.Context(), s.ownerID(w, r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sums)
}

// -----------------------------------------------------------------------------
// GET /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string                 `json:"date"`
	Top  []store.LeaderboardRow `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for the given date
// (default today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now().UTC())
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.eng.DailyLeaderboard(r.Context(), date, limit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

// -----------------------------------------------------------------------------
// GET /daily/{date}

// handleDailyDetail returns the caller's board for a specific date.
// Days never played 404; unfinished past days come back expired.
func (s *Server) handleDailyDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.eng.Challenge(r.Context(), s.ownerID(w, r), chi.URLParam(r, "date"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}
