// internal/httpserver/server.go
//
// HTTP wiring for the number-guessing backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): current game, guess, reset, digit notes.
//   - History endpoints (optional auth): finished games list + detail.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is
//     present; routes still run for guests under an anonymous cookie id.
//   - All state changes go through the engine; handlers never touch the
//     database directly.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/engine"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/store"
)

// Server bundles the router, the game engine, and the store the auth
// handlers use for account rows.
type Server struct {
	r     *chi.Mux
	eng   *engine.Engine
	store *store.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(eng *engine.Engine, st *store.Store) *Server {
	s := &Server{r: chi.NewRouter(), eng: eng, store: st}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guessnum-go","endpoints":["/health","GET /game","POST /game/guess","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints — OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Get("/game", s.handleCurrentGame)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/reset", s.handleReset)
		r.Put("/game/notes/{digit}", s.handleSetNote)
		r.Post("/game/notes/{digit}/toggle", s.handleToggleNote)
		r.Post("/game/notes/reset", s.handleResetNotes)
		r.Get("/games", s.handleGameSummaries)
		r.Get("/games/{id}", s.handleGameDetail)
	})

	// Daily Challenge — OPTIONAL AUTH (guests can play)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	// Debug: effective mode configuration
	s.r.Get("/debug/modes", func(w http.ResponseWriter, r *http.Request) {
		m := st.Modes()
		_ = json.NewEncoder(w).Encode(map[string]int{
			"classicLength":   m.Classic.Length,
			"dailyLength":     m.Daily.Length,
			"dailyAttemptCap": m.Daily.AttemptCap,
		})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// handleCurrentGame returns the caller's open game, creating one on
// first visit. The secret never appears in the response.
func (s *Server) handleCurrentGame(w http.ResponseWriter, r *http.Request) {
	detail, err := s.eng.CurrentGame(r.Context(), s.ownerID(w, r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(detail)
}

// guessReq is the payload for POST /game/guess.
type guessReq struct {
	Guess string `json:"guess"`
}

// handleGuess submits one guess against the caller's open game.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	res, err := s.eng.SubmitGuess(r.Context(), s.ownerID(w, r), req.Guess)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleReset abandons the current game (if any) and returns the fresh one.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	detail, err := s.eng.ResetGame(r.Context(), s.ownerID(w, r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(detail)
}

// ---------------------------- DIGIT NOTES ----------------------------------

// noteReq is the payload for PUT /game/notes/{digit}.
type noteReq struct {
	Mark string `json:"mark"`
}

// handleSetNote sets the note for one digit on the current game.
func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	digit, err := strconv.Atoi(chi.URLParam(r, "digit"))
	if err != nil {
		http.Error(w, `{"error":"invalid_digit"}`, http.StatusBadRequest)
		return
	}
	var req noteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	mark := game.Mark(req.Mark)
	if err := s.eng.SetDigitMark(r.Context(), s.ownerID(w, r), digit, mark); err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(store.DigitNote{Digit: digit, Mark: mark})
}

// handleToggleNote advances one digit's note along the mark cycle.
func (s *Server) handleToggleNote(w http.ResponseWriter, r *http.Request) {
	digit, err := strconv.Atoi(chi.URLParam(r, "digit"))
	if err != nil {
		http.Error(w, `{"error":"invalid_digit"}`, http.StatusBadRequest)
		return
	}
	mark, err := s.eng.ToggleDigitMark(r.Context(), s.ownerID(w, r), digit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(store.DigitNote{Digit: digit, Mark: mark})
}

// handleResetNotes puts every note on the current game back to unknown.
func (s *Server) handleResetNotes(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.ResetDigitNotes(r.Context(), s.ownerID(w, r)); err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ------------------------------ HISTORY ------------------------------------

// handleGameSummaries lists the caller's finished games, newest first.
func (s *Server) handleGameSummaries(w http.ResponseWriter, r *http.Request) {
	sums, err := s.eng.GameSummaries(r.Context(), s.ownerID(w, r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sums)
}

// handleGameDetail returns one finished or open game with attempts and notes.
func (s *Server) handleGameDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.eng.GameDetail(r.Context(), s.ownerID(w, r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(detail)
}

// ---------------------------- error mapping --------------------------------

// writeErr maps engine and store errors onto JSON error responses.
// Validation problems are the caller's input, domain conflicts are state
// the caller can recover from (reset, new day), and anything unmapped is
// a server fault worth logging.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrWrongLength),
		errors.Is(err, game.ErrNotDigits),
		errors.Is(err, game.ErrDuplicateDigit),
		errors.Is(err, store.ErrInvalidDigit),
		errors.Is(err, store.ErrInvalidMark):
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	case errors.Is(err, store.ErrGameNotInProgress):
		http.Error(w, `{"error":"game_not_in_progress"}`, http.StatusConflict)
	case errors.Is(err, store.ErrGameInProgress):
		http.Error(w, `{"error":"game_in_progress"}`, http.StatusConflict)
	case errors.Is(err, store.ErrChallengeFinished):
		http.Error(w, `{"error":"challenge_finished"}`, http.StatusConflict)
	case errors.Is(err, store.ErrChallengeExpired):
		http.Error(w, `{"error":"challenge_expired"}`, http.StatusConflict)
	case errors.Is(err, store.ErrChallengeNotStarted):
		http.Error(w, `{"error":"challenge_not_started"}`, http.StatusConflict)
	case errors.Is(err, store.ErrUsernameTaken):
		http.Error(w, `{"error":"Username taken"}`, http.StatusConflict)
	case errors.Is(err, store.ErrGameNotFound),
		errors.Is(err, store.ErrChallengeNotFound),
		errors.Is(err, store.ErrUserNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	case errors.Is(err, store.ErrStoreClosed):
		http.Error(w, `{"error":"shutting_down"}`, http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Msg("request failed")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
	}
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
