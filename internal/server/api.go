package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dkress/hearsay/internal/storage"
	"github.com/dkress/hearsay/internal/trainer"
	"github.com/dkress/hearsay/internal/vocab"
)

// Controller is the mutating surface the API forwards user intents to.
type Controller interface {
	Start(mode trainer.Mode)
	Stop()
	HandleGuess(letter byte)
	ReplaySequence()
	UpdateSettings(rate, noise *float64) bool
	State() trainer.State
}

// HistoryStore serves the finished-session history reads.
type HistoryStore interface {
	RecentSessions(limit int) ([]storage.SessionResult, error)
}

type startRequest struct {
	Mode string `json:"mode"`
}

type guessRequest struct {
	Letter string `json:"letter"`
}

type settingsRequest struct {
	Rate  *float64 `json:"rate,omitempty"`
	Noise *float64 `json:"noise,omitempty"`
}

type vocabularyEntry struct {
	Letter string `json:"letter"`
	Word   string `json:"word"`
}

func registerAPIRoutes(mux *http.ServeMux, ctrl Controller, history HistoryStore) {
	mux.HandleFunc("GET /api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.State())
	})

	mux.HandleFunc("POST /api/start", func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode start request: %v", err))
			return
		}

		mode, ok := trainer.ParseMode(req.Mode)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
			return
		}

		ctrl.Start(mode)
		writeJSON(w, http.StatusOK, ctrl.State())
	})

	mux.HandleFunc("POST /api/stop", func(w http.ResponseWriter, r *http.Request) {
		ctrl.Stop()
		writeJSON(w, http.StatusOK, ctrl.State())
	})

	mux.HandleFunc("POST /api/guess", func(w http.ResponseWriter, r *http.Request) {
		var req guessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode guess request: %v", err))
			return
		}

		if len(req.Letter) != 1 {
			writeJSONError(w, http.StatusBadRequest, "letter must be a single character")
			return
		}
		letter := req.Letter[0]
		if _, ok := vocab.Lookup(letter); !ok {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("letter %q is not in the vocabulary", req.Letter))
			return
		}

		ctrl.HandleGuess(letter)
		writeJSON(w, http.StatusOK, ctrl.State())
	})

	mux.HandleFunc("POST /api/replay", func(w http.ResponseWriter, r *http.Request) {
		ctrl.ReplaySequence()
		writeJSON(w, http.StatusOK, ctrl.State())
	})

	mux.HandleFunc("PUT /api/settings", func(w http.ResponseWriter, r *http.Request) {
		var req settingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode settings request: %v", err))
			return
		}

		if !ctrl.UpdateSettings(req.Rate, req.Noise) {
			writeJSONError(w, http.StatusConflict, "settings cannot change while playback is running")
			return
		}

		writeJSON(w, http.StatusOK, ctrl.State())
	})

	mux.HandleFunc("GET /api/vocabulary", func(w http.ResponseWriter, r *http.Request) {
		entries := vocab.Entries()
		out := make([]vocabularyEntry, len(entries))
		for i, e := range entries {
			out[i] = vocabularyEntry{Letter: string(e.Letter), Word: e.Word}
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /api/history", func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > 500 {
				writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
				return
			}
			limit = parsed
		}

		sessions, err := history.RecentSessions(limit)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list sessions: %v", err))
			return
		}
		if sessions == nil {
			sessions = []storage.SessionResult{}
		}
		writeJSON(w, http.StatusOK, sessions)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
