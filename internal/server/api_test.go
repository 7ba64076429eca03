package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkress/hearsay/internal/storage"
	"github.com/dkress/hearsay/internal/trainer"
)

type controllerMock struct {
	mu      sync.Mutex
	state   trainer.State
	started []trainer.Mode
	stops   int
	guesses []byte
	replays int
	playing bool
	rates   []float64
	noises  []float64
}

func (c *controllerMock) Start(mode trainer.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, mode)
}

func (c *controllerMock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
}

func (c *controllerMock) HandleGuess(letter byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guesses = append(c.guesses, letter)
}

func (c *controllerMock) ReplaySequence() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replays++
}

func (c *controllerMock) UpdateSettings(rate, noise *float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return false
	}
	if rate != nil {
		c.rates = append(c.rates, *rate)
	}
	if noise != nil {
		c.noises = append(c.noises, *noise)
	}
	return true
}

func (c *controllerMock) State() trainer.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

type historyStoreMock struct {
	sessions []storage.SessionResult
	err      error
	limits   []int
}

func (h *historyStoreMock) RecentSessions(limit int) ([]storage.SessionResult, error) {
	h.limits = append(h.limits, limit)
	if h.err != nil {
		return nil, h.err
	}
	return h.sessions, nil
}

func newTestServer(t *testing.T, ctrl *controllerMock, history *historyStoreMock) *httptest.Server {
	t.Helper()
	if ctrl == nil {
		ctrl = &controllerMock{}
	}
	if history == nil {
		history = &historyStoreMock{}
	}
	srv := httptest.NewServer(Handler(NewHub(zerolog.Nop()), ctrl, history))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func TestStateEndpoint(t *testing.T) {
	ctrl := &controllerMock{state: trainer.State{
		Phase:     trainer.PhaseAwaitingInput,
		Mode:      trainer.ModeHighscore,
		Score:     4,
		HighScore: 9,
		Letters:   []string{"A", "B"},
	}}
	srv := newTestServer(t, ctrl, nil)

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var st trainer.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.Phase != trainer.PhaseAwaitingInput || st.Score != 4 || st.HighScore != 9 {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(st.Letters) != 2 {
		t.Fatalf("expected round letters in state, got %v", st.Letters)
	}
}

func TestStartEndpoint(t *testing.T) {
	ctrl := &controllerMock{}
	srv := newTestServer(t, ctrl, nil)

	resp := postJSON(t, srv.URL+"/api/start", map[string]string{"mode": "highscore"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.started) != 1 || ctrl.started[0] != trainer.ModeHighscore {
		t.Fatalf("expected highscore start, got %v", ctrl.started)
	}
}

func TestStartRejectsUnknownMode(t *testing.T) {
	ctrl := &controllerMock{}
	srv := newTestServer(t, ctrl, nil)

	resp := postJSON(t, srv.URL+"/api/start", map[string]string{"mode": "zen"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(ctrl.started) != 0 {
		t.Fatalf("unexpected start calls %v", ctrl.started)
	}
}

func TestGuessEndpoint(t *testing.T) {
	ctrl := &controllerMock{}
	srv := newTestServer(t, ctrl, nil)

	resp := postJSON(t, srv.URL+"/api/guess", map[string]string{"letter": "b"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.guesses) != 1 || ctrl.guesses[0] != 'b' {
		t.Fatalf("expected guess forwarded, got %v", ctrl.guesses)
	}
}

func TestGuessValidation(t *testing.T) {
	ctrl := &controllerMock{}
	srv := newTestServer(t, ctrl, nil)

	for _, letter := range []string{"", "AB", "7", "!"} {
		resp := postJSON(t, srv.URL+"/api/guess", map[string]string{"letter": letter})
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("letter %q: expected 400, got %d", letter, resp.StatusCode)
		}
	}
	if len(ctrl.guesses) != 0 {
		t.Fatalf("invalid guesses reached the controller: %v", ctrl.guesses)
	}
}

func TestStopAndReplayEndpoints(t *testing.T) {
	ctrl := &controllerMock{}
	srv := newTestServer(t, ctrl, nil)

	resp := postJSON(t, srv.URL+"/api/stop", struct{}{})
	_ = resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/replay", struct{}{})
	_ = resp.Body.Close()

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.stops != 1 || ctrl.replays != 1 {
		t.Fatalf("expected one stop and one replay, got %d/%d", ctrl.stops, ctrl.replays)
	}
}

func TestSettingsEndpoint(t *testing.T) {
	ctrl := &controllerMock{}
	srv := newTestServer(t, ctrl, nil)

	rate := 0.5
	noiseLevel := 0.25
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/settings", bytes.NewReader(mustJSON(t, settingsRequest{Rate: &rate, Noise: &noiseLevel})))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.rates) != 1 || ctrl.rates[0] != 0.5 {
		t.Fatalf("expected rate forwarded, got %v", ctrl.rates)
	}
	if len(ctrl.noises) != 1 || ctrl.noises[0] != 0.25 {
		t.Fatalf("expected noise forwarded, got %v", ctrl.noises)
	}
}

func TestSettingsConflictWhilePlaying(t *testing.T) {
	ctrl := &controllerMock{playing: true}
	srv := newTestServer(t, ctrl, nil)

	rate := 0.5
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/settings", bytes.NewReader(mustJSON(t, settingsRequest{Rate: &rate})))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestVocabularyEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/api/vocabulary")
	if err != nil {
		t.Fatalf("GET /api/vocabulary failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var entries []vocabularyEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode vocabulary: %v", err)
	}
	if len(entries) != 26 {
		t.Fatalf("expected 26 entries, got %d", len(entries))
	}
	if entries[0].Letter != "A" || entries[0].Word != "Alfa" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	history := &historyStoreMock{sessions: []storage.SessionResult{
		{ID: 2, Mode: "highscore", Score: 9, StartedAt: time.Now().UTC()},
	}}
	srv := newTestServer(t, nil, history)

	resp, err := http.Get(srv.URL + "/api/history?limit=5")
	if err != nil {
		t.Fatalf("GET /api/history failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var sessions []storage.SessionResult
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Score != 9 {
		t.Fatalf("unexpected history %+v", sessions)
	}
	if len(history.limits) != 1 || history.limits[0] != 5 {
		t.Fatalf("expected limit forwarded, got %v", history.limits)
	}

	resp, err = http.Get(srv.URL + "/api/history?limit=nope")
	if err != nil {
		t.Fatalf("GET /api/history failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}
}

func mustJSON(t *testing.T, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
