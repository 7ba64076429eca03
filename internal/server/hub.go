package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkress/hearsay/internal/trainer"
)

// Hub fans controller events out to websocket subscribers. Slow clients
// drop events rather than blocking the controller.
type Hub struct {
	log zerolog.Logger

	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{log: log, clients: make(map[chan []byte]struct{})}
}

func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) BroadcastPhaseChanged(phase trainer.Phase) {
	h.broadcastEvent(PhaseChangedEvent{
		Event: newEvent("phase_changed", time.Now().UTC()),
		Phase: string(phase),
	})
}

func (h *Hub) BroadcastRoundStarted(length, score int) {
	h.broadcastEvent(RoundStartedEvent{
		Event:  newEvent("round_started", time.Now().UTC()),
		Length: length,
		Score:  score,
	})
}

func (h *Hub) BroadcastGuessResult(letter byte, correct bool, position int) {
	h.broadcastEvent(GuessResultEvent{
		Event:    newEvent("guess_result", time.Now().UTC()),
		Letter:   string(letter),
		Correct:  correct,
		Position: position,
	})
}

func (h *Hub) BroadcastScoreChanged(score, highScore int) {
	h.broadcastEvent(ScoreChangedEvent{
		Event:     newEvent("score_changed", time.Now().UTC()),
		Score:     score,
		HighScore: highScore,
	})
}

func (h *Hub) BroadcastGameOver(score, highScore int, expected byte) {
	h.broadcastEvent(GameOverEvent{
		Event:     newEvent("game_over", time.Now().UTC()),
		Score:     score,
		HighScore: highScore,
		Expected:  string(expected),
	})
}

func (h *Hub) broadcastEvent(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("event marshal error")
		return
	}
	h.Broadcast(payload)
}
