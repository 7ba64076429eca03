package trainer

import (
	"context"
	"time"
)

// Phase is the controller's current state. Exactly one phase holds at any
// time and it alone decides which intents are valid.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhasePlaying       Phase = "playing"
	PhaseAwaitingInput Phase = "awaiting_input"
	PhaseGameOver      Phase = "game_over"
)

// Mode selects the session flavor. Highscore sessions scale difficulty
// after every completed round; practice sessions keep the configured
// rate and noise for the whole session.
type Mode string

const (
	ModePractice  Mode = "practice"
	ModeHighscore Mode = "highscore"
)

// ParseMode maps a wire value to a Mode. Unknown values fall back to
// practice, reported by the second return value.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModePractice:
		return ModePractice, true
	case ModeHighscore:
		return ModeHighscore, true
	}
	return ModePractice, false
}

// SpeechPlayer renders a word sequence audibly. SpeakSequence blocks until
// the final word has finished (including inter-word gaps) or the player is
// stopped; Stop is idempotent and interrupts immediately.
type SpeechPlayer interface {
	SpeakSequence(ctx context.Context, words []string, rate float64) error
	Stop()
}

// NoiseGenerator emits a continuous masking signal. Start while already
// running adjusts the intensity instead of layering a second stream.
type NoiseGenerator interface {
	Start(intensity float64) error
	UpdateIntensity(intensity float64)
	Stop()
}

// ScoreStore is the durable single-slot best score.
type ScoreStore interface {
	Best() (int, error)
	SetBest(score int) error
}

// HistoryRecorder receives finished-session results. Optional; nil disables
// history.
type HistoryRecorder interface {
	RecordSession(mode Mode, score int, startedAt, endedAt time.Time) error
}

// SessionConfigurator puts the host audio stack into the desired posture at
// session start. Best effort: failures are logged and the session proceeds.
type SessionConfigurator interface {
	Configure() error
}

// EventBroadcaster pushes controller state changes to whatever presentation
// layer is attached. All methods must be non-blocking.
type EventBroadcaster interface {
	BroadcastPhaseChanged(phase Phase)
	BroadcastRoundStarted(length, score int)
	BroadcastGuessResult(letter byte, correct bool, position int)
	BroadcastScoreChanged(score, highScore int)
	BroadcastGameOver(score, highScore int, expected byte)
}

// State is a read-only snapshot of the controller for the presentation
// layer.
type State struct {
	Phase           Phase    `json:"phase"`
	Mode            Mode     `json:"mode"`
	Score           int      `json:"score"`
	HighScore       int      `json:"high_score"`
	RoundLength     int      `json:"round_length"`
	ActiveRate      float64  `json:"active_rate"`
	ActiveNoise     float64  `json:"active_noise"`
	ConfiguredRate  float64  `json:"configured_rate"`
	ConfiguredNoise float64  `json:"configured_noise"`
	Letters         []string `json:"letters"`
}
