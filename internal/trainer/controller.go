// Package trainer implements the round/session controller: the state
// machine that generates rounds, drives playback, scores guesses, and
// scales difficulty in highscore mode.
package trainer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkress/hearsay/internal/vocab"
)

const (
	startRoundLength = 3
	maxRoundLength   = 7

	rateStep = 0.02
	maxRate  = 0.6

	noiseStep = 0.05
	maxNoise  = 0.8

	// DefaultRate is the baseline speech rate used when no configuration
	// is supplied.
	DefaultRate = 0.4

	// DefaultNoise is the baseline noise intensity (off).
	DefaultNoise = 0.0
)

// Options carries the optional controller collaborators and baselines.
type Options struct {
	AudioSetup SessionConfigurator
	History    HistoryRecorder
	Logger     *zerolog.Logger
	Rand       *rand.Rand

	// Baseline rate and noise copied into the active values at Start.
	Rate  float64
	Noise float64
}

// Controller owns all session state. Intents (Start, Stop, HandleGuess,
// ReplaySequence) serialize on an internal mutex; playback orchestration
// runs detached but re-acquires the mutex before touching state, and an
// epoch counter keeps a stale orchestration from resurrecting a stopped
// session.
type Controller struct {
	player  SpeechPlayer
	noise   NoiseGenerator
	scores  ScoreStore
	hub     EventBroadcaster
	audio   SessionConfigurator
	history HistoryRecorder
	log     zerolog.Logger

	mu              sync.Mutex
	rng             *rand.Rand
	phase           Phase
	mode            Mode
	round           Round
	score           int
	highScore       int
	roundLength     int
	configuredRate  float64
	configuredNoise float64
	activeRate      float64
	activeNoise     float64
	epoch           uint64

	sessionActive    bool
	sessionStartedAt time.Time
}

// NewController builds a controller and reads the persisted best score.
// player must not be nil; the other collaborators may be.
func NewController(player SpeechPlayer, noise NoiseGenerator, scores ScoreStore, hub EventBroadcaster, opts Options) *Controller {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rate := opts.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	c := &Controller{
		player:          player,
		noise:           noise,
		scores:          scores,
		hub:             hub,
		audio:           opts.AudioSetup,
		history:         opts.History,
		log:             log,
		rng:             rng,
		phase:           PhaseIdle,
		mode:            ModePractice,
		roundLength:     startRoundLength,
		configuredRate:  rate,
		configuredNoise: opts.Noise,
		activeRate:      rate,
		activeNoise:     opts.Noise,
	}

	if scores != nil {
		best, err := scores.Best()
		if err != nil {
			c.log.Error().Err(err).Msg("read persisted best score")
		} else {
			c.highScore = best
		}
	}

	return c
}

// Start begins a new session in the given mode. Valid from any phase; an
// in-progress session is finished first.
func (c *Controller) Start(mode Mode) {
	c.player.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.finishSessionLocked()
	c.mode = mode
	c.score = 0
	c.roundLength = startRoundLength
	c.activeRate = c.configuredRate
	c.activeNoise = c.configuredNoise
	c.sessionActive = true
	c.sessionStartedAt = time.Now().UTC()

	if c.audio != nil {
		// Fire and forget: a failed audio-session posture never blocks
		// the session.
		go func() {
			if err := c.audio.Configure(); err != nil {
				c.log.Warn().Err(err).Msg("audio session configuration failed")
			}
		}()
	}

	c.beginRoundLocked()
}

// Stop halts playback and noise immediately and forces the controller back
// to idle. Any in-flight playback orchestration is invalidated.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.epoch++
	c.finishSessionLocked()
	c.setPhaseLocked(PhaseIdle)
	c.mu.Unlock()

	c.player.Stop()
	if c.noise != nil {
		c.noise.Stop()
	}
}

// HandleGuess applies one letter guess. Ignored outside AwaitingInput.
func (c *Controller) HandleGuess(letter byte) {
	letter = upper(letter)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseAwaitingInput {
		c.log.Debug().Str("phase", string(c.phase)).Str("letter", string(letter)).Msg("guess ignored")
		return
	}

	expected := c.round.Sequence[c.round.CurrentIndex].Letter
	if letter != expected {
		c.setPhaseLocked(PhaseGameOver)
		c.finishSessionLocked()
		if c.noise != nil {
			c.noise.Stop()
		}
		if c.hub != nil {
			c.hub.BroadcastGuessResult(letter, false, c.round.CurrentIndex)
			c.hub.BroadcastGameOver(c.score, c.highScore, expected)
		}
		return
	}

	c.round.CurrentIndex++
	if c.hub != nil {
		c.hub.BroadcastGuessResult(letter, true, c.round.CurrentIndex-1)
	}
	if !c.round.Exhausted() {
		return
	}

	c.score++
	if c.score > c.highScore {
		c.highScore = c.score
		if c.scores != nil {
			if err := c.scores.SetBest(c.highScore); err != nil {
				c.log.Error().Err(err).Int("score", c.highScore).Msg("persist best score")
			}
		}
	}
	if c.hub != nil {
		c.hub.BroadcastScoreChanged(c.score, c.highScore)
	}

	if c.mode == ModeHighscore {
		c.roundLength = min(c.roundLength+1, maxRoundLength)
		c.activeRate = min(c.activeRate+rateStep, maxRate)
		c.activeNoise = min(c.activeNoise+noiseStep, maxNoise)
	}

	c.beginRoundLocked()
}

// ReplaySequence re-renders the current round without touching score or
// progress. Valid only while awaiting input or after game over; the phase
// makes a transient excursion through Playing and is restored afterwards.
func (c *Controller) ReplaySequence() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseIdle || c.phase == PhasePlaying {
		c.log.Debug().Str("phase", string(c.phase)).Msg("replay ignored")
		return
	}

	resume := c.phase
	c.setPhaseLocked(PhasePlaying)
	c.epoch++
	go c.playSequence(c.epoch, c.round.Words(), c.activeRate, c.activeNoise, resume)
}

// SetConfiguredRate updates the baseline speech rate, clamped to [0, 1].
// Rejected while playing; reports whether the value was applied.
func (c *Controller) SetConfiguredRate(rate float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePlaying {
		return false
	}
	c.configuredRate = clampUnit(rate)
	return true
}

// SetConfiguredNoise updates the baseline noise intensity, clamped to
// [0, 1]. Rejected while playing; reports whether the value was applied.
func (c *Controller) SetConfiguredNoise(intensity float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePlaying {
		return false
	}
	c.configuredNoise = clampUnit(intensity)
	return true
}

// UpdateSettings applies both baselines in one step so a concurrent phase
// change cannot split them. Nil fields are left untouched; values are
// clamped to [0, 1]. Rejected while playing.
func (c *Controller) UpdateSettings(rate, noise *float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePlaying {
		return false
	}
	if rate != nil {
		c.configuredRate = clampUnit(*rate)
	}
	if noise != nil {
		c.configuredNoise = clampUnit(*noise)
	}
	return true
}

// State returns a snapshot of the observable session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Phase:           c.phase,
		Mode:            c.mode,
		Score:           c.score,
		HighScore:       c.highScore,
		RoundLength:     c.roundLength,
		ActiveRate:      c.activeRate,
		ActiveNoise:     c.activeNoise,
		ConfiguredRate:  c.configuredRate,
		ConfiguredNoise: c.configuredNoise,
		Letters:         c.round.Letters(),
	}
}

// beginRoundLocked samples a fresh round and launches its playback. The
// epoch bump invalidates any orchestration still in flight.
func (c *Controller) beginRoundLocked() {
	c.round = Round{Sequence: vocab.Sample(c.roundLength, c.rng)}
	c.setPhaseLocked(PhasePlaying)
	if c.hub != nil {
		c.hub.BroadcastRoundStarted(len(c.round.Sequence), c.score)
	}

	c.epoch++
	go c.playSequence(c.epoch, c.round.Words(), c.activeRate, c.activeNoise, PhaseAwaitingInput)
}

// playSequence is the detached playback orchestration. The epoch is checked
// on entry, under the lock and before the noise generator starts, so a Stop
// that raced the launch keeps the noise down; it is checked again before
// the completion transition.
func (c *Controller) playSequence(epoch uint64, words []string, rate, intensity float64, next Phase) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	if c.noise != nil {
		if err := c.noise.Start(intensity); err != nil {
			c.log.Warn().Err(err).Msg("noise generator start failed")
		}
	}
	c.mu.Unlock()

	if err := c.player.SpeakSequence(context.Background(), words, rate); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Warn().Err(err).Msg("speech playback failed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	c.setPhaseLocked(next)
	if next == PhaseGameOver && c.noise != nil {
		c.noise.Stop()
	}
}

func (c *Controller) setPhaseLocked(p Phase) {
	if c.phase == p {
		return
	}
	c.phase = p
	if c.hub != nil {
		c.hub.BroadcastPhaseChanged(p)
	}
}

// finishSessionLocked records the outgoing session, if one is active.
func (c *Controller) finishSessionLocked() {
	if !c.sessionActive {
		return
	}
	c.sessionActive = false
	if c.history == nil {
		return
	}
	if err := c.history.RecordSession(c.mode, c.score, c.sessionStartedAt, time.Now().UTC()); err != nil {
		c.log.Error().Err(err).Msg("record session history")
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
