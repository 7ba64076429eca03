// Package speech provides SpeechPlayer implementations: a command-based
// player that shells out to a TTS binary (espeak-ng by default) and a
// silent player used when no TTS binary is available.
package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWordGap is the pause between word completions.
const DefaultWordGap = 180 * time.Millisecond

// DefaultCommand is the TTS binary used when none is configured.
const DefaultCommand = "espeak-ng"

// Available reports whether the given TTS command can be found on PATH.
func Available(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

// CommandPlayer renders words one process invocation at a time, waiting
// for each to exit before pausing and issuing the next.
type CommandPlayer struct {
	command string
	voice   string
	gap     time.Duration
	log     zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewCommandPlayer(command, voice string, gap time.Duration, log zerolog.Logger) *CommandPlayer {
	if command == "" {
		command = DefaultCommand
	}
	if gap <= 0 {
		gap = DefaultWordGap
	}
	return &CommandPlayer{command: command, voice: voice, gap: gap, log: log}
}

// SpeakSequence blocks until every word has been rendered or the player is
// stopped. A new call interrupts any sequence still in flight.
func (p *CommandPlayer) SpeakSequence(ctx context.Context, words []string, rate float64) error {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	wpm := wordsPerMinute(rate)
	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd := exec.CommandContext(ctx, p.command, p.args(word, wpm)...)
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("speak %q: %w", word, err)
		}

		if i == len(words)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.gap):
		}
	}
	return nil
}

// Stop interrupts the current sequence, killing the in-flight TTS process.
// Idempotent.
func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *CommandPlayer) args(word string, wpm int) []string {
	args := make([]string, 0, 5)
	if p.voice != "" {
		args = append(args, "-v", p.voice)
	}
	args = append(args, "-s", strconv.Itoa(wpm), word)
	return args
}

// wordsPerMinute maps the controller's 0..1 rate scale (0.5 ~ normal
// speech) onto the words-per-minute range TTS engines expect.
func wordsPerMinute(rate float64) int {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return int(90 + rate*220)
}
