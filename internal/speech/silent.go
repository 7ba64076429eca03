package speech

import (
	"context"
	"sync"
	"time"
)

// SilentPlayer renders nothing but keeps the playback timing, so the
// trainer still works (API/UI only) on hosts without a TTS binary.
type SilentPlayer struct {
	gap time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSilentPlayer(gap time.Duration) *SilentPlayer {
	if gap <= 0 {
		gap = DefaultWordGap
	}
	return &SilentPlayer{gap: gap}
}

func (p *SilentPlayer) SpeakSequence(ctx context.Context, words []string, _ float64) error {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	for range words {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.gap):
		}
	}
	return nil
}

func (p *SilentPlayer) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
