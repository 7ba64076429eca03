// Package noise implements the masking-noise generator: a playback device
// emitting white noise at a live-adjustable intensity.
package noise

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

const (
	sampleRate       = 44100
	bytesPerSample   = 2
	fullScale        = 32767
	intensityCeiling = 1.0
)

// Generator plays continuous white noise through the default output
// device. Start while running only adjusts the intensity; Stop is
// idempotent.
type Generator struct {
	log zerolog.Logger

	intensity atomic.Uint64 // float64 bits

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

func NewGenerator(log zerolog.Logger) *Generator {
	return &Generator{log: log}
}

func (g *Generator) Start(intensity float64) error {
	g.setIntensity(intensity)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.device != nil {
		return nil
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return fmt.Errorf("init audio backend: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate

	state := uint32(0x9e3779b9)
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			fill(out, g.currentIntensity(), &state)
		},
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("init playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("start playback device: %w", err)
	}

	g.ctx = mctx
	g.device = device
	g.log.Debug().Float64("intensity", g.currentIntensity()).Msg("noise started")
	return nil
}

func (g *Generator) UpdateIntensity(intensity float64) {
	g.setIntensity(intensity)
}

func (g *Generator) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.device == nil {
		return
	}

	g.device.Uninit()
	g.device = nil
	_ = g.ctx.Uninit()
	g.ctx.Free()
	g.ctx = nil
	g.log.Debug().Msg("noise stopped")
}

func (g *Generator) setIntensity(intensity float64) {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > intensityCeiling {
		intensity = intensityCeiling
	}
	g.intensity.Store(math.Float64bits(intensity))
}

func (g *Generator) currentIntensity() float64 {
	return math.Float64frombits(g.intensity.Load())
}

// fill writes 16-bit little-endian white noise scaled by intensity. The
// xorshift state keeps the callback free of locks and allocations.
func fill(out []byte, intensity float64, state *uint32) {
	amp := intensity * fullScale
	for i := 0; i+bytesPerSample <= len(out); i += bytesPerSample {
		s := *state
		s ^= s << 13
		s ^= s >> 17
		s ^= s << 5
		*state = s

		// int32(s) spans the full signed range; normalize to [-1, 1).
		sample := int16(float64(int32(s)) / math.MaxInt32 * amp)
		out[i] = byte(sample)
		out[i+1] = byte(sample >> 8)
	}
}
