package noise

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// BackendSetup implements the best-effort audio-session configuration run
// at session start: it brings up and releases an audio backend context so
// device problems surface early, in the log, instead of mid-round.
type BackendSetup struct{}

func (BackendSetup) Configure() error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return fmt.Errorf("probe audio backend: %w", err)
	}
	_ = mctx.Uninit()
	mctx.Free()
	return nil
}

// NopGenerator satisfies the noise contract without any audio output, for
// headless hosts and tests.
type NopGenerator struct{}

func (NopGenerator) Start(float64) error     { return nil }
func (NopGenerator) UpdateIntensity(float64) {}
func (NopGenerator) Stop()                   {}
