// SPDX-License-Identifier: MIT
package driver

import (
	applog "barscope/internal/log"
	"context"
	"time"
)

// Ticker is anything that renders one frame per call.
type Ticker interface {
	Tick() State
}

// Run ticks t every interval until it reports a terminal state or ctx is
// cancelled, and returns the last state. Cancellation is reported as
// StateStopped.
func Run(ctx context.Context, t Ticker, interval time.Duration) State {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			applog.Debugf("Driver: context cancelled after %d frames", frames)
			return StateStopped
		case <-ticker.C:
			state := t.Tick()
			if state.Done() {
				applog.Debugf("Driver: %s after %d frames", state, frames)
				return state
			}
			frames++
		}
	}
}
