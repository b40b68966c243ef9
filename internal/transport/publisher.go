// SPDX-License-Identifier: MIT
package transport

import (
	"barscope/internal/analysis"
	applog "barscope/internal/log"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultInterval is used when a Publisher is created with a non-positive
// interval (~60Hz).
const DefaultInterval = 16 * time.Millisecond

// Publisher periodically copies the latest heights from a HeightsProvider and
// sends them to each Transport. It runs in its own goroutine managed by Start
// and Stop.
type Publisher struct {
	provider   analysis.HeightsProvider
	transports []Transport
	interval   time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // protects ticker and doneChan during Start/Stop

	heights []int // reused on every tick
	sent    uint64
}

// NewPublisher creates a publisher reading from provider.
func NewPublisher(interval time.Duration, provider analysis.HeightsProvider, transports ...Transport) (*Publisher, error) {
	if provider == nil {
		return nil, fmt.Errorf("publisher: heights provider cannot be nil")
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("publisher: at least one transport is required")
	}
	if interval <= 0 {
		interval = DefaultInterval
		applog.Warnf("Publisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("Publisher: Initializing (Interval: %s, Bars: %d, Transports: %d)",
		interval, provider.Bars(), len(transports))

	return &Publisher{
		provider:   provider,
		transports: transports,
		interval:   interval,
		heights:    make([]int, provider.Bars()),
	}, nil
}

// Start launches the publishing goroutine. Calling Start on a running
// publisher is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("Publisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("Publisher: goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine to exit and waits for it. Safe to call more
// than once.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("Publisher: stopped after %d frames", p.sent)
}

// publish copies the latest heights and fans them out. A failing transport
// does not prevent the others from receiving the frame.
func (p *Publisher) publish() {
	if err := p.provider.HeightsInto(p.heights); err != nil {
		applog.Errorf("Publisher: Error getting heights: %v", err)
		return
	}
	for _, t := range p.transports {
		if err := t.Send(p.heights); err != nil {
			applog.Debugf("Publisher: send failed: %v", err)
		}
	}
	p.sent++
}

// Close stops the publisher and closes every transport.
func (p *Publisher) Close() error {
	p.Stop()

	var errs []error
	for _, t := range p.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
