package collector

import (
	"context"
	"sync"
	"time"

	"github.com/okonenko/pharos/internal/probe"
	"github.com/okonenko/pharos/pkg/logger"
)

// DefaultStartDelay keeps the collector from competing with initial page
// work. A scheduling courtesy, not a correctness requirement.
const DefaultStartDelay = 1 * time.Second

// Tracker owns the one-shot tracking latch: however many times Track is
// invoked for a page view, at most one record is collected and sent.
type Tracker struct {
	env    probe.Environment
	geo    *probe.GeoLookup
	sender *Sender
	delay  time.Duration
	once   sync.Once
}

func NewTracker(env probe.Environment, geo *probe.GeoLookup, sender *Sender, delay time.Duration) *Tracker {
	return &Tracker{
		env:    env,
		geo:    geo,
		sender: sender,
		delay:  delay,
	}
}

// Track waits the start delay, collects once and sends once. All failures,
// including a panic escaping an unguarded probe path, are swallowed with a
// diagnostic log; tracking never disturbs the caller.
func (t *Tracker) Track(ctx context.Context) {
	t.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Visitor tracking aborted", map[string]any{"panic": r})
			}
		}()

		select {
		case <-ctx.Done():
			return
		case <-time.After(t.delay):
		}

		rec := Collect(ctx, t.env, t.geo)
		if err := t.sender.Send(ctx, rec); err != nil {
			logger.Warn("Visitor report not delivered", map[string]any{"error": err.Error()})
			return
		}

		logger.Info("Visitor report delivered", map[string]any{
			"device_type": rec.DeviceType,
			"browser":     rec.BrowserName,
		})
	})
}
