package subscription

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultSweepInterval is how often Monitor checks for expired subscriptions.
const DefaultSweepInterval = time.Hour

// Monitor runs Sweep periodically.
type Monitor struct {
	svc      *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewMonitor returns a Monitor. A non-positive interval uses DefaultSweepInterval.
func NewMonitor(svc *Service, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Monitor{svc: svc, interval: interval, logger: svc.logger.Named("monitor")}
}

// Run sweeps once immediately and then every interval until ctx is done.
// Sweep errors are logged and retried on the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("subscription monitor started", zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.sweep(ctx)

		select {
		case <-ctx.Done():
			m.logger.Info("subscription monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Monitor) sweep(ctx context.Context) {
	n, err := m.svc.Sweep(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
	case err != nil:
		m.logger.Error("subscription sweep failed", zap.Error(err))
	case n > 0:
		m.logger.Info("downgraded expired subscriptions", zap.Int("count", n))
	default:
		m.logger.Debug("no expired subscriptions found")
	}
}
