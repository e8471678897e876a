package lifecycle

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sweeper drives the controller's periodic work: closing ended auctions
// and applying approved payment proofs. The claim discipline inside the
// controller makes overlapping runs harmless, so the sweeper never needs
// to coordinate with other replicas.
type Sweeper struct {
	ctrl     *Controller
	interval time.Duration
}

// NewSweeper returns a sweeper with the given polling interval. Any
// interval at or below the minimum auction duration guarantees every
// ended auction is eventually swept.
func NewSweeper(ctrl *Controller, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{ctrl: ctrl, interval: interval}
}

// Run blocks, sweeping once per interval until ctx is cancelled. Sweep
// errors are logged and the loop continues; the next tick retries from
// scratch, which is safe because settlement is idempotent per auction.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.WithField("interval", s.interval.String()).Info("settlement sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info("settlement sweeper stopped")
			return
		case <-ticker.C:
			if err := s.ctrl.SettleEndedAuctions(ctx); err != nil {
				log.WithError(err).Error("settlement sweep failed")
			}
			if err := s.ctrl.SettleApprovedProofs(ctx); err != nil {
				log.WithError(err).Error("proof settlement sweep failed")
			}
		}
	}
}
