// Package sweeper runs the periodic expiry sweep that cancels pending
// bookings whose checkout was never completed, handing their day
// capacity and promo usage back.
package sweeper

import (
	"context"
	"log"
	"time"
)

type expiredSweeper interface {
	SweepExpired(ctx context.Context, maxAge time.Duration) (int, error)
}

// Sweeper ticks at a fixed interval and cancels stale pending bookings.
type Sweeper struct {
	reservations expiredSweeper
	interval     time.Duration
	maxAge       time.Duration
}

// New builds a sweeper.  interval is how often to run; maxAge is how old
// a pending booking must be before it is cancelled.
func New(reservations expiredSweeper, interval, maxAge time.Duration) *Sweeper {
	if reservations == nil {
		panic("nil reservation service passed to sweeper.New")
	}
	return &Sweeper{reservations: reservations, interval: interval, maxAge: maxAge}
}

// Start blocks until ctx is cancelled, running one sweep per tick.  A
// failed sweep is logged and the loop keeps going.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("sweeper: started, interval=%s max_age=%s", s.interval, s.maxAge)

	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	n, err := s.reservations.SweepExpired(ctx, s.maxAge)
	if err != nil {
		log.Printf("sweeper: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("sweeper: cancelled %d expired pending bookings", n)
	}
}
