package worker

import (
	"context"
	"log"
	"time"

	"arrowhead/locks"
)

// LockJanitor periodically drops expired leases from the in-memory lock map.
// Expiry itself stays lazy; the janitor only reclaims memory for locks
// nobody touched again.
type LockJanitor struct {
	Locker   *locks.MemoryLocker
	Interval time.Duration
	Logger   *log.Logger
}

func NewLockJanitor(locker *locks.MemoryLocker, logger *log.Logger) *LockJanitor {
	return &LockJanitor{
		Locker:   locker,
		Interval: time.Minute,
		Logger:   logger,
	}
}

func (lj *LockJanitor) Start(ctx context.Context) {
	lj.Logger.Println("Lock janitor started")

	ticker := time.NewTicker(lj.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lj.Logger.Println("Lock janitor shutting down...")
			return
		case <-ticker.C:
			if purged := lj.Locker.PurgeExpired(); purged > 0 {
				lj.Logger.Printf("purged %d expired edit locks", purged)
			}
		}
	}
}
