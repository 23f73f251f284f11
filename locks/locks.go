package locks

import (
	"fmt"
	"sync"
	"time"
)

// LockTTL is how long an acquired edit lock lives without renewal.
const LockTTL = 5 * time.Minute

// Lease describes a held lock.
type Lease struct {
	HolderID  uint      `json:"holder_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrLocked is returned when a resource is held by another member. It
// carries the competing lease so handlers can surface the expiry (423).
type ErrLocked struct {
	Lease Lease
}

func (e *ErrLocked) Error() string {
	return fmt.Sprintf("resource locked by member %d until %s",
		e.Lease.HolderID, e.Lease.ExpiresAt.Format(time.RFC3339))
}

// Locker is the edit-lock service. Locks are advisory: they gate update
// handlers, not the database itself. A single-process map and a shared
// store both satisfy this interface, so deployments can swap one for the
// other without touching callers.
type Locker interface {
	// Acquire takes or renews the lock. Renewal by the current holder is
	// idempotent and extends the expiry. A live lock held by someone else
	// fails with *ErrLocked.
	Acquire(resource string, id, holderID uint) (Lease, error)

	// Release drops the lock if held by holderID. Releasing an absent or
	// expired lock is a no-op.
	Release(resource string, id, holderID uint) error

	// Check returns *ErrLocked when the resource is held by someone other
	// than holderID, nil otherwise.
	Check(resource string, id, holderID uint) error
}

// Resource names for the two lockable entity kinds.
const (
	ResourceObjective = "objective"
	ResourceTouchbase = "touchbase"
)

// MemoryLocker keeps leases in a process-local map with lazy expiry: an
// expired lease is treated as absent the next time it is touched. All state
// is lost on restart.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]Lease
	now    func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		leases: make(map[string]Lease),
		now:    time.Now,
	}
}

func key(resource string, id uint) string {
	return fmt.Sprintf("%s:%d", resource, id)
}

func (m *MemoryLocker) Acquire(resource string, id, holderID uint) (Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(resource, id)
	now := m.now()
	if existing, ok := m.leases[k]; ok && now.Before(existing.ExpiresAt) && existing.HolderID != holderID {
		return Lease{}, &ErrLocked{Lease: existing}
	}

	lease := Lease{HolderID: holderID, ExpiresAt: now.Add(LockTTL)}
	m.leases[k] = lease
	return lease, nil
}

func (m *MemoryLocker) Release(resource string, id, holderID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(resource, id)
	if existing, ok := m.leases[k]; ok && existing.HolderID == holderID {
		delete(m.leases, k)
	}
	return nil
}

func (m *MemoryLocker) Check(resource string, id, holderID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(resource, id)
	existing, ok := m.leases[k]
	if !ok {
		return nil
	}
	if !m.now().Before(existing.ExpiresAt) {
		delete(m.leases, k)
		return nil
	}
	if existing.HolderID != holderID {
		return &ErrLocked{Lease: existing}
	}
	return nil
}

// PurgeExpired removes dead leases from the map and returns how many were
// dropped. Expiry stays lazy; this only frees memory.
func (m *MemoryLocker) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	purged := 0
	for k, lease := range m.leases {
		if !now.Before(lease.ExpiresAt) {
			delete(m.leases, k)
			purged++
		}
	}
	return purged
}
