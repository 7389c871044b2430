package postgres

import (
	"context"

	"kaimono/internal/domain/service"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// syncCoordinatorLockKey identifies the advisory lock guarding the geofence
// sync apply+persist sequence. Arbitrary, but must stay identical in every
// binary sharing the database.
const syncCoordinatorLockKey int64 = 0x6B61_696D_6F6E_6F01

// advisoryCoordinatorLock implements SyncCoordinatorLock with a Postgres
// session-level advisory lock, giving both binaries a persisted mutex
// without an extra infrastructure component.
type advisoryCoordinatorLock struct {
	db *gorm.DB
}

// NewSyncCoordinatorLock creates an advisory-lock backed coordinator lock
func NewSyncCoordinatorLock(db *gorm.DB) service.SyncCoordinatorLock {
	return &advisoryCoordinatorLock{db: db}
}

// WithLock pins one pooled connection, acquires the advisory lock on it,
// runs fn, and releases the lock on that same connection. Session-level
// locks are tied to the connection, so the pin is what makes the unlock
// reach the right session.
func (l *advisoryCoordinatorLock) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return l.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := conn.Exec("SELECT pg_advisory_lock(?)", syncCoordinatorLockKey).Error; err != nil {
			return errors.Wrap(err, "failed to acquire sync coordinator lock")
		}
		defer func() {
			// A failed unlock is recovered by Postgres when the pinned
			// connection closes; it must not mask fn's error.
			conn.Exec("SELECT pg_advisory_unlock(?)", syncCoordinatorLockKey)
		}()

		return fn(ctx)
	})
}
