package service

import "context"

// SyncCoordinatorLock serializes geofence sync apply+persist sequences
// across processes. The API and the worker each carry a scheduler, so
// in-process single-flight alone cannot stop two coordinators from
// interleaving gateway calls and snapshot writes; implementations must back
// the lock with storage both processes share.
type SyncCoordinatorLock interface {
	// WithLock runs fn while holding the exclusive coordinator lock,
	// blocking until the lock is available or ctx is done. The plan must be
	// built inside fn so it reflects the snapshot as left by the previous
	// holder.
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}
