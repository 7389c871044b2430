package service

import "context"

// SyncScheduler is the background-work facility for geofence sync runs.
//
// Scheduling is unique-task-replace: at most one sync is in flight and at
// most one request is pending; scheduling while a request is already pending
// replaces it instead of queueing another. A failed run is retried with
// exponential backoff and is never treated as permanent. This single-flight
// discipline is what serializes apply+persist against the device facility
// and the registration snapshot.
type SyncScheduler interface {
	// ScheduleSync requests a sync run. It returns immediately; the run
	// happens on the scheduler's own goroutine.
	ScheduleSync(ctx context.Context)
}
