package impl

import (
	"context"
	"testing"
	"time"

	"kaimono/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncFixture() (*geofenceSyncService, *memPlaceRepo, *memItemRepo, *memGeofenceRepo, *fakeGateway) {
	itemRepo := newMemItemRepo()
	placeRepo := newMemPlaceRepo(itemRepo)
	geofenceRepo := newMemGeofenceRepo()
	lock := &fakeCoordinatorLock{}
	gateway := &fakeGateway{lock: lock}

	svc := &geofenceSyncService{
		placeRepo:    placeRepo,
		geofenceRepo: geofenceRepo,
		gateway:      gateway,
		lock:         lock,
		config:       testConfig(),
		logger:       testLogger(),
		now:          func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	}

	return svc, placeRepo, itemRepo, geofenceRepo, gateway
}

// linkUnpurchasedItem makes the place active by giving it one unpurchased
// linked item.
func linkUnpurchasedItem(t *testing.T, itemRepo *memItemRepo, place *entity.Place, title string) {
	t.Helper()

	ctx := context.Background()
	it := item(title, "")
	it.ID = uuid.New()
	require.NoError(t, itemRepo.CreateItem(ctx, it))
	require.NoError(t, itemRepo.LinkItemToPlace(ctx, it.ID, place.ID))
}

func TestSync_AddsRegistersAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, placeRepo, itemRepo, geofenceRepo, gateway := newSyncFixture()

	place := testPlace(35_000_000, 139_000_000)
	require.NoError(t, placeRepo.CreatePlace(ctx, place))
	linkUnpurchasedItem(t, itemRepo, place, "牛乳")

	require.NoError(t, svc.Sync(ctx))

	require.Len(t, gateway.added, 1)
	require.Len(t, gateway.added[0], 1)
	assert.Equal(t, entity.GeofenceRequestID(place.ID), gateway.added[0][0].RequestID)
	assert.Empty(t, gateway.removed)

	snapshot, err := geofenceRepo.FindAllRegistrations(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, place.ID, snapshot[0].PlaceID)
}

func TestSync_RemovesStaleRegistrations(t *testing.T) {
	ctx := context.Background()
	svc, _, _, geofenceRepo, gateway := newSyncFixture()

	stale := testPlace(35_000_000, 139_000_000)
	require.NoError(t, geofenceRepo.ReplaceRegistrations(ctx, []*entity.GeofenceRegistration{
		registrationFor(stale, 100),
	}))

	require.NoError(t, svc.Sync(ctx))

	require.Len(t, gateway.removed, 1)
	assert.Equal(t, []string{entity.GeofenceRequestID(stale.ID)}, gateway.removed[0])
	assert.Empty(t, gateway.added)

	snapshot, err := geofenceRepo.FindAllRegistrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestSync_AddFailureLeavesSnapshotUntouched(t *testing.T) {
	ctx := context.Background()
	svc, placeRepo, itemRepo, geofenceRepo, gateway := newSyncFixture()

	existing := testPlace(35_000_000, 139_000_000)
	require.NoError(t, placeRepo.CreatePlace(ctx, existing))
	linkUnpurchasedItem(t, itemRepo, existing, "牛乳")
	require.NoError(t, geofenceRepo.ReplaceRegistrations(ctx, []*entity.GeofenceRegistration{
		registrationFor(existing, 100),
	}))

	fresh := testPlace(35_100_000, 139_100_000)
	require.NoError(t, placeRepo.CreatePlace(ctx, fresh))
	linkUnpurchasedItem(t, itemRepo, fresh, "卵")

	gateway.addErr = errors.New("facility unavailable")

	err := svc.Sync(ctx)
	require.Error(t, err)

	// The snapshot still reflects the last confirmed apply, so a retry
	// rebuilds the same plan.
	snapshot, findErr := geofenceRepo.FindAllRegistrations(ctx)
	require.NoError(t, findErr)
	require.Len(t, snapshot, 1)
	assert.Equal(t, existing.ID, snapshot[0].PlaceID)

	gateway.addErr = nil
	require.NoError(t, svc.Sync(ctx))

	snapshot, findErr = geofenceRepo.FindAllRegistrations(ctx)
	require.NoError(t, findErr)
	assert.Len(t, snapshot, 2)
}

func TestSync_RemoveFailureSkipsAddAndPersist(t *testing.T) {
	ctx := context.Background()
	svc, placeRepo, itemRepo, geofenceRepo, gateway := newSyncFixture()

	stale := testPlace(35_000_000, 139_000_000)
	require.NoError(t, geofenceRepo.ReplaceRegistrations(ctx, []*entity.GeofenceRegistration{
		registrationFor(stale, 100),
	}))

	fresh := testPlace(35_100_000, 139_100_000)
	require.NoError(t, placeRepo.CreatePlace(ctx, fresh))
	linkUnpurchasedItem(t, itemRepo, fresh, "卵")

	gateway.removeErr = errors.New("facility unavailable")

	require.Error(t, svc.Sync(ctx))
	assert.Empty(t, gateway.added)

	snapshot, err := geofenceRepo.FindAllRegistrations(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, stale.ID, snapshot[0].PlaceID)
}

func TestSync_MutedPlaceIsNotRegistered(t *testing.T) {
	ctx := context.Background()
	svc, placeRepo, itemRepo, _, gateway := newSyncFixture()

	place := testPlace(35_000_000, 139_000_000)
	place.IsActive = false
	require.NoError(t, placeRepo.CreatePlace(ctx, place))
	linkUnpurchasedItem(t, itemRepo, place, "牛乳")

	require.NoError(t, svc.Sync(ctx))
	assert.Empty(t, gateway.added)
}

func TestBuildPlan_UsesConfiguredRadius(t *testing.T) {
	ctx := context.Background()
	svc, placeRepo, itemRepo, _, _ := newSyncFixture()
	svc.config.Geofence.DefaultRadiusMeters = 250

	place := testPlace(35_000_000, 139_000_000)
	require.NoError(t, placeRepo.CreatePlace(ctx, place))
	linkUnpurchasedItem(t, itemRepo, place, "牛乳")

	plan, err := svc.BuildPlan(ctx)
	require.NoError(t, err)
	require.Len(t, plan.ToAdd, 1)
	assert.Equal(t, float64(250), plan.ToAdd[0].RadiusMeters)
}

func TestSync_AppliesUnderCoordinatorLock(t *testing.T) {
	ctx := context.Background()
	svc, placeRepo, itemRepo, geofenceRepo, gateway := newSyncFixture()

	stale := testPlace(36_000_000, 140_000_000)
	geofenceRepo.registrations = append(geofenceRepo.registrations, &entity.GeofenceRegistration{
		PlaceID:   stale.ID,
		RequestID: entity.GeofenceRequestID(stale.ID),
	})

	place := testPlace(35_000_000, 139_000_000)
	require.NoError(t, placeRepo.CreatePlace(ctx, place))
	linkUnpurchasedItem(t, itemRepo, place, "牛乳")

	require.NoError(t, svc.Sync(ctx))

	lock := svc.lock.(*fakeCoordinatorLock)
	assert.Equal(t, 1, lock.acquired)
	assert.False(t, lock.held, "lock must be released after the run")

	// Both gateway phases ran while the coordinator lock was held, so a
	// second coordinator in another process cannot interleave its own
	// remove/add/persist with this one.
	require.Equal(t, []bool{true}, gateway.heldDuringRemove)
	require.Equal(t, []bool{true}, gateway.heldDuringAdd)

	require.Len(t, geofenceRepo.registrations, 1)
	assert.Equal(t, place.ID, geofenceRepo.registrations[0].PlaceID)
}
