package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"kaimono/config"
	"kaimono/internal/domain/entity"
	"kaimono/internal/domain/repository"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Geofence: &config.GeofenceConfig{
			MaxPlaces:           100,
			DefaultRadiusMeters: 100,
		},
		Reminder: &config.ReminderConfig{
			Cooldown:      5 * time.Minute,
			DefaultSnooze: 2 * time.Hour,
		},
		Sync: &config.SyncConfig{
			InitialBackoff: 30 * time.Second,
		},
	}
}

// memPlaceRepo is an in-memory PlaceRepository. Active places are derived
// from the shared item repo's links the same way the SQL join does.
type memPlaceRepo struct {
	places []*entity.Place
	items  *memItemRepo
}

func newMemPlaceRepo(items *memItemRepo) *memPlaceRepo {
	return &memPlaceRepo{items: items}
}

func (r *memPlaceRepo) CreatePlace(_ context.Context, place *entity.Place) error {
	for _, p := range r.places {
		if p.LatitudeE6 == place.LatitudeE6 && p.LongitudeE6 == place.LongitudeE6 {
			return repository.ErrDuplicatePlaceCoordinate
		}
	}
	clone := *place
	r.places = append(r.places, &clone)

	return nil
}

func (r *memPlaceRepo) FindPlaceByID(_ context.Context, id uuid.UUID) (*entity.Place, error) {
	for _, p := range r.places {
		if p.ID == id {
			clone := *p

			return &clone, nil
		}
	}

	return nil, repository.ErrPlaceNotFound
}

func (r *memPlaceRepo) FindPlaceByCoordinate(_ context.Context, latE6, lngE6 int64) (*entity.Place, error) {
	for _, p := range r.places {
		if p.LatitudeE6 == latE6 && p.LongitudeE6 == lngE6 {
			clone := *p

			return &clone, nil
		}
	}

	return nil, repository.ErrPlaceNotFound
}

func (r *memPlaceRepo) ListPlaces(_ context.Context) ([]*entity.Place, error) {
	out := make([]*entity.Place, 0, len(r.places))
	for _, p := range r.places {
		clone := *p
		out = append(out, &clone)
	}

	return out, nil
}

func (r *memPlaceRepo) CountPlaces(_ context.Context) (int64, error) {
	return int64(len(r.places)), nil
}

func (r *memPlaceRepo) FindActivePlaces(_ context.Context) ([]*entity.Place, error) {
	var out []*entity.Place
	for _, p := range r.places {
		if !p.IsActive {
			continue
		}
		if r.items != nil && !r.items.hasUnpurchasedLinked(p.ID) {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}

	return out, nil
}

func (r *memPlaceRepo) UpdateWatch(_ context.Context, id uuid.UUID, isActive bool) error {
	for _, p := range r.places {
		if p.ID == id {
			p.IsActive = isActive
			p.UpdatedAt = time.Now()

			return nil
		}
	}

	return repository.ErrPlaceNotFound
}

func (r *memPlaceRepo) TouchLastUsed(_ context.Context, id uuid.UUID) error {
	for _, p := range r.places {
		if p.ID == id {
			now := time.Now()
			p.LastUsedAt = &now
			p.UpdatedAt = now

			return nil
		}
	}

	return repository.ErrPlaceNotFound
}

func (r *memPlaceRepo) DeletePlace(_ context.Context, id uuid.UUID) error {
	for i, p := range r.places {
		if p.ID == id {
			r.places = append(r.places[:i], r.places[i+1:]...)

			return nil
		}
	}

	return repository.ErrPlaceNotFound
}

// memItemRepo is an in-memory ItemRepository.
type memItemRepo struct {
	items     []*entity.ShoppingItem
	links     []entity.ItemPlaceLink
	deleteErr error
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{}
}

func (r *memItemRepo) hasUnpurchasedLinked(placeID uuid.UUID) bool {
	for _, l := range r.links {
		if l.PlaceID != placeID {
			continue
		}
		for _, it := range r.items {
			if it.ID == l.ItemID && !it.IsPurchased {
				return true
			}
		}
	}

	return false
}

func (r *memItemRepo) CreateItem(_ context.Context, item *entity.ShoppingItem) error {
	for _, it := range r.items {
		if it.Title == item.Title {
			return repository.ErrDuplicateItemTitle
		}
	}
	clone := *item
	r.items = append(r.items, &clone)

	return nil
}

func (r *memItemRepo) FindItemByID(_ context.Context, id uuid.UUID) (*entity.ShoppingItem, error) {
	for _, it := range r.items {
		if it.ID == id {
			clone := *it

			return &clone, nil
		}
	}

	return nil, repository.ErrItemNotFound
}

func (r *memItemRepo) FindItemByTitle(_ context.Context, title string) (*entity.ShoppingItem, error) {
	for _, it := range r.items {
		if it.Title == title {
			clone := *it

			return &clone, nil
		}
	}

	return nil, repository.ErrItemNotFound
}

func (r *memItemRepo) ListItems(_ context.Context) ([]*entity.ShoppingItem, error) {
	out := make([]*entity.ShoppingItem, 0, len(r.items))
	for _, it := range r.items {
		clone := *it
		out = append(out, &clone)
	}

	return out, nil
}

func (r *memItemRepo) FindUnpurchasedItemsByPlace(_ context.Context, placeID uuid.UUID) ([]*entity.ShoppingItem, error) {
	var out []*entity.ShoppingItem
	for _, it := range r.items {
		if it.IsPurchased {
			continue
		}
		for _, l := range r.links {
			if l.ItemID == it.ID && l.PlaceID == placeID {
				clone := *it
				out = append(out, &clone)

				break
			}
		}
	}
	// Items are appended in creation order; tests control updatedAt order
	// by insertion order.
	return out, nil
}

func (r *memItemRepo) SetPurchased(_ context.Context, id uuid.UUID, isPurchased bool) error {
	for _, it := range r.items {
		if it.ID == id {
			it.IsPurchased = isPurchased
			it.UpdatedAt = time.Now()

			return nil
		}
	}

	return repository.ErrItemNotFound
}

func (r *memItemRepo) UpdateNote(_ context.Context, id uuid.UUID, note string) error {
	for _, it := range r.items {
		if it.ID == id {
			it.Note = note
			it.UpdatedAt = time.Now()

			return nil
		}
	}

	return repository.ErrItemNotFound
}

func (r *memItemRepo) DeleteItem(_ context.Context, id uuid.UUID) error {
	// The real repository deletes the item and its links in one
	// transaction, so a failure leaves both untouched.
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			kept := r.links[:0]
			for _, l := range r.links {
				if l.ItemID != id {
					kept = append(kept, l)
				}
			}
			r.links = kept

			return nil
		}
	}

	return repository.ErrItemNotFound
}

func (r *memItemRepo) LinkItemToPlace(_ context.Context, itemID, placeID uuid.UUID) error {
	for _, l := range r.links {
		if l.ItemID == itemID && l.PlaceID == placeID {
			return nil
		}
	}
	r.links = append(r.links, entity.ItemPlaceLink{ItemID: itemID, PlaceID: placeID, CreatedAt: time.Now()})

	return nil
}

func (r *memItemRepo) UnlinkItemFromPlace(_ context.Context, itemID, placeID uuid.UUID) error {
	for i, l := range r.links {
		if l.ItemID == itemID && l.PlaceID == placeID {
			r.links = append(r.links[:i], r.links[i+1:]...)

			return nil
		}
	}

	return repository.ErrLinkNotFound
}

func (r *memItemRepo) DeleteLinksForPlace(_ context.Context, placeID uuid.UUID) error {
	kept := r.links[:0]
	for _, l := range r.links {
		if l.PlaceID != placeID {
			kept = append(kept, l)
		}
	}
	r.links = kept

	return nil
}

// memGeofenceRepo is an in-memory GeofenceRegistrationRepository.
type memGeofenceRepo struct {
	registrations []*entity.GeofenceRegistration
	replaceErr    error
}

func newMemGeofenceRepo() *memGeofenceRepo {
	return &memGeofenceRepo{}
}

func (r *memGeofenceRepo) FindAllRegistrations(_ context.Context) ([]*entity.GeofenceRegistration, error) {
	out := make([]*entity.GeofenceRegistration, 0, len(r.registrations))
	for _, reg := range r.registrations {
		clone := *reg
		out = append(out, &clone)
	}

	return out, nil
}

func (r *memGeofenceRepo) ReplaceRegistrations(_ context.Context, registrations []*entity.GeofenceRegistration) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.registrations = nil
	for _, reg := range registrations {
		clone := *reg
		r.registrations = append(r.registrations, &clone)
	}

	return nil
}

func (r *memGeofenceRepo) DeleteRegistrationByPlace(_ context.Context, placeID uuid.UUID) error {
	for i, reg := range r.registrations {
		if reg.PlaceID == placeID {
			r.registrations = append(r.registrations[:i], r.registrations[i+1:]...)

			return nil
		}
	}

	return nil
}

// memStateRepo is an in-memory NotificationStateRepository.
type memStateRepo struct {
	states map[uuid.UUID]*entity.PlaceNotificationState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[uuid.UUID]*entity.PlaceNotificationState)}
}

func (r *memStateRepo) FindStateByPlace(_ context.Context, placeID uuid.UUID) (*entity.PlaceNotificationState, error) {
	state, ok := r.states[placeID]
	if !ok {
		return nil, repository.ErrNotificationStateNotFound
	}
	clone := *state

	return &clone, nil
}

func (r *memStateRepo) SaveState(_ context.Context, state *entity.PlaceNotificationState) error {
	clone := *state
	r.states[state.PlaceID] = &clone

	return nil
}

func (r *memStateRepo) DeleteStateByPlace(_ context.Context, placeID uuid.UUID) error {
	delete(r.states, placeID)

	return nil
}

// memTxManager runs the function against a shared factory without real
// transaction semantics, which is enough for happy-path and precondition
// tests.
type memTxManager struct {
	factory   *memRepoFactory
	execCalls int
}

func newMemTxManager(factory *memRepoFactory) *memTxManager {
	return &memTxManager{factory: factory}
}

func (m *memTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	m.execCalls++

	return fn(m.factory)
}

type memRepoFactory struct {
	placeRepo    *memPlaceRepo
	itemRepo     *memItemRepo
	geofenceRepo *memGeofenceRepo
	stateRepo    *memStateRepo
}

func (f *memRepoFactory) NewPlaceRepository() repository.PlaceRepository { return f.placeRepo }
func (f *memRepoFactory) NewItemRepository() repository.ItemRepository  { return f.itemRepo }
func (f *memRepoFactory) NewGeofenceRegistrationRepository() repository.GeofenceRegistrationRepository {
	return f.geofenceRepo
}
func (f *memRepoFactory) NewNotificationStateRepository() repository.NotificationStateRepository {
	return f.stateRepo
}

// fakeGateway records add/remove calls and can fail either phase. When a
// lock is attached, it also records whether the coordinator lock was held
// at call time.
type fakeGateway struct {
	added     [][]entity.GeofenceSpec
	removed   [][]string
	addErr    error
	removeErr error

	lock             *fakeCoordinatorLock
	heldDuringAdd    []bool
	heldDuringRemove []bool
}

func (g *fakeGateway) AddGeofences(_ context.Context, specs []entity.GeofenceSpec) error {
	if g.lock != nil {
		g.heldDuringAdd = append(g.heldDuringAdd, g.lock.held)
	}
	if g.addErr != nil {
		return g.addErr
	}
	g.added = append(g.added, specs)

	return nil
}

func (g *fakeGateway) RemoveGeofences(_ context.Context, requestIDs []string) error {
	if g.lock != nil {
		g.heldDuringRemove = append(g.heldDuringRemove, g.lock.held)
	}
	if g.removeErr != nil {
		return g.removeErr
	}
	g.removed = append(g.removed, requestIDs)

	return nil
}

// fakeCoordinatorLock stands in for the advisory lock with a plain mutex
// and exposes whether it is currently held.
type fakeCoordinatorLock struct {
	mu       sync.Mutex
	held     bool
	acquired int
}

func (l *fakeCoordinatorLock) WithLock(ctx context.Context, fn func(context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.held = true
	l.acquired++
	defer func() { l.held = false }()

	return fn(ctx)
}

// fakeScheduler counts sync requests.
type fakeScheduler struct {
	calls int
}

func (s *fakeScheduler) ScheduleSync(_ context.Context) {
	s.calls++
}

// fakeNotifier records shown and cancelled reminders.
type shownReminder struct {
	placeID uuid.UUID
	itemIDs []uuid.UUID
	message *entity.ReminderMessage
}

type fakeNotifier struct {
	shown     []shownReminder
	cancelled []uuid.UUID
	showErr   error
}

func (n *fakeNotifier) ShowReminder(_ context.Context, placeID uuid.UUID, itemIDs []uuid.UUID, message *entity.ReminderMessage) error {
	if n.showErr != nil {
		return n.showErr
	}
	n.shown = append(n.shown, shownReminder{placeID: placeID, itemIDs: itemIDs, message: message})

	return nil
}

func (n *fakeNotifier) CancelReminder(_ context.Context, placeID uuid.UUID) error {
	n.cancelled = append(n.cancelled, placeID)

	return nil
}
