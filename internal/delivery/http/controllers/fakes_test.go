package controllers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"evently/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeConnector implements Connector.
type fakeConnector struct {
	err   error
	calls int
}

func (f *fakeConnector) Connect(ctx context.Context) (*sql.DB, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeConnector) Ping(ctx context.Context) error {
	return f.err
}

// fakeUserSyncService implements domain.UserSyncService and records every call.
type fakeUserSyncService struct {
	created   []domain.ClerkUserData
	onCreate  func()
	updated   []domain.ClerkUserData
	deleted   []string
	lookups   []string
	user      *domain.User
	createErr error
	updateErr error
	deleteErr error
	getErr    error
}

func (f *fakeUserSyncService) SyncCreated(ctx context.Context, data domain.ClerkUserData) (*domain.User, error) {
	f.created = append(f.created, data)
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.User{ID: "local-1", ClerkID: data.ID, Email: data.FirstEmail(), Username: data.Username,
		FirstName: data.FirstName, LastName: data.LastName, Photo: data.ImageURL}, nil
}

func (f *fakeUserSyncService) SyncUpdated(ctx context.Context, data domain.ClerkUserData) (*domain.User, error) {
	f.updated = append(f.updated, data)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.User{ID: "local-1", ClerkID: data.ID, FirstName: data.FirstName}, nil
}

func (f *fakeUserSyncService) SyncDeleted(ctx context.Context, clerkID string) (*domain.User, error) {
	f.deleted = append(f.deleted, clerkID)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &domain.User{ID: "local-1", ClerkID: clerkID}, nil
}

func (f *fakeUserSyncService) GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	f.lookups = append(f.lookups, clerkID)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.user != nil {
		return f.user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserSyncService) writes() int {
	return len(f.created) + len(f.updated) + len(f.deleted)
}

// fakeDeduper implements domain.DeliveryDeduper in memory.
type fakeDeduper struct {
	state     map[string]domain.ClaimResult
	completed []string
	released  []string
	err       error
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{state: make(map[string]domain.ClaimResult)}
}

func (f *fakeDeduper) Claim(ctx context.Context, id string) (domain.ClaimResult, error) {
	if f.err != nil {
		return domain.ClaimAcquired, f.err
	}
	if res, ok := f.state[id]; ok {
		return res, nil
	}
	f.state[id] = domain.ClaimInProgress
	return domain.ClaimAcquired, nil
}

func (f *fakeDeduper) Complete(ctx context.Context, id string) error {
	f.state[id] = domain.ClaimDone
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeDeduper) Release(ctx context.Context, id string) error {
	delete(f.state, id)
	f.released = append(f.released, id)
	return nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events            map[string]*domain.Event
	createErr         error
	deleteErr         error
	listErr           error
	lastCreate        *domain.Event
	lastOrganizerID   string
	lastDeleteID      string
	lastRequesterID   string
	lastListParams    domain.PaginationParams
	categories        []*domain.Category
	createCategoryErr error
	lastCategoryName  string
}

func newFakeEventService() *fakeEventService {
	return &fakeEventService{events: make(map[string]*domain.Event)}
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event, organizerID string) error {
	f.lastCreate = event
	f.lastOrganizerID = organizerID
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = "6f1c2b9e-0000-4000-8000-000000000001"
	event.Organizer = []string{organizerID}
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEventNotFound
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastListParams = params
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := make([]*domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id, requesterID string) error {
	f.lastDeleteID = id
	f.lastRequesterID = requesterID
	return f.deleteErr
}

func (f *fakeEventService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	f.lastCategoryName = name
	if f.createCategoryErr != nil {
		return nil, f.createCategoryErr
	}
	return &domain.Category{ID: "c-1", Name: name}, nil
}

func (f *fakeEventService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return f.categories, nil
}
