package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"evently/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	created    []*domain.User
	createErr  error
	createdID  string
	existing   *domain.User
	getErr     error
	updateKeys []string
	lastUpdate domain.UserProfile
	updateErr  error
	deleteKeys []string
	deleteErr  error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = f.createdID
	f.created = append(f.created, u)
	return nil
}

func (f *fakeUserRepo) GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.existing != nil && f.existing.ClerkID == clerkID {
		return f.existing, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateByClerkID(ctx context.Context, clerkID string, p domain.UserProfile, updatedAt time.Time) (*domain.User, error) {
	f.updateKeys = append(f.updateKeys, clerkID)
	f.lastUpdate = p
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.User{ID: "local-1", ClerkID: clerkID, FirstName: p.FirstName, LastName: p.LastName, Username: p.Username, Photo: p.Photo, UpdatedAt: updatedAt}, nil
}

func (f *fakeUserRepo) DeleteByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	f.deleteKeys = append(f.deleteKeys, clerkID)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &domain.User{ID: "local-1", ClerkID: clerkID}, nil
}

// fakeTransactor runs fn inline and records whether it committed.
type fakeTransactor struct {
	commits   int
	rollbacks int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

// fakeIdentityProvider implements domain.IdentityProvider for tests.
type fakeIdentityProvider struct {
	calls    []string
	metadata []map[string]any
	err      error
}

func (f *fakeIdentityProvider) UpdatePublicMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	f.calls = append(f.calls, userID)
	f.metadata = append(f.metadata, metadata)
	return f.err
}

// fakeEmailService implements domain.EmailService for tests.
type fakeEmailService struct {
	sent []*domain.WelcomeMessageEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	events    map[string]*domain.Event
	created   []*domain.Event
	createErr error
	deleted   []string
	listErr   error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = "ev-new"
	f.created = append(f.created, e)
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEventNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := make([]*domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(f.events, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeCategoryRepo implements domain.CategoryRepository for tests.
type fakeCategoryRepo struct {
	categories []*domain.Category
	createErr  error
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = "cat-new"
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	return f.categories, nil
}

// fakeMailer implements domain.Mailer for tests.
type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

// fakeRenderer implements domain.EmailTemplateRenderer for tests.
type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	f.name = name
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}
