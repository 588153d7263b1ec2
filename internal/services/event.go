package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"evently/internal/domain"
)

type eventService struct {
	eventRepo        domain.EventRepository
	categoryRepo     domain.CategoryRepository
	tx               domain.Transactor
	scheduleDefaults bool
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewEventService creates an EventService. When scheduleDefaults is set, events
// created without start or end times get the creation time for both.
func NewEventService(
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	tx domain.Transactor,
	scheduleDefaults bool,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		categoryRepo:     categoryRepo,
		tx:               tx,
		scheduleDefaults: scheduleDefaults,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, organizerID string) error {
	if organizerID == "" {
		return fmt.Errorf("event organizer is required")
	}
	if errs := event.Validate(); len(errs) > 0 {
		return &domain.ValidationError{Problems: errs}
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.Title = strings.TrimSpace(event.Title)
	event.ApplyDefaults(s.now(), s.scheduleDefaults)
	event.Category = uniqueIDs(event.Category)
	event.Organizer = []string{organizerID}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.eventRepo.Create(ctx, event)
	})
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.HasOrganizer(requesterID) {
		return domain.ErrForbidden
	}
	return s.eventRepo.Delete(ctx, id)
}

func (s *eventService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Problems: []string{"name is required"}}
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category := &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *eventService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// uniqueIDs drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
