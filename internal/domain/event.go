package domain

import (
	"context"
	"strings"
	"time"
)

// Event is a listed event. Category and Organizer hold ids of the referenced
// categories and users.
// swagger:model Event
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	CreatedAt   time.Time  `json:"created_at"`
	ImageURL    string     `json:"image_url"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDateTime *time.Time `json:"end_date_time,omitempty"`
	Price       string     `json:"price"`
	IsFree      bool       `json:"is_free"`
	URL         string     `json:"url"`
	Category    []string   `json:"category"`
	Organizer   []string   `json:"organizer"`
}

// NewEvent returns an Event with the required fields set.
func NewEvent(title, imageURL string) *Event {
	return &Event{
		Title:     title,
		ImageURL:  imageURL,
		Category:  []string{},
		Organizer: []string{},
	}
}

// ApplyDefaults fills unset timestamps with now. Start and end only default
// when scheduleDefaults is set.
func (e *Event) ApplyDefaults(now time.Time, scheduleDefaults bool) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if !scheduleDefaults {
		return
	}
	if e.StartDate == nil {
		t := now
		e.StartDate = &t
	}
	if e.EndDateTime == nil {
		t := now
		e.EndDateTime = &t
	}
}

// Validate returns the required-field violations; nil means valid.
func (e *Event) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(e.ImageURL) == "" {
		errs = append(errs, "image_url is required")
	}
	return errs
}

// HasOrganizer reports whether userID is one of the event's organizers.
func (e *Event) HasOrganizer(userID string) bool {
	for _, id := range e.Organizer {
		if id == userID {
			return true
		}
	}
	return false
}

// Category groups events.
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category storage
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	List(ctx context.Context) ([]*Category, error)
}

// EventService defines the business logic for events and their categories.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, organizerID string) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	DeleteEvent(ctx context.Context, id, requesterID string) error
	CreateCategory(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}
