package app

import (
	"context"
	"errors"

	"github.com/adrian-inthe/events7/internal/domain"
)

// EventRepository is the event store. Replace and Remove only apply while the
// stored category still equals expected; otherwise they return
// domain.ErrEventChanged, or domain.ErrEventNotFound when the record is gone.
type EventRepository interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int) (domain.Event, error)
	InsertEvent(ctx context.Context, fields domain.EventFields) (domain.Event, error)
	ReplaceEvent(ctx context.Context, event domain.Event, expected domain.Category) (domain.Event, error)
	RemoveEvent(ctx context.Context, id int, expected domain.Category) error
}

// maxMutationAttempts bounds how often an update or delete re-reads and
// re-authorizes after losing a race on the stored category.
const maxMutationAttempts = 3

// AdsPermissionChecker decides whether the caller may touch ads events.
type AdsPermissionChecker interface {
	PermissionToManipulateAds(ctx context.Context, callerAddress string) bool
}

// EventService gates event mutations on validation and ads permission.
type EventService struct {
	repo        EventRepository
	permissions AdsPermissionChecker
}

func NewEventService(repo EventRepository, permissions AdsPermissionChecker) *EventService {
	return &EventService{
		repo:        repo,
		permissions: permissions,
	}
}

type CreateEventInput struct {
	CallerAddress string
	Fields        domain.EventFields
}

type UpdateEventInput struct {
	CallerAddress string
	// ID is the targeted event; Event.ID must match it.
	ID    int
	Event domain.Event
}

type DeleteEventInput struct {
	CallerAddress string
	ID            int
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

func (s *EventService) GetEvent(ctx context.Context, id int) (domain.Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Fields.Category.IsAds() {
		if err := s.authorizeAds(ctx, in.CallerAddress); err != nil {
			return domain.Event{}, err
		}
	}
	if err := in.Fields.Validate(); err != nil {
		return domain.Event{}, err
	}
	return s.repo.InsertEvent(ctx, in.Fields)
}

func (s *EventService) UpdateEvent(ctx context.Context, in UpdateEventInput) (domain.Event, error) {
	if in.Event.ID != in.ID {
		return domain.Event{}, domain.ErrIDMismatch
	}

	for attempt := 1; ; attempt++ {
		updated, err := s.updateOnce(ctx, in)
		if !errors.Is(err, domain.ErrEventChanged) || attempt == maxMutationAttempts {
			return updated, err
		}
	}
}

func (s *EventService) updateOnce(ctx context.Context, in UpdateEventInput) (domain.Event, error) {
	existing, err := s.repo.GetEvent(ctx, in.ID)
	if err != nil {
		return domain.Event{}, err
	}

	if existing.Category.IsAds() || in.Event.Category.IsAds() {
		if err := s.authorizeAds(ctx, in.CallerAddress); err != nil {
			return domain.Event{}, err
		}
	}

	fields := in.Event.Fields()
	if err := fields.Validate(); err != nil {
		return domain.Event{}, err
	}
	return s.repo.ReplaceEvent(ctx, existing.WithFields(fields), existing.Category)
}

func (s *EventService) DeleteEvent(ctx context.Context, in DeleteEventInput) error {
	for attempt := 1; ; attempt++ {
		err := s.deleteOnce(ctx, in)
		if !errors.Is(err, domain.ErrEventChanged) || attempt == maxMutationAttempts {
			return err
		}
	}
}

func (s *EventService) deleteOnce(ctx context.Context, in DeleteEventInput) error {
	existing, err := s.repo.GetEvent(ctx, in.ID)
	if err != nil {
		return err
	}

	if existing.Category.IsAds() {
		if err := s.authorizeAds(ctx, in.CallerAddress); err != nil {
			return err
		}
	}
	return s.repo.RemoveEvent(ctx, in.ID, existing.Category)
}

// CanManipulateAds exposes the decision to the UI for enabling the ads category.
func (s *EventService) CanManipulateAds(ctx context.Context, callerAddress string) bool {
	return s.permissions.PermissionToManipulateAds(ctx, callerAddress)
}

func (s *EventService) authorizeAds(ctx context.Context, callerAddress string) error {
	if !s.permissions.PermissionToManipulateAds(ctx, callerAddress) {
		return domain.ErrAdsPermissionDenied
	}
	return nil
}
