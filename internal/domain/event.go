package domain

import "fmt"

// Category classifies an event. Only CategoryAds is privileged.
type Category string

const (
	CategoryCrossPromo Category = "crosspromo"
	CategoryLiveOps    Category = "liveops"
	CategoryApp        Category = "app"
	CategoryAds        Category = "ads"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryCrossPromo, CategoryLiveOps, CategoryApp, CategoryAds}

func (c Category) Valid() bool {
	switch c {
	case CategoryCrossPromo, CategoryLiveOps, CategoryApp, CategoryAds:
		return true
	}
	return false
}

func (c Category) IsAds() bool {
	return c == CategoryAds
}

const (
	MinPriority = 0
	MaxPriority = 10
)

// Event is an in-app event managed through the admin API.
type Event struct {
	ID          int
	Name        string
	Description string
	Category    Category
	Priority    int
}

// EventFields holds every mutable field of an Event.
type EventFields struct {
	Name        string
	Description string
	Category    Category
	Priority    int
}

// Fields returns the mutable part of the event.
func (e Event) Fields() EventFields {
	return EventFields{
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		Priority:    e.Priority,
	}
}

// WithFields returns a copy of e with every field but ID replaced.
func (e Event) WithFields(f EventFields) Event {
	return Event{
		ID:          e.ID,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Priority:    f.Priority,
	}
}

// Validate reports every violated constraint at once.
func (f EventFields) Validate() error {
	var violations []Violation
	if f.Name == "" {
		violations = append(violations, Violation{Field: "name", Message: "cannot be empty"})
	}
	if f.Description == "" {
		violations = append(violations, Violation{Field: "description", Message: "cannot be empty"})
	}
	if !f.Category.Valid() {
		violations = append(violations, Violation{
			Field:   "type",
			Message: "must be one of: crosspromo, liveops, app, ads",
		})
	}
	if f.Priority < MinPriority || f.Priority > MaxPriority {
		violations = append(violations, Violation{
			Field:   "priority",
			Message: fmt.Sprintf("must be a number between %d and %d", MinPriority, MaxPriority),
		})
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
