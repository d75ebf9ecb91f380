package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adrian-inthe/events7/internal/app"
	"github.com/adrian-inthe/events7/internal/domain"
	"github.com/go-chi/chi/v5"
)

// EventService is the minimal interface needed for the event endpoints.
type EventService interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int) (domain.Event, error)
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, in app.UpdateEventInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, in app.DeleteEventInput) error
}

// HandleListEvents returns every event.
func HandleListEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]eventResponse, 0, len(events))
		for _, event := range events {
			resp = append(resp, toEventResponse(event))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleGetEvent returns one event by path id.
func HandleGetEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathEventID(w, r)
		if !ok {
			return
		}
		event, err := svc.GetEvent(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event))
	}
}

// HandleCreateEvent creates an event; any id in the body is ignored.
func HandleCreateEvent(svc EventService, callerAddress CallerAddressFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeEventRequest(w, r)
		if !ok {
			return
		}
		event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
			CallerAddress: callerAddress(r),
			Fields:        req.fields(),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(event))
	}
}

// HandleUpdateEvent replaces an event; the body id must match the path id.
func HandleUpdateEvent(svc EventService, callerAddress CallerAddressFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathEventID(w, r)
		if !ok {
			return
		}
		req, ok := decodeEventRequest(w, r)
		if !ok {
			return
		}

		replacement := domain.Event{}.WithFields(req.fields())
		if req.ID != nil {
			replacement.ID = *req.ID
		}

		event, err := svc.UpdateEvent(r.Context(), app.UpdateEventInput{
			CallerAddress: callerAddress(r),
			ID:            id,
			Event:         replacement,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event))
	}
}

// HandleDeleteEvent removes an event and answers 204.
func HandleDeleteEvent(svc EventService, callerAddress CallerAddressFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathEventID(w, r)
		if !ok {
			return
		}
		err := svc.DeleteEvent(r.Context(), app.DeleteEventInput{
			CallerAddress: callerAddress(r),
			ID:            id,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// A missing priority is reported by the range check.
const missingPriority = domain.MinPriority - 1

type eventRequest struct {
	ID          *int   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    *int   `json:"priority"`
}

func (r eventRequest) fields() domain.EventFields {
	priority := missingPriority
	if r.Priority != nil {
		priority = *r.Priority
	}
	return domain.EventFields{
		Name:        r.Name,
		Description: r.Description,
		Category:    domain.Category(r.Type),
		Priority:    priority,
	}
}

type eventResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    int    `json:"priority"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Type:        string(e.Category),
		Priority:    e.Priority,
	}
}

func decodeEventRequest(w http.ResponseWriter, r *http.Request) (eventRequest, bool) {
	var req eventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return eventRequest{}, false
	}
	return req, true
}

func pathEventID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
