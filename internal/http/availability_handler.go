package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/validation"
)

type availabilityService interface {
	ListAvailability(ctx context.Context) ([]application.Availability, error)
	CreateAvailability(ctx context.Context, input application.AvailabilityInput) (application.Availability, error)
	UpdateAvailability(ctx context.Context, id int64, patch application.AvailabilityPatch) (application.Availability, error)
	DeleteAvailability(ctx context.Context, id int64) error
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AvailabilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AvailabilityHandler", operation, attrs...)
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	windows, err := h.service.ListAvailability(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAvailabilityDTOs(windows))
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, ok := PayloadFromContext[validation.AvailabilityCreate](r.Context())
	if !ok {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "availability payload missing from context")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	input := application.AvailabilityInput{RoomID: *req.RoomID}
	var err error
	if input.StartDate, err = validation.ParseDate(*req.StartDate); err != nil {
		h.responder.writeValidation(r.Context(), w, dateIssue("startDate"))
		return
	}
	if input.EndDate, err = validation.ParseDate(*req.EndDate); err != nil {
		h.responder.writeValidation(r.Context(), w, dateIssue("endDate"))
		return
	}
	if req.Status != nil {
		input.Status = application.AvailabilityStatus(*req.Status)
	}

	logger := h.log(r.Context(), "Create", "room_id", input.RoomID)

	window, err := h.service.CreateAvailability(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("availability_id", window.ID).InfoContext(r.Context(), "availability created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAvailabilityDTO(window))
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgInvalidID)
		return
	}

	req, ok := PayloadFromContext[validation.AvailabilityUpdate](r.Context())
	if !ok {
		h.log(r.Context(), "Update", "availability_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "availability payload missing from context")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	var patch application.AvailabilityPatch
	if req.StartDate != nil {
		start, err := validation.ParseDate(*req.StartDate)
		if err != nil {
			h.responder.writeValidation(r.Context(), w, dateIssue("startDate"))
			return
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := validation.ParseDate(*req.EndDate)
		if err != nil {
			h.responder.writeValidation(r.Context(), w, dateIssue("endDate"))
			return
		}
		patch.EndDate = &end
	}
	if req.Status != nil {
		status := application.AvailabilityStatus(*req.Status)
		patch.Status = &status
	}

	logger := h.log(r.Context(), "Update", "availability_id", id)

	window, err := h.service.UpdateAvailability(r.Context(), id, patch)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "availability updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAvailabilityDTO(window))
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgInvalidID)
		return
	}

	logger := h.log(r.Context(), "Delete", "availability_id", id)
	if err := h.service.DeleteAvailability(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "availability deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type availabilityDTO struct {
	ID        int64   `json:"id"`
	RoomID    int64   `json:"roomId"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	Room      roomDTO `json:"room"`
}

func toAvailabilityDTO(window application.Availability) availabilityDTO {
	return availabilityDTO{
		ID:        window.ID,
		RoomID:    window.RoomID,
		StartDate: formatTimestamp(window.StartDate),
		EndDate:   formatTimestamp(window.EndDate),
		Status:    string(window.Status),
		CreatedAt: formatTimestamp(window.CreatedAt),
		UpdatedAt: formatTimestamp(window.UpdatedAt),
		Room:      toRoomDTO(window.Room),
	}
}

func toAvailabilityDTOs(windows []application.Availability) []availabilityDTO {
	out := make([]availabilityDTO, 0, len(windows))
	for _, window := range windows {
		out = append(out, toAvailabilityDTO(window))
	}
	return out
}

func dateIssue(field string) []validation.Issue {
	return []validation.Issue{{Code: validation.CodeInvalidDate, Path: []string{field}, Message: "Invalid date"}}
}
