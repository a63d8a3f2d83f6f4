package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/lodge-manager/internal/application"
	"github.com/example/lodge-manager/internal/validation"
)

type roomService interface {
	ListRooms(ctx context.Context) ([]application.Room, error)
	GetRoom(ctx context.Context, id int64) (application.Room, error)
	CreateRoom(ctx context.Context, input application.RoomInput) (application.Room, error)
	UpdateRoom(ctx context.Context, id int64, patch application.RoomPatch) (application.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTOs(rooms))
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgInvalidID)
		return
	}

	room, err := h.service.GetRoom(r.Context(), roomID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTO(room))
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, ok := PayloadFromContext[validation.RoomCreate](r.Context())
	if !ok {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "room payload missing from context")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	room, err := h.service.CreateRoom(r.Context(), application.RoomInput{
		Name:        *req.Name,
		Capacity:    *req.Capacity,
		Type:        *req.Type,
		Description: req.Description,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRoomDTO(room))
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgInvalidID)
		return
	}

	req, ok := PayloadFromContext[validation.RoomUpdate](r.Context())
	if !ok {
		h.log(r.Context(), "Update", "room_id", roomID, "error_kind", "bad_request").ErrorContext(r.Context(), "room payload missing from context")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "room_id", roomID)

	room, err := h.service.UpdateRoom(r.Context(), roomID, application.RoomPatch{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTO(room))
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgInvalidID)
		return
	}

	logger := h.log(r.Context(), "Delete", "room_id", roomID)
	if err := h.service.DeleteRoom(r.Context(), roomID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type roomDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		ID:          room.ID,
		Name:        room.Name,
		Capacity:    room.Capacity,
		Type:        room.Type,
		Description: room.Description,
		CreatedAt:   formatTimestamp(room.CreatedAt),
		UpdatedAt:   formatTimestamp(room.UpdatedAt),
	}
}

func toRoomDTOs(rooms []application.Room) []roomDTO {
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return out
}
