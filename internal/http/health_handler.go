package http

import (
	"log/slog"
	"net/http"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	responder responder
}

func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{responder: newResponder(defaultLogger(logger))}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status string `json:"status"`
}
