package rest

import (
	"net/http"
)

// Component statuses reported by GET /health. Backends are optional,
// so "disabled" is a healthy answer: it tells the operator which parts
// this instance runs with.
const (
	ComponentUp       = "up"
	ComponentDisabled = "disabled"
)

// HealthHandler reports which optional backends were configured at
// startup.
type HealthHandler struct {
	components map[string]string
}

// NewHealthHandler takes a snapshot of the component map.
func NewHealthHandler(components map[string]string) *HealthHandler {
	snapshot := make(map[string]string, len(components))
	for name, status := range components {
		snapshot[name] = status
	}
	return &HealthHandler{components: snapshot}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Components: h.components,
	})
}
