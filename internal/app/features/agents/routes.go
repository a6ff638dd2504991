// internal/app/features/agents/routes.go
package agents

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the agent endpoints; it is mounted under
// /api/agents.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{agentID}/metrics", h.Metrics)
	return r
}
