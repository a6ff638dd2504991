// internal/app/features/sync/routes.go
package sync

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the sync endpoints; it is mounted under
// /api/sync. adminOnly guards the trigger endpoints, which spend the shared
// Graph API budget.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.Status)
	r.Get("/jobs", h.ListJobs)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/all", h.TriggerBatch)
		r.Post("/agents/{agentID}", h.TriggerAgent)
	})

	return r
}
