// Package agents exposes read endpoints for agent roster and per-agent
// metric history.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	agentstore "github.com/realtyview/agentpulse/internal/app/store/agents"
	metricstore "github.com/realtyview/agentpulse/internal/app/store/dailymetrics"
	"github.com/realtyview/agentpulse/internal/app/system/timeouts"
	"github.com/realtyview/agentpulse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultMetricsDays = 30
	maxMetricsDays     = 365
)

// Handler holds the dependencies for the agent endpoints.
type Handler struct {
	agents  *agentstore.Store
	metrics *metricstore.Store
	log     *zap.Logger
}

func NewHandler(agents *agentstore.Store, metrics *metricstore.Store, logger *zap.Logger) *Handler {
	return &Handler{agents: agents, metrics: metrics, log: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// agentView augments the stored agent with derived connection flags so the
// frontend never needs to inspect credential fields.
type agentView struct {
	models.Agent
	HasFacebook  bool `json:"has_facebook"`
	HasInstagram bool `json:"has_instagram"`
}

// List handles GET /api/agents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	agents, err := h.agents.List(ctx)
	if err != nil {
		h.log.Error("agent listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list agents")
		return
	}

	views := make([]agentView, 0, len(agents))
	for _, a := range agents {
		views = append(views, agentView{
			Agent:        a,
			HasFacebook:  a.HasFacebook(),
			HasInstagram: a.HasInstagram(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"agents": views})
}

// Metrics handles GET /api/agents/{agentID}/metrics?days=N, returning the
// agent's daily metrics newest first for charting.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "agentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	days := defaultMetricsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > maxMetricsDays {
		days = maxMetricsDays
	}

	if _, err := h.agents.GetByID(ctx, id); err != nil {
		if errors.Is(err, agentstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "agent not found")
			return
		}
		h.log.Error("agent lookup failed", zap.String("agent_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load agent")
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)
	rows, err := h.metrics.Range(ctx, id, from, now)
	if err != nil {
		h.log.Error("metrics range query failed", zap.String("agent_id", id.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load metrics")
		return
	}
	if rows == nil {
		rows = []models.DailyMetrics{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"agent_id": id,
		"days":     days,
		"metrics":  rows,
	})
}
