// Package dashboard serves the aggregate summary endpoint backing the
// dashboard's top-level cards.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/realtyview/agentpulse/internal/app/features/sync"
	metricstore "github.com/realtyview/agentpulse/internal/app/store/dailymetrics"
	metricsstore "github.com/realtyview/agentpulse/internal/app/store/metrics"
	syncjobstore "github.com/realtyview/agentpulse/internal/app/store/syncjobs"
	"github.com/realtyview/agentpulse/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *mongo.Database
	Metrics *metricstore.Store
	Jobs    *syncjobstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, metrics *metricstore.Store, jobs *syncjobstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Metrics: metrics,
		Jobs:    jobs,
		Log:     logger,
	}
}

// ServeSummary handles GET /api/dashboard/summary. Counts are tolerant
// (missing data shows as zero); only a totals aggregation failure is a hard
// error.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	counts := metricsstore.FetchDashboardCounts(ctx, h.DB)

	now := time.Now().UTC()
	totals, err := h.Metrics.TotalsForDay(ctx, now)
	if err != nil {
		h.Log.Error("dashboard totals aggregation failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "could not aggregate totals"})
		return
	}

	// Freshness is informational; a lookup failure degrades to no_data.
	lastSync, err := h.Jobs.LastBatchSyncTime(ctx)
	if err != nil {
		h.Log.Warn("last batch sync lookup failed", zap.Error(err))
		lastSync = nil
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"counts":         counts,
		"totals_today":   totals,
		"last_sync_time": lastSync,
		"data_freshness": sync.FreshnessLabel(lastSync, now),
	})
}
