// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Gateway *gateway.Client
	Log     *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(client *mongo.Client, gw *gateway.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Gateway: gw,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Proxy    string `json:"proxy"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// The database is required: a failed Mongo ping makes the whole check 503.
// The proxy is informational; the console still serves cached SSO config
// and the sign-in flow when the proxy is down, so an unreachable proxy is
// reported but does not fail the check.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Proxy:    "reachable",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Error = err.Error()
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if err := h.Gateway.Liveness(ctx); err != nil {
		h.Log.Warn("health-check: proxy unreachable", zap.Error(err))
		resp.Proxy = "unreachable"
	}

	_ = json.NewEncoder(w).Encode(resp)
}
