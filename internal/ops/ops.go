/*
Package ops exposes the operational HTTP endpoint for infrastructure probes.

It is deliberately tiny: a liveness/readiness check that pings the database.
The weather protocol itself never travels over HTTP.
*/
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"weatherline/internal/pkg/logx"
)

// Router builds the ops HTTP routing table.
func Router(pool *pgxpool.Pool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{
			"status":  "ok",
			"service": "Weatherline Server",
		}

		if err := pool.Ping(ctx); err != nil {
			logx.Error(err, "Health check database ping failed")
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logx.Error(err, "Error encoding health response")
		}
	})

	return r
}
