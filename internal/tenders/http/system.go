package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/store"
	"github.com/aussiebroadwan/tenders/pkg/httpx"
	"github.com/aussiebroadwan/tenders/pkg/tenderssdk"
)

// StatusHandler godoc
//
//	@Summary		Service status
//	@Description	Unauthenticated. Uptime is in seconds.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tenderssdk.StatusResponse	"ok, uptime"
//	@Router			/api/status [get].
func StatusHandler(startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, tenderssdk.StatusResponse{
			OK:     true,
			Uptime: time.Since(startTime).Seconds(),
		})
	}
}

// PingHandler godoc
//
//	@Summary	Ping
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	tenderssdk.PingResponse	"pong"
//	@Router		/api/ping [get].
func PingHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, tenderssdk.PingResponse{Pong: true})
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tenderssdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, tenderssdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the credential store. 503 while it is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tenderssdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	tenderssdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &tenderssdk.HealthChecks{Database: "ok"}
		status, code := "ok", http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, tenderssdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
