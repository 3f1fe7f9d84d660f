package http

import (
	"context"
	"net/http"
	"time"

	"github.com/openclass/identity/internal/identity/store"
	"github.com/openclass/identity/pkg/authsdk"
	"github.com/openclass/identity/pkg/httpx"
	"github.com/openclass/identity/pkg/jwtx"
)

// ReadyzHandler is the readiness probe. It checks the database, the
// revocation backend (when it has its own connection, e.g. redis), and that
// a signing codec is configured.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	revocations store.RevocationStore,
	codec *jwtx.Codec,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database:    "ok",
			Revocations: "ok",
			Signer:      "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// The sqlite-backed revocation store shares the database connection;
		// only drivers with their own backend expose a Ping.
		if pinger, ok := revocations.(interface{ Ping(context.Context) error }); ok {
			if err := pinger.Ping(r.Context()); err != nil {
				checks.Revocations = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		if codec == nil {
			checks.Signer = "error: no signing secret configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
