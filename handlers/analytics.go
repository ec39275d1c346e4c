package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"restoanalytics/analytics"
	"restoanalytics/models"
)

// AnalyticsHandler serves POST /analytics: overall statistics, meal and tag
// distributions, and clusters or a page of restaurants for the viewport.
func AnalyticsHandler(log zerolog.Logger, a *analytics.Analyzer, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AnalyticsRequest
		if err := decodeJSONStrict(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body", map[string]any{"details": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		payload, err := a.Analyze(ctx, req)
		if err != nil {
			var verr *analytics.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, "invalid_request", verr.Message, map[string]any{"field": verr.Field})
				return
			}
			log.Error().Err(err).Msg("analytics failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to compute analytics", nil)
			return
		}

		writeJSON(w, http.StatusOK, payload)
	}
}
