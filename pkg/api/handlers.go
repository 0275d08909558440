package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/insightd/insightd/pkg/metrics"
)

// expositionContentType is the Prometheus text format content type.
const expositionContentType = "text/plain; version=0.0.4; charset=utf-8"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// handleHealth handles GET /api/health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   a.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus handles GET /api/status and returns uptime plus the number of
// registered metric identities.
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "running",
		MetricsCount:  a.collector.Count(),
		UptimeSeconds: a.Uptime(),
		StartTime:     a.startTime.UTC().Format(time.RFC3339),
	})
}

// handleIngest handles POST /api/metrics. Malformed bodies, batch-level
// validation failures, and fully failed batches are request-level errors;
// individual measurement failures come back in the 200 response body.
func (a *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	var batch metrics.Batch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not a valid metrics batch: "+err.Error())
		return
	}

	if err := metrics.ValidateBatch(&batch); err != nil {
		a.log.Warn("rejected metrics batch", "source", batch.Source, "error", err)
		writeError(w, http.StatusBadRequest, "invalid_batch", err.Error())
		return
	}

	a.log.Debug("received metrics batch", "source", batch.Source, "count", len(batch.Metrics))

	result, err := a.collector.ProcessBatch(&batch)
	if err != nil {
		a.self.ingestBatches.WithLabelValues("failed").Inc()
		if errors.Is(err, metrics.ErrAllFailed) {
			writeError(w, http.StatusBadRequest, "all_failed", err.Error())
			return
		}
		a.log.Error("failed to process metrics batch", "source", batch.Source, "error", err)
		writeError(w, http.StatusInternalServerError, "processing_failed", err.Error())
		return
	}

	a.self.ingestBatches.WithLabelValues(string(result.Status)).Inc()
	a.self.ingestMetrics.WithLabelValues("processed").Add(float64(result.Processed))
	a.self.ingestMetrics.WithLabelValues("failed").Add(float64(len(result.Errors)))

	writeJSON(w, http.StatusOK, result)
}

// handleExposition handles the scrape endpoint.
func (a *API) handleExposition(w http.ResponseWriter, r *http.Request) {
	text, err := a.collector.Gather()
	if err != nil {
		a.log.Error("failed to gather metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "gather_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", expositionContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	_, _ = io.WriteString(w, text)
}
