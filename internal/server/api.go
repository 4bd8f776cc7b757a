package server

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/mkrogh/homewatch/internal/ingest"
	"github.com/mkrogh/homewatch/internal/store"
)

// maxBodyBytes bounds device payloads; sensor reports are tiny.
const maxBodyBytes = 1 << 20

// apiMessage is the success envelope for API responses.
type apiMessage struct {
	Message string `json:"message"`
}

// apiError is the failure envelope for API responses.
type apiError struct {
	Error string `json:"error"`
}

// handleAPITempFugt accepts a temperature/humidity report.
func (h *Handler) handleAPITempFugt(w http.ResponseWriter, r *http.Request) {
	var report ingest.EnvironmentReport
	if !h.decodeBody(w, r, &report) {
		return
	}

	if err := h.ingest.RecordEnvironment(r.Context(), report); err != nil {
		h.writeIngestError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, apiMessage{Message: "sensor data stored"})
}

// handleAPIPIR accepts a PIR motion report.
func (h *Handler) handleAPIPIR(w http.ResponseWriter, r *http.Request) {
	var report ingest.MotionReport
	if !h.decodeBody(w, r, &report) {
		return
	}

	if err := h.ingest.RecordMotion(r.Context(), report); err != nil {
		h.writeIngestError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, apiMessage{Message: "motion event stored"})
}

// solenoidRequest is an operator's desired door state.
type solenoidRequest struct {
	Action string `json:"action"`
}

// handleAPISolenoid issues a door command for the device poller.
func (h *Handler) handleAPISolenoid(w http.ResponseWriter, r *http.Request) {
	var req solenoidRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Action != "open" && req.Action != "close" {
		h.writeError(w, http.StatusBadRequest, "invalid action, use 'open' or 'close'")
		return
	}

	if err := h.door.Issue(r.Context(), req.Action == "open"); err != nil {
		h.logger.Error("failed to issue door command", "error", err)
		h.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	if h.metrics != nil {
		h.metrics.CommandsIssued.Inc()
	}

	h.writeJSON(w, http.StatusOK, apiMessage{Message: "door command sent: " + req.Action})
}

// solenoidCheckResponse carries at most one pending command; Command is
// null when nothing is deliverable.
type solenoidCheckResponse struct {
	Command *store.Command `json:"command"`
}

// handleAPISolenoidCheck delivers the pending door command, if any, to
// the polling device. A delivered command is never delivered again.
func (h *Handler) handleAPISolenoidCheck(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.door.Poll(r.Context())
	if err != nil {
		h.logger.Error("failed to poll door command", "error", err)
		h.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	if cmd != nil && h.metrics != nil {
		h.metrics.CommandsDelivered.Inc()
	}

	h.writeJSON(w, http.StatusOK, solenoidCheckResponse{Command: cmd})
}

// handleAPIDoorLog accepts an observed physical door state.
func (h *Handler) handleAPIDoorLog(w http.ResponseWriter, r *http.Request) {
	var report ingest.DoorStateReport
	if !h.decodeBody(w, r, &report) {
		return
	}

	if err := h.ingest.RecordDoorState(r.Context(), report); err != nil {
		h.writeIngestError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, apiMessage{Message: "door state stored"})
}

// decodeBody decodes a JSON request body, answering 400 on malformed
// input. Returns false when a response has already been written.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}

	if len(body) == 0 {
		h.writeError(w, http.StatusBadRequest, "no data received")
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON format")
		return false
	}

	return true
}

// writeIngestError maps the ingestion error taxonomy onto HTTP status
// codes: client data problems are 400, everything else is 500.
func (h *Handler) writeIngestError(w http.ResponseWriter, r *http.Request, err error) {
	switch ingest.KindOf(err) {
	case ingest.KindValidation:
		h.writeError(w, http.StatusBadRequest, err.Error())
	case ingest.KindStorage:
		h.logger.Error("storage failure", "path", r.URL.Path, "error", err)
		h.writeError(w, http.StatusInternalServerError, "storage error")
	default:
		h.logger.Error("unexpected failure", "path", r.URL.Path, "error", err)
		h.writeError(w, http.StatusInternalServerError, "unexpected server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, apiError{Error: msg})
}
