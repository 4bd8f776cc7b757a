package server

import (
	"net/http"

	"github.com/mkrogh/homewatch/internal/advisory"
	"github.com/mkrogh/homewatch/internal/store"
)

// environmentRow is one reading decorated with its window advisory.
type environmentRow struct {
	Reading  store.SensorReading
	Advisory advisory.Advisory
}

// handleHome shows the dashboard landing page with the latest reading.
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	username, _ := h.principal(r)

	readings, err := h.readings.List(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	status, err := h.door.LatestStatus(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	data := map[string]any{
		"Username":   username,
		"DoorStatus": status,
	}
	if len(readings) > 0 {
		latest := readings[0]
		data["Latest"] = environmentRow{
			Reading:  latest,
			Advisory: advisory.Advise(latest.Temperature, latest.Humidity),
		}
	}

	h.render(w, r, "home.html", data)
}

// handleMotion lists PIR motion events, newest first.
func (h *Handler) handleMotion(w http.ResponseWriter, r *http.Request) {
	username, _ := h.principal(r)

	events, err := h.motion.List(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	h.render(w, r, "motion.html", map[string]any{
		"Username": username,
		"Events":   events,
	})
}

// handleEnvironment lists readings with their window advisories.
func (h *Handler) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	username, _ := h.principal(r)

	readings, err := h.readings.List(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	rows := make([]environmentRow, 0, len(readings))
	for _, reading := range readings {
		rows = append(rows, environmentRow{
			Reading:  reading,
			Advisory: advisory.Advise(reading.Temperature, reading.Humidity),
		})
	}

	h.render(w, r, "environment.html", map[string]any{
		"Username": username,
		"Rows":     rows,
	})
}

// handleDoorControl shows the door panel: last observed state plus the
// recent command and state history.
func (h *Handler) handleDoorControl(w http.ResponseWriter, r *http.Request) {
	username, _ := h.principal(r)

	status, err := h.door.LatestStatus(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	events, err := h.door.Events(r.Context())
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	h.render(w, r, "door.html", map[string]any{
		"Username": username,
		"Status":   status,
		"Events":   events,
	})
}
