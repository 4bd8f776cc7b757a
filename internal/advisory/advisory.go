// Package advisory computes the window open/closed recommendation from
// environment readings. It is a pure calculation with no I/O.
package advisory

import "fmt"

// Thresholds above which the window should be opened.
const (
	TempThreshold     = 25.0
	HumidityThreshold = 70.0
)

// NormalValuesReason is the single reason reported when no trigger fires.
const NormalValuesReason = "normal values"

// Status is the recommended window position.
type Status string

const (
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

// Advisory is the window recommendation for a single reading.
type Advisory struct {
	Status          Status
	Reasons         []string
	ShouldOpen      bool
	TempTrigger     bool
	HumidityTrigger bool
}

// Reason returns the reasons joined for display.
func (a Advisory) Reason() string {
	out := ""
	for i, r := range a.Reasons {
		if i > 0 {
			out += " | "
		}
		out += r
	}
	return out
}

// Advise maps a temperature/humidity pair to a window recommendation.
// The reasons list holds one entry per fired trigger, temperature first,
// or exactly the normal-values marker when neither fires.
func Advise(temperature, humidity float64) Advisory {
	tempTrigger := temperature > TempThreshold
	humidityTrigger := humidity > HumidityThreshold
	shouldOpen := tempTrigger || humidityTrigger

	status := StatusClosed
	if shouldOpen {
		status = StatusOpen
	}

	var reasons []string
	if tempTrigger {
		reasons = append(reasons, fmt.Sprintf("Temp %.1f°C > %.1f°C", temperature, TempThreshold))
	}
	if humidityTrigger {
		reasons = append(reasons, fmt.Sprintf("Humidity %.1f%% > %.1f%%", humidity, HumidityThreshold))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, NormalValuesReason)
	}

	return Advisory{
		Status:          status,
		Reasons:         reasons,
		ShouldOpen:      shouldOpen,
		TempTrigger:     tempTrigger,
		HumidityTrigger: humidityTrigger,
	}
}
