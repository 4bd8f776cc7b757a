// Package sensor validates raw environment sensor payloads against the
// supported measurement ranges.
package sensor

import (
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// Supported measurement bounds.
const (
	MinTemperature = -50.0
	MaxTemperature = 100.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
)

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	// NotNumeric means a value could not be coerced to a float.
	NotNumeric ErrorKind = iota
	// OutOfRange means a value falls outside its supported bounds.
	OutOfRange
)

// ValidationError describes why a sensor payload was rejected.
type ValidationError struct {
	Message string
	Field   string
	Kind    ErrorKind
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate coerces raw temperature and humidity values to floats and
// checks them against the supported bounds. Raw values may arrive as
// JSON numbers, json.Number, or numeric strings depending on the
// device firmware. Deterministic and side-effect free.
func Validate(temperature, humidity any) (float64, float64, error) {
	temp, ok := toFloat(temperature)
	if !ok {
		return 0, 0, &ValidationError{
			Kind:    NotNumeric,
			Field:   "temperature",
			Message: "temperature and humidity must be numeric values",
		}
	}

	hum, ok := toFloat(humidity)
	if !ok {
		return 0, 0, &ValidationError{
			Kind:    NotNumeric,
			Field:   "humidity",
			Message: "temperature and humidity must be numeric values",
		}
	}

	if temp < MinTemperature || temp > MaxTemperature {
		return 0, 0, &ValidationError{
			Kind:    OutOfRange,
			Field:   "temperature",
			Message: fmt.Sprintf("temperature must be between %.1f and %.1f°C", MinTemperature, MaxTemperature),
		}
	}

	if hum < MinHumidity || hum > MaxHumidity {
		return 0, 0, &ValidationError{
			Kind:    OutOfRange,
			Field:   "humidity",
			Message: fmt.Sprintf("humidity must be between %.1f and %.1f%%", MinHumidity, MaxHumidity),
		}
	}

	return temp, hum, nil
}

// toFloat coerces the scalar types a JSON decoder may produce.
// Non-finite values are rejected: NaN compares false against the range
// bounds, so letting it through would bypass them entirely.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, finite(val)
	case float32:
		return float64(val), finite(float64(val))
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil && finite(f)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil && finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
