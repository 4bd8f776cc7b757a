package ingest

// EnvironmentReport is a raw temperature/humidity report as decoded
// from a device payload. Temperature and Humidity stay untyped until
// the sensor validator has coerced them; devices running older
// firmware send them as strings. Both English and legacy Danish field
// names are accepted.
type EnvironmentReport struct {
	Temperature any    `json:"temperature"`
	Humidity    any    `json:"humidity"`
	Temperatur  any    `json:"temperatur"`
	Fugtighed   any    `json:"fugtighed"`
	Timestamp   string `json:"timestamp"`
}

// temperatureField returns whichever spelling the device used.
func (r EnvironmentReport) temperatureField() any {
	if r.Temperature != nil {
		return r.Temperature
	}
	return r.Temperatur
}

func (r EnvironmentReport) humidityField() any {
	if r.Humidity != nil {
		return r.Humidity
	}
	return r.Fugtighed
}

// MotionReport is a raw PIR report. PIR stays untyped: booleans and
// numbers are accepted, anything else is a validation error.
type MotionReport struct {
	PIR       any    `json:"pir"`
	Timestamp string `json:"timestamp"`
}

// DoorStateReport is an observed physical door state reported back by
// the device. IsOpen must be a native JSON boolean; truthy strings and
// numbers are rejected.
type DoorStateReport struct {
	IsOpen    any    `json:"is_open"`
	Timestamp string `json:"timestamp"`
}
