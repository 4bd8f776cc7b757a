// Package simulator generates realistic home sensor traffic for
// development and load testing, publishing it the same way real
// devices do.
package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Device is the simulated sensor node's identity, reported alongside
// nothing in particular but useful in logs.
type Device struct {
	DeviceID   string `fake:"{uuid}"`
	MacAddress string `fake:"{macaddress}"`
	IPAddress  string `fake:"{ipv4address}"`
	Firmware   string `fake:"{appversion}"`
}

// NewDevice fakes a device identity.
func NewDevice() (*Device, error) {
	var device Device
	if err := gofakeit.Struct(&device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Generator produces correlated indoor climate readings with a daily
// cycle, plus occasional motion.
type Generator struct {
	baselineTemp     float64
	baselineHumidity float64
	noise            float64
	motionChance     float64
}

// NewGenerator seeds a generator with a randomized indoor baseline.
// Note: math/rand is fine for simulation data.
func NewGenerator() *Generator {
	return &Generator{
		baselineTemp:     19.0 + rand.Float64()*6,  // 19-25°C
		baselineHumidity: 40.0 + rand.Float64()*25, // 40-65%
		noise:            rand.Float64() * 2,
		motionChance:     0.15,
	}
}

// Temperature follows a daily cycle peaking mid-afternoon, with noise
// and the occasional heat spike (cooking, direct sun).
func (g *Generator) Temperature(t time.Time) float64 {
	hour := float64(t.Hour())

	dailyCycle := 3 * math.Sin((hour-6)*math.Pi/12)
	noise := (rand.Float64() - 0.5) * g.noise

	anomaly := 0.0
	if rand.Float64() < 0.05 {
		anomaly = rand.Float64() * 8
	}

	return g.baselineTemp + dailyCycle + noise + anomaly
}

// Humidity is inversely correlated with temperature, higher at night,
// with the occasional spike (shower, rain through an open window).
func (g *Generator) Humidity(t time.Time, temperature float64) float64 {
	hour := float64(t.Hour())

	dailyCycle := -2 * math.Sin((hour-6)*math.Pi/12)
	tempEffect := -(temperature - g.baselineTemp) * 1.2
	noise := (rand.Float64() - 0.5) * g.noise * 0.5

	anomaly := 0.0
	if rand.Float64() < 0.03 {
		anomaly = rand.Float64() * 25
	}

	humidity := g.baselineHumidity + dailyCycle + tempEffect + noise + anomaly

	return math.Max(20, math.Min(95, humidity))
}

// Motion reports whether the PIR fired this tick. Quiet at night.
func (g *Generator) Motion(t time.Time) bool {
	chance := g.motionChance
	if t.Hour() < 6 || t.Hour() > 23 {
		chance *= 0.1
	}
	return rand.Float64() < chance
}
