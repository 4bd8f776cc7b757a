package sensor_test

import (
	"errors"
	"math"

	json "github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkrogh/homewatch/internal/sensor"
)

var _ = Describe("Validate", func() {
	Context("with values inside the supported ranges", func() {
		It("should echo back the parsed floats unchanged", func() {
			cases := [][2]float64{
				{-50.0, 0.0},
				{100.0, 100.0},
				{0.0, 50.0},
				{21.5, 45.2},
				{-12.3, 99.9},
			}

			for _, c := range cases {
				temp, hum, err := sensor.Validate(c[0], c[1])
				Expect(err).NotTo(HaveOccurred())
				Expect(temp).To(Equal(c[0]))
				Expect(hum).To(Equal(c[1]))
			}
		})

		It("should coerce numeric strings", func() {
			temp, hum, err := sensor.Validate("21.5", "45")
			Expect(err).NotTo(HaveOccurred())
			Expect(temp).To(Equal(21.5))
			Expect(hum).To(Equal(45.0))
		})

		It("should coerce json.Number values", func() {
			temp, hum, err := sensor.Validate(json.Number("19.25"), json.Number("60"))
			Expect(err).NotTo(HaveOccurred())
			Expect(temp).To(Equal(19.25))
			Expect(hum).To(Equal(60.0))
		})
	})

	Context("with out-of-range temperature", func() {
		It("should fail naming the temperature field", func() {
			for _, temp := range []float64{100.1, 150.0, -50.1, -273.0} {
				_, _, err := sensor.Validate(temp, 50.0)
				Expect(err).To(HaveOccurred())

				var verr *sensor.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Kind).To(Equal(sensor.OutOfRange))
				Expect(verr.Field).To(Equal("temperature"))
				Expect(verr.Message).To(ContainSubstring("temperature"))
			}
		})
	})

	Context("with out-of-range humidity", func() {
		It("should fail naming the humidity field", func() {
			for _, hum := range []float64{-0.1, 100.5, 200.0} {
				_, _, err := sensor.Validate(20.0, hum)
				Expect(err).To(HaveOccurred())

				var verr *sensor.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Kind).To(Equal(sensor.OutOfRange))
				Expect(verr.Field).To(Equal("humidity"))
			}
		})
	})

	Context("with non-finite values", func() {
		It("should reject NaN and infinity in any coercible form", func() {
			for _, v := range []any{"NaN", "+Inf", "-Inf", math.NaN(), math.Inf(1), math.Inf(-1)} {
				_, _, err := sensor.Validate(v, 50.0)
				Expect(err).To(HaveOccurred(), "temperature %v", v)

				var verr *sensor.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Kind).To(Equal(sensor.NotNumeric))
				Expect(verr.Field).To(Equal("temperature"))

				_, _, err = sensor.Validate(20.0, v)
				Expect(err).To(HaveOccurred(), "humidity %v", v)
			}
		})
	})

	Context("with non-numeric values", func() {
		It("should fail with a not-numeric error", func() {
			for _, v := range []any{"warm", true, nil, []any{1.0}, map[string]any{}} {
				_, _, err := sensor.Validate(v, 50.0)
				Expect(err).To(HaveOccurred())

				var verr *sensor.ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Kind).To(Equal(sensor.NotNumeric))
			}
		})

		It("should reject non-numeric humidity too", func() {
			_, _, err := sensor.Validate(20.0, "damp")
			var verr *sensor.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Kind).To(Equal(sensor.NotNumeric))
			Expect(verr.Field).To(Equal("humidity"))
		})
	})
})
