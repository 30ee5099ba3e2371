package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrate(t *testing.T) {
	t.Run("endpoints", func(t *testing.T) {
		assert.Equal(t, 0.0, Calibrate(0))
		assert.Equal(t, 1.0, Calibrate(1))
	})

	t.Run("full match band starts at 0.88", func(t *testing.T) {
		assert.Equal(t, 1.0, Calibrate(0.88))
		assert.Equal(t, 1.0, Calibrate(0.93))
	})

	t.Run("out of range clamps", func(t *testing.T) {
		assert.Equal(t, 0.0, Calibrate(-0.5))
		assert.Equal(t, 1.0, Calibrate(1.5))
	})

	t.Run("interpolates between anchor points", func(t *testing.T) {
		// Halfway between (0.70, 0.60) and (0.80, 0.85).
		assert.InDelta(t, 0.725, Calibrate(0.75), 1e-9)
	})

	t.Run("monotonic non-decreasing", func(t *testing.T) {
		prev := -1.0
		for raw := 0.0; raw <= 1.0; raw += 0.01 {
			cal := Calibrate(raw)
			assert.GreaterOrEqual(t, cal, prev, "calibration decreased at raw=%f", raw)
			prev = cal
		}
	})
}
