package eval

// calibrationCurve maps raw cosine similarity onto the practical range of
// the embedding model. Raw cosine rarely approaches 1.0 even for paraphrases,
// so the curve compresses the useful band: raw >= 0.88 counts as a full
// match. Points must be sorted by raw value and non-decreasing in the
// calibrated value so calibration stays monotonic.
var calibrationCurve = []struct {
	raw        float64
	calibrated float64
}{
	{0.00, 0.00},
	{0.40, 0.10},
	{0.55, 0.30},
	{0.70, 0.60},
	{0.80, 0.85},
	{0.88, 1.00},
	{1.00, 1.00},
}

// Calibrate passes a raw cosine similarity through the piecewise-linear
// calibration curve. Inputs outside [0,1] are clamped.
func Calibrate(raw float64) float64 {
	if raw <= calibrationCurve[0].raw {
		return calibrationCurve[0].calibrated
	}
	last := calibrationCurve[len(calibrationCurve)-1]
	if raw >= last.raw {
		return last.calibrated
	}

	for i := 1; i < len(calibrationCurve); i++ {
		lo, hi := calibrationCurve[i-1], calibrationCurve[i]
		if raw > hi.raw {
			continue
		}
		span := hi.raw - lo.raw
		if span == 0 {
			return hi.calibrated
		}
		t := (raw - lo.raw) / span
		return lo.calibrated + t*(hi.calibrated-lo.calibrated)
	}
	return last.calibrated
}
