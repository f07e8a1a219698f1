// Package waveform derives visualization values from raw PCM chunks.
// The numbers feed the TUI level meter and waveform bars only; they are
// bounded and deterministic for a given chunk but make no claim to
// spectral accuracy.
package waveform

// Scalar returns the mean absolute amplitude of a chunk of 16-bit
// little-endian signed samples, normalized to [0,1]. Chunks with fewer
// than one full sample yield 0.
func Scalar(chunk []byte) float64 {
	n := len(chunk) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		s := int16(uint16(chunk[2*i]) | uint16(chunk[2*i+1])<<8)
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}

	v := sum / float64(n) / 32768.0
	if v > 1 {
		v = 1
	}
	return v
}

// Bands splits a chunk into numBands contiguous segments and returns a
// per-segment amplitude estimate in [0,1]. A mild falloff is applied
// toward the higher bands so the bars read like a spectrum; this is a
// visual approximation, not an FFT.
func Bands(chunk []byte, sampleRate, numBands int) []float64 {
	if numBands <= 0 {
		return nil
	}

	out := make([]float64, numBands)
	n := len(chunk) / 2
	if n == 0 {
		return out
	}

	segment := n / numBands
	if segment == 0 {
		segment = 1
	}

	for b := 0; b < numBands; b++ {
		start := b * segment
		if start >= n {
			break
		}
		end := start + segment
		if end > n {
			end = n
		}
		out[b] = Scalar(chunk[2*start : 2*end])
	}

	// Higher bands carry less energy in speech; taper them so the
	// display looks plausible.
	for b := range out {
		falloff := 1.0 - 0.5*float64(b)/float64(numBands)
		out[b] *= falloff
		if out[b] > 1 {
			out[b] = 1
		}
	}
	return out
}

// Smooth blends the current value into the previous one with an
// exponential moving average. factor must be in (0,1); higher values
// track the input more closely.
func Smooth(current, previous, factor float64) float64 {
	return previous*(1-factor) + current*factor
}
