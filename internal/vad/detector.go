package vad

// IsSilent reports whether a frame of normalized samples is silent: true iff
// the maximum absolute amplitude is strictly below threshold. An empty frame
// is silent (max of empty is treated as 0). Pure function, no state.
func IsSilent(samples []float32, threshold float32) bool {
	return MaxAmplitude(samples) < threshold
}

// MaxAmplitude returns the peak absolute amplitude of the frame, 0 for empty.
func MaxAmplitude(samples []float32) float32 {
	var max float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > max {
			max = s
		}
	}
	return max
}
