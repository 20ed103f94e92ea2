// Package sampling holds the frame-selection rule shared by every decoder.
package sampling

import "math"

// Stride converts a sampling interval in seconds into a decoded-frame step.
// A missing or non-positive frame rate is treated as 1 fps.
func Stride(fps float64, intervalSeconds int) int {
	rate := int(math.Round(fps))
	if rate <= 0 {
		rate = 1
	}
	if intervalSeconds <= 0 {
		intervalSeconds = 1
	}
	return rate * intervalSeconds
}

// Keep reports whether the decoded frame at index should be written.
func Keep(index, stride int) bool {
	return index%stride == 0
}
