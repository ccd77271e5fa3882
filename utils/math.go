package utils

import "math"

// DegToRad converts degrees to radians, used by config to convert
// mrpt_icp.thresholdAng from the YAML document's degrees into the radians
// the Registration Adapter consumes.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees, the inverse of DegToRad, used where
// an angle threshold is surfaced back to an operator.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AbsInt64 returns the absolute value of n.
func AbsInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
