package geometry

import "math"

// All public angle arithmetic in this package is degree-based; radians only
// appear at the trigonometric call sites.

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vector2D) float64 {
	return a.DistanceTo(b)
}

// Bearing returns the angle in degrees from point a to point b.
// The range follows math.Atan2: (-180, 180]. Combine with other angles only
// after passing the result through NormalizeAngle.
func Bearing(a, b Vector2D) float64 {
	return a.AngleTo(b) * 180 / math.Pi
}

// NormalizeAngle maps any angle to the canonical range [0, 360).
// Negative inputs are shifted up by a full turn after the modulo.
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 360)
	if theta < 0 {
		theta += 360
	}
	return theta
}

// OppositeAngle returns the reciprocal heading, always in [0, 360).
func OppositeAngle(theta float64) float64 {
	return NormalizeAngle(NormalizeAngle(theta) + 180)
}

// SteeringNudge rotates from toward to by at most maxDelta degrees.
// The turn always goes the shorter way around the circle and never
// overshoots the target. The result is normalized to [0, 360).
func SteeringNudge(from, to, maxDelta float64) float64 {
	nFrom := NormalizeAngle(from)
	nTo := NormalizeAngle(to)

	// Signed shortest angular difference, wrapped into (-180, 180].
	diff := nTo - nFrom
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}

	step := maxDelta
	if math.Abs(diff) < maxDelta {
		step = math.Abs(diff)
	}
	if diff < 0 {
		step = -step
	}

	return NormalizeAngle(nFrom + step)
}

// DegreesToRadians converts degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}
