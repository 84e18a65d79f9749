package geom

import "math"

const Tau = 2 * math.Pi

// WrapAngle folds an angle into [-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, Tau)
	if a < 0 {
		a += Tau
	}
	return a - math.Pi
}

// LerpAngle interpolates between two angles along the shortest arc.
func LerpAngle(from, to, t float64) float64 {
	diff := math.Mod(to-from, Tau)
	dist := math.Mod(2*diff, Tau) - diff
	return from + dist*t
}

// MoveToward steps from towards to by at most delta.
func MoveToward(from, to, delta float64) float64 {
	if math.Abs(to-from) <= delta {
		return to
	}
	if to > from {
		return from + delta
	}
	return from - delta
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
