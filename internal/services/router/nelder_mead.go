package router

import (
	"math"
)

const (
	// NelderMeadMaxIter bounds the search; the surplus objective is a sum
	// of two rational AMM curves and settles well before this.
	NelderMeadMaxIter = 200
	// NelderMeadTol is the simplex-size stopping tolerance, relative to
	// the interval bound.
	NelderMeadTol = 1e-12

	nmReflect  = 1.0
	nmExpand   = 2.0
	nmContract = 0.5
	nmShrink   = 0.5

	// initialStep sizes the second simplex vertex as a fraction of the
	// bound.
	nmInitialStep = 0.05
)

// Objective is a scalar function to maximize over [0, bound].
type Objective func(x float64) float64

// NelderMead is a derivative-free simplex search in one dimension. It
// minimizes the negated objective, so non-convex and non-smooth shapes
// are tolerated as long as they stay finite.
type NelderMead struct {
	maxIter int
	tol     float64
}

func NewNelderMead() *NelderMead {
	return &NelderMead{maxIter: NelderMeadMaxIter, tol: NelderMeadTol}
}

// Maximize returns x in [0, bound] approximately maximizing f, seeded at
// the interval midpoint when seed is NaN. A non-finite bound, seed, or
// objective value surfaces as ErrOptimizationDidNotConverge; the caller
// decides the fallback.
func (nm *NelderMead) Maximize(f Objective, bound, seed float64) (float64, error) {
	if !(bound > 0) || math.IsInf(bound, 0) {
		return 0, ErrOptimizationDidNotConverge
	}
	if math.IsNaN(seed) {
		seed = bound / 2
	}
	seed = clamp(seed, 0, bound)

	neg := func(x float64) float64 {
		v := f(clamp(x, 0, bound))
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return -v
	}

	// One-dimensional simplex: two vertices, kept ordered best-first.
	x0 := seed
	x1 := clamp(seed+bound*nmInitialStep, 0, bound)
	if x1 == x0 {
		x1 = clamp(seed-bound*nmInitialStep, 0, bound)
	}
	f0, f1 := neg(x0), neg(x1)

	for i := 0; i < nm.maxIter && math.Abs(x1-x0) > nm.tol*bound; i++ {
		if f1 < f0 {
			x0, x1 = x1, x0
			f0, f1 = f1, f0
		}

		// Centroid of all vertices but the worst is the best vertex.
		xr := clamp(x0+nmReflect*(x0-x1), 0, bound)
		fr := neg(xr)

		switch {
		case fr < f0:
			xe := clamp(x0+nmExpand*(x0-x1), 0, bound)
			if fe := neg(xe); fe < fr {
				x1, f1 = xe, fe
			} else {
				x1, f1 = xr, fr
			}
		case fr < f1:
			x1, f1 = xr, fr
		default:
			xc := x0 + nmContract*(x1-x0)
			if fc := neg(xc); fc < f1 {
				x1, f1 = xc, fc
			} else {
				// Shrink toward the best vertex.
				x1 = x0 + nmShrink*(x1-x0)
				f1 = neg(x1)
			}
		}
	}

	best := x0
	if f1 < f0 {
		best = x1
	}
	if math.IsNaN(best) || math.IsInf(best, 0) || math.IsInf(neg(best), 0) {
		return 0, ErrOptimizationDidNotConverge
	}
	return clamp(best, 0, bound), nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
