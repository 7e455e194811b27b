package router

import "errors"

var (
	// ErrDivisionByZero is returned by the fixed-precision helpers instead
	// of silently yielding 0, which would mask malformed pool data.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNoRoute means the trade graph offered nothing executable.
	ErrNoRoute = errors.New("no route available")

	// ErrUnsupportedRouteLength marks a candidate with 3 or more hops.
	// Fatal to that candidate only.
	ErrUnsupportedRouteLength = errors.New("unsupported route length")

	// ErrInsufficientLiquidity means a buy order asked for at least the
	// pool's entire buy-side reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrOptimizationDidNotConverge means the simplex search produced a
	// non-finite result. Recoverable: the splitter falls back to routing
	// all volume through the higher-surplus candidate.
	ErrOptimizationDidNotConverge = errors.New("optimization did not converge")

	// ErrConservationViolation signals inconsistent executed amounts
	// across legs. Always a programming-error signal, never corrected.
	ErrConservationViolation = errors.New("token conservation violated")
)
