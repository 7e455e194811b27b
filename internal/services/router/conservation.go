package router

import (
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/metrics"
)

// DefaultConservationTolerance is the additive error allowed between
// executed amounts, about 10^4 units at 18-decimal fixed-point scale
// (a relative tolerance near 10^-14).
const DefaultConservationTolerance = 10000

// Verifier checks that executed amounts stay consistent across legs and
// across split paths. A violation means the pricing formulas were applied
// inconsistently: it is reported with full leg context and never
// silently corrected.
type Verifier struct {
	tol *big.Int
}

func NewVerifier(tol *big.Int) *Verifier {
	if tol == nil || tol.Sign() < 0 {
		tol = big.NewInt(DefaultConservationTolerance)
	}
	return &Verifier{tol: tol}
}

// VerifyLegAmounts asserts exec == amount + surplus within tolerance for
// one priced leg.
func (v *Verifier) VerifyLegAmounts(exec, amount, surplus *big.Int, label string) error {
	want := new(big.Int).Add(amount, surplus)
	return v.check(exec, want, fmt.Sprintf("leg %s: exec != amount + surplus", label))
}

// VerifyChain asserts the next leg's input matches the prior leg's
// output.
func (v *Verifier) VerifyChain(priorOut, nextIn *big.Int, label string) error {
	return v.check(priorOut, nextIn, fmt.Sprintf("leg %s: prior output != next input", label))
}

// VerifyRouteTotal asserts the summed entry-leg amounts cover the order's
// total volume.
func (v *Verifier) VerifyRouteTotal(got, want *big.Int, orderNum string) error {
	return v.check(got, want, fmt.Sprintf("order %s: entry legs != order volume", orderNum))
}

func (v *Verifier) check(got, want *big.Int, context string) error {
	diff := new(big.Int).Sub(got, want)
	if diff.CmpAbs(v.tol) <= 0 {
		return nil
	}
	metrics.ConservationViolations.Inc()
	log.Error().
		Str("got", got.String()).
		Str("want", want.String()).
		Str("diff", diff.String()).
		Str("context", context).
		Msg("token conservation violated")
	return fmt.Errorf("%w: %s (got %s, want %s)", ErrConservationViolation, context, got, want)
}
