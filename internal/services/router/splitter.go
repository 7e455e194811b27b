package router

import (
	"math"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/metrics"
)

// Splitter divides one order's volume across the two most profitable
// two-hop routes. The optimizer works on a float closed-form surplus
// objective built from the eight reserve values; the winning split is
// then re-executed leg by leg with the exact pricing engine, so float
// error never reaches the results.
type Splitter struct {
	enumerator *Enumerator
	verifier   *Verifier
	maximizer  *NelderMead
}

func NewSplitter(enumerator *Enumerator, verifier *Verifier) *Splitter {
	return &Splitter{
		enumerator: enumerator,
		verifier:   verifier,
		maximizer:  NewNelderMead(),
	}
}

// Split routes volume x* through the first candidate and V - x* through
// the second, where x* maximizes the combined closed-form surplus over
// [0, V]. The two parts sum to V exactly by construction. If the search
// does not converge, all volume goes through the higher-surplus
// candidate instead of an unexplained zero.
func (s *Splitter) Split(order *domain.Order, top1, top2 *Candidate) (domain.RouteSolution, error) {
	start := time.Now()
	defer func() {
		metrics.SplitDuration.Observe(time.Since(start).Seconds())
	}()

	volume := order.SellAmount
	if !order.IsSellOrder {
		volume = order.BuyAmount
	}

	objective, err := s.buildObjective(order, top1, top2)
	if err != nil {
		return nil, err
	}

	bound, _ := new(big.Float).SetInt(volume).Float64()
	x, err := s.maximizer.Maximize(objective, bound, math.NaN())
	if err != nil {
		metrics.OptimizerFallbacks.Inc()
		log.Warn().
			Str("order", string(order.OrderNum)).
			Err(err).
			Msg("split optimization failed, routing all volume through best candidate")
		return s.singleRoute(order, top1)
	}

	// Integerize: the complement is derived from the exact volume, so
	// both parts always sum to V.
	part1, _ := big.NewFloat(math.Floor(x)).Int(nil)
	if part1.Sign() < 0 {
		part1 = new(big.Int)
	}
	if part1.Cmp(volume) > 0 {
		part1 = new(big.Int).Set(volume)
	}
	part2 := new(big.Int).Sub(volume, part1)

	// A degenerate split collapses to the single best route.
	if part1.Sign() == 0 {
		return s.singleRoute(order, top2)
	}
	if part2.Sign() == 0 {
		return s.singleRoute(order, top1)
	}

	route := make(domain.RouteSolution, 4)
	cand1, err := s.reprice(order, top1, part1)
	if err != nil {
		return nil, err
	}
	cand2, err := s.reprice(order, top2, part2)
	if err != nil {
		return nil, err
	}
	for _, cand := range []*Candidate{cand1, cand2} {
		route[cand.First.Label()] = cand.First
		route[cand.Second.Label()] = cand.Second
	}

	if err := s.verifyRoute(order, route, volume); err != nil {
		return nil, err
	}

	log.Debug().
		Str("order", string(order.OrderNum)).
		Str("mid1", string(top1.Mid)).
		Str("part1", part1.String()).
		Str("mid2", string(top2.Mid)).
		Str("part2", part2.String()).
		Msg("volume split across two routes")
	return route, nil
}

// buildObjective derives the scalar surplus function g. For sell orders,
// g(x) is the summed two-hop output of routing x through route 1 and
// V - x through route 2, minus the order's limit baseline. For buy
// orders it is the dual on required input.
func (s *Splitter) buildObjective(order *domain.Order, top1, top2 *Candidate) (Objective, error) {
	limitPrice, err := DivBig(order.SellAmount, order.BuyAmount)
	if err != nil {
		return nil, err
	}
	limit, _ := limitPrice.Float64()
	if limit == 0 {
		return nil, ErrDivisionByZero
	}

	r1 := newFloatPath(top1.Pools)
	r2 := newFloatPath(top2.Pools)

	if order.IsSellOrder {
		volume, _ := new(big.Float).SetInt(order.SellAmount).Float64()
		baseline := volume / limit
		return func(x float64) float64 {
			return r1.outputFor(x) + r2.outputFor(volume-x) - baseline
		}, nil
	}

	sellLimit, _ := new(big.Float).SetInt(order.SellAmount).Float64()
	volume, _ := new(big.Float).SetInt(order.BuyAmount).Float64()
	return func(y float64) float64 {
		return sellLimit - r1.inputFor(y) - r2.inputFor(volume-y)
	}, nil
}

// floatPath is a two-hop route's reserves in float form, used only inside
// the optimizer.
type floatPath struct {
	aSell, aBuy float64 // entry leg reserves
	tSell, tBuy float64 // exit leg reserves
}

func newFloatPath(pools domain.PathPools) floatPath {
	f := func(v *big.Int) float64 {
		out, _ := new(big.Float).SetInt(v).Float64()
		return out
	}
	return floatPath{
		aSell: f(pools.FirstLeg.SellReserve),
		aBuy:  f(pools.FirstLeg.BuyReserve),
		tSell: f(pools.SecondLeg.SellReserve),
		tBuy:  f(pools.SecondLeg.BuyReserve),
	}
}

// outputFor composes the constant-product output formula across both
// legs for a hypothetical input x.
func (p floatPath) outputFor(x float64) float64 {
	if x <= 0 {
		return 0
	}
	mid := (p.aBuy * x) / (p.aSell + x)
	return (p.tBuy * mid) / (p.tSell + mid)
}

// inputFor composes the dual formula: the input needed for a hypothetical
// output y. Outputs beyond the exit reserve are unreachable.
func (p floatPath) inputFor(y float64) float64 {
	if y <= 0 {
		return 0
	}
	if y >= p.tBuy {
		return math.Inf(1)
	}
	mid := (p.tSell * y) / (p.tBuy - y)
	if mid >= p.aBuy {
		return math.Inf(1)
	}
	return (p.aSell * mid) / (p.aBuy - mid)
}

// reprice re-executes a candidate's both legs at the split volume with
// the exact per-leg engine.
func (s *Splitter) reprice(order *domain.Order, cand *Candidate, part *big.Int) (*Candidate, error) {
	split := order.Clone()
	if order.IsSellOrder {
		split.SellAmount = new(big.Int).Set(part)
	} else {
		split.BuyAmount = new(big.Int).Set(part)
	}
	return s.enumerator.TwoLegChain(split, cand.Mid, cand.Pools)
}

// singleRoute re-executes one candidate with the order's full volume.
func (s *Splitter) singleRoute(order *domain.Order, cand *Candidate) (domain.RouteSolution, error) {
	full, err := s.enumerator.TwoLegChain(order, cand.Mid, cand.Pools)
	if err != nil {
		return nil, err
	}
	return domain.RouteSolution{
		full.First.Label():  full.First,
		full.Second.Label(): full.Second,
	}, nil
}

// verifyRoute checks that the entry legs of the assembled route add up to
// the order's full volume.
func (s *Splitter) verifyRoute(order *domain.Order, route domain.RouteSolution, volume *big.Int) error {
	total := new(big.Int)
	for _, leg := range route {
		if order.IsSellOrder && leg.SellToken == order.SellToken {
			total.Add(total, leg.ExecSellAmount)
		}
		if !order.IsSellOrder && leg.BuyToken == order.BuyToken {
			total.Add(total, leg.ExecBuyAmount)
		}
	}
	return s.verifier.VerifyRouteTotal(total, volume, string(order.OrderNum))
}
