package router

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/metrics"
)

// Candidate is one fully simulated two-hop route through an intermediate
// token, carrying the results of both legs and the route's total surplus.
type Candidate struct {
	Mid          domain.TokenID
	Pools        domain.PathPools
	First        *domain.LegResult
	Second       *domain.LegResult
	TotalSurplus *big.Int
}

// Enumerator simulates every candidate route for an order. Simulations
// are pure: each leg operates on an owned copy of the order against a
// read-only pool snapshot.
type Enumerator struct {
	pricer   *AmmPricer
	verifier *Verifier
}

func NewEnumerator(pricer *AmmPricer, verifier *Verifier) *Enumerator {
	return &Enumerator{pricer: pricer, verifier: verifier}
}

// OneLeg prices the direct sell_token -> buy_token route.
func (e *Enumerator) OneLeg(order *domain.Order, pool *domain.Pool) (*domain.LegResult, error) {
	leg, err := e.pricer.Price(order.Clone(), pool)
	if err != nil {
		return nil, err
	}
	if err := e.verifyLeg(order, leg); err != nil {
		return nil, err
	}
	log.Debug().
		Str("order", string(order.OrderNum)).
		Str("leg", leg.Label()).
		Str("exec_sell", leg.ExecSellAmount.String()).
		Str("exec_buy", leg.ExecBuyAmount.String()).
		Str("surplus", leg.Surplus.String()).
		Bool("can_fill", leg.CanFill).
		Msg("one-leg trade simulated")
	return leg, nil
}

// TwoLegChain simulates the two-hop route sell_token -> mid -> buy_token
// as one chained execution: for sell orders the first leg's output funds
// the second leg, for buy orders the second leg's required input is
// quoted first and becomes the first leg's target output.
func (e *Enumerator) TwoLegChain(order *domain.Order, mid domain.TokenID, pools domain.PathPools) (*Candidate, error) {
	if order.IsSellOrder {
		return e.chainSell(order, mid, pools)
	}
	return e.chainBuy(order, mid, pools)
}

func (e *Enumerator) chainSell(order *domain.Order, mid domain.TokenID, pools domain.PathPools) (*Candidate, error) {
	firstOrder := order.Clone()
	firstOrder.BuyToken = mid
	first, err := e.pricer.Price(firstOrder, pools.FirstLeg)
	if err != nil {
		return nil, fmt.Errorf("first leg via %s: %w", mid, err)
	}
	if err := e.verifyLeg(firstOrder, first); err != nil {
		return nil, err
	}

	secondOrder := order.Clone()
	secondOrder.SellToken = mid
	secondOrder.SellAmount = new(big.Int).Set(first.ExecBuyAmount)
	secondOrder.BuyAmount = new(big.Int).Set(first.ExecSellAmount)
	second, err := e.pricer.Price(secondOrder, pools.SecondLeg)
	if err != nil {
		return nil, fmt.Errorf("second leg via %s: %w", mid, err)
	}
	if err := e.verifyLeg(secondOrder, second); err != nil {
		return nil, err
	}
	if err := e.verifier.VerifyChain(first.ExecBuyAmount, second.ExecSellAmount, second.Label()); err != nil {
		return nil, err
	}

	return &Candidate{
		Mid:          mid,
		Pools:        pools,
		First:        first,
		Second:       second,
		TotalSurplus: new(big.Int).Add(first.Surplus, second.Surplus),
	}, nil
}

func (e *Enumerator) chainBuy(order *domain.Order, mid domain.TokenID, pools domain.PathPools) (*Candidate, error) {
	// Quote the exit leg first: it fixes how many mid tokens the entry
	// leg must deliver.
	secondOrder := order.Clone()
	secondOrder.SellToken = mid
	second, err := e.pricer.Price(secondOrder, pools.SecondLeg)
	if err != nil {
		return nil, fmt.Errorf("second leg via %s: %w", mid, err)
	}
	if err := e.verifyLeg(secondOrder, second); err != nil {
		return nil, err
	}

	firstOrder := order.Clone()
	firstOrder.BuyToken = mid
	firstOrder.BuyAmount = new(big.Int).Set(second.ExecSellAmount)
	first, err := e.pricer.Price(firstOrder, pools.FirstLeg)
	if err != nil {
		return nil, fmt.Errorf("first leg via %s: %w", mid, err)
	}
	if err := e.verifyLeg(firstOrder, first); err != nil {
		return nil, err
	}
	if err := e.verifier.VerifyChain(first.ExecBuyAmount, second.ExecSellAmount, second.Label()); err != nil {
		return nil, err
	}

	return &Candidate{
		Mid:          mid,
		Pools:        pools,
		First:        first,
		Second:       second,
		TotalSurplus: new(big.Int).Add(first.Surplus, second.Surplus),
	}, nil
}

// RankCandidates simulates every two-hop candidate at full order volume
// and returns them ordered by descending total surplus. Candidates with
// bad pool data are skipped, not fatal. Exact surplus ties keep the
// first-seen order (mids iterate lexicographically), which makes the
// ranking deterministic.
func (e *Enumerator) RankCandidates(order *domain.Order, graph *domain.TradeGraph) ([]*Candidate, error) {
	mids := graph.MidTokens()
	candidates := make([]*Candidate, 0, len(mids))

	for _, mid := range mids {
		cand, err := e.TwoLegChain(order, mid, graph.TwoLegs[mid])
		if err != nil {
			metrics.RoutesSkipped.Inc()
			log.Warn().
				Str("order", string(order.OrderNum)).
				Str("mid", string(mid)).
				Err(err).
				Msg("skipping candidate route")
			continue
		}
		candidates = append(candidates, cand)
	}
	metrics.RoutesEvaluated.Observe(float64(len(candidates)))

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: all candidates failed for order %s", ErrNoRoute, order.OrderNum)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TotalSurplus.Cmp(candidates[j].TotalSurplus) > 0
	})
	return candidates, nil
}

// verifyLeg runs the per-leg conservation identity in the direction the
// order was priced.
func (e *Enumerator) verifyLeg(legOrder *domain.Order, leg *domain.LegResult) error {
	if legOrder.IsSellOrder {
		return e.verifier.VerifyLegAmounts(leg.ExecBuyAmount, legOrder.BuyAmount, leg.Surplus, leg.Label())
	}
	return e.verifier.VerifyLegAmounts(leg.ExecSellAmount, legOrder.SellAmount, new(big.Int).Neg(leg.Surplus), leg.Label())
}
