package domain

import (
	"fmt"
	"math/big"
	"sort"
)

// Pool is a constant-product market snapshot, one edge in the trading
// graph. Reserves are read-only: the engine projects updated reserves in
// its results but never writes them back.
type Pool struct {
	SellReserve *big.Int `json:"sell_reserve"`
	BuyReserve  *big.Int `json:"buy_reserve"`
}

// Clone returns an owned deep copy of the pool snapshot.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	c := Pool{}
	if p.SellReserve != nil {
		c.SellReserve = new(big.Int).Set(p.SellReserve)
	}
	if p.BuyReserve != nil {
		c.BuyReserve = new(big.Int).Set(p.BuyReserve)
	}
	return &c
}

// Validate rejects pools that would make the constant-product formula
// degenerate.
func (p *Pool) Validate() error {
	if p == nil || p.SellReserve == nil || p.BuyReserve == nil {
		return ErrMalformedPool
	}
	if p.SellReserve.Sign() <= 0 || p.BuyReserve.Sign() <= 0 {
		return ErrZeroReserve
	}
	return nil
}

// PathPools is one two-hop candidate: sell_token -> mid -> buy_token.
type PathPools struct {
	FirstLeg  *Pool `json:"first_leg"`
	SecondLeg *Pool `json:"second_leg"`
}

// TradeGraph is the liquidity reachable by one order: either a direct
// pool, or one or more two-hop candidates keyed by intermediate token.
type TradeGraph struct {
	OneLeg  *Pool
	TwoLegs map[TokenID]PathPools
}

// MidTokens returns the two-leg candidate tokens in lexicographic order.
// Candidate iteration order feeds the surplus ranking tie-break, so it
// must be deterministic.
func (g *TradeGraph) MidTokens() []TokenID {
	mids := make([]TokenID, 0, len(g.TwoLegs))
	for mid := range g.TwoLegs {
		mids = append(mids, mid)
	}
	sort.Slice(mids, func(i, j int) bool { return mids[i] < mids[j] })
	return mids
}

// Validate checks that the graph offers at least one route.
func (g *TradeGraph) Validate() error {
	if g.OneLeg == nil && len(g.TwoLegs) == 0 {
		return fmt.Errorf("%w: trade graph has no pools", ErrMalformedInput)
	}
	return nil
}
