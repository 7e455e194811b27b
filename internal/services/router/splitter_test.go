package router

import (
	"math/big"
	"testing"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
)

func deepPath(firstBuy, secondBuy int64) domain.PathPools {
	return domain.PathPools{
		FirstLeg:  newPool(1_000_000_000_000, firstBuy),
		SecondLeg: newPool(1_000_000_000_000, secondBuy),
	}
}

func rankTop2(t *testing.T, e *Enumerator, order *domain.Order, graph *domain.TradeGraph) (*Candidate, *Candidate) {
	t.Helper()
	ranked, err := e.RankCandidates(order, graph)
	if err != nil {
		t.Fatalf("RankCandidates failed: %v", err)
	}
	if len(ranked) < 2 {
		t.Fatalf("got %d candidates, want at least 2", len(ranked))
	}
	return ranked[0], ranked[1]
}

// TestSplitConservesVolume is the core split invariant: the two entry
// legs always consume the order's volume exactly, with no float residue.
func TestSplitConservesVolume(t *testing.T) {
	verifier := NewVerifier(nil)
	e := NewEnumerator(NewAmmPricer(0), verifier)
	s := NewSplitter(e, verifier)

	order := sellOrder(1_000_000_000, 900_000_000)
	graph := &domain.TradeGraph{TwoLegs: map[domain.TokenID]domain.PathPools{
		"T1": deepPath(2_000_000_000_000, 1_000_000_000_000),
		"T2": deepPath(2_000_000_000_000, 1_000_000_000_000),
	}}
	top1, top2 := rankTop2(t, e, order, graph)

	route, err := s.Split(order, top1, top2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(route) != 4 {
		t.Fatalf("got %d legs, want 4", len(route))
	}

	total := new(big.Int)
	for _, leg := range route {
		if leg.SellToken == order.SellToken {
			total.Add(total, leg.ExecSellAmount)
		}
	}
	if total.Cmp(order.SellAmount) != 0 {
		t.Errorf("entry legs consume %s, want exactly %s", total, order.SellAmount)
	}
}

// TestSplitSymmetricRoutes splits close to half-and-half when both routes
// have identical depth.
func TestSplitSymmetricRoutes(t *testing.T) {
	verifier := NewVerifier(nil)
	e := NewEnumerator(NewAmmPricer(0), verifier)
	s := NewSplitter(e, verifier)

	order := sellOrder(1_000_000_000, 900_000_000)
	graph := &domain.TradeGraph{TwoLegs: map[domain.TokenID]domain.PathPools{
		"T1": deepPath(2_000_000_000_000, 1_000_000_000_000),
		"T2": deepPath(2_000_000_000_000, 1_000_000_000_000),
	}}
	top1, top2 := rankTop2(t, e, order, graph)

	route, err := s.Split(order, top1, top2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	half := new(big.Int).Div(order.SellAmount, big.NewInt(2))
	slack := new(big.Int).Div(order.SellAmount, big.NewInt(10))
	for _, leg := range route {
		if leg.SellToken != order.SellToken {
			continue
		}
		diff := new(big.Int).Sub(leg.ExecSellAmount, half)
		if diff.CmpAbs(slack) > 0 {
			t.Errorf("entry leg takes %s, want about %s", leg.ExecSellAmount, half)
		}
	}
}

// TestSplitCollapsesToSingleRoute checks the degenerate case: when one
// route dominates, all volume goes through it and only two legs remain.
func TestSplitCollapsesToSingleRoute(t *testing.T) {
	verifier := NewVerifier(nil)
	e := NewEnumerator(NewAmmPricer(0), verifier)
	s := NewSplitter(e, verifier)

	order := sellOrder(1_000_000_000, 900_000_000)
	graph := &domain.TradeGraph{TwoLegs: map[domain.TokenID]domain.PathPools{
		"T1": deepPath(2_000_000_000_000, 1_000_000_000_000),
		// Nearly empty exit pool: routing anything here is wasted.
		"T2": {FirstLeg: newPool(1_000_000_000_000, 2_000_000_000_000), SecondLeg: newPool(1_000_000_000_000, 10)},
	}}
	top1, top2 := rankTop2(t, e, order, graph)
	if top1.Mid != "T1" {
		t.Fatalf("top candidate = %s, want T1", top1.Mid)
	}

	route, err := s.Split(order, top1, top2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(route) != 2 {
		t.Fatalf("got %d legs, want 2 after collapse", len(route))
	}
	for _, leg := range route {
		if leg.SellToken == order.SellToken && leg.ExecSellAmount.Cmp(order.SellAmount) != 0 {
			t.Errorf("surviving route takes %s, want full %s", leg.ExecSellAmount, order.SellAmount)
		}
	}
}

// TestSplitBuyOrder splits a fixed-output order across two routes on the
// input-cost objective.
func TestSplitBuyOrder(t *testing.T) {
	verifier := NewVerifier(nil)
	e := NewEnumerator(NewAmmPricer(0), verifier)
	s := NewSplitter(e, verifier)

	order := buyOrder(10_000_000_000, 1_000_000_000)
	graph := &domain.TradeGraph{TwoLegs: map[domain.TokenID]domain.PathPools{
		"T1": deepPath(1_000_000_000_000, 1_000_000_000_000),
		"T2": deepPath(1_000_000_000_000, 1_000_000_000_000),
	}}
	top1, top2 := rankTop2(t, e, order, graph)

	route, err := s.Split(order, top1, top2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	total := new(big.Int)
	for _, leg := range route {
		if leg.BuyToken == order.BuyToken {
			total.Add(total, leg.ExecBuyAmount)
		}
	}
	if total.Cmp(order.BuyAmount) != 0 {
		t.Errorf("exit legs deliver %s, want exactly %s", total, order.BuyAmount)
	}
}
