package router

import (
	"errors"
	"strconv"
	"testing"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
)

// TestSolvePrefersDirectPool always routes through the one-leg pool when
// it exists, even with two-hop candidates around.
func TestSolvePrefersDirectPool(t *testing.T) {
	solver := NewSolver(Options{})
	order := sellOrder(100_000, 90_000)
	graph := &domain.TradeGraph{
		OneLeg: newPool(1_000_000, 2_000_000),
		TwoLegs: map[domain.TokenID]domain.PathPools{
			"T1": pathVia(800_000),
		},
	}

	sol, err := solver.Solve(order, graph)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(sol.Legs) != 1 {
		t.Fatalf("got %d legs, want 1", len(sol.Legs))
	}
	leg, ok := sol.Legs["AC"]
	if !ok {
		t.Fatal("missing direct leg AC")
	}
	if got := leg.ExecBuyAmount.Int64(); got != 181_818 {
		t.Errorf("exec_buy_amount = %d, want 181818", got)
	}
	if sol.Order.ExecSellAmount.Int64() != 100_000 || sol.Order.ExecBuyAmount.Int64() != 181_818 {
		t.Errorf("aggregate = (%s, %s), want (100000, 181818)",
			sol.Order.ExecSellAmount, sol.Order.ExecBuyAmount)
	}
}

// TestSolveSingleTwoHopPath chains through the only candidate without
// invoking the optimizer.
func TestSolveSingleTwoHopPath(t *testing.T) {
	solver := NewSolver(Options{})
	order := sellOrder(100_000, 70_000)
	graph := &domain.TradeGraph{TwoLegs: map[domain.TokenID]domain.PathPools{
		"B": {
			FirstLeg:  newPool(1_000_000, 2_000_000),
			SecondLeg: newPool(500_000, 300_000),
		},
	}}

	sol, err := solver.Solve(order, graph)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(sol.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(sol.Legs))
	}
	if sol.Order.ExecSellAmount.Int64() != 100_000 {
		t.Errorf("aggregate sell = %s, want 100000", sol.Order.ExecSellAmount)
	}
	if sol.Order.ExecBuyAmount.Int64() != 79_999 {
		t.Errorf("aggregate buy = %s, want 79999", sol.Order.ExecBuyAmount)
	}
}

// TestSolveMultiPathSplits routes through the top-2 of three candidates
// and conserves the order volume across the split.
func TestSolveMultiPathSplits(t *testing.T) {
	solver := NewSolver(Options{})
	order := sellOrder(1_000_000_000, 900_000_000)
	graph := &domain.TradeGraph{TwoLegs: map[domain.TokenID]domain.PathPools{
		"T1": deepPath(2_000_000_000_000, 1_000_000_000_000),
		"T2": deepPath(2_000_000_000_000, 1_000_000_000_000),
		"T3": deepPath(2_000_000_000_000, 500_000_000_000),
	}}

	sol, err := solver.Solve(order, graph)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Order.ExecSellAmount.Cmp(order.SellAmount) != 0 {
		t.Errorf("aggregate sell = %s, want exactly %s", sol.Order.ExecSellAmount, order.SellAmount)
	}
	for label := range sol.Legs {
		if label == "AT3" || label == "T3C" {
			t.Errorf("third-ranked route %s should not execute", label)
		}
	}
}

// TestSolveNoGraph rejects orders with no usable liquidity.
func TestSolveNoGraph(t *testing.T) {
	solver := NewSolver(Options{})
	if _, err := solver.Solve(sellOrder(100, 100), nil); !errors.Is(err, ErrNoRoute) {
		t.Errorf("nil graph: err = %v, want ErrNoRoute", err)
	}
	if _, err := solver.Solve(sellOrder(100, 100), &domain.TradeGraph{}); !errors.Is(err, ErrNoRoute) {
		t.Errorf("empty graph: err = %v, want ErrNoRoute", err)
	}
}

// TestSolveInvalidOrder surfaces validation errors before any routing.
func TestSolveInvalidOrder(t *testing.T) {
	solver := NewSolver(Options{})
	order := sellOrder(0, 100)
	graph := &domain.TradeGraph{OneLeg: newPool(1_000_000, 2_000_000)}
	if _, err := solver.Solve(order, graph); !errors.Is(err, domain.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}

// TestSolveBatchIsolatesFailures solves a batch where one job is broken
// and expects the sibling to come back untouched.
func TestSolveBatchIsolatesFailures(t *testing.T) {
	solver := NewSolver(Options{})

	good := sellOrder(100_000, 90_000)
	good.OrderNum = "0"
	bad := sellOrder(100_000, 90_000)
	bad.OrderNum = "1"

	jobs := []BatchJob{
		{Order: good, Graph: &domain.TradeGraph{OneLeg: newPool(1_000_000, 2_000_000)}},
		{Order: bad, Graph: nil},
	}

	result := solver.SolveBatch(jobs, 4)
	if len(result.Solutions) != 1 {
		t.Fatalf("got %d solutions, want 1", len(result.Solutions))
	}
	if _, ok := result.Solutions["0"]; !ok {
		t.Error("order 0 should have solved")
	}
	if err := result.Errors["1"]; !errors.Is(err, ErrNoRoute) {
		t.Errorf("order 1 err = %v, want ErrNoRoute", err)
	}
}

// TestSolveBatchParallelDeterminism solves the same batch with different
// worker counts and expects identical executed amounts.
func TestSolveBatchParallelDeterminism(t *testing.T) {
	solver := NewSolver(Options{})

	makeJobs := func() []BatchJob {
		jobs := make([]BatchJob, 0, 8)
		for i := int64(0); i < 8; i++ {
			order := sellOrder(100_000+i*1000, 50_000)
			order.OrderNum = domain.OrderID(strconv.FormatInt(i, 10))
			jobs = append(jobs, BatchJob{
				Order: order,
				Graph: &domain.TradeGraph{OneLeg: newPool(1_000_000, 2_000_000)},
			})
		}
		return jobs
	}

	serial := solver.SolveBatch(makeJobs(), 1)
	parallel := solver.SolveBatch(makeJobs(), 8)

	if len(serial.Solutions) != 8 || len(parallel.Solutions) != 8 {
		t.Fatalf("solutions = %d serial, %d parallel, want 8 each", len(serial.Solutions), len(parallel.Solutions))
	}
	for num, want := range serial.Solutions {
		got := parallel.Solutions[num]
		if got.Order.ExecBuyAmount.Cmp(want.Order.ExecBuyAmount) != 0 {
			t.Errorf("order %s: parallel buy %s != serial %s", num, got.Order.ExecBuyAmount, want.Order.ExecBuyAmount)
		}
	}
}

// BenchmarkSolveDirect benchmarks the one-leg path end to end.
func BenchmarkSolveDirect(b *testing.B) {
	solver := NewSolver(Options{})
	order := sellOrder(100_000, 90_000)
	graph := &domain.TradeGraph{OneLeg: newPool(1_000_000, 2_000_000)}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = solver.Solve(order, graph)
	}
}

// BenchmarkSolveSplit benchmarks the full rank-and-split path.
func BenchmarkSolveSplit(b *testing.B) {
	solver := NewSolver(Options{})
	order := sellOrder(1_000_000_000, 900_000_000)
	graph := &domain.TradeGraph{TwoLegs: map[domain.TokenID]domain.PathPools{
		"T1": deepPath(2_000_000_000_000, 1_000_000_000_000),
		"T2": deepPath(2_000_000_000_000, 1_000_000_000_000),
		"T3": deepPath(2_000_000_000_000, 500_000_000_000),
	}}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = solver.Solve(order, graph)
	}
}
