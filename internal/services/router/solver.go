package router

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/metrics"
)

// Options tunes a Solver. Zero values mean no fee discount and the
// default conservation tolerance.
type Options struct {
	FeeBps                uint32
	ConservationTolerance *big.Int
}

// Solver prices and routes one order against its trade graph: direct
// execution when a one-leg pool exists, chained execution for a single
// two-hop candidate, and a surplus-optimal volume split across the top-2
// candidates otherwise. Solver is stateless across calls; solving a
// batch of orders is embarrassingly parallel.
type Solver struct {
	enumerator *Enumerator
	splitter   *Splitter
	verifier   *Verifier
}

func NewSolver(opts Options) *Solver {
	verifier := NewVerifier(opts.ConservationTolerance)
	enumerator := NewEnumerator(NewAmmPricer(opts.FeeBps), verifier)
	return &Solver{
		enumerator: enumerator,
		splitter:   NewSplitter(enumerator, verifier),
		verifier:   verifier,
	}
}

// Solve routes one order. Every entity it touches is an owned copy; the
// caller's order and pools come back untouched.
func (s *Solver) Solve(order *domain.Order, graph *domain.TradeGraph) (*domain.Solution, error) {
	strategy := "one_leg"
	start := time.Now()
	status := "ok"
	defer func() {
		metrics.SolveRequests.WithLabelValues(strategy, status).Inc()
		metrics.SolveDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	}()

	if err := order.Validate(); err != nil {
		status = "invalid"
		return nil, err
	}
	if graph == nil || graph.Validate() != nil {
		status = "invalid"
		return nil, fmt.Errorf("%w: order %s", ErrNoRoute, order.OrderNum)
	}

	var (
		route domain.RouteSolution
		err   error
	)
	switch {
	case graph.OneLeg != nil:
		// The direct pool is always selected when it exists.
		route, err = s.solveOneLeg(order, graph.OneLeg)
	case len(graph.TwoLegs) == 1:
		strategy = "two_legs"
		route, err = s.solveSinglePath(order, graph)
	default:
		strategy = "split"
		route, err = s.solveMultiPath(order, graph)
	}
	if err != nil {
		status = "error"
		return nil, err
	}

	solution := &domain.Solution{
		Order: aggregate(order, route),
		Legs:  route,
	}
	log.Info().
		Str("order", string(order.OrderNum)).
		Str("strategy", strategy).
		Str("exec_sell", solution.Order.ExecSellAmount.String()).
		Str("exec_buy", solution.Order.ExecBuyAmount.String()).
		Str("total_surplus", route.TotalSurplus().String()).
		Msg("order solved")
	return solution, nil
}

func (s *Solver) solveOneLeg(order *domain.Order, pool *domain.Pool) (domain.RouteSolution, error) {
	leg, err := s.enumerator.OneLeg(order, pool)
	if err != nil {
		return nil, err
	}
	return domain.RouteSolution{leg.Label(): leg}, nil
}

func (s *Solver) solveSinglePath(order *domain.Order, graph *domain.TradeGraph) (domain.RouteSolution, error) {
	mid := graph.MidTokens()[0]
	cand, err := s.enumerator.TwoLegChain(order, mid, graph.TwoLegs[mid])
	if err != nil {
		return nil, err
	}
	return domain.RouteSolution{
		cand.First.Label():  cand.First,
		cand.Second.Label(): cand.Second,
	}, nil
}

func (s *Solver) solveMultiPath(order *domain.Order, graph *domain.TradeGraph) (domain.RouteSolution, error) {
	ranked, err := s.enumerator.RankCandidates(order, graph)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 1 {
		// Siblings failed; the survivor takes the whole volume.
		return domain.RouteSolution{
			ranked[0].First.Label():  ranked[0].First,
			ranked[0].Second.Label(): ranked[0].Second,
		}, nil
	}
	return s.splitter.Split(order, ranked[0], ranked[1])
}

// aggregate sums the terminal legs into the order's executed amounts:
// entry legs on the sell side, exit legs on the buy side.
func aggregate(order *domain.Order, route domain.RouteSolution) *domain.OrderSolution {
	execSell := new(big.Int)
	execBuy := new(big.Int)
	for _, leg := range route {
		if leg.SellToken == order.SellToken {
			execSell.Add(execSell, leg.ExecSellAmount)
		}
		if leg.BuyToken == order.BuyToken {
			execBuy.Add(execBuy, leg.ExecBuyAmount)
		}
	}
	return &domain.OrderSolution{
		OrderNum:       order.OrderNum,
		ExecSellAmount: execSell,
		ExecBuyAmount:  execBuy,
	}
}

// BatchJob pairs one order with the trade graph parsed for it.
type BatchJob struct {
	Order *domain.Order
	Graph *domain.TradeGraph
}

// BatchResult collects per-order outcomes. One order's failure never
// blocks its siblings.
type BatchResult struct {
	Solutions map[domain.OrderID]*domain.Solution
	Errors    map[domain.OrderID]error
}

// SolveBatch fans jobs out across workers. Each job carries its own
// copies of order and pool data, so no coordination is needed.
func (s *Solver) SolveBatch(jobs []BatchJob, workers int) *BatchResult {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type outcome struct {
		solution *domain.Solution
		err      error
	}
	outcomes := make([]outcome, len(jobs))

	var wg sync.WaitGroup
	next := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				sol, err := s.Solve(jobs[i].Order, jobs[i].Graph)
				outcomes[i] = outcome{solution: sol, err: err}
			}
		}()
	}
	for i := range jobs {
		next <- i
	}
	close(next)
	wg.Wait()

	result := &BatchResult{
		Solutions: make(map[domain.OrderID]*domain.Solution, len(jobs)),
		Errors:    make(map[domain.OrderID]error),
	}
	for i, job := range jobs {
		if outcomes[i].err != nil {
			metrics.BatchOrders.WithLabelValues("error").Inc()
			result.Errors[job.Order.OrderNum] = outcomes[i].err
			continue
		}
		metrics.BatchOrders.WithLabelValues("ok").Inc()
		result.Solutions[job.Order.OrderNum] = outcomes[i].solution
	}
	return result
}
