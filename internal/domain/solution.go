package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// LegResult is the outcome of pricing one leg against one pool, from the
// order's perspective: ExecSellAmount is what the order gives up on this
// leg, ExecBuyAmount what it receives. Reserve fields are informational
// projections; the source pool is never mutated.
type LegResult struct {
	SellToken TokenID
	BuyToken  TokenID

	ExecSellAmount *big.Int
	ExecBuyAmount  *big.Int

	// Surplus is signed: negative means the leg cannot meet the order's
	// limit price.
	Surplus *big.Int

	PriorSellReserve   *big.Int
	PriorBuyReserve    *big.Int
	UpdatedSellReserve *big.Int
	UpdatedBuyReserve  *big.Int

	ExchangeRate decimal.Decimal
	CanFill      bool
}

// Label is the leg's key in a route solution, the concatenated token pair.
func (l *LegResult) Label() string {
	return string(l.SellToken) + string(l.BuyToken)
}

// RouteSolution maps leg labels to their execution results.
type RouteSolution map[string]*LegResult

// TotalSurplus sums the surplus over every leg of the route.
func (r RouteSolution) TotalSurplus() *big.Int {
	total := new(big.Int)
	for _, leg := range r {
		if leg.Surplus != nil {
			total.Add(total, leg.Surplus)
		}
	}
	return total
}

// OrderSolution aggregates the terminal legs of a route into the order's
// executed amounts.
type OrderSolution struct {
	OrderNum       OrderID
	ExecSellAmount *big.Int
	ExecBuyAmount  *big.Int
}

// Solution is everything a solve call returns for one order.
type Solution struct {
	Order *OrderSolution
	Legs  RouteSolution
}
