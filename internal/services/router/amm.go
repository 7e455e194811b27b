package router

import (
	"fmt"
	"math/big"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
)

// FeeBase is the denominator for the optional multiplicative fee discount,
// expressed in basis points.
const FeeBase = 10000

// AmmPricer prices one order leg against one constant-product pool. It is
// purely functional: the pool snapshot is never mutated, and pricing the
// same (order, pool) pair twice yields identical results.
type AmmPricer struct {
	feeBps uint32
}

// NewAmmPricer builds a pricer with the given fee discount in basis
// points. A zero fee reproduces the bare constant-product formula.
func NewAmmPricer(feeBps uint32) *AmmPricer {
	return &AmmPricer{feeBps: feeBps}
}

// Price computes the executable trade for one leg under the
// constant-product invariant, dispatching on the order side.
func (p *AmmPricer) Price(order *domain.Order, pool *domain.Pool) (*domain.LegResult, error) {
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if order.IsSellOrder {
		return p.priceSellOrder(order, pool)
	}
	return p.priceBuyOrder(order, pool)
}

// priceSellOrder fills a fixed input s against reserves (R_sell, R_buy):
//
//	exec_buy_amount = floor(R_buy * s / (R_sell + s))
func (p *AmmPricer) priceSellOrder(order *domain.Order, pool *domain.Pool) (*domain.LegResult, error) {
	s := p.discountFee(order.SellAmount)

	denom := new(big.Int).Add(pool.SellReserve, s)
	execBuy, err := MulDivFloor(pool.BuyReserve, s, denom)
	if err != nil {
		return nil, fmt.Errorf("sell pricing: %w", err)
	}

	execSell := new(big.Int).Set(order.SellAmount)
	surplus := new(big.Int).Sub(execBuy, order.BuyAmount)

	rate, err := DivBig(pool.BuyReserve, pool.SellReserve)
	if err != nil {
		return nil, fmt.Errorf("exchange rate: %w", err)
	}

	return &domain.LegResult{
		SellToken:          order.SellToken,
		BuyToken:           order.BuyToken,
		ExecSellAmount:     execSell,
		ExecBuyAmount:      execBuy,
		Surplus:            surplus,
		PriorSellReserve:   new(big.Int).Set(pool.SellReserve),
		PriorBuyReserve:    new(big.Int).Set(pool.BuyReserve),
		UpdatedSellReserve: new(big.Int).Add(pool.SellReserve, execSell),
		UpdatedBuyReserve:  new(big.Int).Sub(pool.BuyReserve, execBuy),
		ExchangeRate:       rate,
		CanFill:            canFill(execSell, order.SellAmount, order.AllowPartialFill),
	}, nil
}

// priceBuyOrder quotes a fixed output b, the dual of the sell formula:
//
//	exec_sell_amount = ceil(R_sell * b / (R_buy - b))
//
// requiring b < R_buy. Buy-order surplus is the unspent part of the sell
// limit.
func (p *AmmPricer) priceBuyOrder(order *domain.Order, pool *domain.Pool) (*domain.LegResult, error) {
	b := order.BuyAmount
	if b.Cmp(pool.BuyReserve) >= 0 {
		return nil, fmt.Errorf("%w: want %s of reserve %s", ErrInsufficientLiquidity, b, pool.BuyReserve)
	}

	denom := new(big.Int).Sub(pool.BuyReserve, b)
	execSell, err := MulDivCeil(pool.SellReserve, b, denom)
	if err != nil {
		return nil, fmt.Errorf("buy pricing: %w", err)
	}
	execSell = p.grossUpFee(execSell)

	execBuy := new(big.Int).Set(b)
	surplus := new(big.Int).Sub(order.SellAmount, execSell)

	rate, err := DivBig(pool.BuyReserve, pool.SellReserve)
	if err != nil {
		return nil, fmt.Errorf("exchange rate: %w", err)
	}

	return &domain.LegResult{
		SellToken:          order.SellToken,
		BuyToken:           order.BuyToken,
		ExecSellAmount:     execSell,
		ExecBuyAmount:      execBuy,
		Surplus:            surplus,
		PriorSellReserve:   new(big.Int).Set(pool.SellReserve),
		PriorBuyReserve:    new(big.Int).Set(pool.BuyReserve),
		UpdatedSellReserve: new(big.Int).Add(pool.SellReserve, execSell),
		UpdatedBuyReserve:  new(big.Int).Sub(pool.BuyReserve, execBuy),
		ExchangeRate:       rate,
		CanFill:            canFill(execBuy, order.BuyAmount, order.AllowPartialFill),
	}, nil
}

// discountFee applies the multiplicative fee discount to an input amount
// before the output formula sees it.
func (p *AmmPricer) discountFee(amount *big.Int) *big.Int {
	if p.feeBps == 0 {
		return new(big.Int).Set(amount)
	}
	keep := big.NewInt(int64(FeeBase - p.feeBps))
	out, _ := MulDivFloor(amount, keep, big.NewInt(FeeBase))
	return out
}

// grossUpFee inflates a required input so that the post-fee amount still
// covers the quoted output.
func (p *AmmPricer) grossUpFee(amount *big.Int) *big.Int {
	if p.feeBps == 0 {
		return amount
	}
	out, _ := MulDivCeil(amount, big.NewInt(FeeBase), big.NewInt(int64(FeeBase-p.feeBps)))
	return out
}

// canFill checks the executed amount against the order's limit: partial
// fills accept anything up to the limit, otherwise only an exact match.
func canFill(exec, limit *big.Int, allowPartial bool) bool {
	if allowPartial {
		return exec.Cmp(limit) <= 0
	}
	return exec.Cmp(limit) == 0
}
