package domain

import (
	"fmt"
	"math/big"
)

// TokenID identifies a token in an order instance (e.g. "A", "C", "T1").
type TokenID string

// OrderID identifies an order within an instance document.
type OrderID string

// Order is a single limit order against the trading graph. Amounts are
// integers in the token's smallest unit. BuyAmount encodes the limit price
// via SellAmount/BuyAmount. Orders are created once per solve call and
// never mutated in place: every leg computation operates on a Clone.
type Order struct {
	SellToken        TokenID  `json:"sell_token"`
	BuyToken         TokenID  `json:"buy_token"`
	SellAmount       *big.Int `json:"sell_amount"`
	BuyAmount        *big.Int `json:"buy_amount"`
	IsSellOrder      bool     `json:"is_sell_order"`
	AllowPartialFill bool     `json:"allow_partial_fill"`
	OrderNum         OrderID  `json:"order_num"`
}

// Clone returns an owned deep copy. Legs mutate their copy's amounts, so
// sharing big.Int pointers across concurrent route evaluations is not safe.
func (o *Order) Clone() *Order {
	c := *o
	if o.SellAmount != nil {
		c.SellAmount = new(big.Int).Set(o.SellAmount)
	}
	if o.BuyAmount != nil {
		c.BuyAmount = new(big.Int).Set(o.BuyAmount)
	}
	return &c
}

// Validate checks the order invariants before any pricing runs. A zero
// sell amount is rejected here, not inside the pricing formula.
func (o *Order) Validate() error {
	if o.SellAmount == nil || o.BuyAmount == nil {
		return fmt.Errorf("%w: order %s is missing amounts", ErrMalformedInput, o.OrderNum)
	}
	if o.SellToken == "" || o.BuyToken == "" || o.SellToken == o.BuyToken {
		return fmt.Errorf("%w: order %s (%s -> %s)", ErrZeroToken, o.OrderNum, o.SellToken, o.BuyToken)
	}
	if o.SellAmount.Sign() <= 0 || o.BuyAmount.Sign() <= 0 {
		return fmt.Errorf("%w: order %s has non-positive amounts", ErrMalformedInput, o.OrderNum)
	}
	return nil
}
