// Package instance reads order-and-pool instance documents and writes
// solution documents. It is glue around the core solver: parsing hands
// the engine well-typed orders and trade graphs, and formatting turns
// the engine's exact integers into human-auditable output.
package instance

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
)

// BigAmount is a wei-scale integer that unmarshals from both quoted and
// bare JSON numbers.
type BigAmount struct {
	big.Int
}

func (a *BigAmount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("%w: empty amount", domain.ErrMalformedInput)
	}
	if _, ok := a.SetString(s, 10); !ok {
		return fmt.Errorf("%w: amount %q is not a base-10 integer", domain.ErrMalformedInput, s)
	}
	return nil
}

func (a *BigAmount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// OrderDoc is one order as it appears in an instance document.
type OrderDoc struct {
	SellToken        string     `json:"sell_token"`
	BuyToken         string     `json:"buy_token"`
	SellAmount       *BigAmount `json:"sell_amount"`
	BuyAmount        *BigAmount `json:"buy_amount"`
	IsSellOrder      bool       `json:"is_sell_order"`
	AllowPartialFill bool       `json:"allow_partial_fill"`
}

// PoolDoc is one pool as it appears in an instance document, keyed in
// the parent map by its token-pair label (e.g. "AC", "AB1", "B1C").
type PoolDoc struct {
	Reserves map[string]*BigAmount `json:"reserves"`
}

// Document is a full order-and-pool instance.
type Document struct {
	Orders map[string]*OrderDoc `json:"orders"`
	Amms   map[string]*PoolDoc  `json:"amms"`
}

// SolutionLegDoc is one executed leg in a solution document, written
// from the AMM's perspective: the AMM buys what the order sells.
type SolutionLegDoc struct {
	SellToken      string `json:"sell_token"`
	BuyToken       string `json:"buy_token"`
	ExecSellAmount string `json:"exec_sell_amount"`
	ExecBuyAmount  string `json:"exec_buy_amount"`
}

// SolutionOrderDoc echoes the order with its executed amounts.
type SolutionOrderDoc struct {
	SellToken        string `json:"sell_token"`
	BuyToken         string `json:"buy_token"`
	SellAmount       string `json:"sell_amount"`
	BuyAmount        string `json:"buy_amount"`
	IsSellOrder      bool   `json:"is_sell_order"`
	AllowPartialFill bool   `json:"allow_partial_fill"`
	ExecSellAmount   string `json:"exec_sell_amount"`
	ExecBuyAmount    string `json:"exec_buy_amount"`
}

// SolutionDocument is the full output of a batch solve.
type SolutionDocument struct {
	Amms   map[string]*SolutionLegDoc   `json:"amms"`
	Orders map[string]*SolutionOrderDoc `json:"orders"`
}

// ToWeiStr renders a wei-scale amount with an underscore 18 digits from
// the right for easier reading.
func ToWeiStr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	s := v.String()
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	if len(digits) <= 18 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	out := digits[:len(digits)-18] + "_" + digits[len(digits)-18:]
	if neg {
		return "-" + out
	}
	return out
}
