package instance

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/services/router"
)

// BuildSolutionDocument assembles the output document from a batch
// result. Legs flip to the AMM's perspective here: the AMM's executed
// sell is what the order received, and vice versa. Orders that failed
// to solve are simply absent.
func BuildSolutionDocument(doc *Document, result *router.BatchResult) *SolutionDocument {
	out := &SolutionDocument{
		Amms:   make(map[string]*SolutionLegDoc),
		Orders: make(map[string]*SolutionOrderDoc),
	}

	for num, solution := range result.Solutions {
		src := doc.Orders[string(num)]
		if src == nil {
			continue
		}
		out.Orders[string(num)] = &SolutionOrderDoc{
			SellToken:        src.SellToken,
			BuyToken:         src.BuyToken,
			SellAmount:       ToWeiStr(&src.SellAmount.Int),
			BuyAmount:        ToWeiStr(&src.BuyAmount.Int),
			IsSellOrder:      src.IsSellOrder,
			AllowPartialFill: src.AllowPartialFill,
			ExecSellAmount:   ToWeiStr(solution.Order.ExecSellAmount),
			ExecBuyAmount:    ToWeiStr(solution.Order.ExecBuyAmount),
		}

		for label, leg := range solution.Legs {
			out.Amms[label] = &SolutionLegDoc{
				SellToken:      string(leg.BuyToken),
				BuyToken:       string(leg.SellToken),
				ExecSellAmount: ToWeiStr(leg.ExecBuyAmount),
				ExecBuyAmount:  ToWeiStr(leg.ExecSellAmount),
			}
		}
	}
	return out
}

// WriteSolutionFile marshals a solution document to disk, creating the
// destination directory when needed.
func WriteSolutionFile(path string, doc *SolutionDocument) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	data, err := sonic.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal solution: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write solution %s: %w", path, err)
	}
	return nil
}
