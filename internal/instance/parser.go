package instance

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/domain"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/services/router"
)

// Parse decodes an instance document from raw JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}
	if doc.Orders == nil || doc.Amms == nil {
		return nil, fmt.Errorf("%w: instance needs both orders and amms keys", domain.ErrMalformedInput)
	}
	return &doc, nil
}

// ParseFile loads and decodes an instance document from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instance %s: %w", path, err)
	}
	return Parse(data)
}

// BuildJobs turns an instance into per-order solve jobs. A malformed
// order yields an error entry for that order only; the rest of the
// batch keeps going. Orders iterate in key order so job construction is
// deterministic.
func BuildJobs(doc *Document) ([]router.BatchJob, map[domain.OrderID]error) {
	nums := make([]string, 0, len(doc.Orders))
	for num := range doc.Orders {
		nums = append(nums, num)
	}
	sort.Strings(nums)

	jobs := make([]router.BatchJob, 0, len(nums))
	failed := make(map[domain.OrderID]error)

	for _, num := range nums {
		order, err := toOrder(num, doc.Orders[num])
		if err != nil {
			failed[domain.OrderID(num)] = err
			log.Error().Str("order", num).Err(err).Msg("dropping malformed order")
			continue
		}
		graph, err := buildGraph(order, doc.Amms)
		if err != nil {
			failed[order.OrderNum] = err
			log.Error().Str("order", num).Err(err).Msg("no usable liquidity for order")
			continue
		}
		jobs = append(jobs, router.BatchJob{Order: order, Graph: graph})
	}
	return jobs, failed
}

func toOrder(num string, doc *OrderDoc) (*domain.Order, error) {
	if doc == nil || doc.SellAmount == nil || doc.BuyAmount == nil {
		return nil, fmt.Errorf("%w: order %s is missing amounts", domain.ErrMalformedInput, num)
	}
	order := &domain.Order{
		SellToken:        domain.TokenID(doc.SellToken),
		BuyToken:         domain.TokenID(doc.BuyToken),
		SellAmount:       new(big.Int).Set(&doc.SellAmount.Int),
		BuyAmount:        new(big.Int).Set(&doc.BuyAmount.Int),
		IsSellOrder:      doc.IsSellOrder,
		AllowPartialFill: doc.AllowPartialFill,
		OrderNum:         domain.OrderID(num),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// buildGraph classifies every pool against the order's token pair:
// a label equal to sell+buy is the direct pool; a label starting with
// the sell token opens a two-hop candidate, one ending with the buy
// token closes it. Anything else has 3+ hops and is skipped as
// unsupported.
func buildGraph(order *domain.Order, amms map[string]*PoolDoc) (*domain.TradeGraph, error) {
	sell := string(order.SellToken)
	buy := string(order.BuyToken)
	graph := &domain.TradeGraph{TwoLegs: make(map[domain.TokenID]domain.PathPools)}
	firstLegs := make(map[domain.TokenID]*domain.Pool)
	secondLegs := make(map[domain.TokenID]*domain.Pool)

	labels := make([]string, 0, len(amms))
	for label := range amms {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		pool := amms[label]
		switch {
		case label == sell+buy:
			p, err := toPool(pool, sell, buy)
			if err != nil {
				log.Warn().Str("pool", label).Err(err).Msg("skipping direct pool")
				continue
			}
			graph.OneLeg = p

		case strings.HasPrefix(label, sell) && !strings.HasSuffix(label, buy):
			mid := strings.TrimPrefix(label, sell)
			p, err := toPool(pool, sell, mid)
			if err != nil {
				log.Warn().Str("pool", label).Err(err).Msg("skipping first-leg pool")
				continue
			}
			firstLegs[domain.TokenID(mid)] = p

		case strings.HasSuffix(label, buy) && !strings.HasPrefix(label, sell):
			mid := strings.TrimSuffix(label, buy)
			p, err := toPool(pool, mid, buy)
			if err != nil {
				log.Warn().Str("pool", label).Err(err).Msg("skipping second-leg pool")
				continue
			}
			secondLegs[domain.TokenID(mid)] = p

		default:
			// e.g. a sell...buy label with two intermediates.
			log.Warn().Str("pool", label).
				Err(router.ErrUnsupportedRouteLength).
				Msg("skipping pool")
		}
	}

	for mid, first := range firstLegs {
		second, ok := secondLegs[mid]
		if !ok {
			log.Warn().Str("mid", string(mid)).Msg("candidate has no second leg, dropping")
			continue
		}
		graph.TwoLegs[mid] = domain.PathPools{FirstLeg: first, SecondLeg: second}
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return graph, nil
}

func toPool(doc *PoolDoc, sellToken, buyToken string) (*domain.Pool, error) {
	if doc == nil || doc.Reserves == nil {
		return nil, domain.ErrMalformedPool
	}
	sellReserve, ok := doc.Reserves[sellToken]
	if !ok {
		return nil, fmt.Errorf("%w: no reserve for %s", domain.ErrMalformedPool, sellToken)
	}
	buyReserve, ok := doc.Reserves[buyToken]
	if !ok {
		return nil, fmt.Errorf("%w: no reserve for %s", domain.ErrMalformedPool, buyToken)
	}
	pool := &domain.Pool{
		SellReserve: new(big.Int).Set(&sellReserve.Int),
		BuyReserve:  new(big.Int).Set(&buyReserve.Int),
	}
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	return pool, nil
}
