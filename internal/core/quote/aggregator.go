// Package quote 实现单个资产的跨交易所报价聚合。
// 并发向每个上架交易所请求买一/卖一，全部成功后归约为最优报价。
package quote

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
)

// ErrNoQuotes 没有任何报价可供归约
var ErrNoQuotes = errors.New("没有可归约的报价")

// Aggregator 报价聚合器
// 全局信号量限制所有资产共享的在途交易所请求数
type Aggregator struct {
	sem *semaphore.Weighted
}

// NewAggregator 创建报价聚合器
// 参数 maxInFlight: 全局在途请求上限
func NewAggregator(maxInFlight int) *Aggregator {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Aggregator{sem: semaphore.NewWeighted(int64(maxInFlight))}
}

// BestAcross 获取资产在所有给定交易所上的最优报价
// 任一交易所失败则整个资产失败（不返回部分结果），首个失败会取消其余请求
// 参数 ctx: 上下文
// 参数 asset: 资产
// 参数 venues: 上架该资产的交易所（顺序决定并列时的归属）
// 返回: 最优报价，或包含失败交易所的错误
func (a *Aggregator) BestAcross(ctx context.Context, asset model.AssetID, venues []exchange.Venue) (model.BestQuote, error) {
	if len(venues) == 0 {
		return model.BestQuote{}, fmt.Errorf("%s: %w", asset, ErrNoQuotes)
	}

	// 每个任务只写自己的下标，互不共享
	quotes := make([]model.Quote, len(venues))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range venues {
		i, v := i, v
		g.Go(func() error {
			if err := a.sem.Acquire(gctx, 1); err != nil {
				return fmt.Errorf("%s %s: 等待请求配额: %w", asset, v.ID(), err)
			}
			defer a.sem.Release(1)

			q, err := v.BestBidAsk(gctx, asset)
			if err != nil {
				return fmt.Errorf("%s: %w", asset, err)
			}
			q.Venue = v.ID()
			if err := q.Validate(); err != nil {
				return fmt.Errorf("%s: %w: %w", asset, exchange.ErrInvalidQuoteData, err)
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.BestQuote{}, err
	}

	return Reduce(asset, quotes)
}

// Reduce 将多个报价归约为最优报价
// 最高买价与最低卖价分别选取；价格相同时保留顺序在前的交易所
// 参数 asset: 资产
// 参数 quotes: 各交易所报价（按配置顺序）
func Reduce(asset model.AssetID, quotes []model.Quote) (model.BestQuote, error) {
	if len(quotes) == 0 {
		return model.BestQuote{}, fmt.Errorf("%s: %w", asset, ErrNoQuotes)
	}

	first := quotes[0]
	best := model.BestQuote{
		Asset:        asset,
		BestBid:      first.Bid,
		BestBidVenue: first.Venue,
		BestAsk:      first.Ask,
		BestAskVenue: first.Venue,
	}
	for _, q := range quotes[1:] {
		if q.Bid.GreaterThan(best.BestBid) {
			best.BestBid = q.Bid
			best.BestBidVenue = q.Venue
		}
		if q.Ask.LessThan(best.BestAsk) {
			best.BestAsk = q.Ask
			best.BestAskVenue = q.Venue
		}
	}
	return best, nil
}
