// Package universe 负责构建跨交易所资产全集。
// 每次扫描从各交易所拉取交易对列表，只保留至少两个交易所都上架的资产。
package universe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
)

// ErrUniverseBuildFailed 任一交易所的交易对列表获取失败（失败即终止）
var ErrUniverseBuildFailed = errors.New("构建资产全集失败")

// MinVenues 资产进入全集所需的最少上架交易所数
const MinVenues = 2

// Universe 本次扫描的资产全集
// 记录每个资产由哪些交易所上架，报价聚合只查询这些交易所
type Universe struct {
	assets  []model.AssetID
	listing map[model.AssetID][]model.VenueID
}

// Assets 返回按字典序排序的资产列表
func (u *Universe) Assets() []model.AssetID {
	return u.assets
}

// Len 资产数量
func (u *Universe) Len() int {
	return len(u.assets)
}

// Venues 返回上架该资产的交易所（保持配置顺序）
func (u *Universe) Venues(asset model.AssetID) []model.VenueID {
	return u.listing[asset]
}

// Contains 判断资产是否在全集内
func (u *Universe) Contains(asset model.AssetID) bool {
	_, ok := u.listing[asset]
	return ok
}

// Build 并发获取各交易所的交易对列表并求出资产全集
// 参数 ctx: 上下文
// 参数 venues: 启用的交易所（顺序即配置顺序）
// 参数 logger: 日志记录器
// 返回: 资产全集；任一交易所失败时返回包装了 ErrUniverseBuildFailed 的错误
func Build(ctx context.Context, venues []exchange.Venue, logger *zap.Logger) (*Universe, error) {
	sets := make([]model.SymbolSet, len(venues))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range venues {
		i, v := i, v
		g.Go(func() error {
			set, err := v.ListSymbols(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", v.ID(), err)
			}
			sets[i] = set
			logger.Debug("交易对列表获取成功",
				zap.String("venue", v.ID().String()),
				zap.Int("assets", len(set)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUniverseBuildFailed, err)
	}

	ids := make([]model.VenueID, len(venues))
	for i, v := range venues {
		ids[i] = v.ID()
	}
	u := FromSymbolSets(ids, sets)

	logger.Info("资产全集构建完成",
		zap.Int("venues", len(venues)),
		zap.Int("assets", u.Len()))
	return u, nil
}

// FromSymbolSets 由各交易所的资产集合求全集
// 参数 ids: 交易所标识，与 sets 一一对应
// 参数 sets: 各交易所的资产集合
// 返回: 至少出现在 MinVenues 个集合中的资产
func FromSymbolSets(ids []model.VenueID, sets []model.SymbolSet) *Universe {
	listing := make(map[model.AssetID][]model.VenueID)
	for i, set := range sets {
		for asset := range set {
			listing[asset] = append(listing[asset], ids[i])
		}
	}

	included := make(model.SymbolSet, len(listing))
	for asset, vs := range listing {
		if len(vs) < MinVenues {
			delete(listing, asset)
			continue
		}
		included.Add(asset)
	}

	return &Universe{
		assets:  included.Sorted(),
		listing: listing,
	}
}
