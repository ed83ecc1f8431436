// Package exchange 定义交易所适配器的能力接口、错误分类与共享 REST 传输层。
// 具体交易所实现位于子包（binance、kucoin、okx），由 venues 包按配置装配。
package exchange

import (
	"context"

	"cross-venue-arbitrage-scanner/internal/core/model"
)

// Venue 交易所适配器
// 每个实现对应一个固定的市场分段，差异仅在于接口路径与响应解析
type Venue interface {
	// ID 交易所标识
	ID() model.VenueID
	// ListSymbols 获取以 USDT 计价的可交易资产集合，每次扫描调用一次
	ListSymbols(ctx context.Context) (model.SymbolSet, error)
	// BestBidAsk 获取资产对 USDT 的买一/卖一价
	BestBidAsk(ctx context.Context, asset model.AssetID) (model.Quote, error)
	// Close 释放底层连接
	Close() error
}
