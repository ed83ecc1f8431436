package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuote 报价不满足正值约束（ask>0, bid>=0）
var ErrInvalidQuote = errors.New("报价数据无效")

// Quote 单个 Venue 对单个资产的最优买卖价
// 仅在发起请求的那次扫描内有效，不跟踪时效
type Quote struct {
	// Venue 报价来源
	Venue VenueID
	// Bid 买一价（>=0）
	Bid decimal.Decimal
	// Ask 卖一价（>0）
	Ask decimal.Decimal
}

// Validate 检查报价正值约束
func (q Quote) Validate() error {
	if !q.Ask.IsPositive() {
		return fmt.Errorf("%w: %s ask=%s", ErrInvalidQuote, q.Venue, q.Ask)
	}
	if q.Bid.IsNegative() {
		return fmt.Errorf("%w: %s bid=%s", ErrInvalidQuote, q.Venue, q.Bid)
	}
	return nil
}

// BestQuote 单个资产在所有 Venue 上的最优报价归约结果
type BestQuote struct {
	// Asset 资产
	Asset AssetID
	// BestBid 全局最高买价
	BestBid decimal.Decimal
	// BestBidVenue 最高买价来源
	BestBidVenue VenueID
	// BestAsk 全局最低卖价（>0）
	BestAsk decimal.Decimal
	// BestAskVenue 最低卖价来源
	BestAskVenue VenueID
}

// ProfitPct 计算理论收益率（百分比）
// 公式: (BestBid - BestAsk) / BestAsk * 100
func (b BestQuote) ProfitPct() decimal.Decimal {
	if !b.BestAsk.IsPositive() {
		return decimal.Zero
	}
	return b.BestBid.Sub(b.BestAsk).Div(b.BestAsk).Mul(decimal.NewFromInt(100))
}

// Opportunity 将最优报价转换为套利机会记录
func (b BestQuote) Opportunity() Opportunity {
	return Opportunity{
		Asset:        b.Asset,
		ProfitPct:    b.ProfitPct(),
		BestBid:      b.BestBid,
		BestBidVenue: b.BestBidVenue,
		BestAsk:      b.BestAsk,
		BestAskVenue: b.BestAskVenue,
	}
}
