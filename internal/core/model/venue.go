// Package model 定义扫描器中使用的核心数据结构。
// 包含交易所标识、资产标识、报价、最优报价与套利机会等类型。
package model

import (
	"sort"
	"strings"
)

// VenueID 交易所（市场分段）标识
// 同一交易所的现货与合约视为不同的 Venue
type VenueID string

// 已支持的 Venue 集合（封闭集合）
const (
	// VenueBinance Binance 现货
	VenueBinance VenueID = "binance"
	// VenueBinanceFutures Binance U 本位合约
	VenueBinanceFutures VenueID = "binance_futures"
	// VenueKucoin KuCoin 现货
	VenueKucoin VenueID = "kucoin"
	// VenueOKX OKX 现货
	VenueOKX VenueID = "okx"
)

// QuoteCurrency 固定计价币种（USD 锚定稳定币）
const QuoteCurrency = "USDT"

// AllVenues 返回全部已支持的 Venue（固定顺序）
func AllVenues() []VenueID {
	return []VenueID{VenueBinance, VenueBinanceFutures, VenueKucoin, VenueOKX}
}

// IsKnown 判断是否为已支持的 Venue
func (v VenueID) IsKnown() bool {
	switch v {
	case VenueBinance, VenueBinanceFutures, VenueKucoin, VenueOKX:
		return true
	}
	return false
}

func (v VenueID) String() string {
	return string(v)
}

// AssetID 标准化的基础资产代码，如 BTC
// 与交易所无关，统一为大写
type AssetID string

// NewAssetID 将原始代码标准化为 AssetID
func NewAssetID(s string) AssetID {
	return AssetID(strings.ToUpper(strings.TrimSpace(s)))
}

// SymbolSet 单个 Venue 以 USDT 计价可交易的资产集合
// 每次扫描重新构建，不跨扫描缓存
type SymbolSet map[AssetID]struct{}

// NewSymbolSet 由资产列表创建集合，空字符串被忽略
func NewSymbolSet(assets ...AssetID) SymbolSet {
	s := make(SymbolSet, len(assets))
	for _, a := range assets {
		s.Add(a)
	}
	return s
}

// Add 添加资产
func (s SymbolSet) Add(a AssetID) {
	if a == "" {
		return
	}
	s[a] = struct{}{}
}

// Contains 判断是否包含资产
func (s SymbolSet) Contains(a AssetID) bool {
	_, ok := s[a]
	return ok
}

// Sorted 返回按字典序排序的资产列表
func (s SymbolSet) Sorted() []AssetID {
	out := make([]AssetID, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
