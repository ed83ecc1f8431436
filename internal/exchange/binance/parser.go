// Package binance 实现 Binance 交易对标准化规则。
package binance

import (
	"strings"

	"cross-venue-arbitrage-scanner/internal/core/model"
)

// leveragedSuffixes 现货杠杆代币后缀（如 BTCUP、ETHBEAR）
var leveragedSuffixes = []string{"UP", "DOWN", "BEAR", "BULL"}

// spotAsset 现货标准化
// 规则: 报价资产为 USDT、状态可交易（若提供），剔除杠杆代币；资产 = symbol 去掉 USDT 后缀
func spotAsset(s *Symbol) (model.AssetID, bool) {
	if s.QuoteAsset != model.QuoteCurrency {
		return "", false
	}
	if s.Status != "" && s.Status != "TRADING" {
		return "", false
	}
	base := strings.ToUpper(s.BaseAsset)
	for _, suffix := range leveragedSuffixes {
		if strings.HasSuffix(base, suffix) {
			return "", false
		}
	}
	return trimQuote(s.Symbol)
}

// futuresAsset U 本位合约标准化
// 规则: 报价资产为 USDT，剔除带 "_" 的交割合约；资产 = symbol 去掉 USDT 后缀
func futuresAsset(s *Symbol) (model.AssetID, bool) {
	if s.QuoteAsset != model.QuoteCurrency {
		return "", false
	}
	if strings.Contains(s.Symbol, "_") {
		return "", false
	}
	if s.Status != "" && s.Status != "TRADING" {
		return "", false
	}
	return trimQuote(s.Symbol)
}

func trimQuote(symbol string) (model.AssetID, bool) {
	symbol = strings.ToUpper(symbol)
	if !strings.HasSuffix(symbol, model.QuoteCurrency) {
		return "", false
	}
	asset := model.NewAssetID(strings.TrimSuffix(symbol, model.QuoteCurrency))
	return asset, asset != ""
}

// pairSymbol 资产对 USDT 的交易对，如 BTC -> BTCUSDT
func pairSymbol(asset model.AssetID) string {
	return string(asset) + model.QuoteCurrency
}
