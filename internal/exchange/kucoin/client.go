// Package kucoin 实现 KuCoin 现货的 REST 适配器。
// 交易对: GET /api/v1/symbols
// 订单簿: GET /api/v1/market/orderbook/level2_20
package kucoin

import (
	"context"
	"net/url"
	"strings"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
)

// DefaultBaseURL 默认 REST 地址
const DefaultBaseURL = "https://api.kucoin.com"

const (
	symbolsPath   = "/api/v1/symbols"
	orderBookPath = "/api/v1/market/orderbook/level2_20"
)

// Client KuCoin REST 适配器
type Client struct {
	rest *exchange.RESTClient
}

// New 创建 KuCoin 适配器
func New(rest *exchange.RESTClient) *Client {
	return &Client{rest: rest}
}

// ID 交易所标识
func (c *Client) ID() model.VenueID {
	return model.VenueKucoin
}

// ListSymbols 获取 USDT 计价的资产集合
func (c *Client) ListSymbols(ctx context.Context) (model.SymbolSet, error) {
	var resp SymbolsResponse
	body, err := c.rest.GetJSON(ctx, exchange.OpListSymbols, symbolsPath, nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Code != successCode {
		return nil, exchange.SchemaError(model.VenueKucoin, exchange.OpListSymbols, body, "业务码错误: code=%s msg=%s", resp.Code, resp.Msg)
	}

	set := make(model.SymbolSet, len(resp.Data))
	for i := range resp.Data {
		if asset, ok := normalize(&resp.Data[i]); ok {
			set.Add(asset)
		}
	}
	return set, nil
}

// normalize 标准化规则
// 名称须包含 "-"，计价币种为 USDT 且可交易；资产 = 名称中 "-" 之前的部分
func normalize(s *Symbol) (model.AssetID, bool) {
	name := s.Name
	if name == "" {
		name = s.Symbol
	}
	base, quote, ok := strings.Cut(name, "-")
	if !ok {
		return "", false
	}
	if s.QuoteCurrency != "" {
		quote = s.QuoteCurrency
	}
	if !strings.EqualFold(quote, model.QuoteCurrency) {
		return "", false
	}
	if s.EnableTrading != nil && !*s.EnableTrading {
		return "", false
	}
	asset := model.NewAssetID(base)
	return asset, asset != ""
}

// BestBidAsk 获取买一/卖一价
func (c *Client) BestBidAsk(ctx context.Context, asset model.AssetID) (model.Quote, error) {
	q := url.Values{}
	q.Set("symbol", string(asset)+"-"+model.QuoteCurrency)

	var resp OrderBookResponse
	body, err := c.rest.GetJSON(ctx, exchange.OpBestBidAsk, orderBookPath, q, &resp)
	if err != nil {
		return model.Quote{}, err
	}
	if resp.Code != successCode || resp.Data == nil {
		return model.Quote{}, exchange.SchemaError(model.VenueKucoin, exchange.OpBestBidAsk, body, "业务码错误: code=%s msg=%s", resp.Code, resp.Msg)
	}
	return exchange.QuoteFromLevels(model.VenueKucoin, resp.Data.Bids, resp.Data.Asks)
}

// Close 释放连接
func (c *Client) Close() error {
	return c.rest.Close()
}
