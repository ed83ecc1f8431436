// Package binance 实现 Binance 现货与 U 本位合约的 REST 适配器。
// 现货: GET /api/v3/exchangeInfo, GET /api/v3/depth?limit=1
// 合约: GET /fapi/v1/exchangeInfo, GET /fapi/v1/depth?limit=5（合约最小深度为 5）
package binance

import (
	"context"
	"net/url"
	"strconv"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
)

// 默认 REST 地址
const (
	DefaultSpotBaseURL    = "https://data.binance.com"
	DefaultFuturesBaseURL = "https://fapi.binance.com"
)

// market 市场分段差异
type market struct {
	id         model.VenueID
	infoPath   string
	depthPath  string
	depthLimit int
	normalize  func(*Symbol) (model.AssetID, bool)
}

var (
	spotMarket = market{
		id:         model.VenueBinance,
		infoPath:   "/api/v3/exchangeInfo",
		depthPath:  "/api/v3/depth",
		depthLimit: 1,
		normalize:  spotAsset,
	}
	futuresMarket = market{
		id:         model.VenueBinanceFutures,
		infoPath:   "/fapi/v1/exchangeInfo",
		depthPath:  "/fapi/v1/depth",
		depthLimit: 5,
		normalize:  futuresAsset,
	}
)

// Client Binance REST 适配器
type Client struct {
	market market
	rest   *exchange.RESTClient
}

// NewSpot 创建 Binance 现货适配器
// 参数 rest: 以 VenueBinance 创建的 REST 客户端
func NewSpot(rest *exchange.RESTClient) *Client {
	return &Client{market: spotMarket, rest: rest}
}

// NewFutures 创建 Binance U 本位合约适配器
// 参数 rest: 以 VenueBinanceFutures 创建的 REST 客户端
func NewFutures(rest *exchange.RESTClient) *Client {
	return &Client{market: futuresMarket, rest: rest}
}

// ID 交易所标识
func (c *Client) ID() model.VenueID {
	return c.market.id
}

// ListSymbols 获取 USDT 计价的资产集合
func (c *Client) ListSymbols(ctx context.Context) (model.SymbolSet, error) {
	var info ExchangeInfo
	body, err := c.rest.GetJSON(ctx, exchange.OpListSymbols, c.market.infoPath, nil, &info)
	if err != nil {
		return nil, err
	}
	if info.Symbols == nil {
		return nil, exchange.SchemaError(c.market.id, exchange.OpListSymbols, body, "响应缺少 symbols 字段")
	}

	set := make(model.SymbolSet, len(info.Symbols))
	for i := range info.Symbols {
		if asset, ok := c.market.normalize(&info.Symbols[i]); ok {
			set.Add(asset)
		}
	}
	return set, nil
}

// BestBidAsk 获取买一/卖一价
func (c *Client) BestBidAsk(ctx context.Context, asset model.AssetID) (model.Quote, error) {
	q := url.Values{}
	q.Set("symbol", pairSymbol(asset))
	q.Set("limit", strconv.Itoa(c.market.depthLimit))

	var depth Depth
	if _, err := c.rest.GetJSON(ctx, exchange.OpBestBidAsk, c.market.depthPath, q, &depth); err != nil {
		return model.Quote{}, err
	}
	return exchange.QuoteFromLevels(c.market.id, depth.Bids, depth.Asks)
}

// Close 释放连接
func (c *Client) Close() error {
	return c.rest.Close()
}
