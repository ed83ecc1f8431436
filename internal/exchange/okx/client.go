// Package okx 实现 OKX 现货的 REST 适配器。
// 产品: GET /api/v5/public/instruments?instType=SPOT
// 深度: GET /api/v5/market/books?sz=1
package okx

import (
	"context"
	"net/url"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
)

// DefaultBaseURL 默认 REST 地址
const DefaultBaseURL = "https://www.okx.com"

const (
	instrumentsPath = "/api/v5/public/instruments"
	booksPath       = "/api/v5/market/books"
	stateLive       = "live"
)

// Client OKX REST 适配器
type Client struct {
	rest *exchange.RESTClient
}

// New 创建 OKX 适配器
func New(rest *exchange.RESTClient) *Client {
	return &Client{rest: rest}
}

// ID 交易所标识
func (c *Client) ID() model.VenueID {
	return model.VenueOKX
}

// ListSymbols 获取 USDT 计价且状态为 live 的资产集合
func (c *Client) ListSymbols(ctx context.Context) (model.SymbolSet, error) {
	q := url.Values{}
	q.Set("instType", "SPOT")

	var resp InstrumentsResponse
	body, err := c.rest.GetJSON(ctx, exchange.OpListSymbols, instrumentsPath, q, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Code != successCode {
		return nil, exchange.SchemaError(model.VenueOKX, exchange.OpListSymbols, body, "业务码错误: code=%s msg=%s", resp.Code, resp.Msg)
	}

	set := make(model.SymbolSet, len(resp.Data))
	for _, inst := range resp.Data {
		if inst.QuoteCcy != model.QuoteCurrency || inst.State != stateLive {
			continue
		}
		set.Add(model.NewAssetID(inst.BaseCcy))
	}
	return set, nil
}

// BestBidAsk 获取买一/卖一价
func (c *Client) BestBidAsk(ctx context.Context, asset model.AssetID) (model.Quote, error) {
	q := url.Values{}
	q.Set("instId", string(asset)+"-"+model.QuoteCurrency)
	q.Set("sz", "1")

	var resp BooksResponse
	body, err := c.rest.GetJSON(ctx, exchange.OpBestBidAsk, booksPath, q, &resp)
	if err != nil {
		return model.Quote{}, err
	}
	if resp.Code != successCode || len(resp.Data) == 0 {
		return model.Quote{}, exchange.SchemaError(model.VenueOKX, exchange.OpBestBidAsk, body, "业务码错误: code=%s msg=%s", resp.Code, resp.Msg)
	}
	return exchange.QuoteFromLevels(model.VenueOKX, resp.Data[0].Bids, resp.Data[0].Asks)
}

// Close 释放连接
func (c *Client) Close() error {
	return c.rest.Close()
}
