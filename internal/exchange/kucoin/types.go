// Package kucoin 定义 KuCoin REST 接口的响应类型。
package kucoin

// successCode 业务成功码
const successCode = "200000"

// SymbolsResponse 交易对列表响应
// API: GET /api/v1/symbols
type SymbolsResponse struct {
	Code string   `json:"code"`
	Msg  string   `json:"msg,omitempty"`
	Data []Symbol `json:"data"`
}

// Symbol 交易对信息
type Symbol struct {
	// Symbol 交易对，如 BTC-USDT
	Symbol string `json:"symbol"`
	// Name 交易对名称，通常与 Symbol 相同
	Name string `json:"name"`
	// BaseCurrency 标的币种
	BaseCurrency string `json:"baseCurrency"`
	// QuoteCurrency 计价币种
	QuoteCurrency string `json:"quoteCurrency"`
	// EnableTrading 是否可交易，缺省视为可交易
	EnableTrading *bool `json:"enableTrading,omitempty"`
}

// OrderBookResponse 订单簿响应
// API: GET /api/v1/market/orderbook/level2_20?symbol=BTC-USDT
type OrderBookResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg,omitempty"`
	Data *OrderBook `json:"data"`
}

// OrderBook 订单簿数据
// bids/asks 格式: [[价格, 数量], ...]
type OrderBook struct {
	Time     int64      `json:"time"`
	Sequence string     `json:"sequence"`
	Bids     [][]string `json:"bids"`
	Asks     [][]string `json:"asks"`
}
