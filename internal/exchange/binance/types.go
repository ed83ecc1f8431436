// Package binance 定义 Binance REST 接口的响应类型。
package binance

// ExchangeInfo 交易规则响应
// API: GET /api/v3/exchangeInfo（现货）, GET /fapi/v1/exchangeInfo（U 本位合约）
type ExchangeInfo struct {
	// Timezone 服务器时区
	Timezone string `json:"timezone"`
	// ServerTime 服务器时间
	ServerTime int64 `json:"serverTime"`
	// Symbols 交易对列表
	Symbols []Symbol `json:"symbols"`
}

// Symbol 交易对信息
type Symbol struct {
	// Symbol 交易对，如 BTCUSDT；合约交割品种形如 BTCUSDT_250328
	Symbol string `json:"symbol"`
	// Status 交易对状态: TRADING, BREAK
	Status string `json:"status"`
	// BaseAsset 标的资产，如 BTC
	BaseAsset string `json:"baseAsset"`
	// QuoteAsset 报价资产，如 USDT
	QuoteAsset string `json:"quoteAsset"`
	// ContractType 合约类型（仅合约）: PERPETUAL, CURRENT_QUARTER
	ContractType string `json:"contractType,omitempty"`
	// IsMarginTradingAllowed 是否支持杠杆（仅现货）
	IsMarginTradingAllowed bool `json:"isMarginTradingAllowed,omitempty"`
}

// Depth 订单簿响应
// API: GET /api/v3/depth, GET /fapi/v1/depth
// bids/asks 格式: [[价格, 数量], ...]
type Depth struct {
	// LastUpdateID 更新 ID
	LastUpdateID int64 `json:"lastUpdateId"`
	// Bids 买盘
	Bids [][]string `json:"bids"`
	// Asks 卖盘
	Asks [][]string `json:"asks"`
}
