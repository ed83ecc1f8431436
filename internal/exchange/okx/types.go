// Package okx 定义 OKX REST 接口的响应类型。
package okx

// successCode 业务成功码
const successCode = "0"

// InstrumentsResponse 产品列表响应
// API: GET /api/v5/public/instruments?instType=SPOT
type InstrumentsResponse struct {
	Code string       `json:"code"`
	Msg  string       `json:"msg"`
	Data []Instrument `json:"data"`
}

// Instrument 产品信息
type Instrument struct {
	// InstType 产品类型: SPOT
	InstType string `json:"instType"`
	// InstId 产品 ID，如 BTC-USDT
	InstId string `json:"instId"`
	// BaseCcy 交易货币
	BaseCcy string `json:"baseCcy"`
	// QuoteCcy 计价货币
	QuoteCcy string `json:"quoteCcy"`
	// State 产品状态: live, suspend, preopen
	State string `json:"state"`
}

// BooksResponse 订单簿响应
// API: GET /api/v5/market/books?instId=BTC-USDT&sz=1
type BooksResponse struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data []BooksData `json:"data"`
}

// BooksData 深度数据
// bids/asks 格式: [[价格, 数量, 废弃, 订单数], ...]
type BooksData struct {
	// Bids 买盘深度
	Bids [][]string `json:"bids"`
	// Asks 卖盘深度
	Asks [][]string `json:"asks"`
	// Ts 交易所时间戳（毫秒字符串）
	Ts string `json:"ts"`
}
