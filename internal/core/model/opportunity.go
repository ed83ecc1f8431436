package model

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity 套利机会记录
// 下游（存储/通知）按 JSON 形状消费
type Opportunity struct {
	// Asset 资产
	Asset AssetID
	// ProfitPct 理论收益率（百分比）
	ProfitPct decimal.Decimal
	// BestBid 最高买价
	BestBid decimal.Decimal
	// BestBidVenue 最高买价来源（卖出方）
	BestBidVenue VenueID
	// BestAsk 最低卖价
	BestAsk decimal.Decimal
	// BestAskVenue 最低卖价来源（买入方）
	BestAskVenue VenueID
}

type opportunityJSON struct {
	Asset        string  `json:"asset"`
	ProfitPct    float64 `json:"profitPct"`
	BestBid      float64 `json:"bestBid"`
	BestBidVenue string  `json:"bestBidVenue"`
	BestAsk      float64 `json:"bestAsk"`
	BestAskVenue string  `json:"bestAskVenue"`
}

// MarshalJSON 以数值（而非字符串）输出价格与收益率
func (o Opportunity) MarshalJSON() ([]byte, error) {
	return json.Marshal(opportunityJSON{
		Asset:        string(o.Asset),
		ProfitPct:    o.ProfitPct.InexactFloat64(),
		BestBid:      o.BestBid.InexactFloat64(),
		BestBidVenue: string(o.BestBidVenue),
		BestAsk:      o.BestAsk.InexactFloat64(),
		BestAskVenue: string(o.BestAskVenue),
	})
}

// UnmarshalJSON 解析 MarshalJSON 输出的形状
func (o *Opportunity) UnmarshalJSON(data []byte) error {
	var v opportunityJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Opportunity{
		Asset:        AssetID(v.Asset),
		ProfitPct:    decimal.NewFromFloat(v.ProfitPct),
		BestBid:      decimal.NewFromFloat(v.BestBid),
		BestBidVenue: VenueID(v.BestBidVenue),
		BestAsk:      decimal.NewFromFloat(v.BestAsk),
		BestAskVenue: VenueID(v.BestAskVenue),
	}
	return nil
}

// ScanReport 单次扫描结果
// 成功时包含排序后的机会列表（可能为空）；失败时只包含错误描述，不混合部分结果
type ScanReport struct {
	// ScanID 扫描唯一标识
	ScanID string `json:"scan_id"`
	// StartedAt 扫描开始时间
	StartedAt time.Time `json:"started_at"`
	// DurationMs 扫描耗时（毫秒）
	DurationMs int64 `json:"duration_ms"`
	// Status 状态码：200 成功，500 失败
	Status int `json:"status"`
	// Error 失败描述
	Error string `json:"error,omitempty"`
	// AssetsScanned 参与扫描的资产数
	AssetsScanned int `json:"assets_scanned"`
	// AssetsDropped 因报价失败被丢弃的资产数
	AssetsDropped int `json:"assets_dropped"`
	// Opportunities 按收益率降序排列的机会列表
	Opportunities []Opportunity `json:"opportunities"`
}

// OK 判断扫描是否成功
func (r *ScanReport) OK() bool {
	return r.Status == http.StatusOK
}

// Fail 将报告标记为失败并清空部分结果
func (r *ScanReport) Fail(err error) {
	r.Status = http.StatusInternalServerError
	r.Error = err.Error()
	r.Opportunities = nil
	r.AssetsScanned = 0
	r.AssetsDropped = 0
}
