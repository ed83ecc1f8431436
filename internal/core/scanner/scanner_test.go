// Package scanner 套利扫描测试
package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
	"cross-venue-arbitrage-scanner/internal/universe"
)

// mockVenue 可编程的交易所替身
type mockVenue struct {
	id       model.VenueID
	assets   []model.AssetID
	listErr  error
	quotes   map[model.AssetID][2]string
	quoteErr map[model.AssetID]error
	delay    time.Duration

	inFlight *atomic.Int64
	peak     *atomic.Int64
}

func (m *mockVenue) ID() model.VenueID { return m.id }

func (m *mockVenue) ListSymbols(ctx context.Context) (model.SymbolSet, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return model.NewSymbolSet(m.assets...), nil
}

func (m *mockVenue) BestBidAsk(ctx context.Context, asset model.AssetID) (model.Quote, error) {
	if m.inFlight != nil {
		n := m.inFlight.Add(1)
		defer m.inFlight.Add(-1)
		for {
			p := m.peak.Load()
			if n <= p || m.peak.CompareAndSwap(p, n) {
				break
			}
		}
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return model.Quote{}, ctx.Err()
		}
	}
	if err := m.quoteErr[asset]; err != nil {
		return model.Quote{}, err
	}
	q, ok := m.quotes[asset]
	if !ok {
		return model.Quote{}, exchange.ErrQuoteUnavailable
	}
	return model.Quote{
		Venue: m.id,
		Bid:   decimal.RequireFromString(q[0]),
		Ask:   decimal.RequireFromString(q[1]),
	}, nil
}

func (m *mockVenue) Close() error { return nil }

// scenarioVenues X 上架 {BTC, ETH, XRP}，Y 上架 {BTC, ETH, LTC}
func scenarioVenues() (*mockVenue, *mockVenue) {
	x := &mockVenue{
		id:     model.VenueBinance,
		assets: []model.AssetID{"BTC", "ETH", "XRP"},
		quotes: map[model.AssetID][2]string{
			"BTC": {"100", "101"},
			"ETH": {"2000", "2001"},
			"XRP": {"1", "2"},
		},
	}
	y := &mockVenue{
		id:     model.VenueOKX,
		assets: []model.AssetID{"BTC", "ETH", "LTC"},
		quotes: map[model.AssetID][2]string{
			"BTC": {"102", "99"},
			"ETH": {"2000.5", "2002"},
			"LTC": {"80", "81"},
		},
	}
	return x, y
}

func threshold(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestScan_Scenario(t *testing.T) {
	x, y := scenarioVenues()
	s := New([]exchange.Venue{x, y}, Options{AssetWorkers: 2, MaxInFlight: 4}, nil)

	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.AssetsScanned != 2 || res.AssetsDropped != 0 {
		t.Fatalf("scanned=%d dropped=%d", res.AssetsScanned, res.AssetsDropped)
	}
	if len(res.Opportunities) != 2 {
		t.Fatalf("opportunities=%d, want 2", len(res.Opportunities))
	}

	btc := res.Opportunities[0]
	if btc.Asset != "BTC" {
		t.Fatalf("第一条应为 BTC，实际 %s", btc.Asset)
	}
	if !btc.BestBid.Equal(decimal.NewFromInt(102)) || btc.BestBidVenue != model.VenueOKX {
		t.Errorf("bestBid=%s@%s", btc.BestBid, btc.BestBidVenue)
	}
	if !btc.BestAsk.Equal(decimal.NewFromInt(99)) || btc.BestAskVenue != model.VenueOKX {
		t.Errorf("bestAsk=%s@%s", btc.BestAsk, btc.BestAskVenue)
	}
	if !btc.ProfitPct.Round(4).Equal(decimal.RequireFromString("3.0303")) {
		t.Errorf("profitPct=%s, want ≈3.0303", btc.ProfitPct)
	}
}

func TestScan_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold *decimal.Decimal
		wantBTC   bool
	}{
		{name: "阈值 2 保留", threshold: threshold("2.0"), wantBTC: true},
		{name: "阈值 5 丢弃", threshold: threshold("5.0"), wantBTC: false},
		{name: "无阈值保留", threshold: nil, wantBTC: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := scenarioVenues()
			s := New([]exchange.Venue{x, y}, Options{AssetWorkers: 2, MaxInFlight: 4, Threshold: tt.threshold}, nil)

			res, err := s.Scan(context.Background())
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			found := false
			for _, o := range res.Opportunities {
				if o.Asset == "BTC" {
					found = true
				}
				if tt.threshold != nil && o.ProfitPct.LessThan(*tt.threshold) {
					t.Errorf("%s profitPct=%s 低于阈值", o.Asset, o.ProfitPct)
				}
			}
			if found != tt.wantBTC {
				t.Fatalf("BTC 存在=%v, want %v", found, tt.wantBTC)
			}
		})
	}
}

func TestScan_AssetFailureIsDropped(t *testing.T) {
	x, y := scenarioVenues()
	y.quoteErr = map[model.AssetID]error{"ETH": exchange.ErrQuoteUnavailable}

	s := New([]exchange.Venue{x, y}, Options{AssetWorkers: 2, MaxInFlight: 4}, nil)
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("单个资产失败不应导致扫描失败: %v", err)
	}
	if res.AssetsDropped != 1 {
		t.Errorf("dropped=%d, want 1", res.AssetsDropped)
	}
	if len(res.Opportunities) != 1 || res.Opportunities[0].Asset != "BTC" {
		t.Fatalf("opportunities=%+v, want 仅 BTC", res.Opportunities)
	}
	if !res.Opportunities[0].ProfitPct.Round(4).Equal(decimal.RequireFromString("3.0303")) {
		t.Errorf("BTC 记录不应受影响: %s", res.Opportunities[0].ProfitPct)
	}
}

func TestScan_UniverseFailClosed(t *testing.T) {
	x, y := scenarioVenues()
	y.listErr = exchange.ErrVenueUnavailable

	s := New([]exchange.Venue{x, y}, Options{AssetWorkers: 2, MaxInFlight: 4}, nil)
	res, err := s.Scan(context.Background())
	if res != nil {
		t.Fatal("全集构建失败时不应返回部分结果")
	}
	if !errors.Is(err, universe.ErrUniverseBuildFailed) {
		t.Fatalf("err=%v, want ErrUniverseBuildFailed", err)
	}
}

func TestScan_EmptyUniverse(t *testing.T) {
	x := &mockVenue{id: model.VenueBinance, assets: []model.AssetID{"XRP"}}
	y := &mockVenue{id: model.VenueOKX, assets: []model.AssetID{"LTC"}}

	res, err := New([]exchange.Venue{x, y}, Options{AssetWorkers: 1, MaxInFlight: 1}, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Opportunities == nil || len(res.Opportunities) != 0 {
		t.Fatalf("opportunities=%v, want 非 nil 空列表", res.Opportunities)
	}
}

func TestScan_VenueScoping(t *testing.T) {
	// kucoin 未上架 BTC，不应被请求 BTC 报价
	x, y := scenarioVenues()
	z := &mockVenue{
		id:       model.VenueKucoin,
		assets:   []model.AssetID{"ETH"},
		quotes:   map[model.AssetID][2]string{"ETH": {"2001", "2003"}},
		quoteErr: map[model.AssetID]error{"BTC": errors.New("不应被调用")},
	}

	res, err := New([]exchange.Venue{x, y, z}, Options{AssetWorkers: 2, MaxInFlight: 4}, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.AssetsDropped != 0 || len(res.Opportunities) != 2 {
		t.Fatalf("dropped=%d opportunities=%d", res.AssetsDropped, len(res.Opportunities))
	}
	for _, o := range res.Opportunities {
		if o.Asset == "ETH" && o.BestBidVenue != model.VenueKucoin {
			t.Errorf("ETH bestBidVenue=%s, want kucoin", o.BestBidVenue)
		}
	}
}

func TestScan_MaxInFlightBound(t *testing.T) {
	var inFlight, peak atomic.Int64

	assets := []model.AssetID{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10"}
	quotes := make(map[model.AssetID][2]string, len(assets))
	for _, a := range assets {
		quotes[a] = [2]string{"1", "2"}
	}
	newVenue := func(id model.VenueID) *mockVenue {
		return &mockVenue{
			id:       id,
			assets:   assets,
			quotes:   quotes,
			delay:    5 * time.Millisecond,
			inFlight: &inFlight,
			peak:     &peak,
		}
	}
	venues := []exchange.Venue{newVenue(model.VenueBinance), newVenue(model.VenueKucoin), newVenue(model.VenueOKX)}

	const maxInFlight = 3
	res, err := New(venues, Options{AssetWorkers: 8, MaxInFlight: maxInFlight}, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Opportunities) != len(assets) {
		t.Fatalf("opportunities=%d, want %d", len(res.Opportunities), len(assets))
	}
	if p := peak.Load(); p > maxInFlight || p == 0 {
		t.Fatalf("peak in-flight=%d, want 1..%d", p, maxInFlight)
	}
}

func TestScan_Cancelled(t *testing.T) {
	x, y := scenarioVenues()
	x.delay = time.Second
	y.delay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := New([]exchange.Venue{x, y}, Options{AssetWorkers: 2, MaxInFlight: 4}, nil).Scan(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestRun_Report(t *testing.T) {
	x, y := scenarioVenues()
	report := New([]exchange.Venue{x, y}, Options{AssetWorkers: 2, MaxInFlight: 4, Threshold: threshold("2")}, nil).Run(context.Background())

	if !report.OK() || report.Status != http.StatusOK {
		t.Fatalf("status=%d error=%s", report.Status, report.Error)
	}
	if report.ScanID == "" || report.StartedAt.IsZero() {
		t.Fatal("报告缺少 scan_id 或 started_at")
	}
	if len(report.Opportunities) != 1 || report.Opportunities[0].Asset != "BTC" {
		t.Fatalf("opportunities=%+v", report.Opportunities)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	opps := decoded["opportunities"].([]any)
	rec := opps[0].(map[string]any)
	if rec["bestBidVenue"] != "okx" || rec["bestBid"].(float64) != 102 {
		t.Fatalf("record=%v", rec)
	}
}

func TestRun_FailureReport(t *testing.T) {
	x, y := scenarioVenues()
	x.listErr = exchange.ErrVenueUnavailable

	report := New([]exchange.Venue{x, y}, Options{AssetWorkers: 1, MaxInFlight: 1}, nil).Run(context.Background())
	if report.OK() || report.Status != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", report.Status)
	}
	if report.Error == "" || report.Opportunities != nil {
		t.Fatalf("失败报告只包含错误描述: %+v", report)
	}
}

// TestFilterAndSort 测试过滤与排序
// 属性: 输出全部满足阈值、无遗漏，且收益率非递增
func TestFilterAndSort(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("阈值过滤完整且结果降序", prop.ForAll(
		func(profits []int64, th int64) bool {
			opps := make([]model.Opportunity, len(profits))
			for i, p := range profits {
				opps[i] = model.Opportunity{Asset: model.AssetID(string(rune('A' + i%26))), ProfitPct: decimal.New(p, -2)}
			}
			thr := decimal.New(th, -2)

			expected := 0
			for _, p := range profits {
				if p >= th {
					expected++
				}
			}

			out := SortByProfit(Filter(opps, &thr))
			if len(out) != expected {
				return false
			}
			for i, o := range out {
				if o.ProfitPct.LessThan(thr) {
					return false
				}
				if i > 0 && out[i-1].ProfitPct.LessThan(o.ProfitPct) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-1000, 1000)),
		gen.Int64Range(-500, 500),
	))

	properties.TestingRun(t)
}
