// Package latency 统计交易所 REST 调用的耗时与失败情况。
// 每个交易所维护独立的滚动窗口，输出 P50/P90/P99 与调用/失败计数。
package latency

import (
	"slices"
	"sync"
	"time"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
)

// VenueStats 单个交易所的调用统计快照（滚动窗口）
// 耗时单位：毫秒。
type VenueStats struct {
	// Venue 交易所
	Venue model.VenueID `json:"venue"`
	// Calls 调用次数（累计，含重试）
	Calls int64 `json:"calls"`
	// Errors 失败次数（累计）
	Errors int64 `json:"errors"`
	// ListCalls 交易对列表调用次数
	ListCalls int64 `json:"list_calls"`
	// QuoteCalls 报价调用次数
	QuoteCalls int64 `json:"quote_calls"`

	// P50Ms 调用耗时 P50（毫秒）
	P50Ms float64 `json:"p50_ms"`
	// P90Ms 调用耗时 P90（毫秒）
	P90Ms float64 `json:"p90_ms"`
	// P99Ms 调用耗时 P99（毫秒）
	P99Ms float64 `json:"p99_ms"`
}

// ErrorRate 失败率
func (s VenueStats) ErrorRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Calls)
}

type rollingWindow struct {
	size int
	buf  []int64
	pos  int
	full bool
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{size: size, buf: make([]int64, 0, size)}
}

func (w *rollingWindow) add(v int64) {
	if w.size <= 0 {
		return
	}
	if !w.full {
		w.buf = append(w.buf, v)
		if len(w.buf) == w.size {
			w.full = true
			w.pos = 0
		}
		return
	}

	w.buf[w.pos] = v
	w.pos++
	if w.pos >= w.size {
		w.pos = 0
	}
}

// quantiles 返回窗口内的分位数，窗口为空时全为 0
func (w *rollingWindow) quantiles(qs ...float64) []int64 {
	values := make([]int64, len(qs))
	if len(w.buf) == 0 {
		return values
	}

	tmp := slices.Clone(w.buf)
	slices.Sort(tmp)

	n := len(tmp)
	for i, q := range qs {
		idx := int(float64(n-1) * q)
		values[i] = tmp[max(0, min(idx, n-1))]
	}
	return values
}

type venueTracker struct {
	window     *rollingWindow
	calls      int64
	errors     int64
	listCalls  int64
	quoteCalls int64
}

// Tracker 调用耗时追踪器
// 并发安全，实现 exchange.Recorder。
type Tracker struct {
	windowSize int

	mu     sync.Mutex
	order  []model.VenueID
	venues map[model.VenueID]*venueTracker
}

// NewTracker 创建追踪器
// 参数 windowSize: 每个交易所的滚动窗口大小（建议 10000）
func NewTracker(windowSize int) *Tracker {
	if windowSize <= 0 {
		windowSize = 10000
	}
	return &Tracker{
		windowSize: windowSize,
		venues:     make(map[model.VenueID]*venueTracker),
	}
}

// Observe 记录一次调用
func (t *Tracker) Observe(venue model.VenueID, op exchange.Op, d time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	vt, ok := t.venues[venue]
	if !ok {
		vt = &venueTracker{window: newRollingWindow(t.windowSize)}
		t.venues[venue] = vt
		t.order = append(t.order, venue)
	}

	vt.calls++
	switch op {
	case exchange.OpListSymbols:
		vt.listCalls++
	case exchange.OpBestBidAsk:
		vt.quoteCalls++
	}
	if err != nil {
		vt.errors++
	}
	vt.window.add(d.Nanoseconds())
}

// Stats 获取指定交易所的统计快照
func (t *Tracker) Stats(venue model.VenueID) VenueStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	vt, ok := t.venues[venue]
	if !ok {
		return VenueStats{Venue: venue}
	}
	return vt.stats(venue)
}

// Snapshot 获取所有交易所的统计快照（按首次出现顺序）
func (t *Tracker) Snapshot() []VenueStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]VenueStats, 0, len(t.order))
	for _, v := range t.order {
		out = append(out, t.venues[v].stats(v))
	}
	return out
}

func (vt *venueTracker) stats(venue model.VenueID) VenueStats {
	qs := vt.window.quantiles(0.50, 0.90, 0.99)
	return VenueStats{
		Venue:      venue,
		Calls:      vt.calls,
		Errors:     vt.errors,
		ListCalls:  vt.listCalls,
		QuoteCalls: vt.quoteCalls,
		P50Ms:      float64(qs[0]) / 1_000_000.0,
		P90Ms:      float64(qs[1]) / 1_000_000.0,
		P99Ms:      float64(qs[2]) / 1_000_000.0,
	}
}
