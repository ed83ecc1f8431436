// Package scanner 实现跨交易所套利扫描。
// 一次扫描: 构建资产全集 -> 按资产并发聚合报价 -> 计算收益率 -> 阈值过滤 -> 按收益率降序排序。
// 两级并发: 资产级 worker 池（asset_workers）内嵌交易所级扇出，全局在途请求受 max_in_flight 约束。
package scanner

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/core/quote"
	"cross-venue-arbitrage-scanner/internal/exchange"
	"cross-venue-arbitrage-scanner/internal/universe"
)

// Options 扫描参数
type Options struct {
	// AssetWorkers 并发处理资产的 worker 数量
	AssetWorkers int
	// MaxInFlight 全局在途交易所请求上限
	MaxInFlight int
	// Threshold 收益率过滤阈值（百分比），为空表示不过滤
	Threshold *decimal.Decimal
}

// Scanner 套利扫描器
// 除交易所连接外不持有跨扫描状态，每次 Scan 独立
type Scanner struct {
	venues  []exchange.Venue
	byID    map[model.VenueID]exchange.Venue
	agg     *quote.Aggregator
	workers int
	opts    Options
	logger  *zap.Logger
}

// New 创建扫描器
// 参数 venues: 启用的交易所（顺序即并列时的优先顺序）
// 参数 opts: 扫描参数
// 参数 logger: 日志记录器
func New(venues []exchange.Venue, opts Options, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.AssetWorkers
	if workers <= 0 {
		workers = 1
	}
	byID := make(map[model.VenueID]exchange.Venue, len(venues))
	for _, v := range venues {
		byID[v.ID()] = v
	}
	return &Scanner{
		venues:  venues,
		byID:    byID,
		agg:     quote.NewAggregator(opts.MaxInFlight),
		workers: workers,
		opts:    opts,
		logger:  logger,
	}
}

// assetResult 单个资产的聚合结果：成功携带最优报价，失败携带原因
type assetResult struct {
	asset model.AssetID
	best  model.BestQuote
	err   error
}

// Result 一次扫描的结果
type Result struct {
	// Opportunities 通过阈值过滤并按收益率降序排列的机会
	Opportunities []model.Opportunity
	// AssetsScanned 资产全集大小
	AssetsScanned int
	// AssetsDropped 因报价失败被丢弃的资产数
	AssetsDropped int
}

// Scan 执行一次扫描
// 参数 ctx: 上下文
// 返回: 扫描结果；仅当资产全集构建失败或上下文取消时返回错误
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	u, err := universe.Build(ctx, s.venues, s.logger)
	if err != nil {
		return nil, err
	}

	results := make([]assetResult, u.Len())

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, asset := range u.Assets() {
		i, asset := i, asset
		g.Go(func() error {
			best, err := s.agg.BestAcross(ctx, asset, s.venuesFor(u.Venues(asset)))
			results[i] = assetResult{asset: asset, best: best, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("扫描被取消: %w", err)
	}

	opps, dropped := s.collect(results)
	return &Result{
		Opportunities: opps,
		AssetsScanned: u.Len(),
		AssetsDropped: dropped,
	}, nil
}

// collect 汇总各资产结果：丢弃失败资产，按阈值过滤并排序
func (s *Scanner) collect(results []assetResult) ([]model.Opportunity, int) {
	opps := make([]model.Opportunity, 0, len(results))
	dropped := 0
	for _, r := range results {
		if r.err != nil {
			dropped++
			s.logger.Debug("资产报价失败，已丢弃",
				zap.String("asset", string(r.asset)),
				zap.Error(r.err))
			continue
		}
		opps = append(opps, r.best.Opportunity())
	}
	return SortByProfit(Filter(opps, s.opts.Threshold)), dropped
}

// venuesFor 将交易所标识映射为适配器（保持全集记录的顺序）
func (s *Scanner) venuesFor(ids []model.VenueID) []exchange.Venue {
	out := make([]exchange.Venue, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Run 执行一次扫描并生成报告
// 失败时报告状态为 500 且只包含错误描述
func (s *Scanner) Run(ctx context.Context) *model.ScanReport {
	started := time.Now()
	report := &model.ScanReport{
		ScanID:    uuid.NewString(),
		StartedAt: started.UTC(),
	}
	logger := s.logger.With(zap.String("scan_id", report.ScanID))

	res, err := s.Scan(ctx)
	report.DurationMs = time.Since(started).Milliseconds()
	if err != nil {
		report.Fail(err)
		logger.Error("扫描失败",
			zap.Int64("duration_ms", report.DurationMs),
			zap.Error(err))
		return report
	}

	report.Status = http.StatusOK
	report.AssetsScanned = res.AssetsScanned
	report.AssetsDropped = res.AssetsDropped
	report.Opportunities = res.Opportunities

	logger.Info("扫描完成",
		zap.Int64("duration_ms", report.DurationMs),
		zap.Int("assets", res.AssetsScanned),
		zap.Int("dropped", res.AssetsDropped),
		zap.Int("opportunities", len(res.Opportunities)))
	return report
}

// Filter 按阈值过滤，保留 profitPct >= threshold 的记录
// threshold 为空时原样返回
func Filter(opps []model.Opportunity, threshold *decimal.Decimal) []model.Opportunity {
	if threshold == nil {
		return opps
	}
	out := opps[:0]
	for _, o := range opps {
		if o.ProfitPct.GreaterThanOrEqual(*threshold) {
			out = append(out, o)
		}
	}
	return out
}

// SortByProfit 按收益率降序排序（稳定排序，收益率相同时保持原顺序）
func SortByProfit(opps []model.Opportunity) []model.Opportunity {
	slices.SortStableFunc(opps, func(a, b model.Opportunity) int {
		return b.ProfitPct.Cmp(a.ProfitPct)
	})
	return opps
}
