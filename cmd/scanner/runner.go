package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"go.uber.org/zap"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/stats/latency"
)

// scanRunner 执行一次扫描并生成报告
type scanRunner interface {
	Run(ctx context.Context) *model.ScanReport
}

// reportFileSink 报告与指标文件输出
type reportFileSink interface {
	WriteReport(r *model.ScanReport) error
	WriteMetrics(scanID string, stats []latency.VenueStats) error
	Flush() error
}

// reportPublisher 报告发布
type reportPublisher interface {
	Publish(ctx context.Context, r *model.ScanReport) error
}

// runner 扫描调度：执行扫描并把报告分发到各输出
type runner struct {
	scanner   scanRunner
	tracker   *latency.Tracker
	sink      reportFileSink
	publisher reportPublisher
	stdout    io.Writer
	logger    *zap.Logger
}

// scanOnce 执行一次扫描并输出
// 返回: 扫描是否成功
func (r *runner) scanOnce(ctx context.Context) bool {
	report := r.scanner.Run(ctx)
	r.emit(ctx, report)
	return report.OK()
}

// loop 按固定间隔扫描，直到上下文取消
// 上一次扫描未完成时不会开始下一次
func (r *runner) loop(ctx context.Context, interval time.Duration) {
	r.logger.Info("周期扫描启动", zap.Duration("interval", interval))

	r.scanOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.scanOnce(ctx)
		}
	}
}

// emit 将报告写入文件、发布到 Redis 并打印到标准输出
// 各输出失败只记录日志，不影响扫描
func (r *runner) emit(ctx context.Context, report *model.ScanReport) {
	if r.sink != nil {
		if err := r.sink.WriteReport(report); err != nil {
			r.logger.Warn("写入扫描报告失败", zap.Error(err))
		}
		if r.tracker != nil {
			if err := r.sink.WriteMetrics(report.ScanID, r.tracker.Snapshot()); err != nil {
				r.logger.Warn("写入调用指标失败", zap.Error(err))
			}
		}
		if err := r.sink.Flush(); err != nil {
			r.logger.Warn("刷新输出失败", zap.Error(err))
		}
	}

	if r.publisher != nil && ctx.Err() == nil {
		if err := r.publisher.Publish(ctx, report); err != nil {
			r.logger.Warn("发布扫描报告失败", zap.Error(err))
		}
	}

	if r.stdout != nil {
		enc := json.NewEncoder(r.stdout)
		if err := enc.Encode(report); err != nil {
			r.logger.Warn("打印扫描报告失败", zap.Error(err))
		}
	}
}
