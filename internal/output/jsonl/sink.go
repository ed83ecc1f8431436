package jsonl

import (
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/stats/latency"
)

// 输出文件名
const (
	ReportsFile = "scan_reports.jsonl"
	MetricsFile = "venue_metrics.jsonl"
)

// MetricsRecord 单次扫描后的调用指标快照
type MetricsRecord struct {
	// ScanID 对应的扫描
	ScanID string `json:"scan_id"`
	// At 采样时间
	At time.Time `json:"at"`
	// Venues 各交易所统计
	Venues []latency.VenueStats `json:"venues"`
}

// Sink 扫描报告与指标的文件输出
// 未启用的输出对应写入器为空，相关方法为空操作
type Sink struct {
	reports *Writer
	metrics *Writer
}

// Options 输出选项
type Options struct {
	// Dir 输出目录
	Dir string
	// Reports 是否输出扫描报告
	Reports bool
	// Metrics 是否输出调用指标
	Metrics bool
	// BufferSize 投递缓冲区大小
	BufferSize int
}

// NewSink 按选项创建输出
func NewSink(opts Options, logger *zap.Logger) (*Sink, error) {
	s := &Sink{}
	if opts.Reports {
		w, err := NewWriter(filepath.Join(opts.Dir, ReportsFile), opts.BufferSize, logger)
		if err != nil {
			return nil, err
		}
		s.reports = w
	}
	if opts.Metrics {
		w, err := NewWriter(filepath.Join(opts.Dir, MetricsFile), opts.BufferSize, logger)
		if err != nil {
			return nil, multierr.Append(err, s.Close())
		}
		s.metrics = w
	}
	return s, nil
}

// WriteReport 写入扫描报告
func (s *Sink) WriteReport(r *model.ScanReport) error {
	if s.reports == nil || r == nil {
		return nil
	}
	return s.reports.Write(r)
}

// WriteMetrics 写入调用指标快照
func (s *Sink) WriteMetrics(scanID string, stats []latency.VenueStats) error {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.Write(MetricsRecord{ScanID: scanID, At: time.Now().UTC(), Venues: stats})
}

// Flush 刷新全部输出
func (s *Sink) Flush() error {
	var err error
	if s.reports != nil {
		err = multierr.Append(err, s.reports.Flush())
	}
	if s.metrics != nil {
		err = multierr.Append(err, s.metrics.Flush())
	}
	return err
}

// Close 关闭全部输出
func (s *Sink) Close() error {
	var err error
	if s.reports != nil {
		err = multierr.Append(err, s.reports.Close())
	}
	if s.metrics != nil {
		err = multierr.Append(err, s.metrics.Close())
	}
	return err
}
