// Package main 是跨交易所套利扫描器的入口点。
// 扫描器比较多个交易所同一资产的买一/卖一价，找出理论套利机会并按收益率排序输出。
//
// 仅输出机会，不下单。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cross-venue-arbitrage-scanner/internal/config"
	"cross-venue-arbitrage-scanner/internal/core/scanner"
	"cross-venue-arbitrage-scanner/internal/exchange/venues"
	"cross-venue-arbitrage-scanner/internal/output/jsonl"
	"cross-venue-arbitrage-scanner/internal/output/redisbus"
	"cross-venue-arbitrage-scanner/internal/stats/latency"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		thresholdS string
		once       bool
	)
	flag.StringVar(&configPath, "config", "config.yaml", "配置文件路径（.yaml 或 .toml）")
	flag.StringVar(&thresholdS, "threshold", "", "收益率过滤阈值（百分比），覆盖配置")
	flag.BoolVar(&once, "once", false, "只扫描一次后退出")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return 1
	}

	threshold, err := resolveThreshold(thresholdS, cfg.Scan.ThresholdPct)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", err)
		return 2
	}

	logger := newLogger(cfg.App.LogLevel).With(zap.String("app", cfg.App.Name))
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 捕获 SIGINT/SIGTERM，触发优雅退出
	sigCh := make(chan os.Signal, 2)
	ossignal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("收到退出信号，开始优雅关闭")
		cancel()
	}()

	tracker := latency.NewTracker(10000)

	vs, err := venues.Open(cfg, tracker, logger)
	if err != nil {
		logger.Error("创建交易所适配器失败", zap.Error(err))
		return 1
	}

	sink, err := jsonl.NewSink(jsonl.Options{
		Dir:        cfg.Output.Dir,
		Reports:    cfg.Output.ReportsEnabled,
		Metrics:    cfg.Output.MetricsEnabled,
		BufferSize: cfg.Output.BufferSize,
	}, logger)
	if err != nil {
		logger.Error("创建输出失败", zap.Error(err))
		_ = venues.CloseAll(vs)
		return 1
	}

	var pub *redisbus.Publisher
	if cfg.Redis.Enabled {
		dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
		pub, err = redisbus.Dial(dialCtx, cfg.Redis, logger.Named("redis"))
		dialCancel()
		if err != nil {
			logger.Error("连接 Redis 失败", zap.Error(err))
			_ = sink.Close()
			_ = venues.CloseAll(vs)
			return 1
		}
	}

	r := &runner{
		scanner: scanner.New(vs, scanner.Options{
			AssetWorkers: cfg.Scan.AssetWorkers,
			MaxInFlight:  cfg.Scan.MaxInFlight,
			Threshold:    threshold,
		}, logger),
		tracker: tracker,
		sink:    sink,
		stdout:  os.Stdout,
		logger:  logger,
	}
	if pub != nil {
		r.publisher = pub
	}

	code := 0
	if once || cfg.Scan.IntervalMs <= 0 {
		if !r.scanOnce(ctx) {
			code = 1
		}
	} else {
		r.loop(ctx, time.Duration(cfg.Scan.IntervalMs)*time.Millisecond)
	}

	shutdown(logger, func() error {
		err := venues.CloseAll(vs)
		err = errors.Join(err, sink.Close())
		if pub != nil {
			err = errors.Join(err, pub.Close())
		}
		return err
	})
	return code
}

// resolveThreshold 命令行阈值优先于配置
func resolveThreshold(flagValue string, cfgValue *float64) (*decimal.Decimal, error) {
	if flagValue != "" {
		d, err := decimal.NewFromString(flagValue)
		if err != nil {
			return nil, fmt.Errorf("无效的阈值 '%s': %w", flagValue, err)
		}
		return &d, nil
	}
	if cfgValue != nil {
		d := decimal.NewFromFloat(*cfgValue)
		return &d, nil
	}
	return nil, nil
}

// shutdown 释放资源（10s 超时）
func shutdown(logger *zap.Logger, closeFn func() error) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	done := make(chan error, 1)
	go func() {
		done <- closeFn()
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("关闭超时，强制退出")
	case err := <-done:
		if err != nil {
			logger.Warn("关闭时出现错误", zap.Error(err))
			return
		}
		logger.Info("关闭完成")
	}
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
