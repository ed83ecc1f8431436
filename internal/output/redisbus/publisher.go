// Package redisbus 将扫描报告发布到 Redis。
// 每次扫描 PUBLISH 到频道；成功的报告同时 SET 到快照 key，供下游读取最新结果。
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cross-venue-arbitrage-scanner/internal/config"
	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/util/timeutil"
)

// Commander 发布所需的 Redis 命令子集，*redis.Client 满足该接口
type Commander interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Options 发布选项
type Options struct {
	// Channel 发布频道
	Channel string
	// SnapshotKey 最新报告 key，为空表示不写快照
	SnapshotKey string
	// SnapshotTTL 快照过期时间，0 表示不过期
	SnapshotTTL time.Duration
}

// Publisher Redis 报告发布器
type Publisher struct {
	rdb    Commander
	opts   Options
	logger *zap.Logger
}

// NewPublisher 基于已有连接创建发布器
func NewPublisher(rdb Commander, opts Options, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{rdb: rdb, opts: opts, logger: logger}
}

// Dial 按配置连接 Redis 并校验连通性
// 参数 ctx: 上下文（用于 PING）
// 参数 cfg: Redis 配置
// 参数 logger: 日志记录器
func Dial(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	return NewPublisher(rdb, Options{
		Channel:     cfg.Channel,
		SnapshotKey: cfg.SnapshotKey,
		SnapshotTTL: timeutil.Ms(cfg.SnapshotTTLMs, 0),
	}, logger), nil
}

// Publish 发布扫描报告
// 返回: 发布或写快照失败的错误
func (p *Publisher) Publish(ctx context.Context, report *model.ScanReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("序列化扫描报告失败: %w", err)
	}

	receivers, err := p.rdb.Publish(ctx, p.opts.Channel, payload).Result()
	if err != nil {
		return fmt.Errorf("发布扫描报告到 %s 失败: %w", p.opts.Channel, err)
	}

	if report.OK() && p.opts.SnapshotKey != "" {
		if err := p.rdb.Set(ctx, p.opts.SnapshotKey, payload, p.opts.SnapshotTTL).Err(); err != nil {
			return fmt.Errorf("写入最新报告 %s 失败: %w", p.opts.SnapshotKey, err)
		}
	}

	p.logger.Debug("扫描报告已发布",
		zap.String("scan_id", report.ScanID),
		zap.String("channel", p.opts.Channel),
		zap.Int64("receivers", receivers))
	return nil
}

// Close 关闭连接
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
