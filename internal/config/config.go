// Package config 负责加载和验证配置文件。
// 支持 YAML（默认）与 TOML（按扩展名识别），并允许通过 .env / 环境变量覆盖敏感项。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"cross-venue-arbitrage-scanner/internal/core/model"
)

// Config 应用配置根结构
type Config struct {
	// App 应用基础配置
	App AppConfig `yaml:"app" toml:"app"`
	// Scan 扫描参数
	Scan ScanConfig `yaml:"scan" toml:"scan"`
	// Retry 交易所调用重试配置
	Retry RetryConfig `yaml:"retry" toml:"retry"`
	// Venues 启用的交易所列表，顺序即报价并列时的优先顺序
	Venues []VenueConfig `yaml:"venues" toml:"venues"`
	// Output 输出配置
	Output OutputConfig `yaml:"output" toml:"output"`
	// Redis Redis 发布配置
	Redis RedisConfig `yaml:"redis" toml:"redis"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	// Name 应用名称，用于日志标识
	Name string `yaml:"name" toml:"name"`
	// LogLevel 日志级别: debug, info, warn, error
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// ScanConfig 扫描参数
type ScanConfig struct {
	// ThresholdPct 收益率过滤阈值（百分比），为空表示不过滤
	ThresholdPct *float64 `yaml:"threshold_pct" toml:"threshold_pct"`
	// IntervalMs 周期扫描间隔（毫秒），0 表示只扫描一次
	IntervalMs int `yaml:"interval_ms" toml:"interval_ms"`
	// AssetWorkers 并发处理资产的 worker 数量
	AssetWorkers int `yaml:"asset_workers" toml:"asset_workers"`
	// MaxInFlight 全局在途交易所请求上限
	MaxInFlight int `yaml:"max_in_flight" toml:"max_in_flight"`
	// TimeoutMs 单次交易所调用默认超时（毫秒）
	TimeoutMs int `yaml:"timeout_ms" toml:"timeout_ms"`
}

// RetryConfig 重试配置（仅重试瞬时失败）
type RetryConfig struct {
	// MaxAttempts 最大尝试次数（含首次）
	MaxAttempts int `yaml:"max_attempts" toml:"max_attempts"`
	// BaseMs 退避基础间隔（毫秒）
	BaseMs int `yaml:"base_ms" toml:"base_ms"`
	// MaxMs 退避最大间隔（毫秒）
	MaxMs int `yaml:"max_ms" toml:"max_ms"`
	// Jitter 抖动比例 [0, 1)
	Jitter float64 `yaml:"jitter" toml:"jitter"`
}

// VenueConfig 单个交易所配置
type VenueConfig struct {
	// ID 交易所标识: binance, binance_futures, kucoin, okx
	ID string `yaml:"id" toml:"id"`
	// Enabled 是否启用
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// BaseURL REST 地址，为空使用默认值
	BaseURL string `yaml:"base_url" toml:"base_url"`
	// TimeoutMs 该交易所的调用超时（毫秒），0 使用 scan.timeout_ms
	TimeoutMs int `yaml:"timeout_ms" toml:"timeout_ms"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// Dir 输出目录
	Dir string `yaml:"dir" toml:"dir"`
	// ReportsEnabled 是否输出扫描报告文件
	ReportsEnabled bool `yaml:"reports_enabled" toml:"reports_enabled"`
	// MetricsEnabled 是否输出调用指标文件
	MetricsEnabled bool `yaml:"metrics_enabled" toml:"metrics_enabled"`
	// BufferSize 异步写入缓冲区大小
	BufferSize int `yaml:"buffer_size" toml:"buffer_size"`
}

// RedisConfig Redis 发布配置
type RedisConfig struct {
	// Enabled 是否启用
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// Addr 地址，如 localhost:6379
	Addr string `yaml:"addr" toml:"addr"`
	// Password 密码
	Password string `yaml:"password" toml:"password"`
	// DB 数据库编号
	DB int `yaml:"db" toml:"db"`
	// Channel 发布频道
	Channel string `yaml:"channel" toml:"channel"`
	// SnapshotKey 最新报告的存储 key
	SnapshotKey string `yaml:"snapshot_key" toml:"snapshot_key"`
	// SnapshotTTLMs 最新报告的过期时间（毫秒），0 表示不过期
	SnapshotTTLMs int `yaml:"snapshot_ttl_ms" toml:"snapshot_ttl_ms"`
}

// Load 从文件加载配置并验证
// 参数 path: 配置文件路径，.toml 按 TOML 解析，其余按 YAML 解析
// 返回: 解析后的配置对象，若失败则返回错误
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("解析 TOML 配置失败: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置配置默认值
func (c *Config) setDefaults() {
	if c.App.Name == "" {
		c.App.Name = "cross-venue-arbitrage-scanner"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}

	if c.Scan.AssetWorkers == 0 {
		c.Scan.AssetWorkers = 8
	}
	if c.Scan.MaxInFlight == 0 {
		c.Scan.MaxInFlight = 16
	}
	if c.Scan.TimeoutMs == 0 {
		c.Scan.TimeoutMs = 5000 // 5 秒
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseMs == 0 {
		c.Retry.BaseMs = 200
	}
	if c.Retry.MaxMs == 0 {
		c.Retry.MaxMs = 2000
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Output.BufferSize == 0 {
		c.Output.BufferSize = 100
	}

	if c.Redis.Channel == "" {
		c.Redis.Channel = "arbitrage:opportunities"
	}
	if c.Redis.SnapshotKey == "" {
		c.Redis.SnapshotKey = "arbitrage:latest"
	}
}

// Validate 验证配置合法性
// 返回: 若配置无效则返回汇总了所有问题的错误
func (c *Config) Validate() error {
	var errs []string

	// 交易所：至少两个启用（套利至少需要两个对手方），id 唯一且属于已支持集合
	seen := make(map[string]bool)
	enabled := 0
	for i, v := range c.Venues {
		if !model.VenueID(v.ID).IsKnown() {
			errs = append(errs, fmt.Sprintf("venues[%d].id: 未知交易所 '%s'", i, v.ID))
		}
		if seen[v.ID] {
			errs = append(errs, fmt.Sprintf("venues[%d].id: 交易所 '%s' 重复配置", i, v.ID))
		}
		seen[v.ID] = true
		if v.TimeoutMs < 0 {
			errs = append(errs, fmt.Sprintf("venues[%d].timeout_ms: 超时不能为负数", i))
		}
		if v.Enabled {
			enabled++
		}
	}
	if enabled < 2 {
		errs = append(errs, "venues: 至少需要启用两个交易所")
	}

	// 扫描参数
	if c.Scan.AssetWorkers <= 0 {
		errs = append(errs, "scan.asset_workers: worker 数量必须为正数")
	}
	if c.Scan.MaxInFlight <= 0 {
		errs = append(errs, "scan.max_in_flight: 在途请求上限必须为正数")
	}
	if c.Scan.TimeoutMs <= 0 {
		errs = append(errs, "scan.timeout_ms: 超时必须为正数")
	}
	if c.Scan.IntervalMs < 0 {
		errs = append(errs, "scan.interval_ms: 扫描间隔不能为负数")
	}

	// 重试参数
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts: 最大尝试次数至少为 1")
	}
	if c.Retry.BaseMs < 0 || c.Retry.MaxMs < 0 {
		errs = append(errs, "retry: 退避间隔不能为负数")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter >= 1 {
		errs = append(errs, fmt.Sprintf("retry.jitter: 抖动比例必须在 [0, 1) 之间，当前值: %f", c.Retry.Jitter))
	}

	// 输出与 Redis
	if c.Output.BufferSize < 0 {
		errs = append(errs, "output.buffer_size: 缓冲区大小不能为负数")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr: 启用 Redis 时地址不能为空")
	}
	if c.Redis.SnapshotTTLMs < 0 {
		errs = append(errs, "redis.snapshot_ttl_ms: 过期时间不能为负数")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, fmt.Sprintf("app.log_level: 无效的日志级别 '%s'，有效值: debug, info, warn, error", c.App.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("配置验证错误:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// EnabledVenues 返回启用的交易所配置（保持配置顺序）
func (c *Config) EnabledVenues() []VenueConfig {
	out := make([]VenueConfig, 0, len(c.Venues))
	for _, v := range c.Venues {
		if v.Enabled {
			out = append(out, v)
		}
	}
	return out
}
