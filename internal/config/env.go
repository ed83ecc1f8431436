package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// 环境变量覆盖项
const (
	envLogLevel      = "ARBSCAN_LOG_LEVEL"
	envThresholdPct  = "ARBSCAN_THRESHOLD_PCT"
	envRedisAddr     = "ARBSCAN_REDIS_ADDR"
	envRedisPassword = "ARBSCAN_REDIS_PASSWORD"
	envRedisDB       = "ARBSCAN_REDIS_DB"
)

// applyEnvOverrides 读取 .env（不存在则忽略）并应用 ARBSCAN_* 环境变量
// 已存在的进程环境变量优先于 .env 中的值
func applyEnvOverrides(cfg *Config) error {
	_ = godotenv.Load()

	if v := os.Getenv(envLogLevel); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv(envThresholdPct); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: 无效的阈值 '%s': %w", envThresholdPct, v, err)
		}
		cfg.Scan.ThresholdPct = &f
	}
	if v := os.Getenv(envRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(envRedisPassword); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv(envRedisDB); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: 无效的数据库编号 '%s': %w", envRedisDB, v, err)
		}
		cfg.Redis.DB = n
	}
	return nil
}
