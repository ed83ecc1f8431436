// Package venues 根据配置创建交易所适配器。
// 独立于 exchange 包，避免 exchange 与各交易所子包之间的循环依赖。
package venues

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cross-venue-arbitrage-scanner/internal/config"
	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
	"cross-venue-arbitrage-scanner/internal/exchange/binance"
	"cross-venue-arbitrage-scanner/internal/exchange/kucoin"
	"cross-venue-arbitrage-scanner/internal/exchange/okx"
	"cross-venue-arbitrage-scanner/internal/util/timeutil"
)

// DefaultBaseURL 返回交易所的默认 REST 地址
func DefaultBaseURL(id model.VenueID) string {
	switch id {
	case model.VenueBinance:
		return binance.DefaultSpotBaseURL
	case model.VenueBinanceFutures:
		return binance.DefaultFuturesBaseURL
	case model.VenueKucoin:
		return kucoin.DefaultBaseURL
	case model.VenueOKX:
		return okx.DefaultBaseURL
	}
	return ""
}

// Open 按配置顺序创建启用的交易所适配器
// 参数 cfg: 已验证的配置
// 参数 rec: 调用指标记录器，可为空
// 参数 logger: 日志记录器
// 返回: 适配器列表（顺序与配置一致），失败时已创建的适配器会被关闭
func Open(cfg *config.Config, rec exchange.Recorder, logger *zap.Logger) ([]exchange.Venue, error) {
	retry := exchange.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Base:        time.Duration(cfg.Retry.BaseMs) * time.Millisecond,
		Max:         time.Duration(cfg.Retry.MaxMs) * time.Millisecond,
		Jitter:      cfg.Retry.Jitter,
	}
	defaultTimeout := timeutil.Ms(cfg.Scan.TimeoutMs, 5*time.Second)

	var out []exchange.Venue
	for _, vc := range cfg.EnabledVenues() {
		id := model.VenueID(vc.ID)

		baseURL := vc.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL(id)
		}

		rest := exchange.NewRESTClient(id, exchange.RESTOptions{
			BaseURL:  baseURL,
			Timeout:  timeutil.Ms(vc.TimeoutMs, defaultTimeout),
			MaxConns: cfg.Scan.MaxInFlight,
			Retry:    retry,
			Recorder: rec,
			Logger:   logger.Named(vc.ID),
		})

		v, err := newVenue(id, rest)
		if err != nil {
			_ = rest.Close()
			return nil, multierr.Append(err, CloseAll(out))
		}

		logger.Info("交易所已启用",
			zap.String("venue", vc.ID),
			zap.String("base_url", baseURL))
		out = append(out, v)
	}
	return out, nil
}

func newVenue(id model.VenueID, rest *exchange.RESTClient) (exchange.Venue, error) {
	switch id {
	case model.VenueBinance:
		return binance.NewSpot(rest), nil
	case model.VenueBinanceFutures:
		return binance.NewFutures(rest), nil
	case model.VenueKucoin:
		return kucoin.New(rest), nil
	case model.VenueOKX:
		return okx.New(rest), nil
	}
	return nil, fmt.Errorf("未知交易所: %s", id)
}

// CloseAll 关闭全部适配器并合并错误
func CloseAll(vs []exchange.Venue) error {
	var err error
	for _, v := range vs {
		err = multierr.Append(err, v.Close())
	}
	return err
}
