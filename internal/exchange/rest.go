package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/util/backoff"
	"cross-venue-arbitrage-scanner/internal/util/timeutil"
)

// Recorder 调用指标记录器
type Recorder interface {
	// Observe 记录一次 REST 调用（含重试的单次尝试）
	Observe(venue model.VenueID, op Op, d time.Duration, err error)
}

// RetryPolicy 重试策略
type RetryPolicy struct {
	// MaxAttempts 最大尝试次数（含首次），<=1 表示不重试
	MaxAttempts int
	// Base 退避基础间隔
	Base time.Duration
	// Max 退避最大间隔
	Max time.Duration
	// Jitter 抖动比例
	Jitter float64
}

// RESTOptions REST 客户端参数
type RESTOptions struct {
	// BaseURL 交易所 REST 地址
	BaseURL string
	// Timeout 单次调用超时，超时按不可用处理
	Timeout time.Duration
	// MaxConns 每个交易所的最大连接数
	MaxConns int
	// Retry 重试策略
	Retry RetryPolicy
	// Recorder 指标记录器，可为空
	Recorder Recorder
	// Logger 日志记录器，可为空
	Logger *zap.Logger
}

// RESTClient 单个交易所的 REST 传输层
// 进程内长期复用一个 http.Client（连接池），由 Close 释放
type RESTClient struct {
	venue    model.VenueID
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	retry    RetryPolicy
	recorder Recorder
	logger   *zap.Logger
}

// NewRESTClient 创建 REST 客户端
// 参数 venue: 交易所标识
// 参数 opts: 连接参数
func NewRESTClient(venue model.VenueID, opts RESTOptions) *RESTClient {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxConns <= 0 {
		opts.MaxConns = 16
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 1
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = opts.MaxConns
	transport.MaxConnsPerHost = opts.MaxConns

	return &RESTClient{
		venue:    venue,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		client:   &http.Client{Transport: transport},
		timeout:  opts.Timeout,
		retry:    opts.Retry,
		recorder: opts.Recorder,
		logger:   logger,
	}
}

// Venue 返回所属交易所
func (c *RESTClient) Venue() model.VenueID {
	return c.venue
}

// GetJSON 发送 GET 请求并将响应解析到 out
// 仅对瞬时失败（超时、网络错误、5xx、429）按退避重试；4xx 与结构错误立即返回
// 参数 ctx: 上下文
// 参数 op: 操作，决定错误类别
// 参数 path: 接口路径，如 /api/v3/depth
// 参数 query: 查询参数，可为空
// 参数 out: 解析目标
// 返回: 原始响应体，供调用方做业务码校验
func (c *RESTClient) GetJSON(ctx context.Context, op Op, path string, query url.Values, out any) ([]byte, error) {
	bo := backoff.New(c.retry.Base, c.retry.Max, c.retry.Jitter)

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		body, err := c.attempt(ctx, op, path, query)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return body, &VenueError{Venue: c.venue, Op: op, Body: sampleBody(body), Kind: op.kind(), Err: fmt.Errorf("解析响应失败: %w", err)}
			}
			return body, nil
		}

		lastErr = err
		if !IsTransient(err) || attempt == c.retry.MaxAttempts || ctx.Err() != nil {
			break
		}

		c.logger.Debug("交易所调用失败，准备重试",
			zap.String("op", string(op)),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if werr := bo.Wait(ctx); werr != nil {
			break
		}
	}
	return nil, lastErr
}

// attempt 执行一次带超时的请求
func (c *RESTClient) attempt(ctx context.Context, op Op, path string, query url.Values) (body []byte, err error) {
	startNs := timeutil.NowNano()
	defer func() {
		if c.recorder != nil {
			c.recorder.Observe(c.venue, op, timeutil.SinceNano(startNs), err)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &VenueError{Venue: c.venue, Op: op, Kind: op.kind(), Err: fmt.Errorf("创建请求失败: %w", err)}
	}
	req.Header.Set("User-Agent", "cross-venue-arbitrage-scanner/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// 网络错误与超时均视为瞬时失败；父上下文取消时不再重试
		return nil, &VenueError{Venue: c.venue, Op: op, Kind: op.kind(), Transient: ctx.Err() == nil, Err: fmt.Errorf("发送请求失败: %w", err)}
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VenueError{Venue: c.venue, Op: op, Status: resp.StatusCode, Kind: op.kind(), Transient: true, Err: fmt.Errorf("读取响应体失败: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &VenueError{
			Venue:     c.venue,
			Op:        op,
			Status:    resp.StatusCode,
			Body:      sampleBody(body),
			Kind:      op.kind(),
			Transient: isTransientStatus(resp.StatusCode),
			Err:       errors.New("HTTP 状态码错误"),
		}
	}

	return body, nil
}

// Close 释放空闲连接
func (c *RESTClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func isTransientStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests || status == http.StatusRequestTimeout
}
