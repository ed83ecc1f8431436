// Package backoff 实现交易所 REST 调用的指数退避。
// 仅用于瞬时失败（超时、网络错误、5xx、429）的有限次重试。
// 默认基础间隔 200ms，最大间隔 2s，抖动 ±20%
package backoff

import (
	"context"
	"math/rand"
	"time"
)

// Backoff 指数退避计算器
// 每次调用 Next() 返回下一次重试的等待时间，不是并发安全的，每次调用链各持一个
type Backoff struct {
	// base 基础等待时间
	base time.Duration
	// max 最大等待时间
	max time.Duration
	// jitter 抖动比例（0-1），例如 0.2 表示 ±20%
	jitter float64
	// attempt 当前重试次数
	attempt int
}

// New 创建新的退避计算器
// 参数 base: 基础等待时间
// 参数 max: 最大等待时间
// 参数 jitter: 抖动比例
func New(base, max time.Duration, jitter float64) *Backoff {
	if max < base {
		max = base
	}
	return &Backoff{
		base:   base,
		max:    max,
		jitter: jitter,
	}
}

// NewDefault 创建默认配置的退避计算器
func NewDefault() *Backoff {
	return New(200*time.Millisecond, 2*time.Second, 0.2)
}

// Next 获取下次重试的等待时间
// 计算公式: base * 2^attempt，限制在 max 以内后应用抖动
func (b *Backoff) Next() time.Duration {
	delay := b.max
	// 防止位移溢出
	if b.attempt < 32 {
		delay = b.base * time.Duration(int64(1)<<b.attempt)
		if delay > b.max || delay <= 0 {
			delay = b.max
		}
	}

	if b.jitter > 0 {
		jitterFactor := 1.0 + (rand.Float64()*2-1)*b.jitter
		delay = time.Duration(float64(delay) * jitterFactor)
	}

	b.attempt++
	return delay
}

// Wait 等待下一次退避间隔
// 上下文取消时立即返回 ctx.Err()
func (b *Backoff) Wait(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reset 重置重试次数
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Attempt 获取当前重试次数
func (b *Backoff) Attempt() int {
	return b.attempt
}
