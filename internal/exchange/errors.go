package exchange

import (
	"errors"
	"fmt"

	"cross-venue-arbitrage-scanner/internal/core/model"
)

// 错误分类
// ErrQuoteUnavailable 是 ErrVenueUnavailable 的特化，ErrInvalidQuoteData 在聚合时等同于 ErrQuoteUnavailable
var (
	ErrVenueUnavailable = errors.New("交易所不可用")
	ErrQuoteUnavailable = fmt.Errorf("报价不可用: %w", ErrVenueUnavailable)
	ErrInvalidQuoteData = fmt.Errorf("报价数据无效: %w", ErrQuoteUnavailable)
)

// Op 交易所操作
type Op string

const (
	// OpListSymbols 获取交易对列表
	OpListSymbols Op = "list_symbols"
	// OpBestBidAsk 获取买一卖一
	OpBestBidAsk Op = "best_bid_ask"
)

// kind 返回操作对应的错误类别
func (op Op) kind() error {
	if op == OpBestBidAsk {
		return ErrQuoteUnavailable
	}
	return ErrVenueUnavailable
}

// maxBodySample 错误中保留的原始响应体长度
const maxBodySample = 512

// VenueError 交易所调用失败
// 携带交易所、操作、HTTP 状态码与原始响应体，便于诊断
type VenueError struct {
	// Venue 交易所
	Venue model.VenueID
	// Op 操作
	Op Op
	// Status HTTP 状态码，网络错误时为 0
	Status int
	// Body 原始响应体（截断）
	Body string
	// Transient 是否为可重试的瞬时错误
	Transient bool
	// Kind 错误类别（ErrVenueUnavailable / ErrQuoteUnavailable / ErrInvalidQuoteData）
	Kind error
	// Err 底层错误
	Err error
}

func (e *VenueError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Venue, e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(", status=%d", e.Status)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Body != "" {
		msg += fmt.Sprintf(", body=%s", e.Body)
	}
	return msg
}

// Unwrap 同时暴露错误类别与底层错误
func (e *VenueError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsTransient 判断错误是否可重试
func IsTransient(err error) bool {
	var ve *VenueError
	if errors.As(err, &ve) {
		return ve.Transient
	}
	return false
}

// SchemaError 构造响应结构不符合预期的错误（不可重试）
// 参数 body: 原始响应体
// 参数 format: 错误描述
func SchemaError(venue model.VenueID, op Op, body []byte, format string, args ...any) *VenueError {
	return &VenueError{
		Venue: venue,
		Op:    op,
		Body:  sampleBody(body),
		Kind:  op.kind(),
		Err:   fmt.Errorf(format, args...),
	}
}

func sampleBody(body []byte) string {
	if len(body) > maxBodySample {
		body = body[:maxBodySample]
	}
	return string(body)
}
