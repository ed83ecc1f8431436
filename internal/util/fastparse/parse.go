// Package fastparse 提供交易所报价字段的解析函数。
// 交易所以字符串返回价格与数量，统一解析为 decimal 以避免浮点误差。
package fastparse

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseDecimal 解析十进制字符串
// 参数 s: 待解析的字符串，如 "12345.67"
// 返回: 解析后的 decimal 和可能的错误
func ParseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("空数值字符串")
	}
	return decimal.NewFromString(s)
}

// FirstLevelPrice 读取订单簿某一侧第一档的价格
// 参数 levels: [[价格, 数量, ...], ...]
// 返回: 第一档价格；无档位或格式错误时返回错误
func FirstLevelPrice(levels [][]string) (decimal.Decimal, error) {
	if len(levels) == 0 {
		return decimal.Zero, fmt.Errorf("订单簿为空")
	}
	if len(levels[0]) == 0 {
		return decimal.Zero, fmt.Errorf("档位缺少价格字段")
	}
	px, err := ParseDecimal(levels[0][0])
	if err != nil {
		return decimal.Zero, fmt.Errorf("解析价格 %q 失败: %w", levels[0][0], err)
	}
	return px, nil
}
