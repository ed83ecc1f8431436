// Package backoff 退避算法测试
package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestBackoff_MaxBound 延迟永远不超过 max*(1+jitter)
func TestBackoff_MaxBound(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("延迟不超过最大值上限", prop.ForAll(
		func(baseMs int, maxMs int, jitterPercent int) bool {
			base := time.Duration(baseMs) * time.Millisecond
			max := time.Duration(maxMs) * time.Millisecond
			jitter := float64(jitterPercent) / 100.0
			b := New(base, max, jitter)

			upper := float64(max) * (1 + jitter)
			if max < base {
				upper = float64(base) * (1 + jitter)
			}
			for i := 0; i < 40; i++ {
				if float64(b.Next()) > upper {
					return false
				}
			}
			return true
		},
		gen.IntRange(10, 2000),
		gen.IntRange(100, 60000),
		gen.IntRange(0, 30),
	))

	properties.Property("无抖动时单调不减", prop.ForAll(
		func(baseMs int, maxMs int) bool {
			b := New(time.Duration(baseMs)*time.Millisecond, time.Duration(maxMs)*time.Millisecond, 0)
			prev := time.Duration(0)
			for i := 0; i < 20; i++ {
				d := b.Next()
				if d < prev {
					return false
				}
				prev = d
			}
			return true
		},
		gen.IntRange(10, 2000),
		gen.IntRange(100, 60000),
	))

	properties.TestingRun(t)
}

func TestBackoff_SpecificValues(t *testing.T) {
	b := New(200*time.Millisecond, time.Second, 0)

	want := []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second, // 1.6s 限制为 1s
		time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("attempt %d: got %v, want %v", i, got, w)
		}
	}

	b.Reset()
	if b.Attempt() != 0 {
		t.Fatalf("Reset 后 Attempt=%d, want 0", b.Attempt())
	}
	if got := b.Next(); got != 200*time.Millisecond {
		t.Errorf("Reset 后 got %v, want 200ms", got)
	}
}

func TestBackoff_WaitCancelled(t *testing.T) {
	b := New(time.Hour, time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx); err != context.Canceled {
		t.Fatalf("Wait err=%v, want context.Canceled", err)
	}
}
