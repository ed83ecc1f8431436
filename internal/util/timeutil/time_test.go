package timeutil

import (
	"testing"
	"time"
)

func TestNowNano_Monotonic(t *testing.T) {
	prev := NowNano()
	for i := 0; i < 1000; i++ {
		cur := NowNano()
		if cur < prev {
			t.Fatalf("NowNano 回退: %d < %d", cur, prev)
		}
		prev = cur
	}
}

func TestMs(t *testing.T) {
	if got := Ms(250, time.Second); got != 250*time.Millisecond {
		t.Errorf("Ms(250) = %v", got)
	}
	if got := Ms(0, time.Second); got != time.Second {
		t.Errorf("Ms(0) = %v, want fallback", got)
	}
	if got := Ms(-5, 0); got != 0 {
		t.Errorf("Ms(-5) = %v, want 0", got)
	}
}

func TestSinceNano(t *testing.T) {
	start := NowNano()
	time.Sleep(2 * time.Millisecond)
	if d := SinceNano(start); d < 2*time.Millisecond {
		t.Errorf("SinceNano = %v, want >= 2ms", d)
	}
}
