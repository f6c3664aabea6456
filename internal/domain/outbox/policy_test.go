package outbox

import (
	"testing"
	"time"
)

func TestRetryModeValid(t *testing.T) {
	if !RetryManual.Valid() || !RetryRequeue.Valid() {
		t.Error("built-in retry modes should be valid")
	}
	if RetryMode("aggressive").Valid() {
		t.Error("unknown retry mode should be invalid")
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.Mode != RetryManual {
		t.Errorf("default mode = %s, want %s", p.Mode, RetryManual)
	}
	if p.BaseBackoff != 30*time.Second {
		t.Errorf("default base backoff = %s, want 30s", p.BaseBackoff)
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{Mode: RetryRequeue, BaseBackoff: 30 * time.Second}

	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, 30 * time.Second}, // clamped to first retry
		{1, 30 * time.Second},
		{2, 60 * time.Second},
		{3, 120 * time.Second},
		{4, 240 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Backoff(tt.retryCount); got != tt.want {
			t.Errorf("Backoff(%d) = %s, want %s", tt.retryCount, got, tt.want)
		}
	}
}

func TestTruncateMessage(t *testing.T) {
	short := "all good"
	if got := TruncateMessage(short); got != short {
		t.Errorf("short message changed: %q", got)
	}

	long := make([]rune, LogMessageLimit+500)
	for i := range long {
		long[i] = 'x'
	}
	got := TruncateMessage(string(long))
	if n := len([]rune(got)); n != LogMessageLimit {
		t.Errorf("truncated length = %d, want %d", n, LogMessageLimit)
	}

	// Multi-byte runes must not be split mid-sequence.
	wide := make([]rune, LogMessageLimit+10)
	for i := range wide {
		wide[i] = '語'
	}
	got = TruncateMessage(string(wide))
	if n := len([]rune(got)); n != LogMessageLimit {
		t.Errorf("rune-truncated length = %d, want %d", n, LogMessageLimit)
	}
}
