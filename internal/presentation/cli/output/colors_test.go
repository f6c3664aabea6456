package output

import (
	"os"
	"testing"
)

func TestColorDetection(t *testing.T) {
	// The cache is process-global; reset around each case and at the
	// end so other tests see a clean slate.
	t.Cleanup(ResetColorDetection)

	t.Run("NO_COLOR disables", func(t *testing.T) {
		ResetColorDetection()
		t.Setenv("NO_COLOR", "1")
		if IsColorSupported() {
			t.Error("NO_COLOR should disable colors")
		}
	})

	t.Run("NO_COLOR wins over FORCE_COLOR", func(t *testing.T) {
		ResetColorDetection()
		t.Setenv("NO_COLOR", "1")
		t.Setenv("FORCE_COLOR", "1")
		if IsColorSupported() {
			t.Error("NO_COLOR should take precedence")
		}
	})

	t.Run("FORCE_COLOR enables", func(t *testing.T) {
		ResetColorDetection()
		os.Unsetenv("NO_COLOR")
		t.Setenv("FORCE_COLOR", "1")
		if !IsColorSupported() {
			t.Error("FORCE_COLOR should enable colors")
		}
	})

	t.Run("result is cached", func(t *testing.T) {
		ResetColorDetection()
		os.Unsetenv("NO_COLOR")
		t.Setenv("FORCE_COLOR", "1")
		first := IsColorSupported()

		// Changing the environment after detection must not change the
		// answer until the cache is reset.
		t.Setenv("NO_COLOR", "1")
		if IsColorSupported() != first {
			t.Error("detection result should be cached")
		}

		ResetColorDetection()
		if IsColorSupported() == first {
			t.Error("reset should re-run detection")
		}
	})
}
