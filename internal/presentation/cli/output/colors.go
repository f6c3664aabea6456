package output

import "os"

// colorsEnabled caches the detection result for the process lifetime.
var colorsEnabled *bool

// IsColorSupported reports whether escape codes should be emitted.
// NO_COLOR and FORCE_COLOR override terminal detection.
func IsColorSupported() bool {
	if colorsEnabled != nil {
		return *colorsEnabled
	}

	enabled := detectColorSupport()
	colorsEnabled = &enabled
	return enabled
}

func detectColorSupport() bool {
	// https://no-color.org/ — any value disables.
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if _, exists := os.LookupEnv("FORCE_COLOR"); exists {
		return true
	}

	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	if stat.Mode()&os.ModeCharDevice == 0 {
		return false
	}

	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}

	return true
}

// ResetColorDetection clears the cached result so tests can vary the
// environment.
func ResetColorDetection() {
	colorsEnabled = nil
}
