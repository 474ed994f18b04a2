// internal/locator/settings.go
package locator

import "time"

// Settings tunes resolution and interaction timing.
type Settings struct {
	// DefaultTimeout bounds WaitFor calls made without an explicit timeout.
	DefaultTimeout time.Duration
	// PollInterval is the tick between queries while waiting.
	PollInterval time.Duration
	// RetryAttempts is the attempt budget of clicks, writes and text reads.
	RetryAttempts int
	// ReadRetryAttempts is the attempt budget of attribute and state reads.
	ReadRetryAttempts int
	// RetryPause is the constant pause between attempts.
	RetryPause time.Duration
	// MinCharsToType is the longest value typed key by key; longer values are
	// pasted through the clipboard. -1 always types.
	MinCharsToType int
	// LogParamsExclude lists locator names whose values are masked in logs.
	LogParamsExclude []string
	// LogXPath adds the selector to "not found" warnings.
	LogXPath bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DefaultTimeout:    10 * time.Second,
		PollInterval:      50 * time.Millisecond,
		RetryAttempts:     6,
		ReadRetryAttempts: 5,
		RetryPause:        500 * time.Millisecond,
		MinCharsToType:    -1,
		LogParamsExclude:  []string{"password"},
		LogXPath:          true,
	}
}
