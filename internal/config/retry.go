package config

import "git.home.luguber.info/inful/wallhelper/internal/foundation"

// RetryBackoffMode enumerates supported backoff strategies for reselect delays.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = foundation.NewNormalizer(map[string]RetryBackoffMode{
	string(RetryBackoffFixed):       RetryBackoffFixed,
	string(RetryBackoffLinear):      RetryBackoffLinear,
	string(RetryBackoffExponential): RetryBackoffExponential,
}, "")

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

// ParseRetryBackoff is NormalizeRetryBackoff with an error naming the accepted modes.
func ParseRetryBackoff(raw string) (RetryBackoffMode, error) {
	return retryBackoffNormalizer.NormalizeWithError(raw)
}
