package usecase

import "time"

const (
	// ReportCacheTTL is how long rendered report payloads are cached.
	ReportCacheTTL = 5 * time.Minute

	// DefaultPageSize bounds list operations when the caller gives no limit.
	DefaultPageSize = 50

	// MaxPageSize is the hard ceiling for list operations.
	MaxPageSize = 1000
)

// clampPageSize normalizes a caller-supplied limit into (0, MaxPageSize].
func clampPageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}

	if limit > MaxPageSize {
		return MaxPageSize
	}

	return limit
}
