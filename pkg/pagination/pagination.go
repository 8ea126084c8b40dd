package pagination

const (
	// DefaultLimit is the standard list size when a limit is not provided.
	DefaultLimit = 500
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 500
)

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	return NormalizeLimitWith(limit, DefaultLimit, MaxLimit)
}

// NormalizeLimitWith clamps limit into (0, max], using def when limit is unset.
func NormalizeLimitWith(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
