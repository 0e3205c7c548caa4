package signal

import "strings"

// FlairFilter rejects posts whose flair, trimmed and lower-cased, appears
// in the configured ignore set.
type FlairFilter struct {
	ignored map[string]struct{}
}

// NewFlairFilter normalizes the configured flair labels into a lookup set.
func NewFlairFilter(flairs []string) *FlairFilter {
	ignored := make(map[string]struct{}, len(flairs))
	for _, f := range flairs {
		ignored[NormalizeFlair(f)] = struct{}{}
	}
	return &FlairFilter{ignored: ignored}
}

// Ignored reports whether a post carrying this flair should be dropped.
// Posts without a flair are never dropped here.
func (f *FlairFilter) Ignored(flair string, hasFlair bool) bool {
	if !hasFlair {
		return false
	}
	_, ok := f.ignored[NormalizeFlair(flair)]
	return ok
}

// NormalizeFlair applies the canonical flair normalization used both for
// matching and for persistence.
func NormalizeFlair(flair string) string {
	return strings.ToLower(strings.TrimSpace(flair))
}
