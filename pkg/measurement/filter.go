// Package measurement holds helpers shared by everything that handles
// collected key/value readings.
package measurement

import "strings"

// FilterOut returns a new map with keys filtered out based on the provided patterns.
// Supports wildcard patterns:
//   - "prefix*" matches keys starting with "prefix"
//   - "*suffix" matches keys ending with "suffix"
//   - "*contains*" matches keys containing "contains"
//   - "exact" matches keys exactly
func FilterOut[V any](readings map[string]V, keys []string) map[string]V {
	result := make(map[string]V, len(readings))

	for key, value := range readings {
		if !Matches(key, keys) {
			result[key] = value
		}
	}

	return result
}

// Matches reports whether key matches any of the wildcard patterns.
func Matches(key string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesPattern(key, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern checks if a key matches a wildcard pattern.
func matchesPattern(key, pattern string) bool {
	// No wildcard - exact match
	if !strings.Contains(pattern, "*") {
		return key == pattern
	}

	// *suffix* - contains match
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		substr := strings.Trim(pattern, "*")
		return strings.Contains(key, substr)
	}

	// *suffix - ends with match
	if strings.HasPrefix(pattern, "*") {
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(key, suffix)
	}

	// prefix* - starts with match
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(key, prefix)
	}

	return false
}
