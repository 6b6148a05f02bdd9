package sliceutil

// Contains reports whether s is present in slice.
func Contains[T comparable](slice []T, s T) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// RemoveDuplicates returns a copy of the slice with all duplicates
// removed, keeping the first occurrence and the original order.
func RemoveDuplicates[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	var result []T
	for _, v := range slice {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
