package evaluation

// HitAtK reports whether expected appears in the top-K ranked names.
func HitAtK(expected string, ranked []string, k int) bool {
	return MRRAtK(expected, ranked, k) > 0
}

// MRRAtK computes the reciprocal rank of expected in the top-K ranked names.
// Returns 0.0 if expected is empty or not found in top-K.
func MRRAtK(expected string, ranked []string, k int) float64 {
	if expected == "" || len(ranked) == 0 {
		return 0.0
	}

	topK := ranked
	if k < len(topK) {
		topK = topK[:k]
	}

	for i, r := range topK {
		if r == expected {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

// IsCorrect decides a single resolution: the top name must equal expected,
// and an empty expected requires no match at all.
func IsCorrect(expected string, ranked []string) bool {
	if expected == "" {
		return len(ranked) == 0
	}
	return len(ranked) > 0 && ranked[0] == expected
}
