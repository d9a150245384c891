// Package fuzzy scores free text against canonical candidates.
package fuzzy

import (
	"sort"
	"strings"
)

// Scorer returns a similarity between 0 and 100.
type Scorer func(a, b string) float64

// Ratio is the normalized InDel similarity of a and b:
// 100 * (1 - indel(a, b) / (len(a) + len(b))), measured in runes.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	dist := total - 2*lcsLength(ra, rb)
	return normalizedSimilarity(dist, total)
}

// TokenSetRatio compares the whitespace token sets of a and b. Word order and
// repeated words do not affect the score, and a string whose tokens are all
// contained in the other's scores 100.
func TokenSetRatio(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var intersect, diffAB, diffBA []string
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			intersect = append(intersect, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range tokensB {
		if _, ok := tokensA[tok]; !ok {
			diffBA = append(diffBA, tok)
		}
	}

	if len(intersect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sort.Strings(intersect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)

	sect := strings.Join(intersect, " ")
	joinedAB := strings.Join(diffAB, " ")
	joinedBA := strings.Join(diffBA, " ")

	sectLen := runeLen(sect)
	abLen := runeLen(joinedAB)
	baLen := runeLen(joinedBA)

	sep := 0
	if sectLen > 0 {
		sep = 1
	}
	sectABLen := sectLen + sep + abLen
	sectBALen := sectLen + sep + baLen

	// indel(sect+ab, sect+ba) equals indel(ab, ba) because the shared prefix
	// contributes nothing to the distance.
	diffDist := abLen + baLen - 2*lcsLength([]rune(joinedAB), []rune(joinedBA))
	result := normalizedSimilarity(diffDist, sectABLen+sectBALen)
	if sectLen == 0 {
		return result
	}

	sectABRatio := normalizedSimilarity(sep+abLen, sectLen+sectABLen)
	sectBARatio := normalizedSimilarity(sep+baLen, sectLen+sectBALen)

	return max(result, sectABRatio, sectBARatio)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func normalizedSimilarity(dist, lensum int) float64 {
	if lensum == 0 {
		return 100
	}
	return 100 * (1 - float64(dist)/float64(lensum))
}

func runeLen(s string) int {
	return len([]rune(s))
}

// lcsLength returns the length of the longest common subsequence.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
