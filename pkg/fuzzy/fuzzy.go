package fuzzy

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Match kinds, strongest first.
const (
	MatchNone = iota
	MatchFuzzy
	MatchSubstring
	MatchExact
)

// Result is the best candidate found by BestMatch.
type Result struct {
	Index int
	Kind  int
	Score float64
}

// Normalize lowercases s, turns punctuation into spaces and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity returns 1 - distance/maxLen over normalized strings.
func Similarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == "" && b == "" {
		return 1
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// BestMatch finds the candidate that best matches query. Exact normalized
// equality beats substring containment (either direction), which beats edit
// distance; fuzzy matches below minSimilarity are ignored. Index is -1 when
// nothing matches.
func BestMatch(query string, candidates []string, minSimilarity float64) Result {
	best := Result{Index: -1}
	q := Normalize(query)
	if q == "" {
		return best
	}

	for i, c := range candidates {
		n := Normalize(c)
		if n == "" {
			continue
		}

		var r Result
		switch {
		case n == q:
			r = Result{Index: i, Kind: MatchExact, Score: 1}
		case strings.Contains(n, q) || strings.Contains(q, n):
			r = Result{Index: i, Kind: MatchSubstring, Score: Similarity(q, n)}
		default:
			s := Similarity(q, n)
			if s < minSimilarity {
				continue
			}
			r = Result{Index: i, Kind: MatchFuzzy, Score: s}
		}

		if r.Kind > best.Kind || (r.Kind == best.Kind && r.Score > best.Score) {
			best = r
		}
	}
	return best
}
