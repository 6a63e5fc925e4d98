// Package fuzzy suggests the closest known sub-parameter for a mistyped fragment.
// Used by settings/param when a fragment matches no parameter of an option.
package fuzzy

import (
	"sort"
	"strings"
)

// Matcher ranks candidates by edit distance to an input.
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a matcher that ignores candidates further than maxDistance edits away.
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   2, // Don't suggest for very short inputs
	}
}

// Match is one ranked candidate.
type Match struct {
	Value    string
	Distance int
}

// FindMatches returns candidates within the distance limit, closest first.
// Ties keep candidate order so the earliest declared parameter wins.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len(input) < m.minLength {
		return nil
	}
	input = strings.ToLower(input)

	var matches []Match
	for _, candidate := range candidates {
		name := strings.ToLower(trimOperator(candidate))
		if name == "" {
			continue
		}
		distance := m.distance(input, name)
		if distance <= m.maxDistance {
			matches = append(matches, Match{Value: candidate, Distance: distance})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

// FindBest returns the closest candidate, or "" if none is close enough.
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// trimOperator strips the trailing '=', '<', '>' or '(' that separates a
// parameter name from its value, so "threads>=" compares as "threads".
func trimOperator(prefix string) string {
	return strings.TrimRight(prefix, "=<>(")
}

// distance calculates the Levenshtein distance between a and b, returning
// maxDistance+1 as soon as the result is known to exceed the limit.
func (m *Matcher) distance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if abs(len(a)-len(b)) > m.maxDistance {
		return m.maxDistance + 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(a); j++ {
			cost := 0
			if a[j-1] != b[i-1] {
				cost = 1
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > m.maxDistance {
			return m.maxDistance + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// FindBestPrefix suggests the parameter prefix closest to a mistyped name.
func FindBestPrefix(input string, prefixes []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, prefixes)
}
