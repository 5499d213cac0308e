package cases

import (
	"sort"
	"strings"
)

// Match pairs a ranked record with its position in the source collection so
// callers can de-duplicate downstream.
type Match struct {
	Index  int
	Record Record
	Score  int
}

// Search scores every record by whole-token overlap with the query and
// returns the non-zero matches ordered by score descending. Equal scores keep
// collection order; the sort is stable by contract, not by accident. Pure and
// deterministic, no side effects.
func Search(query string, col Collection) []Match {
	queryWords := tokenSet(query)
	if len(queryWords) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(col))
	for idx, record := range col {
		score := overlap(queryWords, tokenSet(record.Text))
		if score == 0 {
			continue
		}
		matches = append(matches, Match{Index: idx, Record: record, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// tokenSet lowercases and splits on whitespace; duplicates collapse.
func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

func overlap(a map[string]struct{}, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}

	count := 0
	for word := range a {
		if _, ok := b[word]; ok {
			count++
		}
	}
	return count
}
