// Package ranking scores company names against a search query.
package ranking

import (
	"sort"
	"strings"

	"companyhouse/internal/domain"
)

const (
	ScoreExact     = 100
	ScorePrefix    = 90
	ScoreContains  = 80
	ScoreSecondary = 70
)

// Score compares name and query case-insensitively. A company that reached
// the result set through a secondary field only (registration number, brand
// name, ...) scores ScoreSecondary.
func Score(name, query string) int {
	n, q := strings.ToLower(name), strings.ToLower(query)
	switch {
	case n == q:
		return ScoreExact
	case strings.HasPrefix(n, q):
		return ScorePrefix
	case strings.Contains(n, q):
		return ScoreContains
	default:
		return ScoreSecondary
	}
}

// Rank scores every company and orders the results by score descending, then
// name ascending. Country and id settle any remaining tie.
func Rank(companies []domain.Company, query string, countryName func(code string) string) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(companies))
	for _, c := range companies {
		r := domain.SearchResult{Company: c, RelevanceScore: Score(c.Name, query)}
		if countryName != nil {
			r.CountryName = countryName(c.Country)
		}
		out = append(out, r)
	}
	Sort(out)
	return out
}

func Sort(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		return a.ID < b.ID
	})
}
