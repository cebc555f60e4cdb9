// Package aggregate derives per-view summaries from book records.
//
// All functions are pure: they take a record slice and return fresh
// collections. Derived data is recomputed wholesale whenever the filtered
// record set or the top-N genre list changes; nothing here updates
// incrementally.
package aggregate

import (
	"slices"

	"github.com/bookscape/bookscape-server/internal/domain"
)

// ByCountry groups records by most popular country. Records with an empty
// country are excluded. Output order is unspecified; callers must not rely
// on it.
func ByCountry(records []domain.BookRecord) []domain.CountryAggregate {
	type group struct {
		count     int
		ratingSum float64
	}
	groups := make(map[string]*group)
	for i := range records {
		c := records[i].MostPopularCountry
		if c == "" {
			continue
		}
		g := groups[c]
		if g == nil {
			g = &group{}
			groups[c] = g
		}
		g.count++
		g.ratingSum += records[i].RatingAverage
	}

	out := make([]domain.CountryAggregate, 0, len(groups))
	for country, g := range groups {
		out = append(out, domain.CountryAggregate{
			Country:   country,
			Count:     g.count,
			AvgRating: g.ratingSum / float64(g.count),
		})
	}
	return out
}

// ByGenre groups records by genre. Records with an empty genre are excluded.
// Output order is unspecified.
func ByGenre(records []domain.BookRecord) []domain.GenreAggregate {
	type group struct {
		count   int
		rating  float64
		pages   int
	}
	groups := make(map[string]*group)
	for i := range records {
		genre := records[i].Genre
		if genre == "" {
			continue
		}
		g := groups[genre]
		if g == nil {
			g = &group{}
			groups[genre] = g
		}
		g.count++
		g.rating += records[i].RatingAverage
		g.pages += records[i].PageCount
	}

	out := make([]domain.GenreAggregate, 0, len(groups))
	for genre, g := range groups {
		out = append(out, domain.GenreAggregate{
			Genre:        genre,
			Count:        g.count,
			AvgRating:    g.rating / float64(g.count),
			AvgPageCount: float64(g.pages) / float64(g.count),
		})
	}
	return out
}

// TopGenres returns up to n genre names sorted by descending record count.
// Ties are broken by first-encountered order in the input, which keeps the
// result stable across repeated calls on the same record slice.
func TopGenres(records []domain.BookRecord, n int) []string {
	if n <= 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i := range records {
		genre := records[i].Genre
		if genre == "" {
			continue
		}
		if _, ok := counts[genre]; !ok {
			firstSeen[genre] = len(order)
			order = append(order, genre)
		}
		counts[genre]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		if counts[b] != counts[a] {
			return counts[b] - counts[a]
		}
		return firstSeen[a] - firstSeen[b]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// FilterByGenres returns the records whose genre is in genres. An empty genre
// list means "no filter" and returns the input unchanged, not an empty slice.
func FilterByGenres(records []domain.BookRecord, genres []string) []domain.BookRecord {
	if len(genres) == 0 {
		return records
	}

	allowed := make(map[string]bool, len(genres))
	for _, g := range genres {
		allowed[g] = true
	}

	out := make([]domain.BookRecord, 0, len(records))
	for i := range records {
		if allowed[records[i].Genre] {
			out = append(out, records[i])
		}
	}
	return out
}
