package vote

import (
	"context"
	"sort"
	"time"

	"github.com/mister-vinster/ml-movies/internal/domain"
)

// RankedMovie is one row of the leaderboard.
type RankedMovie struct {
	Movie         domain.Movie
	Aggregate     domain.Aggregate
	AverageRating float64
	TotalVotes    int64
}

// Rank filters and orders movies by their aggregates. Pure function: no
// side effects, identical inputs yield value-identical output.
//
// Date filter first (movies without a release date pass only all_time),
// then case-insensitive title search, then sort: descending average
// rating, ties broken by descending vote count. Zero-vote movies carry an
// average of 0 so they land below any rated movie instead of propagating
// NaN.
func Rank(movies []domain.Movie, aggregates map[string]domain.Aggregate, filter domain.FilterState, query string, now time.Time) []RankedMovie {
	ranked := make([]RankedMovie, 0, len(movies))
	for _, movie := range movies {
		if !filter.Matches(movie.ReleaseDate, now) {
			continue
		}
		if !movie.MatchesQuery(query) {
			continue
		}
		agg := aggregates[movie.ID]
		ranked = append(ranked, RankedMovie{
			Movie:         movie,
			Aggregate:     agg,
			AverageRating: agg.AverageRating(),
			TotalVotes:    agg.TotalRatings(),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AverageRating != ranked[j].AverageRating {
			return ranked[i].AverageRating > ranked[j].AverageRating
		}
		if ranked[i].TotalVotes != ranked[j].TotalVotes {
			return ranked[i].TotalVotes > ranked[j].TotalVotes
		}
		return ranked[i].Movie.Title < ranked[j].Movie.Title
	})

	return ranked
}

// Rankings gathers the current aggregate for every movie and ranks them.
func (e *Engine) Rankings(ctx context.Context, movies []domain.Movie, filter domain.FilterState, query string, now time.Time) ([]RankedMovie, error) {
	aggregates := make(map[string]domain.Aggregate, len(movies))
	for _, movie := range movies {
		agg, err := e.aggregator.Aggregate(ctx, movie)
		if err != nil {
			return nil, err
		}
		aggregates[movie.ID] = agg
	}
	return Rank(movies, aggregates, filter, query, now), nil
}

// AvailableYears returns the distinct release years across the catalog,
// newest first. Drives the ranking page's year selector.
func AvailableYears(movies []domain.Movie) []int {
	seen := make(map[int]bool)
	var years []int
	for _, movie := range movies {
		if movie.ReleaseDate == nil {
			continue
		}
		y := movie.ReleaseDate.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// AvailableMonths returns the distinct release months within one year, in
// calendar order.
func AvailableMonths(movies []domain.Movie, year int) []time.Month {
	seen := make(map[time.Month]bool)
	var months []time.Month
	for _, movie := range movies {
		if movie.ReleaseDate == nil || movie.ReleaseDate.Year() != year {
			continue
		}
		m := movie.ReleaseDate.Month()
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}
