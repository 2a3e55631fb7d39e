package vote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mister-vinster/ml-movies/internal/domain"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func aggregateWithRatings(counts map[domain.RatingBucket]int64) domain.Aggregate {
	var agg domain.Aggregate
	for bucket, count := range counts {
		agg.RatingCounts[bucket-1] = count
	}
	return agg
}

var rankNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestRankOrdersByAverageThenVotes(t *testing.T) {
	movies := []domain.Movie{
		{ID: "low", Title: "Low"},
		{ID: "high", Title: "High"},
		{ID: "popular", Title: "Popular"},
	}
	aggregates := map[string]domain.Aggregate{
		"low":     aggregateWithRatings(map[domain.RatingBucket]int64{4: 2}),
		"high":    aggregateWithRatings(map[domain.RatingBucket]int64{8: 1}),
		"popular": aggregateWithRatings(map[domain.RatingBucket]int64{8: 5}),
	}

	ranked := Rank(movies, aggregates, domain.FilterState{Type: domain.FilterAllTime}, "", rankNow)

	require.Len(t, ranked, 3)
	// Equal averages: more votes first.
	assert.Equal(t, "popular", ranked[0].Movie.ID)
	assert.Equal(t, "high", ranked[1].Movie.ID)
	assert.Equal(t, "low", ranked[2].Movie.ID)
}

func TestRankPutsZeroVoteMoviesLast(t *testing.T) {
	movies := []domain.Movie{
		{ID: "unrated", Title: "Unrated"},
		{ID: "rated", Title: "Rated"},
	}
	aggregates := map[string]domain.Aggregate{
		"rated": aggregateWithRatings(map[domain.RatingBucket]int64{1: 1}),
	}

	ranked := Rank(movies, aggregates, domain.FilterState{Type: domain.FilterAllTime}, "", rankNow)

	require.Len(t, ranked, 2)
	assert.Equal(t, "rated", ranked[0].Movie.ID)
	assert.Equal(t, "unrated", ranked[1].Movie.ID)
	assert.Zero(t, ranked[1].AverageRating)
}

func TestRankSpecificMonthFilter(t *testing.T) {
	movies := []domain.Movie{
		{ID: "march", Title: "March", ReleaseDate: date(2024, time.March, 10)},
	}

	included := Rank(movies, nil, domain.FilterState{
		Type: domain.FilterSpecificMonth, Year: 2024, Month: time.March,
	}, "", rankNow)
	require.Len(t, included, 1)

	excluded := Rank(movies, nil, domain.FilterState{
		Type: domain.FilterSpecificMonth, Year: 2024, Month: time.April,
	}, "", rankNow)
	assert.Empty(t, excluded)
}

func TestRankExcludesUndatedMoviesFromDateFilters(t *testing.T) {
	movies := []domain.Movie{
		{ID: "undated", Title: "Undated"},
		{ID: "dated", Title: "Dated", ReleaseDate: date(2024, time.June, 1)},
	}

	allTime := Rank(movies, nil, domain.FilterState{Type: domain.FilterAllTime}, "", rankNow)
	assert.Len(t, allTime, 2)

	for _, filter := range []domain.FilterState{
		{Type: domain.FilterThisYear},
		{Type: domain.FilterThisMonth},
		{Type: domain.FilterSpecificYear, Year: 2024},
		{Type: domain.FilterSpecificMonth, Year: 2024, Month: time.June},
	} {
		ranked := Rank(movies, nil, filter, "", rankNow)
		require.Len(t, ranked, 1, "filter %s", filter.Type)
		assert.Equal(t, "dated", ranked[0].Movie.ID)
	}
}

func TestRankRelativeFiltersUseEvaluationTime(t *testing.T) {
	movies := []domain.Movie{
		{ID: "thismonth", Title: "A", ReleaseDate: date(2024, time.June, 2)},
		{ID: "lastyear", Title: "B", ReleaseDate: date(2023, time.June, 2)},
	}

	thisYear := Rank(movies, nil, domain.FilterState{Type: domain.FilterThisYear}, "", rankNow)
	require.Len(t, thisYear, 1)
	assert.Equal(t, "thismonth", thisYear[0].Movie.ID)

	thisMonth := Rank(movies, nil, domain.FilterState{Type: domain.FilterThisMonth}, "", rankNow)
	require.Len(t, thisMonth, 1)
	assert.Equal(t, "thismonth", thisMonth[0].Movie.ID)
}

func TestRankTitleSearch(t *testing.T) {
	movies := []domain.Movie{
		{ID: "m1", Title: "The Godfather"},
		{ID: "m2", Title: "Seven Samurai", OriginalTitle: "Shichinin no Samurai"},
	}

	byTitle := Rank(movies, nil, domain.FilterState{Type: domain.FilterAllTime}, "godfather", rankNow)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "m1", byTitle[0].Movie.ID)

	byOriginal := Rank(movies, nil, domain.FilterState{Type: domain.FilterAllTime}, "shichinin", rankNow)
	require.Len(t, byOriginal, 1)
	assert.Equal(t, "m2", byOriginal[0].Movie.ID)
}

func TestRankIsPure(t *testing.T) {
	movies := []domain.Movie{
		{ID: "m1", Title: "A"},
		{ID: "m2", Title: "B"},
	}
	aggregates := map[string]domain.Aggregate{
		"m1": aggregateWithRatings(map[domain.RatingBucket]int64{3: 1}),
	}
	filter := domain.FilterState{Type: domain.FilterAllTime}

	first := Rank(movies, aggregates, filter, "", rankNow)
	second := Rank(movies, aggregates, filter, "", rankNow)
	assert.Equal(t, first, second)

	// Input order does not matter.
	reversed := Rank([]domain.Movie{movies[1], movies[0]}, aggregates, filter, "", rankNow)
	assert.Equal(t, first, reversed)
}

func TestAvailableYearsAndMonths(t *testing.T) {
	movies := []domain.Movie{
		{ID: "m1", ReleaseDate: date(2022, time.May, 1)},
		{ID: "m2", ReleaseDate: date(2024, time.March, 1)},
		{ID: "m3", ReleaseDate: date(2024, time.January, 1)},
		{ID: "m4"},
	}

	assert.Equal(t, []int{2024, 2022}, AvailableYears(movies))
	assert.Equal(t, []time.Month{time.January, time.March}, AvailableMonths(movies, 2024))
	assert.Empty(t, AvailableMonths(movies, 2020))
}
