package domain

import (
	"fmt"
	"time"
)

// FilterType selects how a ranking filter compares release dates.
type FilterType string

const (
	FilterAllTime       FilterType = "all_time"
	FilterThisYear      FilterType = "this_year"
	FilterThisMonth     FilterType = "this_month"
	FilterSpecificYear  FilterType = "specific_year"
	FilterSpecificMonth FilterType = "specific_month"
)

// FilterState is a pure value driving the ranking engine's date filter.
// Year and Month discriminate the specific_year and specific_month types;
// the this_year and this_month types compare against evaluation time.
type FilterState struct {
	Type  FilterType
	Year  int
	Month time.Month
}

// ParseFilterType validates a filter type string.
func ParseFilterType(s string) (FilterType, error) {
	switch t := FilterType(s); t {
	case FilterAllTime, FilterThisYear, FilterThisMonth, FilterSpecificYear, FilterSpecificMonth:
		return t, nil
	default:
		return "", fmt.Errorf("unknown filter type %q", s)
	}
}

// Matches reports whether a movie with the given release date passes the
// filter at evaluation time now. Movies without a release date pass only
// the all_time filter.
func (f FilterState) Matches(releaseDate *time.Time, now time.Time) bool {
	if f.Type == FilterAllTime || f.Type == "" {
		return true
	}
	if releaseDate == nil {
		return false
	}
	switch f.Type {
	case FilterThisYear:
		return releaseDate.Year() == now.Year()
	case FilterThisMonth:
		return releaseDate.Year() == now.Year() && releaseDate.Month() == now.Month()
	case FilterSpecificYear:
		return releaseDate.Year() == f.Year
	case FilterSpecificMonth:
		return releaseDate.Year() == f.Year && releaseDate.Month() == f.Month
	default:
		return false
	}
}
