package domain

import (
	"strings"
	"time"
)

// Movie is a rated entity loaded from a configuration snapshot. Movies are
// immutable once loaded; editing configuration replaces them wholesale.
type Movie struct {
	ID             string
	Title          string
	OriginalTitle  string
	ReleaseDate    *time.Time // nil when unknown
	ImageURI       string
	SecondaryKey   string
	SecondaryValue string
	TertiaryKey    string

	// Baseline holds pre-existing tallies shipped with the configuration,
	// merged with live store increments on every read.
	Baseline Aggregate
}

// MatchesQuery reports whether the movie's title or original title
// contains the query, case-insensitively. An empty query matches
// everything.
func (m Movie) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(m.Title), q) {
		return true
	}
	return m.OriginalTitle != "" && strings.Contains(strings.ToLower(m.OriginalTitle), q)
}
