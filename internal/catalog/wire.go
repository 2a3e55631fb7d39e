package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mister-vinster/ml-movies/internal/domain"
)

const releaseDateLayout = "2006-01-02"

// rawSnapshot mirrors the JSON document moderators edit.
type rawSnapshot struct {
	Mods   []string          `json:"mods"`
	Movies []rawMovie        `json:"movies"`
	Refs   map[string]string `json:"refs,omitempty"`
}

type rawMovie struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	OriginalTitle  string `json:"original_title,omitempty"`
	ReleaseDate    string `json:"release_date,omitempty"`
	ImageURI       string `json:"image_uri,omitempty"`
	SecondaryKey   string `json:"secondary_key,omitempty"`
	SecondaryValue string `json:"secondary_value,omitempty"`
	TertiaryKey    string `json:"tertiary_key,omitempty"`

	One   int64 `json:"one,omitempty"`
	Two   int64 `json:"two,omitempty"`
	Three int64 `json:"three,omitempty"`
	Four  int64 `json:"four,omitempty"`
	Five  int64 `json:"five,omitempty"`
	Six   int64 `json:"six,omitempty"`
	Seven int64 `json:"seven,omitempty"`
	Eight int64 `json:"eight,omitempty"`
	Nine  int64 `json:"nine,omitempty"`
	Ten   int64 `json:"ten,omitempty"`

	RecommendYes         int64 `json:"recommend_yes,omitempty"`
	RecommendConditional int64 `json:"recommend_conditional,omitempty"`
	RecommendNo          int64 `json:"recommend_no,omitempty"`
}

func (m rawMovie) baselines() []int64 {
	return []int64{
		m.One, m.Two, m.Three, m.Four, m.Five,
		m.Six, m.Seven, m.Eight, m.Nine, m.Ten,
		m.RecommendYes, m.RecommendConditional, m.RecommendNo,
	}
}

// ParseSnapshot decodes and validates a snapshot document. Image refs are
// resolved into each movie's ImageURI so downstream code never touches the
// refs map.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	var doc rawSnapshot
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("configs are not valid JSON: %w", err)
	}

	if len(doc.Mods) == 0 {
		return nil, fmt.Errorf("configs need at least one moderator")
	}
	if len(doc.Movies) == 0 {
		return nil, fmt.Errorf("configs need at least one movie")
	}

	snap := &Snapshot{
		Mods:   doc.Mods,
		Movies: make([]domain.Movie, 0, len(doc.Movies)),
		Refs:   doc.Refs,
	}

	seen := make(map[string]bool, len(doc.Movies))
	for i, rm := range doc.Movies {
		movie, err := rm.toDomain(doc.Refs)
		if err != nil {
			return nil, fmt.Errorf("movie %d: %w", i, err)
		}
		if seen[movie.ID] {
			return nil, fmt.Errorf("movie %d: duplicate id %q", i, movie.ID)
		}
		seen[movie.ID] = true
		snap.Movies = append(snap.Movies, movie)
	}

	return snap, nil
}

func (m rawMovie) toDomain(refs map[string]string) (domain.Movie, error) {
	if m.ID == "" {
		return domain.Movie{}, fmt.Errorf("id is required")
	}
	if m.Title == "" {
		return domain.Movie{}, fmt.Errorf("title is required")
	}
	for _, count := range m.baselines() {
		if count < 0 {
			return domain.Movie{}, fmt.Errorf("baseline counts must not be negative")
		}
	}

	movie := domain.Movie{
		ID:             m.ID,
		Title:          m.Title,
		OriginalTitle:  m.OriginalTitle,
		ImageURI:       m.ImageURI,
		SecondaryKey:   m.SecondaryKey,
		SecondaryValue: m.SecondaryValue,
		TertiaryKey:    m.TertiaryKey,
	}

	if m.ReleaseDate != "" {
		date, err := time.Parse(releaseDateLayout, m.ReleaseDate)
		if err != nil {
			return domain.Movie{}, fmt.Errorf("release_date %q is not YYYY-MM-DD", m.ReleaseDate)
		}
		movie.ReleaseDate = &date
	}

	// A ref entry maps a shorthand image id to its resolved URL.
	if resolved, ok := refs[m.ImageURI]; ok {
		movie.ImageURI = resolved
	}

	movie.Baseline = domain.Aggregate{
		RatingCounts: [10]int64{
			m.One, m.Two, m.Three, m.Four, m.Five,
			m.Six, m.Seven, m.Eight, m.Nine, m.Ten,
		},
		RecommendCounts: [3]int64{m.RecommendYes, m.RecommendConditional, m.RecommendNo},
	}

	return movie, nil
}
