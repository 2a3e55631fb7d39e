package vote

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mister-vinster/ml-movies/internal/domain"
)

// Exporter produces the tabular final-count view: one row per movie, one
// column per bucket, baseline and live increments already merged.
type Exporter struct {
	aggregator *Aggregator
}

func NewExporter(aggregator *Aggregator) *Exporter {
	return &Exporter{aggregator: aggregator}
}

func exportHeader() []string {
	header := []string{"id", "title", "original_title", "release_date"}
	header = append(header, domain.RatingFields()...)
	header = append(header, domain.RecommendationFields()...)
	return append(header, "total_ratings", "average_rating")
}

func exportRow(movie domain.Movie, agg domain.Aggregate) []string {
	row := []string{movie.ID, movie.Title, movie.OriginalTitle, ""}
	if movie.ReleaseDate != nil {
		row[3] = movie.ReleaseDate.Format("2006-01-02")
	}
	for _, c := range agg.RatingCounts {
		row = append(row, strconv.FormatInt(c, 10))
	}
	for _, c := range agg.RecommendCounts {
		row = append(row, strconv.FormatInt(c, 10))
	}
	row = append(row, strconv.FormatInt(agg.TotalRatings(), 10))
	return append(row, strconv.FormatFloat(agg.AverageRating(), 'f', 2, 64))
}

// WriteCSV streams the export for the given movies to w.
func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer, movies []domain.Movie) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader()); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, movie := range movies {
		agg, err := e.aggregator.Aggregate(ctx, movie)
		if err != nil {
			return err
		}
		if err := cw.Write(exportRow(movie, agg)); err != nil {
			return fmt.Errorf("failed to write export row for movie %s: %w", movie.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
