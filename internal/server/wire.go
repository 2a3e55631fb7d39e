package server

import (
	"time"

	"github.com/mister-vinster/ml-movies/internal/domain"
	"github.com/mister-vinster/ml-movies/internal/vote"
)

type aggregateResponse struct {
	Ratings         map[string]int64 `json:"ratings"`
	Recommendations map[string]int64 `json:"recommendations"`
	TotalRatings    int64            `json:"total_ratings"`
	AverageRating   float64          `json:"average_rating"`
}

func toAggregateResponse(agg domain.Aggregate) aggregateResponse {
	ratings := make(map[string]int64, len(domain.RatingFields()))
	for i, field := range domain.RatingFields() {
		ratings[field] = agg.RatingCounts[i]
	}
	recommendations := make(map[string]int64, len(domain.RecommendationFields()))
	for i, field := range domain.RecommendationFields() {
		recommendations[field] = agg.RecommendCounts[i]
	}
	return aggregateResponse{
		Ratings:         ratings,
		Recommendations: recommendations,
		TotalRatings:    agg.TotalRatings(),
		AverageRating:   agg.AverageRating(),
	}
}

type voteResponse struct {
	Rating         int    `json:"rating,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	Voted          bool   `json:"voted"`
}

func toVoteResponse(record domain.VoteRecord) voteResponse {
	resp := voteResponse{Voted: record.Voted()}
	if record.HasRating() {
		resp.Rating = record.Rating.Value()
	}
	if record.HasRecommendation() {
		resp.Recommendation = string(record.Recommendation)
	}
	return resp
}

type movieResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title,omitempty"`
	ReleaseDate   string `json:"release_date,omitempty"`
	ImageURI      string `json:"image_uri,omitempty"`
}

func toMovieResponse(movie domain.Movie) movieResponse {
	resp := movieResponse{
		ID:            movie.ID,
		Title:         movie.Title,
		OriginalTitle: movie.OriginalTitle,
		ImageURI:      movie.ImageURI,
	}
	if movie.ReleaseDate != nil {
		resp.ReleaseDate = movie.ReleaseDate.Format(time.DateOnly)
	}
	return resp
}

type rankedMovieResponse struct {
	movieResponse
	AverageRating float64 `json:"average_rating"`
	TotalVotes    int64   `json:"total_votes"`
}

func toRankedResponse(ranked []vote.RankedMovie) []rankedMovieResponse {
	out := make([]rankedMovieResponse, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, rankedMovieResponse{
			movieResponse: toMovieResponse(r.Movie),
			AverageRating: r.AverageRating,
			TotalVotes:    r.TotalVotes,
		})
	}
	return out
}

type voteRequest struct {
	Rating         int    `json:"rating"`
	Recommendation string `json:"recommendation"`
}
