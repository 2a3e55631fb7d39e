package domain

// VoteRecord is one user's vote for one movie. Absence of a record means
// "not yet voted"; a record is created whole on Submit and removed whole
// on Reset, never partially updated.
type VoteRecord struct {
	Rating         RatingBucket   // zero when no rating was cast
	Recommendation Recommendation // empty when no recommendation was cast
}

// HasRating reports whether the record carries a rating.
func (v VoteRecord) HasRating() bool {
	return v.Rating.Valid()
}

// HasRecommendation reports whether the record carries a recommendation.
func (v VoteRecord) HasRecommendation() bool {
	return v.Recommendation.Valid()
}

// Voted reports whether any vote is outstanding for this (movie, user).
func (v VoteRecord) Voted() bool {
	return v.HasRating() || v.HasRecommendation()
}

// Aggregate is the merged (baseline + live) count vector pair for a movie.
// RatingCounts[i] holds the number of ratings with value i+1.
// RecommendCounts is ordered yes, conditional, no.
type Aggregate struct {
	RatingCounts    [10]int64
	RecommendCounts [3]int64
}

// Add returns the element-wise sum of two aggregates.
func (a Aggregate) Add(b Aggregate) Aggregate {
	var sum Aggregate
	for i := range a.RatingCounts {
		sum.RatingCounts[i] = a.RatingCounts[i] + b.RatingCounts[i]
	}
	for i := range a.RecommendCounts {
		sum.RecommendCounts[i] = a.RecommendCounts[i] + b.RecommendCounts[i]
	}
	return sum
}

// TotalRatings returns the number of outstanding ratings.
func (a Aggregate) TotalRatings() int64 {
	var total int64
	for _, c := range a.RatingCounts {
		total += c
	}
	return total
}

// TotalRecommendations returns the number of outstanding recommendations.
func (a Aggregate) TotalRecommendations() int64 {
	var total int64
	for _, c := range a.RecommendCounts {
		total += c
	}
	return total
}

// AverageRating returns the mean rating value, or 0 when no ratings exist.
func (a Aggregate) AverageRating() float64 {
	total := a.TotalRatings()
	if total == 0 {
		return 0
	}
	var weighted int64
	for i, c := range a.RatingCounts {
		weighted += c * int64(i+1)
	}
	return float64(weighted) / float64(total)
}

// RatingCount returns the count for one rating bucket.
func (a Aggregate) RatingCount(b RatingBucket) int64 {
	if !b.Valid() {
		return 0
	}
	return a.RatingCounts[b-1]
}

// RecommendCount returns the count for one recommendation choice.
func (a Aggregate) RecommendCount(r Recommendation) int64 {
	i := r.Index()
	if i < 0 {
		return 0
	}
	return a.RecommendCounts[i]
}
