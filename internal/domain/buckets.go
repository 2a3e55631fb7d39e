package domain

import "fmt"

// ratingFields maps rating values 1..10 to their hash field names.
// The field name is the wire format; the RatingBucket type carries the
// numeric value so nothing depends on positional indexing.
var ratingFields = [10]string{
	"one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "ten",
}

// RatingBucket is a discrete rating value between 1 and 10.
// The zero value means "no rating".
type RatingBucket int

const (
	RatingMin RatingBucket = 1
	RatingMax RatingBucket = 10
)

// Valid reports whether b is inside the known bucket set.
func (b RatingBucket) Valid() bool {
	return RatingMin <= b && b <= RatingMax
}

// Value returns the numeric rating value (1..10).
func (b RatingBucket) Value() int {
	return int(b)
}

// Field returns the hash field name for this bucket ("one".."ten").
func (b RatingBucket) Field() string {
	if !b.Valid() {
		return ""
	}
	return ratingFields[b-1]
}

// RatingBucketFromValue converts a stored numeric value into a bucket.
// Values outside 1..10 indicate corrupt data upstream.
func RatingBucketFromValue(v int) (RatingBucket, error) {
	b := RatingBucket(v)
	if !b.Valid() {
		return 0, fmt.Errorf("%w: rating value %d", ErrInvalidBucket, v)
	}
	return b, nil
}

// RatingFields returns the ten rating field names in value order.
func RatingFields() []string {
	fields := make([]string, len(ratingFields))
	copy(fields, ratingFields[:])
	return fields
}

// Recommendation is a discrete recommendation choice.
// The zero value (empty string) means "no recommendation".
type Recommendation string

const (
	RecommendYes         Recommendation = "yes"
	RecommendConditional Recommendation = "conditional"
	RecommendNo          Recommendation = "no"
)

// recommendations lists the choices in histogram order.
var recommendations = [3]Recommendation{RecommendYes, RecommendConditional, RecommendNo}

// Valid reports whether r is one of the known choices.
func (r Recommendation) Valid() bool {
	return r == RecommendYes || r == RecommendConditional || r == RecommendNo
}

// Field returns the hash field name for this choice ("recommend_yes" etc.).
func (r Recommendation) Field() string {
	if !r.Valid() {
		return ""
	}
	return "recommend_" + string(r)
}

// Index returns the position of r in the recommendation count vector.
func (r Recommendation) Index() int {
	for i, c := range recommendations {
		if c == r {
			return i
		}
	}
	return -1
}

// ParseRecommendation converts a stored choice string into a Recommendation.
func ParseRecommendation(s string) (Recommendation, error) {
	r := Recommendation(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: recommendation %q", ErrInvalidBucket, s)
	}
	return r, nil
}

// RecommendationFields returns the three recommendation field names in
// histogram order.
func RecommendationFields() []string {
	fields := make([]string, len(recommendations))
	for i, r := range recommendations {
		fields[i] = r.Field()
	}
	return fields
}

// Recommendations returns the choices in histogram order.
func Recommendations() []Recommendation {
	return recommendations[:]
}
