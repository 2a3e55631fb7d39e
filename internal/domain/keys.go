package domain

// Keys builds the counter store key layout for one post/instance.
//
// Key schema, for post P and movie E:
//
//	P|movie-E|rating          hash: userID -> rating value
//	P|movie-E|ratings         hash: bucket field -> live increment
//	P|movie-E|recommendation  hash: userID -> recommendation choice
//	P|movie-E|recommendations hash: bucket field -> live increment
//	P|configs                 configuration snapshot JSON
type Keys struct {
	PostID string
}

func (k Keys) prefix(movieID string) string {
	return k.PostID + "|movie-" + movieID
}

// Rating is the per-user rating hash key for a movie.
func (k Keys) Rating(movieID string) string {
	return k.prefix(movieID) + "|rating"
}

// Ratings is the rating histogram hash key for a movie.
func (k Keys) Ratings(movieID string) string {
	return k.prefix(movieID) + "|ratings"
}

// Recommendation is the per-user recommendation hash key for a movie.
func (k Keys) Recommendation(movieID string) string {
	return k.prefix(movieID) + "|recommendation"
}

// Recommendations is the recommendation histogram hash key for a movie.
func (k Keys) Recommendations(movieID string) string {
	return k.prefix(movieID) + "|recommendations"
}

// Configs is the configuration snapshot key.
func (k Keys) Configs() string {
	return k.PostID + "|configs"
}
