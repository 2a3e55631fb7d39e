package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mister-vinster/ml-movies/internal/domain"
	apperrors "github.com/mister-vinster/ml-movies/internal/errors"
	"github.com/mister-vinster/ml-movies/internal/vote"
)

func (s *Server) handleRankings(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}

	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	ranked, err := s.engine.Rankings(ctx, snap.Movies, filter, c.QueryParam("q"), s.clock.Now())
	if err != nil {
		return err
	}

	return c.JSON(200, map[string]any{
		"movies": toRankedResponse(ranked),
	})
}

func (s *Server) handleFilters(c echo.Context) error {
	snap, err := s.catalog.Load(c.Request().Context())
	if err != nil {
		return err
	}

	response := map[string]any{
		"years": vote.AvailableYears(snap.Movies),
	}
	if yearParam := c.QueryParam("year"); yearParam != "" {
		year, convErr := strconv.Atoi(yearParam)
		if convErr != nil {
			return apperrors.ValidationError("invalid year").WithContext("year", yearParam)
		}
		response["months"] = vote.AvailableMonths(snap.Movies, year)
	}

	return c.JSON(200, response)
}

func (s *Server) handleMovie(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := s.userID(c)
	if err != nil {
		return err
	}

	movie, err := s.loadMovie(c)
	if err != nil {
		return err
	}

	agg, err := s.engine.Aggregate(ctx, movie)
	if err != nil {
		return err
	}
	record, err := s.engine.Vote(ctx, movie.ID, userID)
	if err != nil {
		return err
	}

	return c.JSON(200, map[string]any{
		"movie":     toMovieResponse(movie),
		"aggregate": toAggregateResponse(agg),
		"vote":      toVoteResponse(record),
	})
}

func (s *Server) handleSubmitVote(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := s.userID(c)
	if err != nil {
		return err
	}

	movie, err := s.loadMovie(c)
	if err != nil {
		return err
	}

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Rating == 0 && req.Recommendation == "" {
		return apperrors.ValidationError("vote needs a rating or a recommendation")
	}

	var rating domain.RatingBucket
	if req.Rating != 0 {
		rating, err = domain.RatingBucketFromValue(req.Rating)
		if err != nil {
			return apperrors.ValidationError("rating must be between 1 and 10").
				WithContext("rating", req.Rating)
		}
	}

	var recommendation domain.Recommendation
	if req.Recommendation != "" {
		recommendation, err = domain.ParseRecommendation(req.Recommendation)
		if err != nil {
			return apperrors.ValidationError("unknown recommendation").
				WithContext("recommendation", req.Recommendation)
		}
	}

	agg, err := s.engine.Submit(ctx, movie, userID, rating, recommendation)
	if errors.Is(err, domain.ErrAlreadyVoted) {
		return c.JSON(200, map[string]any{
			"status":    "already_voted",
			"aggregate": toAggregateResponse(agg),
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(200, map[string]any{
		"status":    "submitted",
		"aggregate": toAggregateResponse(agg),
	})
}

func (s *Server) handleResetVote(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := s.userID(c)
	if err != nil {
		return err
	}

	movie, err := s.loadMovie(c)
	if err != nil {
		return err
	}

	agg, err := s.engine.Reset(ctx, movie, userID)
	if errors.Is(err, domain.ErrNothingToReset) {
		return c.JSON(200, map[string]any{
			"status":    "nothing_to_reset",
			"aggregate": toAggregateResponse(agg),
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(200, map[string]any{
		"status":    "reset",
		"aggregate": toAggregateResponse(agg),
	})
}

func (s *Server) handleExport(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="movies.csv"`)
	c.Response().WriteHeader(200)

	return s.engine.Exporter().WriteCSV(ctx, c.Response(), snap.Movies)
}

// loadMovie resolves the :id route param against the current catalog.
func (s *Server) loadMovie(c echo.Context) (domain.Movie, error) {
	snap, err := s.catalog.Load(c.Request().Context())
	if err != nil {
		return domain.Movie{}, err
	}

	movie, ok := snap.Movie(c.Param("id"))
	if !ok {
		return domain.Movie{}, apperrors.NotFoundError("movie not found").
			WithContext("movie_id", c.Param("id"))
	}
	return movie, nil
}

func parseFilter(c echo.Context) (domain.FilterState, error) {
	filterParam := c.QueryParam("filter")
	if filterParam == "" {
		return domain.FilterState{Type: domain.FilterAllTime}, nil
	}

	filterType, err := domain.ParseFilterType(filterParam)
	if err != nil {
		return domain.FilterState{}, apperrors.ValidationError("unknown filter type").
			WithContext("filter", filterParam)
	}

	filter := domain.FilterState{Type: filterType}

	if filterType == domain.FilterSpecificYear || filterType == domain.FilterSpecificMonth {
		year, convErr := strconv.Atoi(c.QueryParam("year"))
		if convErr != nil {
			return domain.FilterState{}, apperrors.ValidationError("filter requires a year").
				WithContext("year", c.QueryParam("year"))
		}
		filter.Year = year
	}
	if filterType == domain.FilterSpecificMonth {
		month, convErr := strconv.Atoi(c.QueryParam("month"))
		if convErr != nil || month < 1 || month > 12 {
			return domain.FilterState{}, apperrors.ValidationError("filter requires a month between 1 and 12").
				WithContext("month", c.QueryParam("month"))
		}
		filter.Month = time.Month(month)
	}

	return filter, nil
}
