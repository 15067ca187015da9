// Package recommend drives title suggestion and metadata resolution to produce
// the final list of movies for a prompt.
package recommend

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc/iter"

	"cinemuse/internal/failure"
	"cinemuse/internal/metrics"
	"cinemuse/models"
)

// TitleSuggester proposes candidate titles for a prompt.
type TitleSuggester interface {
	SuggestTitles(ctx context.Context, prompt string, lang models.Language) ([]models.TitleCandidate, error)
	Configured() bool
}

// MovieResolver turns a candidate into a Movie or a NotFound failure.
type MovieResolver interface {
	ResolveMovie(ctx context.Context, candidate models.TitleCandidate, lang models.Language) (models.Movie, error)
	Configured() bool
}

type Service struct {
	suggester TitleSuggester
	resolver  MovieResolver
}

func NewService(suggester TitleSuggester, resolver MovieResolver) *Service {
	return &Service{suggester: suggester, resolver: resolver}
}

// SuggestTitles returns the raw candidates without metadata resolution.
func (s *Service) SuggestTitles(ctx context.Context, prompt string, lang models.Language) ([]models.TitleCandidate, error) {
	if !s.suggester.Configured() {
		metrics.RecommendationsTotal.WithLabelValues("not_configured").Inc()
		return nil, failure.New(failure.Configuration, "suggest titles", "language model api key not configured")
	}
	return s.suggester.SuggestTitles(ctx, prompt, lang)
}

type resolution struct {
	movie models.Movie
	err   error
}

// GetRecommendations suggests candidates, resolves them concurrently and keeps
// the ones that resolved, in candidate order. It fails with NoResults when
// none did. Suggestion failures are returned unchanged.
func (s *Service) GetRecommendations(ctx context.Context, prompt string, lang models.Language) ([]models.Movie, error) {
	const op = "get recommendations"
	start := time.Now()

	if !s.suggester.Configured() || !s.resolver.Configured() {
		metrics.RecommendationsTotal.WithLabelValues("not_configured").Inc()
		return nil, failure.New(failure.Configuration, op, "api credentials not configured")
	}

	candidates, err := s.suggester.SuggestTitles(ctx, prompt, lang)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("suggest_failed").Inc()
		return nil, err
	}

	// One goroutine per candidate; the zero-value iterator caps at GOMAXPROCS.
	mapper := iter.Mapper[models.TitleCandidate, resolution]{MaxGoroutines: len(candidates)}
	results := mapper.Map(candidates, func(c *models.TitleCandidate) resolution {
		movie, err := s.resolver.ResolveMovie(ctx, *c, lang)
		return resolution{movie: movie, err: err}
	})

	if ctx.Err() != nil {
		metrics.RecommendationsTotal.WithLabelValues("canceled").Inc()
		return nil, failure.Transport(op, ctx.Err())
	}

	movies := make([]models.Movie, 0, len(results))
	for i, r := range results {
		if r.err == nil {
			movies = append(movies, r.movie)
			continue
		}
		if failure.Is(r.err, failure.NotFound) {
			metrics.CandidatesDropped.Inc()
			log.Printf("[recommend] dropping %q (%d): %v", candidates[i].Title, candidates[i].Year, r.err)
			continue
		}
		metrics.RecommendationsTotal.WithLabelValues("resolve_failed").Inc()
		return nil, r.err
	}

	if len(movies) == 0 {
		metrics.RecommendationsTotal.WithLabelValues("no_results").Inc()
		log.Printf("[recommend] none of %d candidates resolved lang=%s", len(candidates), lang)
		return nil, failure.Wrap(failure.NoResults, op, failure.ErrNoResults)
	}

	metrics.RecommendationsTotal.WithLabelValues("success").Inc()
	log.Printf("[recommend] %d/%d candidates resolved lang=%s in %s", len(movies), len(candidates), lang, time.Since(start).Round(time.Millisecond))
	return movies, nil
}
