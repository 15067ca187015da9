// Package metadata resolves title candidates into display-ready movies using
// The Movie Database (TMDB).
package metadata

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"

	"cinemuse/internal/failure"
	"cinemuse/internal/upstream"
	"cinemuse/models"
)

type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	MinInterval  time.Duration
	// CacheDir and CacheTTLHours enable the lookup cache. Zero TTL disables it.
	CacheDir      string
	CacheTTLHours int
}

type Options struct {
	Breaker *upstream.Breaker
	// Fs backs the lookup cache. Nil uses the OS filesystem.
	Fs afero.Fs
}

// Client is the metadata enrichment client.
type Client struct {
	tmdb      *tmdbClient
	imageBase string
	cache     *fileCache
}

func NewClient(cfg Config, httpc *http.Client, opts Options) *Client {
	imageBase := cfg.ImageBaseURL
	if imageBase == "" {
		imageBase = DefaultTMDBImageBaseURL
	}
	c := &Client{
		tmdb:      newTMDBClient(cfg.APIKey, cfg.BaseURL, httpc, cfg.MinInterval, opts.Breaker),
		imageBase: imageBase,
	}
	if cfg.CacheDir != "" && cfg.CacheTTLHours > 0 {
		c.cache = newFileCache(opts.Fs, cfg.CacheDir, cfg.CacheTTLHours)
	}
	return c
}

// Configured reports whether a TMDB API key is set.
func (c *Client) Configured() bool {
	return c.tmdb.apiKey != ""
}

// ResolveMovie turns a candidate into a Movie. Every failure, including search
// misses and details errors, comes back as a NotFound failure wrapping the cause;
// no partially filled Movie is ever returned.
func (c *Client) ResolveMovie(ctx context.Context, candidate models.TitleCandidate, lang models.Language) (models.Movie, error) {
	const op = "resolve movie"

	if !c.Configured() {
		return models.Movie{}, failure.New(failure.Configuration, op, "tmdb api key not configured")
	}
	langCode := lang.Code()

	id, err := c.lookupID(ctx, candidate, langCode)
	if err != nil {
		if failure.Is(err, failure.NotFound) {
			log.Printf("[metadata] %q (%d) not found on tmdb", candidate.Title, candidate.Year)
		} else {
			log.Printf("[metadata] search failed for %q (%d): %v", candidate.Title, candidate.Year, err)
		}
		return models.Movie{}, notFound(op, err)
	}

	var (
		wg         conc.WaitGroup
		details    *tmdbMovieDetails
		detailsErr error
		reviews    []tmdbReview
		reviewsErr error
	)
	wg.Go(func() { details, detailsErr = c.lookupDetails(ctx, id, langCode) })
	wg.Go(func() { reviews, reviewsErr = c.tmdb.movieReviews(ctx, id) })
	wg.Wait()

	if detailsErr != nil {
		log.Printf("[metadata] details fetch failed for id=%d: %v", id, detailsErr)
		return models.Movie{}, notFound(op, detailsErr)
	}
	if reviewsErr != nil {
		log.Printf("[metadata] warning: could not fetch reviews for id=%d: %v", id, reviewsErr)
		reviews = nil
	}

	return buildMovie(details, reviews, candidate, lang, c.imageBase), nil
}

func notFound(op string, err error) error {
	if failure.Is(err, failure.NotFound) {
		return err
	}
	return &failure.Error{Kind: failure.NotFound, Op: op, Err: err}
}

func (c *Client) lookupID(ctx context.Context, candidate models.TitleCandidate, langCode string) (int64, error) {
	key := cacheKey("search", langCode, candidate.Title, strconv.Itoa(candidate.Year))
	if c.cache != nil {
		var id int64
		if ok, _ := c.cache.get("search", key, &id); ok && id > 0 {
			return id, nil
		}
	}
	id, err := c.tmdb.searchMovie(ctx, candidate.Title, candidate.Year, langCode)
	if err != nil {
		return 0, err
	}
	if c.cache != nil {
		if err := c.cache.set(key, id); err != nil {
			log.Printf("[metadata] cache write failed key=%s: %v", key, err)
		}
	}
	return id, nil
}

func (c *Client) lookupDetails(ctx context.Context, id int64, langCode string) (*tmdbMovieDetails, error) {
	key := cacheKey("movie", fmt.Sprint(id), langCode)
	if c.cache != nil {
		var details tmdbMovieDetails
		if ok, _ := c.cache.get("movie", key, &details); ok && details.ID == id {
			return &details, nil
		}
	}
	details, err := c.tmdb.movieDetails(ctx, id, langCode)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.set(key, details); err != nil {
			log.Printf("[metadata] cache write failed key=%s: %v", key, err)
		}
	}
	return details, nil
}
