package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"cinemuse/internal/failure"
	"cinemuse/internal/upstream"
)

const (
	DefaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	DefaultTMDBImageBaseURL = "https://image.tmdb.org/t/p"

	tmdbPosterSize = "w500"
	tmdbLogoSize   = "w92"

	maxTMDBResponseBytes = 4 << 20
)

// Minimal TMDB v3 client: movie search, details with credits, and reviews.
type tmdbClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	breaker *upstream.Breaker
}

func newTMDBClient(apiKey, baseURL string, httpc *http.Client, minInterval time.Duration, breaker *upstream.Breaker) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultTMDBBaseURL
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return &tmdbClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: baseURL,
		httpc:   httpc,
		limiter: limiter,
		breaker: breaker,
	}
}

type tmdbSearchResponse struct {
	Results []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		ReleaseDate string `json:"release_date"`
	} `json:"results"`
}

type tmdbCastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type tmdbCrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type tmdbMovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
	Credits     struct {
		Cast []tmdbCastMember `json:"cast"`
		Crew []tmdbCrewMember `json:"crew"`
	} `json:"credits"`
}

type tmdbReview struct {
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type tmdbReviewsResponse struct {
	Results []tmdbReview `json:"results"`
}

// tmdbStatus is the error payload TMDB returns alongside non-2xx statuses.
type tmdbStatus struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// searchMovie returns the first result's id. A year of 0 searches all years.
// Zero results is a NotFound failure.
func (c *tmdbClient) searchMovie(ctx context.Context, title string, year int, langCode string) (int64, error) {
	q := url.Values{}
	q.Set("query", title)
	q.Set("language", langCode)
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	var resp tmdbSearchResponse
	if err := c.getJSON(ctx, "tmdb search", "/search/movie", q, &resp); err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 || resp.Results[0].ID == 0 {
		return 0, failure.New(failure.NotFound, "tmdb search", fmt.Sprintf("no results for %q (%d)", title, year))
	}
	return resp.Results[0].ID, nil
}

func (c *tmdbClient) movieDetails(ctx context.Context, id int64, langCode string) (*tmdbMovieDetails, error) {
	q := url.Values{}
	q.Set("language", langCode)
	q.Set("append_to_response", "credits")
	var details tmdbMovieDetails
	if err := c.getJSON(ctx, "tmdb details", fmt.Sprintf("/movie/%d", id), q, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// movieReviews fetches the review feed across all languages.
func (c *tmdbClient) movieReviews(ctx context.Context, id int64) ([]tmdbReview, error) {
	var resp tmdbReviewsResponse
	if err := c.getJSON(ctx, "tmdb reviews", fmt.Sprintf("/movie/%d/reviews", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *tmdbClient) getJSON(ctx context.Context, op, path string, q url.Values, v any) error {
	_, err := upstream.Execute(ctx, c.breaker, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.doGET(ctx, op, path, q, v)
	})
	return err
}

// doGET performs one request. It does not retry.
func (c *tmdbClient) doGET(ctx context.Context, op, path string, q url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return failure.Transport(op, err)
	}

	params := url.Values{}
	for k, vals := range q {
		params[k] = vals
	}
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return failure.Transport(op, ctx.Err())
		}
		return failure.Transport(op, c.redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTMDBResponseBytes))
	if err != nil {
		return failure.Transport(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var status tmdbStatus
		if json.Unmarshal(body, &status) == nil && status.StatusMessage != "" {
			kind := failure.UpstreamRefusal
			if resp.StatusCode == http.StatusNotFound {
				kind = failure.NotFound
			}
			return failure.Upstream(kind, op, resp.StatusCode, body,
				fmt.Errorf("tmdb status %d: %s", status.StatusCode, status.StatusMessage))
		}
		return failure.Upstream(failure.TransportFailure, op, resp.StatusCode, body,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return failure.Upstream(failure.TransportFailure, op, resp.StatusCode, body, fmt.Errorf("decode: %w", err))
	}
	return nil
}

func (c *tmdbClient) redact(err error) error {
	if c.apiKey == "" || !strings.Contains(err.Error(), c.apiKey) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
}

// buildTMDBImage resolves an image path fragment against the image base at the
// given size. An empty path yields nil.
func buildTMDBImage(base, path, size string) *string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = DefaultTMDBImageBaseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := fmt.Sprintf("%s/%s%s", base, size, path)
	return &u
}

// parseTMDBYear extracts the year from a YYYY-MM-DD release date, or 0.
func parseTMDBYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
