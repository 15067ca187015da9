package models

import (
	"math"
	"strconv"
)

// TitleCandidate is a {title, year} pair proposed by the language model and not yet
// verified against the metadata service. Year is 0 when the model did not supply one.
type TitleCandidate struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// Review is a single user review attached to a movie.
type Review struct {
	Username string `json:"username"`
	Date     string `json:"date"`    // locale date string
	Comment  string `json:"comment"` // truncated, see metadata.truncateComment
}

// StreamingPlatform links a movie to a streaming service, usually via a search URL.
type StreamingPlatform struct {
	Name    string  `json:"name"`
	URL     string  `json:"url"`
	LogoURL *string `json:"logoUrl"`
}

// Rating carries the metadata service's vote average at source precision and
// serializes it rounded to one decimal.
type Rating float64

// Rounded returns the rating rounded to one decimal place.
func (r Rating) Rounded() float64 {
	return math.Round(float64(r)*10) / 10
}

// String formats the rating for display, e.g. "8.4".
func (r Rating) String() string {
	return strconv.FormatFloat(r.Rounded(), 'f', 1, 64)
}

func (r Rating) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

// Movie is the display-ready unit. It is only built after a successful metadata lookup.
type Movie struct {
	Title          string              `json:"title"`
	Year           int                 `json:"year"`
	Director       string              `json:"director"`
	Actors         []string            `json:"actors"`
	Rating         Rating              `json:"rating"`
	Summary        string              `json:"summary"`
	Reviews        []Review            `json:"reviews"`
	StreamingLinks []StreamingPlatform `json:"streamingLinks"`
	PosterURL      *string             `json:"posterUrl"`
}
