package metadata

import (
	"sort"
	"strings"
	"time"

	"cinemuse/models"
)

const (
	maxActors     = 5
	maxReviews    = 5
	maxCommentLen = 350
	noDirector    = "N/A"
)

var reviewDateLayouts = map[models.Language]string{
	models.LanguageEnglish: "1/2/2006",
	models.LanguageChinese: "2006/1/2",
}

func buildMovie(d *tmdbMovieDetails, reviews []tmdbReview, candidate models.TitleCandidate, lang models.Language, imageBase string) models.Movie {
	year := parseTMDBYear(d.ReleaseDate)
	if year == 0 {
		year = candidate.Year
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = candidate.Title
	}
	return models.Movie{
		Title:          title,
		Year:           year,
		Director:       director(d.Credits.Crew),
		Actors:         topActors(d.Credits.Cast),
		Rating:         models.Rating(d.VoteAverage),
		Summary:        d.Overview,
		Reviews:        buildReviews(reviews, lang),
		StreamingLinks: streamingLinks(title, imageBase),
		PosterURL:      buildTMDBImage(imageBase, d.PosterPath, tmdbPosterSize),
	}
}

func director(crew []tmdbCrewMember) string {
	for _, person := range crew {
		if person.Job == "Director" && strings.TrimSpace(person.Name) != "" {
			return person.Name
		}
	}
	return noDirector
}

// topActors returns up to five cast names in billing order.
func topActors(cast []tmdbCastMember) []string {
	sorted := make([]tmdbCastMember, len(cast))
	copy(sorted, cast)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	actors := make([]string, 0, maxActors)
	for _, member := range sorted {
		if len(actors) == maxActors {
			break
		}
		actors = append(actors, member.Name)
	}
	return actors
}

func buildReviews(raw []tmdbReview, lang models.Language) []models.Review {
	out := make([]models.Review, 0, maxReviews)
	for _, r := range raw {
		if len(out) == maxReviews {
			break
		}
		out = append(out, models.Review{
			Username: r.Author,
			Date:     formatReviewDate(r.CreatedAt, lang),
			Comment:  truncateComment(r.Content),
		})
	}
	return out
}

// truncateComment cuts comments longer than 350 characters and appends "...".
func truncateComment(s string) string {
	runes := []rune(s)
	if len(runes) <= maxCommentLen {
		return s
	}
	return string(runes[:maxCommentLen]) + "..."
}

func formatReviewDate(raw string, lang models.Language) string {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	layout, ok := reviewDateLayouts[lang]
	if !ok {
		layout = reviewDateLayouts[models.LanguageEnglish]
	}
	return t.UTC().Format(layout)
}
