// Package session holds the interactive recommendation sessions: input text,
// the last submitted prompt, results, loading and error state, display language
// and suggestion chips.
//
// A Session moves Idle -> Loading -> Success|Failure and can re-enter Loading from
// any state. When submissions overlap, only the most recent one updates the
// session; earlier results that arrive late are discarded.
package session

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"cinemuse/internal/failure"
	"cinemuse/models"
)

// Recommender produces movies for a prompt.
type Recommender interface {
	GetRecommendations(ctx context.Context, prompt string, lang models.Language) ([]models.Movie, error)
}

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateFailure State = "failure"
)

// ErrRefreshUnavailable is returned by Refresh when no submission has succeeded.
var ErrRefreshUnavailable = errors.New("refresh is only available after a successful submission")

type Session struct {
	id  string
	rec Recommender

	mu            sync.Mutex
	rng           *rand.Rand
	state         State
	inputText     string
	lastSubmitted string
	movies        []models.Movie
	errorMessage  string
	lastErr       error
	language      models.Language
	suggestions   []string
	generation    uint64
	lastActive    time.Time
	now           func() time.Time
}

func newSession(id string, lang models.Language, rec Recommender, rng *rand.Rand, now func() time.Time) *Session {
	if !lang.Valid() {
		lang = models.DefaultLanguage
	}
	s := &Session{
		id:         id,
		rec:        rec,
		rng:        rng,
		state:      StateIdle,
		language:   lang,
		now:        now,
		lastActive: now(),
	}
	s.suggestions = SampleSuggestions(PromptPool(lang), ChipCount, rng)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// SetInput replaces the input box contents.
func (s *Session) SetInput(text string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.inputText = text
	return s.viewLocked()
}

// Submit runs a recommendation for the current input. A non-nil prompt replaces
// the input first, as a suggestion-chip click does. An empty prompt fails
// immediately without calling the recommender.
func (s *Session) Submit(ctx context.Context, prompt *string) View {
	s.mu.Lock()
	if prompt != nil {
		s.inputText = *prompt
	}
	return s.runLocked(ctx, s.inputText)
}

// Refresh resubmits the last prompt, ignoring the current input. It is only
// available after a successful submission.
func (s *Session) Refresh(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.state != StateSuccess {
		s.touchLocked()
		v := s.viewLocked()
		s.mu.Unlock()
		return v, ErrRefreshUnavailable
	}
	return s.runLocked(ctx, s.lastSubmitted), nil
}

// runLocked is entered with s.mu held and releases it while the recommender runs.
func (s *Session) runLocked(ctx context.Context, raw string) View {
	s.touchLocked()
	prompt := strings.TrimSpace(raw)
	if prompt == "" {
		s.generation++
		s.state = StateFailure
		s.movies = nil
		s.errorMessage = messagesFor(s.language).EmptyPrompt
		s.lastErr = failure.New(failure.InputValidation, "submit", "prompt is empty")
		defer s.mu.Unlock()
		return s.viewLocked()
	}

	s.generation++
	gen := s.generation
	lang := s.language
	s.state = StateLoading
	s.movies = nil
	s.errorMessage = ""
	s.lastErr = nil
	s.lastSubmitted = prompt
	s.mu.Unlock()

	movies, err := s.rec.GetRecommendations(ctx, prompt, lang)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		log.Printf("[session] %s: discarding stale result for %q", s.id, prompt)
		return s.viewLocked()
	}
	if err != nil {
		log.Printf("[session] %s: recommendation failed lang=%s kind=%s: %v", s.id, lang, failure.KindOf(err), err)
		s.state = StateFailure
		s.errorMessage = messagesFor(s.language).Failure
		s.lastErr = err
		return s.viewLocked()
	}
	s.state = StateSuccess
	s.movies = movies
	return s.viewLocked()
}

// SetLanguage switches the display language and redraws the suggestion chips.
// It clears results, error and input, supersedes any in-flight submission and
// does not re-run the last prompt. Setting the current language is a no-op.
func (s *Session) SetLanguage(lang models.Language) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if lang == s.language {
		return s.viewLocked()
	}
	s.switchLanguageLocked(lang)
	return s.viewLocked()
}

// ToggleLanguage switches to the other supported language.
func (s *Session) ToggleLanguage() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.switchLanguageLocked(s.language.Other())
	return s.viewLocked()
}

func (s *Session) switchLanguageLocked(lang models.Language) {
	s.generation++
	s.language = lang
	s.state = StateIdle
	s.movies = nil
	s.errorMessage = ""
	s.lastErr = nil
	s.inputText = ""
	s.suggestions = SampleSuggestions(PromptPool(lang), ChipCount, s.rng)
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.viewLocked()
}

// LastError returns the raw error behind the current failure state, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) touchLocked() {
	s.lastActive = s.now()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}
