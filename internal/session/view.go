package session

import "cinemuse/models"

// View is the rendered state of a session.
type View struct {
	ID                  string          `json:"id"`
	State               State           `json:"state"`
	InputText           string          `json:"inputText"`
	LastSubmittedPrompt string          `json:"lastSubmittedPrompt"`
	Movies              []models.Movie  `json:"movies"`
	IsLoading           bool            `json:"isLoading"`
	ErrorMessage        *string         `json:"errorMessage"`
	Language            models.Language `json:"language"`
	Suggestions         []string        `json:"suggestions"`
	CanRefresh          bool            `json:"canRefresh"`
	Heading             string          `json:"heading,omitempty"`
	EmptyHint           string          `json:"emptyHint,omitempty"`
	LoadingText         string          `json:"loadingText,omitempty"`
}

func (s *Session) viewLocked() View {
	msgs := messagesFor(s.language)
	v := View{
		ID:                  s.id,
		State:               s.state,
		InputText:           s.inputText,
		LastSubmittedPrompt: s.lastSubmitted,
		Movies:              append([]models.Movie{}, s.movies...),
		IsLoading:           s.state == StateLoading,
		Language:            s.language,
		Suggestions:         append([]string{}, s.suggestions...),
		CanRefresh:          s.state == StateSuccess,
	}
	if s.errorMessage != "" {
		msg := s.errorMessage
		v.ErrorMessage = &msg
	}
	switch {
	case v.IsLoading:
		v.LoadingText = msgs.Loading
	case len(v.Movies) > 0:
		v.Heading = msgs.Heading
	case v.ErrorMessage == nil:
		v.EmptyHint = msgs.EmptyHint
	}
	return v
}
