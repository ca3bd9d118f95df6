package models

import "strings"

// AlternativeSuggestion is one ranked alternative outfit idea offered
// alongside the primary verdict. It is a transport record only; all
// ranking logic lives in the services package.
type AlternativeSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StyleType   string `json:"style_type"`
}

// NewAlternativeSuggestion builds an AlternativeSuggestion. All three
// fields are required after trimming.
func NewAlternativeSuggestion(title, description, styleType string) (AlternativeSuggestion, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	styleType = strings.TrimSpace(styleType)

	switch {
	case title == "":
		return AlternativeSuggestion{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	case description == "":
		return AlternativeSuggestion{}, &ValidationError{Field: "description", Reason: "must not be empty"}
	case styleType == "":
		return AlternativeSuggestion{}, &ValidationError{Field: "style_type", Reason: "must not be empty"}
	}

	return AlternativeSuggestion{
		Title:       title,
		Description: description,
		StyleType:   styleType,
	}, nil
}

// Valid reports whether the suggestion satisfies the construction
// invariant. Used to re-check entries that arrive pre-built, e.g. from
// a decoded payload.
func (a AlternativeSuggestion) Valid() bool {
	return strings.TrimSpace(a.Title) != "" &&
		strings.TrimSpace(a.Description) != "" &&
		strings.TrimSpace(a.StyleType) != ""
}
