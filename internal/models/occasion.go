package models

import "strings"

// Occasion describes the context a recommendation is generated for.
// All fields are trimmed at construction and the value is never
// mutated afterwards, so it is safe to use as a map key for caching.
type Occasion struct {
	Title     string `json:"title"`
	TimeOfDay string `json:"time_of_day,omitempty"`
	Vibe      string `json:"vibe,omitempty"`
	Season    string `json:"season,omitempty"`
}

// NewOccasion builds an Occasion. Title is required; the three
// descriptors are optional free-form text.
func NewOccasion(title, timeOfDay, vibe, season string) (Occasion, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Occasion{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	return Occasion{
		Title:     title,
		TimeOfDay: strings.TrimSpace(timeOfDay),
		Vibe:      strings.TrimSpace(vibe),
		Season:    strings.TrimSpace(season),
	}, nil
}
