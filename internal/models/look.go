package models

import (
	"strings"
	"time"
)

// Look represents a saved outfit: an image plus the occasion it was
// worn for and the user's notes. Occasion and Notes are the only
// user-editable fields, and edits go through the draft/commit path
// below.
type Look struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url,omitempty"`
	Occasion  string    `json:"occasion"`
	Notes     string    `json:"notes,omitempty"`
	TimeOfDay string    `json:"time_of_day,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LookDraft is the mutable edit buffer for a Look. The user edits a
// draft and either commits it with ApplyDraft or discards it.
type LookDraft struct {
	Occasion string `json:"occasion"`
	Notes    string `json:"notes"`
}

// ToEditableDraft extracts the editable fields of a look into a draft.
func ToEditableDraft(look Look) LookDraft {
	return LookDraft{
		Occasion: look.Occasion,
		Notes:    look.Notes,
	}
}

// ApplyDraft commits a draft back onto a look and returns the updated
// copy. This is the only mutation path; every other Look field is
// read-only once saved.
func ApplyDraft(look Look, draft LookDraft) Look {
	look.Occasion = strings.TrimSpace(draft.Occasion)
	look.Notes = strings.TrimSpace(draft.Notes)
	return look
}
