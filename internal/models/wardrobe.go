package models

// WardrobeItem is a single piece in the user's closet. Items are
// referenced by recommendations through their IDs and linked to the
// looks that feature them.
type WardrobeItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}
