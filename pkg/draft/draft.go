// Package draft holds the unsaved post each author is working on, so
// the create/edit flow can move between the editor and the preview
// screen without losing fields. One slot per user, replaced wholesale
// on every Set, never persisted: a server restart empties all slots.
package draft

import (
	"sync"

	"github.com/gofrs/uuid"
)

// Draft is the not-yet-persisted post shape shared by the editor and
// the preview screen.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image,omitempty"`
	Category    string   `json:"category,omitempty"`
	Published   bool     `json:"published"`
}

// Entry couples a draft with the explicit edit flag. Editing is never
// inferred from PostID being set: the flag is the source of truth.
type Entry struct {
	Draft   Draft     `json:"draft"`
	Editing bool      `json:"editing"`
	PostID  uuid.UUID `json:"post_id,omitempty"`
}

type Store struct {
	mu    sync.Mutex
	slots map[uuid.UUID]Entry
}

func NewStore() *Store {
	return &Store{slots: make(map[uuid.UUID]Entry)}
}

// Set replaces the user's draft slot wholesale.
func (s *Store) Set(userID uuid.UUID, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[userID] = e
}

// Get returns the user's draft slot and whether one exists.
func (s *Store) Get(userID uuid.UUID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.slots[userID]
	return e, ok
}

// Clear empties the user's draft slot.
func (s *Store) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, userID)
}

// IsEditing reports whether the user's slot holds an edit of the
// given post.
func (s *Store) IsEditing(userID, postID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.slots[userID]
	return e.Editing && e.PostID == postID
}
