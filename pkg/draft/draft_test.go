package draft

import (
	"sync"
	"testing"

	"github.com/gofrs/uuid"
)

func TestSetGetClear(t *testing.T) {
	s := NewStore()
	userID := uuid.Must(uuid.NewV4())

	if _, ok := s.Get(userID); ok {
		t.Fatal("empty store returned a draft")
	}

	first := Entry{Draft: Draft{Title: "First", Content: "<p>one</p>", Tags: []string{"go"}}}
	s.Set(userID, first)

	got, ok := s.Get(userID)
	if !ok {
		t.Fatal("want draft, got none")
	}
	if got.Draft.Title != "First" {
		t.Errorf("want title %q, got %q", "First", got.Draft.Title)
	}

	// Set replaces the slot wholesale: fields from the previous draft
	// must not survive.
	s.Set(userID, Entry{Draft: Draft{Title: "Second", Content: "<p>two</p>"}})
	got, _ = s.Get(userID)
	if got.Draft.Title != "Second" {
		t.Errorf("want title %q, got %q", "Second", got.Draft.Title)
	}
	if len(got.Draft.Tags) != 0 {
		t.Errorf("tags leaked from the replaced draft: %v", got.Draft.Tags)
	}

	s.Clear(userID)
	if _, ok := s.Get(userID); ok {
		t.Error("draft survived Clear")
	}
}

func TestIsEditing(t *testing.T) {
	s := NewStore()
	userID := uuid.Must(uuid.NewV4())
	postID := uuid.Must(uuid.NewV4())

	if s.IsEditing(userID, postID) {
		t.Error("empty slot reported as editing")
	}

	s.Set(userID, Entry{Draft: Draft{Title: "Edit"}, Editing: true, PostID: postID})
	if !s.IsEditing(userID, postID) {
		t.Error("editing slot not reported as editing")
	}
	if s.IsEditing(userID, uuid.Must(uuid.NewV4())) {
		t.Error("editing reported for a different post")
	}

	s.Set(userID, Entry{Draft: Draft{Title: "Fresh"}})
	if s.IsEditing(userID, postID) {
		t.Error("editing flag survived a wholesale replace")
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s := NewStore()
	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())

	s.Set(alice, Entry{Draft: Draft{Title: "Alice's draft"}})
	s.Set(bob, Entry{Draft: Draft{Title: "Bob's draft"}})
	s.Clear(alice)

	if _, ok := s.Get(alice); ok {
		t.Error("alice's draft survived Clear")
	}
	if got, ok := s.Get(bob); !ok || got.Draft.Title != "Bob's draft" {
		t.Errorf("bob's draft affected by alice's Clear: %+v, %v", got, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	userID := uuid.Must(uuid.NewV4())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(userID, Entry{Draft: Draft{Title: "concurrent"}})
			s.Get(userID)
			s.IsEditing(userID, userID)
		}()
	}
	wg.Wait()

	if got, ok := s.Get(userID); !ok || got.Draft.Title != "concurrent" {
		t.Errorf("unexpected final slot: %+v, %v", got, ok)
	}
}
