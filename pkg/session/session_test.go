package session

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"

	"blog/pkg/storage"
)

func TestIssueResolveRoundtrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	userID := uuid.Must(uuid.NewV4())

	token, err := m.Issue(userID, storage.RoleWriter)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	sess := m.Resolve(token)
	if sess == nil {
		t.Fatal("want session, got nil")
	}
	if sess.UserID != userID {
		t.Errorf("want user ID %v, got %v", userID, sess.UserID)
	}
	if sess.Role != storage.RoleWriter {
		t.Errorf("want role %v, got %v", storage.RoleWriter, sess.Role)
	}
}

func TestResolveInvalidTokens(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	expired := NewManager("test-secret", -time.Hour)
	expiredToken, err := expired.Issue(uuid.Must(uuid.NewV4()), storage.RoleUser)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	otherSecret := NewManager("other-secret", time.Hour)
	foreignToken, err := otherSecret.Issue(uuid.Must(uuid.NewV4()), storage.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-even-a-jwt"},
		{"expired", expiredToken},
		{"wrong signature", foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sess := m.Resolve(tt.token); sess != nil {
				t.Errorf("Resolve(%q) = %+v; want nil", tt.token, sess)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash equals the plaintext password")
	}

	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}
