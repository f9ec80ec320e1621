// Package session issues and verifies the signed tokens that carry a
// caller's identity and role between requests, and hashes credentials.
package session

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"blog/pkg/storage"
)

// Session is the resolved identity attached to an authenticated
// request. A request without a valid token carries no Session at all.
type Session struct {
	UserID uuid.UUID
	Role   storage.Role
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for the user.
func (m *Manager) Issue(userID uuid.UUID, role storage.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	return token.SignedString(m.secret)
}

// Resolve parses a token into a Session. It returns nil for every kind
// of invalid token (missing, malformed, expired, bad signature, unknown
// role) and never an error: an unauthenticated request is a normal
// state, not a failure.
func (m *Manager) Resolve(tokenStr string) *Session {
	if tokenStr == "" {
		return nil
	}

	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	userID, err := uuid.FromString(c.Subject)
	if err != nil {
		return nil
	}
	role := storage.Role(c.Role)
	if !role.Valid() {
		return nil
	}

	return &Session{UserID: userID, Role: role}
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
