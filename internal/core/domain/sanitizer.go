package domain

import (
	"sync"

	"go.trai.ch/zerr"
)

// Sanitizer maps identity keys to sanitized tokens and refuses to hand out
// the same token for two different keys.
type Sanitizer struct {
	mu     sync.Mutex
	owners map[string]string // token -> key
}

// NewSanitizer creates an empty Sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{owners: make(map[string]string)}
}

// Token returns the sanitized token for key. It fails with
// ErrSanitizeCollision when a different key already produced the same token.
func (s *Sanitizer) Token(key string) (string, error) {
	token := Sanitize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.owners[token]; ok && owner != key {
		err := zerr.With(ErrSanitizeCollision, "token", token)
		err = zerr.With(err, "first", owner)
		return "", zerr.With(err, "second", key)
	}
	s.owners[token] = key
	return token, nil
}

// Identity returns the token for the full identity string of v.
func (s *Sanitizer) Identity(v VLNV) (string, error) {
	return s.Token(v.String())
}
