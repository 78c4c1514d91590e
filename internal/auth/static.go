package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
)

// StaticAuthenticator accepts a fixed token-to-user table. Development only.
type StaticAuthenticator struct {
	tokens map[string]uuid.UUID
}

func NewStaticAuthenticator(tokens map[string]string) (*StaticAuthenticator, error) {
	parsed := make(map[string]uuid.UUID, len(tokens))
	for tok, user := range tokens {
		id, err := uuid.Parse(user)
		if err != nil {
			return nil, fmt.Errorf("static token user %q: %w", user, err)
		}
		parsed[tok] = id
	}
	return &StaticAuthenticator{tokens: parsed}, nil
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	for known, id := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return id, nil
		}
	}
	return uuid.Nil, ErrUnauthenticated
}

func (a *StaticAuthenticator) Len() int {
	return len(a.tokens)
}
