// Package session resolves the current owner identity. The core never holds
// global user state; callers inject a Provider and every operation threads
// the resolved owner id explicitly.
package session

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Provider yields the owner id of the current user. ok is false when nobody
// is authenticated.
type Provider interface {
	OwnerID(ctx context.Context) (id string, ok bool)
}

// Static is a fixed identity, for tests and embedders that manage auth
// themselves.
type Static struct {
	ID string
}

func (s Static) OwnerID(ctx context.Context) (string, bool) {
	return s.ID, s.ID != ""
}

// JWT derives the owner id from a bearer token's subject claim. An invalid,
// expired or subject-less token resolves to unauthenticated.
type JWT struct {
	Secret string
	Token  string
}

func (p JWT) OwnerID(ctx context.Context) (string, bool) {
	if p.Token == "" || p.Secret == "" {
		return "", false
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(p.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(p.Secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// BearerToken returns the raw token for the gateway's Authorization header.
func (p JWT) BearerToken() string {
	return p.Token
}
