package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ProofKind names one of the per-share signals a visitor accumulates.
type ProofKind string

const (
	ProofPassword ProofKind = "password"
	ProofVisited  ProofKind = "visited"

	shareCookiePrefix   = "deck_share_"
	visitedCookiePrefix = "deck_share_visited_"
)

type proofClaims struct {
	Slug string    `json:"slug"`
	Kind ProofKind `json:"kind"`
	jwt.RegisteredClaims
}

// ProofCookieName returns the cookie carrying a proof of kind for slug.
func ProofCookieName(kind ProofKind, slug string) string {
	if kind == ProofVisited {
		return visitedCookiePrefix + slug
	}
	return shareCookiePrefix + slug
}

// ProofSigner issues and checks short-lived proof tokens. A token is bound to
// one slug and one kind, so neither can be replayed for the other.
type ProofSigner struct {
	secret []byte
	now    func() time.Time
}

func NewProofSigner(secret string) *ProofSigner {
	return &ProofSigner{secret: []byte("share-proof:" + secret), now: time.Now}
}

func (p *ProofSigner) Issue(kind ProofKind, slug string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := proofClaims{
		Slug: slug,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *ProofSigner) Verify(kind ProofKind, slug, token string) bool {
	if token == "" {
		return false
	}
	claims := &proofClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil || !parsed.Valid {
		return false
	}
	return claims.Slug == slug && claims.Kind == kind
}
