// Package token issues and verifies the HS256 bearer tokens the API accepts
package token

import (
	"errors"
	"time"

	pnet "codeexplainer/internal/platform/net"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued token stays valid
const DefaultTTL = 7 * 24 * time.Hour

// Claims carries the caller identity; exp and iat ride in RegisteredClaims
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with one shared secret
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New returns an Issuer; a zero ttl means DefaultTTL and a nil now means time.Now
func New(secret string, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: empty secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue signs a token for p that expires after the ttl
func (i *Issuer) Issue(p pnet.Principal) (string, error) {
	if p.ID == "" {
		return "", errors.New("token: principal without id")
	}
	now := i.now()
	c := Claims{
		UserID: p.ID,
		Email:  p.Email,
		Name:   p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Verify checks signature, algorithm and expiry and returns the caller
func (i *Issuer) Verify(raw string) (pnet.Principal, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return pnet.Principal{}, err
	}
	if c.UserID == "" {
		return pnet.Principal{}, errors.New("token: missing id claim")
	}
	return pnet.Principal{ID: c.UserID, Email: c.Email, Name: c.Name}, nil
}
