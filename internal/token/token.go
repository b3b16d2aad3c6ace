package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// Claims carries the account identity inside both token flavours. Subject
// holds the account id, Kind the account table it resolves against.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
	Use  string `json:"use"`
}

// Pair is the access/refresh token bundle handed out on login.
type Pair struct {
	Token        string
	RefreshToken string
}

// Issuer signs and verifies HS256 token pairs with a shared secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair signs an access and a refresh token bound to the same account.
func (i *Issuer) IssuePair(accountID, kind string) (Pair, error) {
	access, err := i.sign(accountID, kind, useAccess, i.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(accountID, kind, useRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{Token: access, RefreshToken: refresh}, nil
}

// ParseAccess verifies an access token and returns its claims.
func (i *Issuer) ParseAccess(raw string) (*Claims, error) {
	return i.parse(raw, useAccess)
}

// ParseRefresh verifies a refresh token and returns its claims. Access
// tokens are rejected here so a short-lived token cannot mint new pairs.
func (i *Issuer) ParseRefresh(raw string) (*Claims, error) {
	return i.parse(raw, useRefresh)
}

func (i *Issuer) sign(accountID, kind, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
		Use:  use,
	})
	return token.SignedString(i.secret)
}

func (i *Issuer) parse(raw, use string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Use != use || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
