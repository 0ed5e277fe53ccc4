// Package auth issues and checks the session tokens handed out by the
// daemon after a successful unlock.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the registered claims plus the id of the unlock that produced
// the token.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// Issuer signs HS256 tokens with an in-memory secret. Rotating the secret
// invalidates every token issued so far.
type Issuer struct {
	mu       sync.RWMutex
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewIssuer(validity time.Duration) (*Issuer, error) {
	i := &Issuer{validity: validity, now: time.Now}
	if err := i.Rotate(); err != nil {
		return nil, err
	}
	return i, nil
}

// Rotate replaces the signing secret.
func (i *Issuer) Rotate() error {
	secret, err := common.RandomBytes(32)
	if err != nil {
		return fmt.Errorf("rotate secret: %w", err)
	}

	i.mu.Lock()
	common.WipeByteArray(i.secret)
	i.secret = secret
	i.mu.Unlock()
	return nil
}

// Issue returns a token for a new unlock.
func (i *Issuer) Issue() (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		SessionID: uuid.NewString(),
	})

	i.mu.RLock()
	defer i.mu.RUnlock()
	return token.SignedString(i.secret)
}

// Verify checks the signature and expiry and returns the session id.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	i.mu.RLock()
	secret := append([]byte(nil), i.secret...)
	i.mu.RUnlock()

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}

	return claims.SessionID, nil
}
