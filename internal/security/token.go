package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"marketplace/internal/ids"
	"marketplace/internal/models"
)

var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

type AccessClaims struct {
	AccountID string `json:"uid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS512 signed access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of m that reads time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *m
	clone.now = now
	return &clone
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(accountID string, role models.Role) (string, models.Identity, error) {
	now := m.now().Truncate(time.Second)
	identity := models.Identity{
		AccountID: accountID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
		TokenID:   ids.New(),
	}

	claims := AccessClaims{
		AccountID: accountID,
		Role:      string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(identity.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
			Subject:   accountID,
			ID:        identity.TokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", models.Identity{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, identity, nil
}

// Parse verifies signature and expiry. A token is expired from the instant
// named in its exp claim.
func (m *TokenManager) Parse(tokenStr string) (models.Identity, error) {
	if tokenStr == "" {
		return models.Identity{}, ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, ErrTokenExpired
		}
		return models.Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrTokenInvalid
	}

	role := models.Role(claims.Role)
	if claims.AccountID == "" || !role.Valid() {
		return models.Identity{}, ErrTokenInvalid
	}

	identity := models.Identity{
		AccountID: claims.AccountID,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
		TokenID:   claims.ID,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	return identity, nil
}
