package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lifehub/internal/model"
	"lifehub/pkg/apperror"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims are carried by access tokens so handlers can build an actor without
// a user lookup per request.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *Manager) IssueAccess(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     user.Email,
		Role:      string(user.Role),
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// IssueRefresh returns the signed refresh token together with its jti, which
// the blacklist is keyed on.
func (m *Manager) IssueRefresh(userID uuid.UUID) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()
	claims := Claims{
		TokenType: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (m *Manager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(raw, typeAccess)
}

func (m *Manager) ParseRefresh(raw string) (*Claims, error) {
	return m.parse(raw, typeRefresh)
}

func (m *Manager) parse(raw, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.TokenType != wantType {
		return nil, apperror.ErrUnauthorized
	}
	return claims, nil
}

// RefreshTTL exposes the configured refresh lifetime so callers can size
// blacklist entries to the token's natural expiry.
func (m *Manager) RefreshTTL() time.Duration {
	return m.refreshTTL
}
