package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenAccess   = "access"
	TokenRefresh  = "refresh"
	TokenRecovery = "recovery"
)

var (
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the payload of every token the API issues.
type Claims struct {
	SessionID   string `json:"sid,omitempty"`
	TokenType   string `json:"type"`
	ProfileType string `json:"profile_type,omitempty"`
	ProfileID   uint   `json:"profile_id,omitempty"`
	Email       string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

// TokenSubject identifies who a token is issued for.
type TokenSubject struct {
	UserID      uint
	Email       string
	ProfileType string
	ProfileID   uint
}

// TokenPair is the access/refresh pair returned on sign in.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

func signClaims(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetJWTSecretByte())
}

func newClaims(sub TokenSubject, sid, tokenType string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		SessionID:   sid,
		TokenType:   tokenType,
		ProfileType: sub.ProfileType,
		ProfileID:   sub.ProfileID,
		Email:       sub.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(sub.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// IssueAccessToken signs an access token bound to session sid.
func IssueAccessToken(sub TokenSubject, sid string, ttl time.Duration) (string, error) {
	return signClaims(newClaims(sub, sid, TokenAccess, ttl, time.Now()))
}

// IssueTokenPair signs an access and a refresh token sharing session sid.
func IssueTokenPair(sub TokenSubject, sid string, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	now := time.Now()
	access, err := signClaims(newClaims(sub, sid, TokenAccess, accessTTL, now))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := signClaims(newClaims(sub, sid, TokenRefresh, refreshTTL, now))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueRecoveryToken signs a short lived token that only authorises the
// password recovery steps. It has no session.
func IssueRecoveryToken(sub TokenSubject, ttl time.Duration) (string, error) {
	return signClaims(newClaims(sub, "", TokenRecovery, ttl, time.Now()))
}

// ParseToken validates signature, expiry and the expected token type.
func ParseToken(raw, wantType string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: jwt secret not configured", ErrInvalidToken)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	if wantType != TokenRecovery && claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
