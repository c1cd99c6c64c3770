package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer     = "learnhub"
	sessionAudience = "session"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer signs session tokens and short-lived file view tokens.
// File view tokens let embedded third-party document viewers fetch a file
// without carrying the user's session.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	fileTTL    time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer using HS256 with the given secret
func NewTokenIssuer(secret string, sessionTTL, fileTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		fileTTL:    fileTTL,
		now:        time.Now,
	}
}

func fileAudience(bucket, fileID string) string {
	return fmt.Sprintf("file:%s/%s", bucket, fileID)
}

func (t *TokenIssuer) sign(subject, audience string, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (t *TokenIssuer) verify(token, audience string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueSession returns a bearer token for userID
func (t *TokenIssuer) IssueSession(userID string) (string, time.Time, error) {
	return t.sign(userID, sessionAudience, t.sessionTTL)
}

// ParseSession verifies a bearer token and returns its user id
func (t *TokenIssuer) ParseSession(token string) (string, error) {
	claims, err := t.verify(token, sessionAudience)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IssueFileView returns a token that grants read access to one file
func (t *TokenIssuer) IssueFileView(bucket, fileID string) (string, time.Time, error) {
	return t.sign(fileID, fileAudience(bucket, fileID), t.fileTTL)
}

// VerifyFileView checks a file view token against the requested file
func (t *TokenIssuer) VerifyFileView(token, bucket, fileID string) error {
	_, err := t.verify(token, fileAudience(bucket, fileID))
	return err
}
