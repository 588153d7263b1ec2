package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"evently/internal/domain"
)

// ErrVerifierNotConfigured is returned by the verifier used when no key is configured.
var ErrVerifierNotConfigured = errors.New("session token verification is not configured")

const clockLeeway = 5 * time.Second

type sessionClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
}

type sessionVerifier struct {
	key               *rsa.PublicKey
	authorizedParties map[string]struct{}
}

// NewSessionVerifier returns a TokenVerifier for Clerk session tokens (RS256),
// using the instance's PEM public key. When authorizedParties is non-empty, a
// token carrying an azp claim must name one of them.
// An empty key yields a verifier that rejects every token.
func NewSessionVerifier(pemKey string, authorizedParties []string) (domain.TokenVerifier, error) {
	pemKey = strings.TrimSpace(pemKey)
	if pemKey == "" {
		return disabledVerifier{}, nil
	}
	// Keys pasted into .env files often keep their newlines escaped.
	pemKey = strings.ReplaceAll(pemKey, `\n`, "\n")
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse session public key: %w", err)
	}
	parties := make(map[string]struct{}, len(authorizedParties))
	for _, p := range authorizedParties {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p != "" {
			parties[p] = struct{}{}
		}
	}
	return &sessionVerifier{key: key, authorizedParties: parties}, nil
}

func (v *sessionVerifier) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("invalid session token: missing subject")
	}
	if len(v.authorizedParties) > 0 && claims.AuthorizedParty != "" {
		if _, ok := v.authorizedParties[claims.AuthorizedParty]; !ok {
			return "", fmt.Errorf("invalid session token: unauthorized party %q", claims.AuthorizedParty)
		}
	}
	return claims.Subject, nil
}

type disabledVerifier struct{}

func (disabledVerifier) Verify(string) (string, error) {
	return "", ErrVerifierNotConfigured
}
