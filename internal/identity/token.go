package identity

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portfolio/pkg/config"
)

var (
	ErrMissingSubject    = errors.New("identity: token has no subject")
	ErrUnauthorizedParty = errors.New("identity: token issued for another party")
)

// Claims are the session token claims the service reads. Subject is the
// provider's user id.
type Claims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
}

// Verifier checks RS256 session tokens issued by the identity provider.
type Verifier struct {
	key     *rsa.PublicKey
	parties []string
	leeway  time.Duration
}

// NewVerifier parses the PEM public key from cfg.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKey))
	if err != nil {
		return nil, fmt.Errorf("identity: parse public key: %w", err)
	}
	return NewVerifierWithKey(key, cfg.AuthorizedParties, cfg.Leeway), nil
}

func NewVerifierWithKey(key *rsa.PublicKey, parties []string, leeway time.Duration) *Verifier {
	return &Verifier{key: key, parties: parties, leeway: leeway}
}

// Verify validates tokenStr and returns the provider user id it names.
func (v *Verifier) Verify(tokenStr string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	if len(v.parties) > 0 && claims.AuthorizedParty != "" && !slices.Contains(v.parties, claims.AuthorizedParty) {
		return "", ErrUnauthorizedParty
	}
	return claims.Subject, nil
}

// ExtractToken reads a bearer token from the Authorization header, falling
// back to the session cookie.
func ExtractToken(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
