package testutil

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// WebhookSecret is a valid endpoint secret for tests.
const WebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

// TokenIssuer mints session tokens the way the identity provider does.
type TokenIssuer struct {
	t   *testing.T
	key *rsa.PrivateKey
}

func NewTokenIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &TokenIssuer{t: t, key: key}
}

func (i *TokenIssuer) PublicKey() *rsa.PublicKey {
	return &i.key.PublicKey
}

// PublicKeyPEM is the form the server configuration expects.
func (i *TokenIssuer) PublicKeyPEM() string {
	der, err := x509.MarshalPKIXPublicKey(&i.key.PublicKey)
	require.NoError(i.t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// Token returns a one-hour session token for clerkID.
func (i *TokenIssuer) Token(clerkID string) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   clerkID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
	require.NoError(i.t, err)
	return s
}

// WebhookHeaders signs body for secret and returns the delivery headers.
func WebhookHeaders(t *testing.T, secret, msgID string, body []byte) http.Header {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	require.NoError(t, err)

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID + "." + ts + "." + string(body)))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	h := http.Header{}
	h.Set("svix-id", msgID)
	h.Set("svix-timestamp", ts)
	h.Set("svix-signature", "v1,"+sig)
	return h
}
