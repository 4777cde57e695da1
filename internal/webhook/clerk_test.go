package webhook

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/model"
	"portfolio/internal/testutil"
	"portfolio/pkg/apperr"
)

const createdBody = `{
  "type": "user.created",
  "object": "event",
  "data": {
    "id": "user_29w83sxmDNGwOuEthce5gg56FcC",
    "first_name": "Ada",
    "last_name": null,
    "image_url": "https://img.example/ada.png",
    "primary_email_address_id": "idn_2",
    "email_addresses": [
      {"id": "idn_1", "email_address": "old@example.com"},
      {"id": "idn_2", "email_address": "ada@example.com"}
    ]
  }
}`

func newReceiver(t *testing.T) *Receiver {
	r, err := NewReceiver(testutil.WebhookSecret)
	require.NoError(t, err)
	return r
}

func TestParseSignedEvent(t *testing.T) {
	body := []byte(createdBody)
	h := testutil.WebhookHeaders(t, testutil.WebhookSecret, "msg_1", body)

	ev, err := newReceiver(t).Parse(body, h)
	require.NoError(t, err)
	assert.Equal(t, "msg_1", ev.ID)
	assert.Equal(t, model.IdentityUserCreated, ev.Type)
	assert.Equal(t, "user_29w83sxmDNGwOuEthce5gg56FcC", ev.ClerkID)
	assert.Equal(t, model.UserProfile{
		Email:     "ada@example.com",
		FirstName: "Ada",
		ImageURL:  "https://img.example/ada.png",
	}, ev.Profile)
}

func TestParseMissingHeaders(t *testing.T) {
	body := []byte(createdBody)
	full := testutil.WebhookHeaders(t, testutil.WebhookSecret, "msg_1", body)

	for _, name := range []string{HeaderID, HeaderTimestamp, HeaderSignature} {
		t.Run(name, func(t *testing.T) {
			h := full.Clone()
			h.Del(name)
			_, err := newReceiver(t).Parse(body, h)
			require.Error(t, err)
			status, msg := apperr.Public(err)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "missing svix headers", msg)
		})
	}
}

func TestParseRejectsTamperedBody(t *testing.T) {
	body := []byte(createdBody)
	h := testutil.WebhookHeaders(t, testutil.WebhookSecret, "msg_1", body)

	_, err := newReceiver(t).Parse([]byte(`{"type":"user.deleted","data":{"id":"x"}}`), h)
	require.Error(t, err)
	assert.Equal(t, apperr.KindSignature, apperr.KindOf(err))
	status, _ := apperr.Public(err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestParseFallsBackToFirstEmail(t *testing.T) {
	body := []byte(`{"type":"user.updated","data":{"id":"user_1","email_addresses":[{"id":"a","email_address":"a@example.com"}]}}`)
	h := testutil.WebhookHeaders(t, testutil.WebhookSecret, "msg_2", body)

	ev, err := newReceiver(t).Parse(body, h)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", ev.Profile.Email)
}

func TestNewReceiverRejectsBadSecret(t *testing.T) {
	_, err := NewReceiver("whsec_***not base64***")
	assert.Error(t, err)
}
