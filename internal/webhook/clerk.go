package webhook

import (
	"encoding/json"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
)

// Headers that every delivery must carry.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// Verifier checks a delivery signature over the raw body. *svix.Webhook
// satisfies it.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// Receiver turns signed identity provider deliveries into IdentityEvents.
type Receiver struct {
	verifier Verifier
}

// NewReceiver builds a Receiver that verifies with the endpoint secret
// ("whsec_..." form).
func NewReceiver(secret string) (*Receiver, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("webhook: load secret: %w", err)
	}
	return &Receiver{verifier: wh}, nil
}

func NewReceiverWithVerifier(v Verifier) *Receiver {
	return &Receiver{verifier: v}
}

// Parse checks headers and signature, then decodes the event. It fails
// closed: any missing header or bad signature is rejected before the body
// is looked at.
func (r *Receiver) Parse(body []byte, headers http.Header) (model.IdentityEvent, error) {
	var ev model.IdentityEvent
	if headers.Get(HeaderID) == "" || headers.Get(HeaderTimestamp) == "" || headers.Get(HeaderSignature) == "" {
		return ev, apperr.Signature("missing svix headers")
	}
	if err := r.verifier.Verify(body, headers); err != nil {
		return ev, apperr.Wrap(apperr.KindSignature, "invalid webhook signature", err)
	}

	var payload clerkEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		return ev, apperr.Wrap(apperr.KindValidation, "invalid webhook payload", err)
	}

	ev.ID = headers.Get(HeaderID)
	ev.Type = payload.Type
	ev.ClerkID = payload.Data.ID
	ev.Profile = payload.Data.profile()
	return ev, nil
}

type clerkEvent struct {
	Type   string    `json:"type"`
	Object string    `json:"object"`
	Data   clerkUser `json:"data"`
}

type clerkUser struct {
	ID                    string       `json:"id"`
	FirstName             *string      `json:"first_name"`
	LastName              *string      `json:"last_name"`
	ImageURL              string       `json:"image_url"`
	PrimaryEmailAddressID string       `json:"primary_email_address_id"`
	EmailAddresses        []clerkEmail `json:"email_addresses"`
}

type clerkEmail struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// profile picks the primary address, or the first one when no primary is
// marked.
func (u clerkUser) profile() model.UserProfile {
	p := model.UserProfile{ImageURL: u.ImageURL}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			p.Email = e.EmailAddress
			return p
		}
	}
	if len(u.EmailAddresses) > 0 {
		p.Email = u.EmailAddresses[0].EmailAddress
	}
	return p
}
