// Package svix verifies Clerk webhook deliveries with the Svix SDK.
package svix

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	svixsdk "github.com/svix/svix-webhooks/go"
)

// Delivery headers.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

var (
	ErrMissingHeaders = errors.New("svix: missing signature headers")
	ErrRejected       = errors.New("svix: delivery rejected")
)

// Headers are the three values that identify and sign one delivery.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFrom reads the delivery headers from h. Missing values are left empty.
func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        strings.TrimSpace(h.Get(HeaderID)),
		Timestamp: strings.TrimSpace(h.Get(HeaderTimestamp)),
		Signature: strings.TrimSpace(h.Get(HeaderSignature)),
	}
}

// Complete reports whether all three headers are present.
func (h Headers) Complete() bool {
	return h.ID != "" && h.Timestamp != "" && h.Signature != ""
}

// Header renders h back into request headers.
func (h Headers) Header() http.Header {
	out := http.Header{}
	out.Set(HeaderID, h.ID)
	out.Set(HeaderTimestamp, h.Timestamp)
	out.Set(HeaderSignature, h.Signature)
	return out
}

// Verifier checks deliveries against one signing secret. The SDK enforces a
// five minute timestamp tolerance against the wall clock.
type Verifier struct {
	wh *svixsdk.Webhook
}

// NewVerifier accepts a signing secret of the form "whsec_<base64>".
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("svix: signing secret is required")
	}
	wh, err := svixsdk.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("svix: load signing secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify checks body, exactly as received, against the delivery headers.
func (v *Verifier) Verify(body []byte, header http.Header) error {
	if !HeadersFrom(header).Complete() {
		return ErrMissingHeaders
	}
	if err := v.wh.Verify(body, header); err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

// Sign returns the signature header value for a delivery.
func (v *Verifier) Sign(id string, at time.Time, body []byte) (string, error) {
	sig, err := v.wh.Sign(id, at, body)
	if err != nil {
		return "", fmt.Errorf("svix: sign: %w", err)
	}
	return sig, nil
}
