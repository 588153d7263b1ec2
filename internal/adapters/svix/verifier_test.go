package svix

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func signedHeaders(t *testing.T, v *Verifier, id string, at time.Time, body []byte) Headers {
	t.Helper()
	sig, err := v.Sign(id, at, body)
	require.NoError(t, err)
	return Headers{ID: id, Timestamp: strconv.FormatInt(at.Unix(), 10), Signature: sig}
}

func TestVerifier_Verify(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	now := time.Now()
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	h := signedHeaders(t, v, "msg_1", now, body)

	stale := signedHeaders(t, v, "msg_1", now.Add(-10*time.Minute), body)
	future := signedHeaders(t, v, "msg_1", now.Add(10*time.Minute), body)

	tests := []struct {
		name    string
		body    []byte
		headers Headers
		wantErr error
	}{
		{"valid", body, h, nil},
		{"valid among rotated signatures", body, Headers{ID: h.ID, Timestamp: h.Timestamp, Signature: "v1,Zm9v " + h.Signature}, nil},
		{"missing id", body, Headers{Timestamp: h.Timestamp, Signature: h.Signature}, ErrMissingHeaders},
		{"bad timestamp", body, Headers{ID: h.ID, Timestamp: "yesterday", Signature: h.Signature}, ErrRejected},
		{"stale timestamp", body, stale, ErrRejected},
		{"future timestamp", body, future, ErrRejected},
		{"other id", body, Headers{ID: "msg_2", Timestamp: h.Timestamp, Signature: h.Signature}, ErrRejected},
		{"body with extra whitespace", []byte(`{"type": "user.created","data":{"id":"user_1"}}`), h, ErrRejected},
		{"unknown version", body, Headers{ID: h.ID, Timestamp: h.Timestamp, Signature: "v2" + h.Signature[2:]}, ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.body, tt.headers.Header())
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifier_Verify_SingleCharacterMutation(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	body := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)
	h := signedHeaders(t, v, "msg_1", time.Now(), body)
	require.NoError(t, v.Verify(body, h.Header()))

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	prefix := len("v1,")
	for i := prefix; i < len(h.Signature); i++ {
		mutated := []byte(h.Signature)
		for j := 0; j < len(alphabet); j++ {
			if alphabet[j] != mutated[i] {
				mutated[i] = alphabet[j]
				break
			}
		}
		m := h
		m.Signature = string(mutated)
		assert.ErrorIs(t, v.Verify(body, m.Header()), ErrRejected, "mutation at %d verified", i)
	}
}

func TestVerifier_Verify_BodyTampered(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	body := []byte(`{"type":"user.updated","data":{"id":"user_1"}}`)
	h := signedHeaders(t, v, "msg_1", time.Now(), body)

	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-3] = '2'
	require.ErrorIs(t, v.Verify(tampered, h.Header()), ErrRejected)
}

func TestNewVerifier(t *testing.T) {
	_, err := NewVerifier("")
	require.Error(t, err)

	_, err = NewVerifier("whsec_not base64!")
	require.Error(t, err)

	_, err = NewVerifier("MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw")
	require.NoError(t, err)
}

func TestHeadersFrom(t *testing.T) {
	h := http.Header{}
	h.Set("Svix-Id", "msg_1")
	h.Set("Svix-Timestamp", " 1700000000 ")

	got := HeadersFrom(h)
	assert.Equal(t, Headers{ID: "msg_1", Timestamp: "1700000000"}, got)
	assert.False(t, got.Complete())
}
