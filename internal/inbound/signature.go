// Package inbound decodes and authenticates provider webhook deliveries.
package inbound

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
)

// DefaultMaxSkew bounds how old or early a delivery timestamp may be
const DefaultMaxSkew = 5 * time.Minute

// Envelope carries the fields a provider signs
type Envelope struct {
	Timestamp string
	Token     string
	Signature string
}

// Verifier checks webhook signatures and rejects replays outside the skew window
type Verifier struct {
	maxSkew time.Duration
	now     func() time.Time
}

// NewVerifier creates a Verifier; a non-positive skew falls back to DefaultMaxSkew
func NewVerifier(maxSkew time.Duration) *Verifier {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	return &Verifier{maxSkew: maxSkew, now: time.Now}
}

// WithClock returns a copy of v that reads time from now
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	c := *v
	c.now = now
	return &c
}

// Verify checks HMAC-SHA256(signingKey, timestamp+token) against the
// hex signature in constant time, then the timestamp window.
func (v *Verifier) Verify(signingKey string, env Envelope) error {
	if signingKey == "" {
		return rejected("no signing key configured")
	}
	if env.Timestamp == "" || env.Token == "" || env.Signature == "" {
		return rejected("missing signature fields")
	}

	given, err := hex.DecodeString(env.Signature)
	if err != nil {
		return rejected("signature is not hex")
	}
	if !hmac.Equal(given, mac(signingKey, env.Timestamp, env.Token)) {
		return rejected("signature mismatch")
	}

	secs, err := strconv.ParseInt(env.Timestamp, 10, 64)
	if err != nil {
		return rejected("timestamp is not a unix time")
	}
	skew := v.now().Sub(time.Unix(secs, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return rejected("timestamp outside allowed window")
	}
	return nil
}

// Sign produces the hex signature a provider would send
func Sign(signingKey, timestamp, token string) string {
	return hex.EncodeToString(mac(signingKey, timestamp, token))
}

func mac(key, timestamp, token string) []byte {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(timestamp))
	h.Write([]byte(token))
	return h.Sum(nil)
}

func rejected(reason string) error {
	return apperrors.NewAppError(apperrors.ErrSignatureInvalid, reason, apperrors.CodeSignatureInvalid)
}
