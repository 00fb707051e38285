package interactions

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	signatureHeader = "X-Signature-Ed25519"
	timestampHeader = "X-Signature-Timestamp"
)

// Verifier validates inbound interaction authenticity.
type Verifier interface {
	Verify(headers http.Header, body []byte, now time.Time) error
}

var (
	ErrMissingSignature = errors.New("signature header is required")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidTimestamp = errors.New("invalid signature timestamp")
	ErrTimestampExpired = errors.New("signature timestamp outside allowed skew")
	ErrInvalidPublicKey = errors.New("invalid ed25519 public key")
)

// Ed25519Verifier checks the detached signature Discord sends over
// timestamp+body.
type Ed25519Verifier struct {
	publicKey ed25519.PublicKey
	maxSkew   time.Duration
}

// NewEd25519Verifier parses the hex encoded application public key. A
// non-positive maxSkew disables the timestamp freshness check.
func NewEd25519Verifier(publicKeyHex string, maxSkew time.Duration) (*Ed25519Verifier, error) {
	key, err := hex.DecodeString(strings.TrimSpace(publicKeyHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPublicKey, len(key))
	}
	return &Ed25519Verifier{
		publicKey: ed25519.PublicKey(key),
		maxSkew:   maxSkew,
	}, nil
}

// Verify validates the signature headers against the raw request body.
func (v *Ed25519Verifier) Verify(headers http.Header, body []byte, now time.Time) error {
	signature := headers.Get(signatureHeader)
	if signature == "" {
		return ErrMissingSignature
	}
	timestamp := headers.Get(timestampHeader)
	if timestamp == "" {
		return ErrInvalidTimestamp
	}

	if v.maxSkew > 0 {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		msgTime := time.Unix(ts, 0)
		if now.Sub(msgTime) > v.maxSkew || msgTime.Sub(now) > v.maxSkew {
			return ErrTimestampExpired
		}
	}

	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(v.publicKey, signedMessage(timestamp, body), sig) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifySignature reports whether signatureHex is a valid signature by
// publicKeyHex over timestamp followed by body. Missing inputs or malformed
// hex yield false.
func VerifySignature(publicKeyHex, signatureHex, timestamp string, body []byte) bool {
	if signatureHex == "" || timestamp == "" {
		return false
	}
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key), signedMessage(timestamp, body), sig)
}

func signedMessage(timestamp string, body []byte) []byte {
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	return append(msg, body...)
}
