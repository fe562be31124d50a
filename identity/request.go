package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// Request signature header names.
const (
	HeaderPubKey    = "X-Vanity-Pubkey"
	HeaderTimestamp = "X-Vanity-Timestamp"
	HeaderSignature = "X-Vanity-Signature"
)

// requestDomain separates request digests from any other signed payload.
const requestDomain = "vanitypay/v1"

// MaxClockSkew bounds how far a request timestamp may drift from local time.
const MaxClockSkew = 5 * time.Minute

// MaxSignedBody is the largest request body SignRequest and VerifyRequest hash.
const MaxSignedBody = 1 << 20

// RequestDigest computes
// SHA256(domain | method | path | timestamp | hex(SHA256(body))).
func RequestDigest(method, path string, ts int64, body []byte) []byte {
	bodySum := sha256.Sum256(body)
	h := sha256.New()
	h.Write([]byte(requestDomain))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToUpper(method)))
	h.Write([]byte{'|'})
	h.Write([]byte(path))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(ts, 10)))
	h.Write([]byte{'|'})
	h.Write([]byte(hex.EncodeToString(bodySum[:])))
	return h.Sum(nil)
}

// readBody drains r.Body and puts an identical reader back in its place.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxSignedBody+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	if len(body) > MaxSignedBody {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxSignedBody)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// SignRequest signs the request method, path and body with priv and sets
// the identity headers on r. The body is read and replaced.
func SignRequest(r *http.Request, priv *ec.PrivateKey, now time.Time) error {
	if priv == nil {
		return fmt.Errorf("%w: nil private key", ErrInvalidPubKey)
	}
	body, err := readBody(r)
	if err != nil {
		return fmt.Errorf("identity: read request body: %w", err)
	}
	ts := now.Unix()
	sig, err := priv.Sign(RequestDigest(r.Method, r.URL.Path, ts, body))
	if err != nil {
		return fmt.Errorf("identity: sign request: %w", err)
	}
	r.Header.Set(HeaderPubKey, hex.EncodeToString(priv.PubKey().Compressed()))
	r.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	r.Header.Set(HeaderSignature, hex.EncodeToString(sig.Serialize()))
	return nil
}

// VerifyRequest authenticates r and returns the caller identity. The body
// is covered by the signature; it is read and replaced so handlers can
// still consume it.
// ErrMissingCredentials is returned when no public key header is present so
// callers can treat the request as anonymous.
func VerifyRequest(r *http.Request, now time.Time) (ID, error) {
	pubHex := r.Header.Get(HeaderPubKey)
	if pubHex == "" {
		return Zero, ErrMissingCredentials
	}
	id, pub, err := FromPubKeyHex(pubHex)
	if err != nil {
		return Zero, err
	}

	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("%w: bad %s: %w", ErrInvalidSignature, HeaderTimestamp, err)
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew > MaxClockSkew || skew < -MaxClockSkew {
		return Zero, fmt.Errorf("%w: skew %s", ErrStaleRequest, skew)
	}

	sigBytes, err := hex.DecodeString(r.Header.Get(HeaderSignature))
	if err != nil || len(sigBytes) == 0 {
		return Zero, fmt.Errorf("%w: bad %s", ErrInvalidSignature, HeaderSignature)
	}
	sig, err := ec.ParseDERSignature(sigBytes)
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	body, err := readBody(r)
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !sig.Verify(RequestDigest(r.Method, r.URL.Path, ts, body), pub) {
		return Zero, ErrInvalidSignature
	}
	return id, nil
}
