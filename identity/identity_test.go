package identity

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) *ec.PrivateKey {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

// ---------------------------------------------------------------------------
// ID encoding
// ---------------------------------------------------------------------------

func TestFromPublicKey_MatchesHash160(t *testing.T) {
	priv := genKey(t)
	id, err := FromPublicKey(priv.PubKey())
	require.NoError(t, err)
	assert.Equal(t, bsvhash.Hash160(priv.PubKey().Compressed()), id[:])
	assert.False(t, id.IsZero())
}

func TestFromPublicKey_Nil(t *testing.T) {
	_, err := FromPublicKey(nil)
	assert.ErrorIs(t, err, ErrInvalidPubKey)
}

func TestAddressRoundTrip(t *testing.T) {
	priv := genKey(t)
	id, err := FromPublicKey(priv.PubKey())
	require.NoError(t, err)

	for _, mainnet := range []bool{true, false} {
		addr, err := id.Address(mainnet)
		require.NoError(t, err)

		parsed, err := ParseAddress(addr)
		require.NoError(t, err)
		assert.Equal(t, id, parsed, "mainnet=%v", mainnet)

		parsed, err = Parse(addr)
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestParseHex(t *testing.T) {
	priv := genKey(t)
	id, err := FromPublicKey(priv.PubKey())
	require.NoError(t, err)

	parsed, err := ParseHex(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseHex("abcd")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = ParseHex("zz")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestTextMarshalling(t *testing.T) {
	priv := genKey(t)
	id, err := FromPublicKey(priv.PubKey())
	require.NoError(t, err)

	text, err := id.MarshalText()
	require.NoError(t, err)

	var out ID
	require.NoError(t, out.UnmarshalText(text))
	assert.Equal(t, id, out)
}

func TestFromPubKeyHex(t *testing.T) {
	priv := genKey(t)
	want, err := FromPublicKey(priv.PubKey())
	require.NoError(t, err)

	got, pub, err := FromPubKeyHex(hex.EncodeToString(priv.PubKey().Compressed()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, priv.PubKey().Compressed(), pub.Compressed())

	_, _, err = FromPubKeyHex("02")
	assert.ErrorIs(t, err, ErrInvalidPubKey)
}

// ---------------------------------------------------------------------------
// Request signatures
// ---------------------------------------------------------------------------

func TestSignVerifyRequest(t *testing.T) {
	priv := genKey(t)
	want, err := FromPublicKey(priv.PubKey())
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	r := httptest.NewRequest(http.MethodGet, "/all.country/videos", nil)
	require.NoError(t, SignRequest(r, priv, now))

	got, err := VerifyRequest(r, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifyRequest_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/a/b", nil)
	_, err := VerifyRequest(r, time.Now())
	assert.True(t, errors.Is(err, ErrMissingCredentials))
}

func TestVerifyRequest_PathTampered(t *testing.T) {
	priv := genKey(t)
	now := time.Unix(1700000000, 0)
	r := httptest.NewRequest(http.MethodGet, "/a/b", nil)
	require.NoError(t, SignRequest(r, priv, now))

	r.URL.Path = "/a/c"
	_, err := VerifyRequest(r, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSignVerifyRequest_BodyPreserved(t *testing.T) {
	priv := genKey(t)
	now := time.Unix(1700000000, 0)
	r := httptest.NewRequest(http.MethodPost, "/_pay", strings.NewReader(`{"raw_tx":"00"}`))
	require.NoError(t, SignRequest(r, priv, now))

	_, err := VerifyRequest(r, now)
	require.NoError(t, err)

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"raw_tx":"00"}`, string(body))
}

func TestVerifyRequest_BodyTampered(t *testing.T) {
	priv := genKey(t)
	now := time.Unix(1700000000, 0)
	r := httptest.NewRequest(http.MethodPost, "/_pay", strings.NewReader(`{"raw_tx":"00"}`))
	require.NoError(t, SignRequest(r, priv, now))

	r.Body = io.NopCloser(strings.NewReader(`{"raw_tx":"01"}`))
	_, err := VerifyRequest(r, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRequest_BodyTooLarge(t *testing.T) {
	priv := genKey(t)
	now := time.Unix(1700000000, 0)
	r := httptest.NewRequest(http.MethodPost, "/_pay", nil)
	require.NoError(t, SignRequest(r, priv, now))

	r.Body = io.NopCloser(strings.NewReader(strings.Repeat("a", MaxSignedBody+1)))
	_, err := VerifyRequest(r, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRequest_Stale(t *testing.T) {
	priv := genKey(t)
	now := time.Unix(1700000000, 0)
	r := httptest.NewRequest(http.MethodGet, "/a/b", nil)
	require.NoError(t, SignRequest(r, priv, now))

	_, err := VerifyRequest(r, now.Add(MaxClockSkew+time.Second))
	assert.ErrorIs(t, err, ErrStaleRequest)
}

func TestVerifyRequest_BadSignatureHex(t *testing.T) {
	priv := genKey(t)
	now := time.Unix(1700000000, 0)
	r := httptest.NewRequest(http.MethodGet, "/a/b", nil)
	require.NoError(t, SignRequest(r, priv, now))
	r.Header.Set(HeaderSignature, "nothex")

	_, err := VerifyRequest(r, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

// ---------------------------------------------------------------------------
// Key files
// ---------------------------------------------------------------------------

func TestKeyFileRoundTrip(t *testing.T) {
	priv := genKey(t)
	path := filepath.Join(t.TempDir(), "keys", "admin.key")

	require.NoError(t, WriteKeyFile(path, priv, "hunter2"))

	loaded, err := ReadKeyFile(path, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, priv.Serialize(), loaded.Serialize())
}

func TestDecryptKey_WrongPassword(t *testing.T) {
	priv := genKey(t)
	data, err := EncryptKey(priv, "right")
	require.NoError(t, err)

	_, err = DecryptKey(data, "wrong")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncryptKey_EmptyPassword(t *testing.T) {
	_, err := EncryptKey(genKey(t), "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestDecryptKey_Truncated(t *testing.T) {
	_, err := DecryptKey([]byte{1, 2, 3}, "pw")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
