package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for key file encryption.
const (
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	SaltLen = 16
	keyLen  = 32
)

// EncryptKey encrypts a private key with a password.
//
// Output format: salt(16B) || nonce(12B) || AES-256-GCM(privkey)
func EncryptKey(priv *ec.PrivateKey, password string) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: nil private key", ErrInvalidPubKey)
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("identity: generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("identity: generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, priv.Serialize(), nil)

	out := make([]byte, 0, SaltLen+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptKey reverses EncryptKey.
func DecryptKey(data []byte, password string) (*ec.PrivateKey, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if len(data) < SaltLen+12+keyLen {
		return nil, ErrDecryptionFailed
	}

	salt := data[:SaltLen]
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	nonceEnd := SaltLen + gcm.NonceSize()
	plaintext, err := gcm.Open(nil, data[SaltLen:nonceEnd], data[nonceEnd:], nil)
	if err != nil || len(plaintext) != keyLen {
		return nil, ErrDecryptionFailed
	}

	priv, _ := ec.PrivateKeyFromBytes(plaintext)
	return priv, nil
}

// WriteKeyFile encrypts priv and writes it to path, creating parent directories.
func WriteKeyFile(path string, priv *ec.PrivateKey, password string) error {
	data, err := EncryptKey(priv, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("identity: create directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ReadKeyFile loads and decrypts a key file written by WriteKeyFile.
func ReadKeyFile(path, password string) (*ec.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("identity: read key file: %w", err)
	}
	return DecryptKey(data, password)
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	derived := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("identity: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("identity: GCM creation failed: %w", err)
	}
	return gcm, nil
}
