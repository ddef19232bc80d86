package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/cockroachdb/errors"
)

// Encryptor seals tokens at rest with AES-256-GCM. The key is derived from
// the configured secret with sha256, ciphertext is nonce||sealed in base64.
type Encryptor struct {
	aead cipher.AEAD
}

func NewEncryptor(secret string) (*Encryptor, error) {
	if secret == "" {
		return nil, errors.New("token encryption key is required")
	}

	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Encryptor{
		aead: aead,
	}, nil
}

func (e *Encryptor) EncryptString(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "can not generate nonce")
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *Encryptor) DecryptString(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "ciphertext is not base64")
	}

	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plaintext, err := e.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errors.Wrap(err, "can not decrypt token")
	}

	return string(plaintext), nil
}
