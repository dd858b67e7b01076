// Package mcrypto protects stored broker credentials with authenticated
// symmetric encryption. Values are written under the current payload version;
// older versions stay readable so credentials survive a key rotation window.
package mcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"strings"

	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	"github.com/debdevops/servicehub/pkg"
	cn "github.com/debdevops/servicehub/pkg/constant"
)

const (
	// CurrentVersion tags every newly written payload.
	CurrentVersion = "V2"

	legacyVersion = "V1"
	nonceSize     = 12
	keySize       = 32
)

// Crypto holds the cipher state for credential protection. Initialize it once
// at bootstrap with InitializeCipher before any Encrypt/Decrypt call.
type Crypto struct {
	// MasterKey is the base64-encoded 256-bit key supplied by the environment
	// or a key vault.
	MasterKey string

	// LegacyMasterKey optionally decrypts V1 payloads written before the last
	// rotation. Leave empty when no rotation is in flight.
	LegacyMasterKey string

	Logger libLog.Logger

	current cipher.AEAD
	legacy  cipher.AEAD
}

// InitializeCipher validates the configured keys and builds the AEAD instances.
func (c *Crypto) InitializeCipher() error {
	if strings.TrimSpace(c.MasterKey) == "" {
		return pkg.ValidateBusinessError(cn.ErrMasterKeyRequired, "Crypto")
	}

	aead, err := buildAEAD(c.MasterKey)
	if err != nil {
		return pkg.ValidateBusinessError(cn.ErrMasterKeyRequired, "Crypto")
	}

	c.current = aead

	if strings.TrimSpace(c.LegacyMasterKey) != "" {
		legacy, err := buildAEAD(c.LegacyMasterKey)
		if err != nil {
			return pkg.ValidateBusinessError(cn.ErrMasterKeyRequired, "Crypto")
		}

		c.legacy = legacy
	}

	return nil
}

func buildAEAD(encodedKey string) (cipher.AEAD, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, err
	}

	if len(key) != keySize {
		return nil, aes.KeySizeError(len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

// Encrypt seals a credential under the current version. Output is the version
// tag followed by base64(nonce || ciphertext || tag).
func (c *Crypto) Encrypt(plaintext string) (string, error) {
	if c.current == nil {
		return "", pkg.ValidateBusinessError(cn.ErrMasterKeyRequired, "Crypto")
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", pkg.ValidateInternalError(err, "Crypto")
	}

	sealed := c.current.Seal(nonce, nonce, []byte(plaintext), nil)

	return CurrentVersion + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a stored payload. It fails with the decrypt-failed business
// error on an unknown version tag, a malformed payload, or a tag mismatch.
func (c *Crypto) Decrypt(payload string) (string, error) {
	version, encoded, found := strings.Cut(payload, ":")
	if !found {
		return "", pkg.ValidateBusinessError(cn.ErrDecryptFailed, "Crypto")
	}

	var aead cipher.AEAD

	switch version {
	case CurrentVersion:
		aead = c.current
	case legacyVersion:
		aead = c.legacy
		if aead == nil {
			// No rotation in flight; V1 values were written under the same key.
			aead = c.current
		}
	default:
		return "", pkg.ValidateBusinessError(cn.ErrDecryptFailed, "Crypto")
	}

	if aead == nil {
		return "", pkg.ValidateBusinessError(cn.ErrMasterKeyRequired, "Crypto")
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", pkg.ValidateBusinessError(cn.ErrDecryptFailed, "Crypto")
	}

	if len(sealed) < nonceSize+aead.Overhead() {
		return "", pkg.ValidateBusinessError(cn.ErrDecryptFailed, "Crypto")
	}

	plaintext, err := aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", pkg.ValidateBusinessError(cn.ErrDecryptFailed, "Crypto")
	}

	return string(plaintext), nil
}
