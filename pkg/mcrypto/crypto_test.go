package mcrypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/debdevops/servicehub/pkg"
	cn "github.com/debdevops/servicehub/pkg/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCrypto(t *testing.T) *Crypto {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	c := &Crypto{
		MasterKey: base64.StdEncoding.EncodeToString(key),
	}

	require.NoError(t, c.InitializeCipher())

	return c
}

func TestCrypto_EncryptDecryptRoundTrip(t *testing.T) {
	c := newTestCrypto(t)

	plaintext := "Endpoint=sb://demo.servicebus.windows.net/;SharedAccessKeyName=root;SharedAccessKey=abc123"

	payload, err := c.Encrypt(plaintext)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payload, "V2:"))

	decrypted, err := c.Decrypt(payload)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestCrypto_EncryptProducesFreshNonce(t *testing.T) {
	c := newTestCrypto(t)

	first, err := c.Encrypt("secret")
	require.NoError(t, err)

	second, err := c.Encrypt("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCrypto_DecryptTamperedPayload(t *testing.T) {
	c := newTestCrypto(t)

	payload, err := c.Encrypt("secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, "V2:"))
	require.NoError(t, err)

	// Flip a single bit anywhere in the sealed payload.
	raw[len(raw)/2] ^= 0x01

	tampered := "V2:" + base64.StdEncoding.EncodeToString(raw)

	_, err = c.Decrypt(tampered)
	assertDecryptFailed(t, err)
}

func TestCrypto_DecryptUnknownVersion(t *testing.T) {
	c := newTestCrypto(t)

	payload, err := c.Encrypt("secret")
	require.NoError(t, err)

	_, err = c.Decrypt("V9:" + strings.TrimPrefix(payload, "V2:"))
	assertDecryptFailed(t, err)
}

func TestCrypto_DecryptMalformedPayload(t *testing.T) {
	c := newTestCrypto(t)

	testCases := []struct {
		name    string
		payload string
	}{
		{name: "no version tag", payload: "bm90LXZhbGlk"},
		{name: "not base64", payload: "V2:%%%%"},
		{name: "too short", payload: "V2:" + base64.StdEncoding.EncodeToString([]byte("tiny"))},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := c.Decrypt(testCase.payload)
			assertDecryptFailed(t, err)
		})
	}
}

func TestCrypto_LegacyVersionStaysReadable(t *testing.T) {
	c := newTestCrypto(t)

	payload, err := c.Encrypt("secret")
	require.NoError(t, err)

	// V1 values written before a rotation window use the same construction.
	legacy := "V1:" + strings.TrimPrefix(payload, "V2:")

	decrypted, err := c.Decrypt(legacy)
	require.NoError(t, err)
	assert.Equal(t, "secret", decrypted)
}

func TestCrypto_InitializeCipherRequiresKey(t *testing.T) {
	c := &Crypto{}

	err := c.InitializeCipher()
	require.Error(t, err)

	var validation pkg.ValidationError

	require.True(t, errors.As(err, &validation))
	assert.Equal(t, cn.ErrMasterKeyRequired.Error(), validation.Code)
}

func TestCrypto_InitializeCipherRejectsShortKey(t *testing.T) {
	c := &Crypto{
		MasterKey: base64.StdEncoding.EncodeToString([]byte("short")),
	}

	assert.Error(t, c.InitializeCipher())
}

func assertDecryptFailed(t *testing.T, err error) {
	t.Helper()

	require.Error(t, err)

	var internal pkg.InternalServerError

	require.True(t, errors.As(err, &internal))
	assert.Equal(t, cn.ErrDecryptFailed.Error(), internal.Code)
}
