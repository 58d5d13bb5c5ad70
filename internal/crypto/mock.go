package crypto

import (
	"context"
	"encoding/base64"
	"strings"
)

const mockPrefix = "mock:"

// MockEncryptor is the dev-mode Encryptor. It only encodes, so it must never guard real tokens.
type MockEncryptor struct{}

func NewMockEncryptor() *MockEncryptor {
	return &MockEncryptor{}
}

func (MockEncryptor) Encrypt(_ context.Context, plaintext string) (string, error) {
	return mockPrefix + base64.RawURLEncoding.EncodeToString([]byte(plaintext)), nil
}

func (MockEncryptor) Decrypt(_ context.Context, ciphertext string) (string, error) {
	encoded, ok := strings.CutPrefix(ciphertext, mockPrefix)
	if !ok {
		return "", ErrMalformed
	}
	b, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformed
	}
	return string(b), nil
}
