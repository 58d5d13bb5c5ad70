// Package crypto seals the provider refresh token before it is embedded in a session token.
package crypto

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// ErrMalformed is returned when a ciphertext was not produced by the same Encryptor.
var ErrMalformed = errors.New("malformed ciphertext")

// Encryptor seals and opens short secrets as printable strings.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// KMSAPI is the subset of *kms.Client used by KMSEncryptor.
type KMSAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// purpose binds ciphertexts to this use so they cannot be replayed against other KMS consumers.
var purpose = map[string]string{"purpose": "vidkeeper-session-refresh-token"}

// KMSEncryptor encrypts with a KMS key and returns URL-safe base64.
type KMSEncryptor struct {
	client KMSAPI
	keyID  string
}

// NewKMSEncryptor creates a KMSEncryptor. keyID may be a key id, ARN or alias.
func NewKMSEncryptor(client KMSAPI, keyID string) *KMSEncryptor {
	return &KMSEncryptor{client: client, keyID: keyID}
}

func (e *KMSEncryptor) Encrypt(ctx context.Context, plaintext string) (string, error) {
	out, err := e.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:             aws.String(e.keyID),
		Plaintext:         []byte(plaintext),
		EncryptionContext: purpose,
	})
	if err != nil {
		return "", fmt.Errorf("kms encrypt: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(out.CiphertextBlob), nil
}

func (e *KMSEncryptor) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	blob, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil || len(blob) == 0 {
		return "", ErrMalformed
	}
	out, err := e.client.Decrypt(ctx, &kms.DecryptInput{
		CiphertextBlob:    blob,
		KeyId:             aws.String(e.keyID),
		EncryptionContext: purpose,
	})
	if err != nil {
		return "", fmt.Errorf("kms decrypt: %w", err)
	}
	return string(out.Plaintext), nil
}
