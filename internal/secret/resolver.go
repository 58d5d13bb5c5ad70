// Package secret resolves credentials by name from SSM Parameter Store, or from the
// environment in dev mode.
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrNotSet is returned when a secret has no value in the backing source.
var ErrNotSet = errors.New("secret not set")

// SSMClient is the subset of *ssm.Client used by SSMResolver.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Resolver looks up a secret value by parameter name.
type Resolver interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SSMResolver reads SecureString parameters.
type SSMResolver struct {
	client SSMClient
}

func NewSSMResolver(client SSMClient) *SSMResolver {
	return &SSMResolver{client: client}
}

func (r *SSMResolver) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm parameter %q: %w", name, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("ssm parameter %q: %w", name, ErrNotSet)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// EnvResolver maps a parameter path to an environment variable named after its last
// segment: "/vidkeeper/jwt-secret" reads JWT_SECRET.
type EnvResolver struct {
	lookup func(string) (string, bool)
}

func NewEnvResolver() *EnvResolver {
	return &EnvResolver{lookup: os.LookupEnv}
}

func (r *EnvResolver) GetSecret(_ context.Context, name string) (string, error) {
	env := EnvName(name)
	if v, ok := r.lookup(env); ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("env %s (for %q): %w", env, name, ErrNotSet)
}

// EnvName returns the environment variable EnvResolver reads for a parameter name.
func EnvName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(path.Base(name), "-", "_"))
}
