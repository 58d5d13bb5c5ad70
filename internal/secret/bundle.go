package secret

import (
	"context"
	"errors"
	"fmt"
)

// Names lists the parameter names of the secrets the service needs.
type Names struct {
	GoogleClientSecret string
	JWTSecret          string
	APIGatewaySecret   string
}

// Bundle holds resolved secret values.
type Bundle struct {
	GoogleClientSecret string
	JWTSecret          string
	APIGatewaySecret   string
}

// Load resolves every secret in names. When required is set every secret must resolve;
// otherwise missing ones stay empty and are reported together in the returned warning.
func Load(ctx context.Context, r Resolver, names Names, required bool) (Bundle, error) {
	var b Bundle
	var errs []error

	for _, s := range []struct {
		name string
		dst  *string
	}{
		{names.GoogleClientSecret, &b.GoogleClientSecret},
		{names.JWTSecret, &b.JWTSecret},
		{names.APIGatewaySecret, &b.APIGatewaySecret},
	} {
		v, err := r.GetSecret(ctx, s.name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*s.dst = v
	}

	err := errors.Join(errs...)
	if err != nil && required {
		return Bundle{}, fmt.Errorf("resolve secrets: %w", err)
	}
	return b, err
}
