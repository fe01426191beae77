package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"present-delivery-service/internal/ports"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// PlainSource treats the reference as the secret itself.
type PlainSource struct{}

func (PlainSource) Lookup(_ context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", errors.New("secret is empty")
	}
	return ref, nil
}

type parameterGetter interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMSource resolves references as SecureString parameter names.
type SSMSource struct {
	client parameterGetter
	logger *slog.Logger
}

func NewSSMSource(client parameterGetter, logger *slog.Logger) *SSMSource {
	return &SSMSource{client: client, logger: logger.With("component", "ssm_source")}
}

func (s *SSMSource) Lookup(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm get parameter %q: %w", name, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("ssm parameter %q has no value", name)
	}

	s.logger.DebugContext(ctx, "parameter resolved", "name", name)
	return aws.ToString(out.Parameter.Value), nil
}

// ResolveAll replaces every non-empty reference with the secret it names.
func ResolveAll(ctx context.Context, src ports.SecretSource, refs ...*string) error {
	for _, ref := range refs {
		if ref == nil || *ref == "" {
			continue
		}
		v, err := src.Lookup(ctx, *ref)
		if err != nil {
			return err
		}
		*ref = v
	}
	return nil
}
