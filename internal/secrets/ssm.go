package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
)

// ssmAPI is the subset of the SSM client used by SSMStore.
type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMStore reads parameters from AWS Systems Manager Parameter Store.
type SSMStore struct {
	client ssmAPI
}

// SSMOptions configures the AWS client. Empty fields use the SDK's default
// resolution chain (environment, shared config, instance metadata).
type SSMOptions struct {
	Region  string
	Profile string
}

// NewSSMStore creates an SSMStore from the default AWS configuration.
func NewSSMStore(ctx context.Context, opts SSMOptions) (*SSMStore, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &SSMStore{client: ssm.NewFromConfig(cfg)}, nil
}

// GetParameter implements Store.
func (s *SSMStore) GetParameter(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var nf *types.ParameterNotFound
		if errors.As(err, &nf) {
			return "", notFound(name, "")
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("ssm get-parameter %s: %s: %s", name, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return "", fmt.Errorf("ssm get-parameter %s: %w", name, err)
	}

	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", notFound(name, "empty response")
	}
	return strings.TrimSpace(aws.ToString(out.Parameter.Value)), nil
}
