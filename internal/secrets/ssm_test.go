package secrets

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
)

type fakeSSM struct {
	inputs []*ssm.GetParameterInput
	out    *ssm.GetParameterOutput
	err    error
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.inputs = append(f.inputs, in)
	return f.out, f.err
}

func TestSSMStore_GetParameter(t *testing.T) {
	fake := &fakeSSM{out: &ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String("tok-123\n")},
	}}
	store := &SSMStore{client: fake}

	got, err := store.GetParameter(context.Background(), "/dev/devcontainers/web/openvscode-token")
	if err != nil {
		t.Fatalf("GetParameter failed: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("GetParameter() = %q, want %q", got, "tok-123")
	}

	in := fake.inputs[0]
	if aws.ToString(in.Name) != "/dev/devcontainers/web/openvscode-token" {
		t.Errorf("Name = %q, want parameter name", aws.ToString(in.Name))
	}
	if !aws.ToBool(in.WithDecryption) {
		t.Error("WithDecryption should be true")
	}
}

func TestSSMStore_NotFound(t *testing.T) {
	store := &SSMStore{client: &fakeSSM{err: &types.ParameterNotFound{Message: aws.String("nope")}}}

	_, err := store.GetParameter(context.Background(), "/x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetParameter() error = %v, want ErrNotFound", err)
	}
}

func TestSSMStore_APIError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"}
	store := &SSMStore{client: &fakeSSM{err: apiErr}}

	_, err := store.GetParameter(context.Background(), "/x")
	if err == nil {
		t.Fatal("GetParameter() error = nil, want error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("API errors must not be reported as not found")
	}
	if !strings.Contains(err.Error(), "AccessDeniedException") {
		t.Errorf("error = %q, want error code", err.Error())
	}
}

func TestSSMStore_EmptyResponse(t *testing.T) {
	store := &SSMStore{client: &fakeSSM{out: &ssm.GetParameterOutput{}}}

	_, err := store.GetParameter(context.Background(), "/x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetParameter() error = %v, want ErrNotFound", err)
	}
}
