package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
)

type stubCapabilities map[string][]string

func (s stubCapabilities) Capabilities(_ context.Context, actorID string) ([]string, error) {
	return s[actorID], nil
}

type stubChains map[string][]string

func (s stubChains) ManagementChain(_ context.Context, employeeID string) ([]string, error) {
	return s[employeeID], nil
}

type failingChains struct{ err error }

func (f failingChains) ManagementChain(context.Context, string) ([]string, error) {
	return nil, f.err
}

func TestChainAuthorizer_AuthorizeApproval(t *testing.T) {
	t.Parallel()

	caps := stubCapabilities{
		"lead":  {CapabilityApproveLeave},
		"vp":    {CapabilityApproveLeave},
		"hr":    {CapabilityApproveAnyLeave},
		"peer":  {CapabilityApproveLeave},
		"guest": nil,
	}
	chains := stubChains{"dev": {"lead", "vp"}, "hr": {"ceo"}}
	authorizer := NewChainAuthorizer(caps, chains)

	tests := []struct {
		name     string
		approver string
		employee string
		wantErr  bool
	}{
		{name: "direct manager", approver: "lead", employee: "dev"},
		{name: "skip level manager", approver: "vp", employee: "dev"},
		{name: "global approver", approver: "hr", employee: "dev"},
		{name: "outside chain", approver: "peer", employee: "dev", wantErr: true},
		{name: "no capability", approver: "guest", employee: "dev", wantErr: true},
		{name: "self approval", approver: "hr", employee: "hr", wantErr: true},
		{name: "empty approver", approver: " ", employee: "dev", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := authorizer.AuthorizeApproval(context.Background(), tt.approver, tt.employee)
			if tt.wantErr {
				if !errors.Is(err, ErrNotAuthorized) || !errors.Is(err, apperr.ErrPermissionDenied) {
					t.Fatalf("expected ErrNotAuthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected approval to be allowed, got %v", err)
			}
		})
	}
}

func TestChainAuthorizer_PropagatesChainError(t *testing.T) {
	t.Parallel()

	chainErr := errors.New("directory down")
	authorizer := NewChainAuthorizer(stubCapabilities{"lead": {CapabilityApproveLeave}}, failingChains{err: chainErr})

	if err := authorizer.AuthorizeApproval(context.Background(), "lead", "dev"); !errors.Is(err, chainErr) {
		t.Fatalf("expected chain error, got %v", err)
	}
}

func TestChainAuthorizer_AuthorizeBalanceCorrection(t *testing.T) {
	t.Parallel()

	caps := stubCapabilities{
		"hr-admin": {CapabilityCorrectBalance},
		"dev":      {CapabilityCorrectBalance},
		"hr":       {CapabilityApproveAnyLeave},
	}
	authorizer := NewChainAuthorizer(caps, stubChains{})

	if err := authorizer.AuthorizeBalanceCorrection(context.Background(), "hr-admin", "dev"); err != nil {
		t.Fatalf("expected correction to be allowed, got %v", err)
	}

	for _, actor := range []string{"dev", "hr", "", "unknown"} {
		err := authorizer.AuthorizeBalanceCorrection(context.Background(), actor, "dev")
		if !errors.Is(err, ErrCorrectionNotAuthorized) || !errors.Is(err, apperr.ErrPermissionDenied) {
			t.Fatalf("actor %q: expected ErrCorrectionNotAuthorized, got %v", actor, err)
		}
	}
}
