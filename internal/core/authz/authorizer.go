// Package authz は休暇承認の権限判定を提供します。
package authz

import (
	"context"
	"strings"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
)

const (
	// CapabilityApproveLeave は自分の管理チェーン配下の休暇を承認できる権限です。
	CapabilityApproveLeave = "leave.approve"
	// CapabilityApproveAnyLeave は全社員の休暇を承認できる権限です。
	CapabilityApproveAnyLeave = "leave.approve.all"
	// CapabilityCorrectBalance は休暇残高の used を訂正できる管理者権限です。
	CapabilityCorrectBalance = "leave.balance.correct"
)

var (
	ErrNotAuthorized           = apperr.New(apperr.ErrPermissionDenied, "authz: approver is not authorized for this employee")
	ErrCorrectionNotAuthorized = apperr.New(apperr.ErrPermissionDenied, "authz: actor is not authorized to correct this balance")
)

// CapabilitySource は外部の認可サブシステムが提供する権限コード一覧です。
type CapabilitySource interface {
	Capabilities(ctx context.Context, actorID string) ([]string, error)
}

// ChainResolver は社員の管理チェーンを解決します。
type ChainResolver interface {
	ManagementChain(ctx context.Context, employeeID string) ([]string, error)
}

// ChainAuthorizer は権限コードと管理チェーンで承認可否を判定します。
type ChainAuthorizer struct {
	capabilities CapabilitySource
	chains       ChainResolver
}

// NewChainAuthorizer は ChainAuthorizer を生成します。
func NewChainAuthorizer(capabilities CapabilitySource, chains ChainResolver) *ChainAuthorizer {
	return &ChainAuthorizer{capabilities: capabilities, chains: chains}
}

// AuthorizeBalanceCorrection は actorID が employeeID の残高を訂正できるか判定します。
// 本人による訂正は権限に関わらず拒否します。
func (a *ChainAuthorizer) AuthorizeBalanceCorrection(ctx context.Context, actorID, employeeID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" || actorID == strings.TrimSpace(employeeID) {
		return ErrCorrectionNotAuthorized
	}

	caps, err := a.capabilities.Capabilities(ctx, actorID)
	if err != nil {
		return err
	}
	for _, c := range caps {
		if c == CapabilityCorrectBalance {
			return nil
		}
	}
	return ErrCorrectionNotAuthorized
}

// AuthorizeApproval は approverID が employeeID の休暇を承認できるか判定します。
func (a *ChainAuthorizer) AuthorizeApproval(ctx context.Context, approverID, employeeID string) error {
	approverID = strings.TrimSpace(approverID)
	if approverID == "" || approverID == employeeID {
		return ErrNotAuthorized
	}

	caps, err := a.capabilities.Capabilities(ctx, approverID)
	if err != nil {
		return err
	}

	var chainScoped bool
	for _, c := range caps {
		switch c {
		case CapabilityApproveAnyLeave:
			return nil
		case CapabilityApproveLeave:
			chainScoped = true
		}
	}
	if !chainScoped {
		return ErrNotAuthorized
	}

	chain, err := a.chains.ManagementChain(ctx, employeeID)
	if err != nil {
		return err
	}
	for _, managerID := range chain {
		if managerID == approverID {
			return nil
		}
	}
	return ErrNotAuthorized
}
