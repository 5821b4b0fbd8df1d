package balance

import "github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"

var (
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "balance: invalid employee id")
	ErrInvalidCategory   = apperr.New(apperr.ErrValidation, "balance: invalid category")
	ErrInvalidYear       = apperr.New(apperr.ErrValidation, "balance: invalid year")
	ErrInvalidDays       = apperr.New(apperr.ErrValidation, "balance: days must be positive")
	ErrBalanceNotFound   = apperr.New(apperr.ErrNotFound, "balance: not provisioned for employee, category and period")
	ErrUsedBelowZero     = apperr.New(apperr.ErrValidation, "balance: correction would make used negative")
	ErrInvalidActor      = apperr.New(apperr.ErrValidation, "balance: actor is required")
	ErrNotAuthorized     = apperr.New(apperr.ErrPermissionDenied, "balance: corrections are not enabled")
)
