package payroll

import "github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"

var (
	ErrInvalidPeriod      = apperr.New(apperr.ErrValidation, "payroll: invalid period")
	ErrInvalidWorkingDays = apperr.New(apperr.ErrValidation, "payroll: working days per month must be positive")
)
