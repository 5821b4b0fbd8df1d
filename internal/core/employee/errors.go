package employee

import "github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"

var (
	ErrInvalidID         = apperr.New(apperr.ErrValidation, "employee: invalid id")
	ErrEmployeeNotFound  = apperr.New(apperr.ErrNotFound, "employee: not found")
	ErrEmployeeNotActive = apperr.New(apperr.ErrValidation, "employee: no active profile")
	ErrManagementCycle   = apperr.New(apperr.ErrValidation, "employee: management chain contains a cycle")
)
