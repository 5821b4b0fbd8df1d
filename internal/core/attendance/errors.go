package attendance

import "github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"

var (
	ErrInvalidEmployeeID = apperr.New(apperr.ErrValidation, "attendance: invalid employee id")
	ErrInvalidDate       = apperr.New(apperr.ErrValidation, "attendance: invalid date")
	ErrInvalidStatus     = apperr.New(apperr.ErrValidation, "attendance: invalid status")
	ErrInvalidDateRange  = apperr.New(apperr.ErrValidation, "attendance: invalid date range")
	ErrInvalidMaxRows    = apperr.New(apperr.ErrValidation, "attendance: invalid max rows")
	ErrDateBeyondHorizon = apperr.New(apperr.ErrValidation, "attendance: date is beyond the allowed future horizon")
)
