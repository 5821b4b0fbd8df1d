package leave

import "github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"

var (
	ErrInvalidID          = apperr.New(apperr.ErrValidation, "leave: invalid request id")
	ErrInvalidEmployeeID  = apperr.New(apperr.ErrValidation, "leave: invalid employee id")
	ErrInvalidDateRange   = apperr.New(apperr.ErrValidation, "leave: start date must not be after end date")
	ErrRequestTooLong     = apperr.New(apperr.ErrValidation, "leave: request must not exceed 366 days")
	ErrUnknownCategory    = apperr.New(apperr.ErrValidation, "leave: unknown category")
	ErrInactiveEmployee   = apperr.New(apperr.ErrValidation, "leave: employee has no active profile")
	ErrInvalidReason      = apperr.New(apperr.ErrValidation, "leave: reason is too long")
	ErrInvalidDecision    = apperr.New(apperr.ErrValidation, "leave: decision must be approved or rejected")
	ErrInvalidApprover    = apperr.New(apperr.ErrValidation, "leave: invalid approver")
	ErrInvalidStatus      = apperr.New(apperr.ErrValidation, "leave: invalid status")
	ErrInvalidPageSize    = apperr.New(apperr.ErrValidation, "leave: invalid page size")
	ErrInvalidPageToken   = apperr.New(apperr.ErrValidation, "leave: invalid page token")
	ErrRequestNotFound    = apperr.New(apperr.ErrNotFound, "leave: request not found or already processed")
	ErrBackfillIncomplete = apperr.New(apperr.ErrStorageUnavailable, "leave: attendance backfill did not cover the whole range")
)
