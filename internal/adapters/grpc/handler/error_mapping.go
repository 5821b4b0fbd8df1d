package handler

import (
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(codeOf(err), err.Error())
}

func codeOf(err error) codes.Code {
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		return codes.InvalidArgument
	case apperr.ErrNotFound:
		return codes.NotFound
	case apperr.ErrConflict:
		return codes.Aborted
	case apperr.ErrStorageUnavailable:
		return codes.Unavailable
	case apperr.ErrPermissionDenied:
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}
