package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusOf(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		return http.StatusBadRequest, "validation"
	case apperr.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case apperr.ErrConflict:
		return http.StatusConflict, "conflict"
	case apperr.ErrStorageUnavailable:
		return http.StatusServiceUnavailable, "storage_unavailable"
	case apperr.ErrPermissionDenied:
		return http.StatusForbidden, "permission_denied"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := statusOf(err)
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: err.Error()}})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Kind: "validation", Message: message}})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeBadRequest(w, err.Error())
		return
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field()+" failed on "+fe.Tag())
	}
	writeBadRequest(w, strings.Join(fields, "; "))
}
