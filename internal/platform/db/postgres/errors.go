package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
)

// SQLSTATE コード。
const (
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeLockNotAvailable     = "55P03"
	CodeCheckViolation       = "23514"
	CodeForeignKeyViolation  = "23503"
	CodeQueryCanceled        = "57014"
	CodeAdminShutdown        = "57P01"
	CodeCannotConnectNow     = "57P03"

	classDataException = "22"
)

// Classify はドライバ由来のエラーを apperr の分類付きエラーへ変換します。
// 個別に判定できないエラーは StorageUnavailable として返します。一意制約違反などは
// リトライ対象の Conflict にせず、各リポジトリがドメインエラーへ変換します。pgx.ErrNoRows は呼び出し側で扱ってください。
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != nil {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == CodeSerializationFailure,
			pgErr.Code == CodeDeadlockDetected,
			pgErr.Code == CodeLockNotAvailable:
			return apperr.Wrap(apperr.ErrConflict, op, err)
		case pgErr.Code == CodeCheckViolation:
			return apperr.Wrap(apperr.ErrValidation, op, err)
		case pgErr.Code == CodeAdminShutdown,
			pgErr.Code == CodeQueryCanceled,
			pgErr.Code == CodeCannotConnectNow,
			strings.HasPrefix(pgErr.Code, "08"):
			return apperr.Wrap(apperr.ErrStorageUnavailable, op, err)
		case strings.HasPrefix(pgErr.Code, classDataException):
			return apperr.Wrap(apperr.ErrValidation, op, err)
		}
		return apperr.Wrap(apperr.ErrStorageUnavailable, op, err)
	}

	// 接続断やタイムアウトなど pg 以外のドライバエラーも一時的な障害として扱う。
	return apperr.Wrap(apperr.ErrStorageUnavailable, op, err)
}
