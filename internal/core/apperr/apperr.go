// Package apperr はコア全体で共有するエラー分類を定義します。
//
// 各ドメインパッケージは New で分類付きのセンチネルを宣言し、
// アダプタ層はインフラ由来のエラーを Wrap で分類してから返却します。
// 呼び出し側は errors.Is(err, apperr.ErrNotFound) のように分類で判定できます。
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation は入力不正を表します。自動リトライしてはいけません。
	ErrValidation = errors.New("validation error")
	// ErrNotFound は対象が存在しない、または既に終端状態であることを表します。
	ErrNotFound = errors.New("not found")
	// ErrConflict はストレージ層の直列化失敗を表します。トランザクション全体のやり直しでのみリトライ可能です。
	ErrConflict = errors.New("conflict")
	// ErrStorageUnavailable はインフラ障害を表します。コアではリトライしません。
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrPermissionDenied は承認者が対象社員を承認する権限を持たないことを表します。
	ErrPermissionDenied = errors.New("permission denied")
)

var kinds = []error{ErrValidation, ErrNotFound, ErrConflict, ErrStorageUnavailable, ErrPermissionDenied}

// Error は分類付きのエラーです。
type Error struct {
	kind  error
	msg   string
	cause error
}

// New は分類付きのセンチネルエラーを生成します。
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap は原因エラーを保持したまま分類を付与します。
func Wrap(kind error, op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{kind: kind, msg: op, cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

// Unwrap は分類と原因の両方を返します。
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// KindOf はエラーの分類を返します。分類されていなければ nil を返します。
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsRetryable は ErrConflict のみ true を返します。
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
