package attendance

import (
	"context"
	"time"
)

// Repository は勤怠台帳の永続化抽象です。(社員, 日付) ごとに高々 1 レコードを保持します。
type Repository interface {
	// Upsert は自然キーで挿入または上書きします。値が同一なら UpdatedAt は変化しません。
	Upsert(ctx context.Context, day *Day) (*Day, error)
	// UpsertRange は [start, end] の各日を同一ステータスで上書きし、対象日数を返します。
	UpsertRange(ctx context.Context, in RangeWrite) (int, error)
	ListByEmployee(ctx context.Context, filter ListFilter) ([]*Day, error)
	ListByManager(ctx context.Context, managerID string, limit int) ([]*Day, error)
	// CountByStatus は [from, to) のレコードを社員ごとにステータス別で集計します。
	CountByStatus(ctx context.Context, from, to time.Time) (map[string]Counts, error)
}

// RangeWrite は連続した日付範囲への一括書き込みです。
type RangeWrite struct {
	EmployeeID string
	Start      time.Time
	End        time.Time
	Status     Status
	Source     string
	Valid      bool
	At         time.Time
}

// ListFilter は社員単位の一覧取得条件です。From と To はいずれも含みます。
type ListFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Limit      int
}
