package leave

import "context"

// Repository は休暇申請の永続化抽象です。
type Repository interface {
	Create(ctx context.Context, req *Request) (*Request, error)
	FindByID(ctx context.Context, id string) (*Request, error)
	// LockPending は pending の申請を排他ロックして返します。
	// 存在しない、または終端状態の場合は ErrRequestNotFound を返します。
	// ロックはトランザクション終了まで保持されます。
	LockPending(ctx context.Context, id string) (*Request, error)
	// SaveDecision は終端状態・承認者・決定日時を保存します。
	SaveDecision(ctx context.Context, req *Request) error
	List(ctx context.Context, filter ListFilter) ([]*Request, string, error)
}

// CategoryRepository は休暇区分カタログの参照抽象です。
type CategoryRepository interface {
	Exists(ctx context.Context, code string) (bool, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	EmployeeID string
	Status     *Status
	Limit      int
	Offset     int
}
