package balance

import "context"

// Repository は休暇残高の永続化抽象です。残高行は期首に外部プロセスが用意します。
type Repository interface {
	// AddUsed は used に delta を加算し、更新後の残高を返します。行が無ければ ErrBalanceNotFound、
	// 加算後の used が負になる場合は ErrUsedBelowZero を返し、行は変更しません。
	AddUsed(ctx context.Context, key Key, delta int) (*Balance, error)
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]*Balance, error)
}

// Key は残高行の識別子です。
type Key struct {
	EmployeeID string
	Category   string
	Year       int
}
