package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は社員のライフサイクル状態を表します。
type Status string

const (
	StatusPreJoin  Status = "pre_join"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee は社員ディレクトリが提供する社員情報です。コアからは参照のみ行います。
type Employee struct {
	ID           string
	EmployeeCode string
	Name         string
	ManagerID    *string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Compensation は発効日付きの基本給レコードです。
type Compensation struct {
	EmployeeID    string
	BaseAmount    decimal.Decimal
	EffectiveFrom time.Time
}
