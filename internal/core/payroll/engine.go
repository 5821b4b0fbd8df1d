// Package payroll は勤怠台帳と報酬レコードから月次の給与サマリを導出します。
// 計算は読み取り専用で、どのエンティティにも書き込みません。
package payroll

import (
	"context"
	"sort"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	"github.com/shopspring/decimal"
)

// DefaultWorkingDaysPerMonth は設定が無い場合の所定労働日数です。
const DefaultWorkingDaysPerMonth = 26

// EmployeeSource は社員一覧と有効な報酬を提供します。
type EmployeeSource interface {
	ListAll(ctx context.Context) ([]*employee.Employee, error)
	EffectiveCompensations(ctx context.Context, asOf time.Time) (map[string]employee.Compensation, error)
}

// AttendanceCounter は期間内の勤怠を社員ごとに集計します。
type AttendanceCounter interface {
	CountByStatus(ctx context.Context, from, to time.Time) (map[string]attendance.Counts, error)
}

// TransactionManager は読み取り専用トランザクションを提供します。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Engine は給与サマリを計算します。状態を持たないため並行に呼び出せます。
type Engine struct {
	employees   EmployeeSource
	attendance  AttendanceCounter
	tx          TransactionManager
	workingDays int
}

// UseCase は給与サマリの公開インターフェースです。
type UseCase interface {
	Compute(ctx context.Context, period Period) (*Report, error)
}

// NewEngine は Engine を生成します。workingDays が 0 以下なら既定値を使います。
func NewEngine(employees EmployeeSource, counter AttendanceCounter, tx TransactionManager, workingDays int) *Engine {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if workingDays <= 0 {
		workingDays = DefaultWorkingDaysPerMonth
	}
	return &Engine{employees: employees, attendance: counter, tx: tx, workingDays: workingDays}
}

// Compute は期間の全社員分のサマリを 1 つのスナップショットから計算します。
func (e *Engine) Compute(ctx context.Context, period Period) (*Report, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	var (
		employees []*employee.Employee
		counts    map[string]attendance.Counts
		comps     map[string]employee.Compensation
	)
	if err := e.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if employees, err = e.employees.ListAll(txCtx); err != nil {
			return err
		}
		if counts, err = e.attendance.CountByStatus(txCtx, period.Start(), period.End()); err != nil {
			return err
		}
		comps, err = e.employees.EffectiveCompensations(txCtx, period.Start())
		return err
	}); err != nil {
		return nil, err
	}

	rows, err := Summarize(employees, counts, comps, e.workingDays)
	if err != nil {
		return nil, err
	}
	return &Report{Period: period, WorkingDaysPerMonth: e.workingDays, Rows: rows}, nil
}

// Summarize は入力のみから社員 ID 順のサマリを計算する純粋関数です。
func Summarize(employees []*employee.Employee, counts map[string]attendance.Counts, comps map[string]employee.Compensation, workingDays int) ([]Row, error) {
	if workingDays <= 0 {
		return nil, ErrInvalidWorkingDays
	}

	rows := make([]Row, 0, len(employees))
	for _, emp := range employees {
		c := counts[emp.ID]
		row := Row{
			EmployeeID:   emp.ID,
			EmployeeCode: emp.EmployeeCode,
			Name:         emp.Name,
			Present:      c.Present + c.WFH,
			Leave:        c.Leave,
			Absent:       c.Absent,
			BaseAmount:   decimal.Zero,
			Payable:      decimal.Zero,
		}
		row.ExceedsWorkingDays = row.PaidDays() > workingDays

		if comp, ok := comps[emp.ID]; ok {
			row.HasCompensation = true
			row.BaseAmount = comp.BaseAmount
			row.Payable = Payable(comp.BaseAmount, row.PaidDays(), workingDays)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].EmployeeID < rows[j].EmployeeID })
	return rows, nil
}

// Payable は base × paidDays / workingDays を整数単位へ四捨五入 (half-up) します。
func Payable(base decimal.Decimal, paidDays, workingDays int) decimal.Decimal {
	if paidDays < 0 {
		paidDays = 0
	}
	return base.Mul(decimal.NewFromInt(int64(paidDays))).DivRound(decimal.NewFromInt(int64(workingDays)), 0)
}
