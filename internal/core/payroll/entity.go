package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period は集計対象の暦月です。
type Period struct {
	Year  int
	Month time.Month
}

// Start は月初 (UTC 0 時) を返します。
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End は翌月初を返します。期間は [Start, End) の半開区間です。
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Validate は年月が有効か検証します。
func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 || p.Month < time.January || p.Month > time.December {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return p.Start().Format("2006-01")
}

// Row は社員 1 名分の給与サマリです。永続化されず、毎回再計算されます。
type Row struct {
	EmployeeID   string
	EmployeeCode string
	Name         string

	// Present は present と wfh の日数です。
	Present int
	Leave   int
	Absent  int

	BaseAmount      decimal.Decimal
	HasCompensation bool
	Payable         decimal.Decimal

	// ExceedsWorkingDays は出勤日数と休暇日数の合計が月の所定労働日数を超えたことを示します。
	// 比率は 1.0 を超えても切り詰めません。
	ExceedsWorkingDays bool
}

// PaidDays は支給対象日数 (出勤 + 休暇) を返します。
func (r Row) PaidDays() int {
	return r.Present + r.Leave
}

// Report は期間の給与サマリ一覧です。
type Report struct {
	Period              Period
	WorkingDaysPerMonth int
	Rows                []Row
}

// Total は支給額の合計を返します。
func (r *Report) Total() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.Rows {
		total = total.Add(row.Payable)
	}
	return total
}
