package hrapi

import (
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/payroll"
)

// DateLayout はメッセージ上の日付表現です。
const DateLayout = "2006-01-02"

// FromLeaveRequest はドメインの申請をメッセージへ変換します。
func FromLeaveRequest(r *leave.Request) *LeaveRequest {
	if r == nil {
		return nil
	}
	out := &LeaveRequest{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Category:   r.Category,
		StartDate:  r.StartDate.Format(DateLayout),
		EndDate:    r.EndDate.Format(DateLayout),
		Days:       r.Days(),
		Reason:     r.Reason,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.ApproverID != nil {
		out.ApproverID = *r.ApproverID
	}
	if r.DecidedAt != nil {
		out.DecidedAt = r.DecidedAt.UTC().Format(time.RFC3339)
	}
	return out
}

// FromLeaveRequests は申請一覧を変換します。
func FromLeaveRequests(rs []*leave.Request) []*LeaveRequest {
	out := make([]*LeaveRequest, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromLeaveRequest(r))
	}
	return out
}

// FromBalanceViews は残高照会結果を変換します。
func FromBalanceViews(views []balance.View) []*LeaveBalance {
	out := make([]*LeaveBalance, 0, len(views))
	for _, v := range views {
		out = append(out, &LeaveBalance{
			Category:  v.Category,
			Year:      v.Year,
			Allocated: v.Allocated,
			Used:      v.Used,
			Remaining: v.Remaining,
		})
	}
	return out
}

// FromBalance は 1 区分分の残高を変換します。
func FromBalance(b *balance.Balance) *LeaveBalance {
	if b == nil {
		return nil
	}
	return &LeaveBalance{
		Category:  b.Category,
		Year:      b.Year,
		Allocated: b.Allocated,
		Used:      b.Used,
		Remaining: b.Remaining(),
	}
}

// FromAttendanceDay は勤怠レコードを変換します。
func FromAttendanceDay(d *attendance.Day) *AttendanceDay {
	if d == nil {
		return nil
	}
	return &AttendanceDay{
		EmployeeID: d.EmployeeID,
		Date:       d.Date.Format(DateLayout),
		Status:     string(d.Status),
		Source:     d.Source,
		Valid:      d.Valid,
		UpdatedAt:  d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// FromAttendanceDays は勤怠一覧を変換します。
func FromAttendanceDays(days []*attendance.Day) []*AttendanceDay {
	out := make([]*AttendanceDay, 0, len(days))
	for _, d := range days {
		out = append(out, FromAttendanceDay(d))
	}
	return out
}

// FromPayrollReport は給与サマリを変換します。
func FromPayrollReport(report *payroll.Report) *ComputePayrollResponse {
	resp := &ComputePayrollResponse{
		Period:              report.Period.String(),
		WorkingDaysPerMonth: report.WorkingDaysPerMonth,
		Rows:                make([]*PayrollRow, 0, len(report.Rows)),
		Total:               report.Total(),
	}
	for _, r := range report.Rows {
		resp.Rows = append(resp.Rows, &PayrollRow{
			EmployeeID:         r.EmployeeID,
			EmployeeCode:       r.EmployeeCode,
			Name:               r.Name,
			Present:            r.Present,
			Leave:              r.Leave,
			Absent:             r.Absent,
			BaseAmount:         r.BaseAmount,
			HasCompensation:    r.HasCompensation,
			Payable:            r.Payable,
			ExceedsWorkingDays: r.ExceedsWorkingDays,
		})
	}
	return resp
}
