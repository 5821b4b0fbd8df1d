package attendance

import "time"

// Status は 1 日分の勤怠ステータスです。
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusWFH     Status = "wfh"
)

const (
	// SourceLeaveApproval は休暇承認による書き込みを示すソースタグです。
	SourceLeaveApproval = "leave_approval"
	// SourceManual は明示されない場合の既定ソースタグです。
	SourceManual = "manual"
)

// Day は (社員, 日付) を自然キーとする勤怠レコードです。
type Day struct {
	EmployeeID string
	Date       time.Time
	Status     Status
	Source     string
	Valid      bool
	UpdatedAt  time.Time
}

// Counts は期間内のステータス別日数です。
type Counts struct {
	Present int
	WFH     int
	Leave   int
	Absent  int
}

// Add は 1 日分をステータスに応じて加算します。
func (c *Counts) Add(status Status, n int) {
	switch status {
	case StatusPresent:
		c.Present += n
	case StatusWFH:
		c.WFH += n
	case StatusLeave:
		c.Leave += n
	case StatusAbsent:
		c.Absent += n
	}
}

// IsValidStatus はステータスが既知の値か判定します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusLeave, StatusWFH:
		return true
	default:
		return false
	}
}

// DateOf は時刻を UTC の日付(0 時)に正規化します。
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
