package leave

import "time"

// Status は休暇申請の状態です。pending から approved / rejected へ一度だけ遷移します。
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal は終端状態か判定します。
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request は休暇申請エンティティです。StartDate と EndDate は両端を含みます。
type Request struct {
	ID         string
	EmployeeID string
	Category   string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     Status
	ApproverID *string
	DecidedAt  *time.Time
	CreatedAt  time.Time
}

// Days は申請期間の日数(両端を含む)を返します。
func (r *Request) Days() int {
	return inclusiveDays(r.StartDate, r.EndDate)
}

// inclusiveDays は暦日の差分で日数を数えます。Duration を経由しないため極端な日付でも飽和しません。
func inclusiveDays(start, end time.Time) int {
	return int(dayNumber(end)-dayNumber(start)) + 1
}

const secondsPerDay = 24 * 60 * 60

func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// Category は休暇区分のカタログ項目です。
type Category struct {
	Code string
	Name string
}
