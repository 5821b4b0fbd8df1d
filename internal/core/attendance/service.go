package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const (
	defaultMaxListRows = 366
	maxListRowsFactor  = 5
)

// Policy は勤怠台帳の運用パラメータです。
type Policy struct {
	// MaxFutureDays は Upsert が受け付ける未来日の上限(今日からの日数)です。0 なら今日まで。
	MaxFutureDays int
	// DefaultListRows は一覧取得で件数が指定されない場合の上限件数です。
	DefaultListRows int
}

// Service は勤怠台帳のユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	policy Policy
}

// UseCase は勤怠台帳の公開インターフェースです。
type UseCase interface {
	Upsert(ctx context.Context, in UpsertInput) (*Day, error)
	ListRange(ctx context.Context, in ListRangeInput) ([]*Day, error)
	ListForTeam(ctx context.Context, in ListTeamInput) ([]*Day, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, policy Policy) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if policy.MaxFutureDays < 0 {
		policy.MaxFutureDays = 0
	}
	if policy.DefaultListRows <= 0 {
		policy.DefaultListRows = defaultMaxListRows
	}
	return &Service{repo: repo, clock: clock, policy: policy}
}

// UpsertInput は勤怠取り込み時の入力です。Valid が nil の場合は有効として扱います。
type UpsertInput struct {
	EmployeeID string
	Date       time.Time
	Status     Status
	Source     string
	Valid      *bool
}

// ListRangeInput は社員単位の一覧取得の入力です。
type ListRangeInput struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	MaxRows    int
}

// ListTeamInput はチーム単位の一覧取得の入力です。
type ListTeamInput struct {
	ManagerID string
	MaxRows   int
}

// Upsert は (社員, 日付) の勤怠を記録します。同一内容での再実行は状態を変えません。
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*Day, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if in.Date.IsZero() {
		return nil, ErrInvalidDate
	}

	status := Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if !IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	date := DateOf(in.Date)
	horizon := DateOf(s.clock.Now()).AddDate(0, 0, s.policy.MaxFutureDays)
	if date.After(horizon) {
		return nil, fmt.Errorf("%s after %s: %w", date.Format(time.DateOnly), horizon.Format(time.DateOnly), ErrDateBeyondHorizon)
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = SourceManual
	}

	valid := true
	if in.Valid != nil {
		valid = *in.Valid
	}

	return s.repo.Upsert(ctx, &Day{
		EmployeeID: employeeID,
		Date:       date,
		Status:     status,
		Source:     source,
		Valid:      valid,
		UpdatedAt:  s.clock.Now(),
	})
}

// ApplyLeave は承認済み休暇の期間 [start, end] を leave として上書きし、対象日数を返します。
// 未来日の上限は適用しません。休暇承認トランザクション内から呼び出されます。
func (s *Service) ApplyLeave(ctx context.Context, employeeID string, start, end time.Time) (int, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return 0, ErrInvalidEmployeeID
	}
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return 0, ErrInvalidDateRange
	}

	return s.repo.UpsertRange(ctx, RangeWrite{
		EmployeeID: employeeID,
		Start:      start,
		End:        end,
		Status:     StatusLeave,
		Source:     SourceLeaveApproval,
		Valid:      true,
		At:         s.clock.Now(),
	})
}

// ListRange は期間内の勤怠を新しい日付順で返します。
func (s *Service) ListRange(ctx context.Context, in ListRangeInput) ([]*Day, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if in.From.IsZero() || in.To.IsZero() {
		return nil, ErrInvalidDate
	}
	from, to := DateOf(in.From), DateOf(in.To)
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}

	limit, err := s.normalizeMaxRows(in.MaxRows)
	if err != nil {
		return nil, err
	}

	return s.repo.ListByEmployee(ctx, ListFilter{EmployeeID: employeeID, From: from, To: to, Limit: limit})
}

// ListForTeam は管理者の直属メンバー全員の勤怠を新しい日付順で返します。
func (s *Service) ListForTeam(ctx context.Context, in ListTeamInput) ([]*Day, error) {
	managerID := strings.TrimSpace(in.ManagerID)
	if managerID == "" {
		return nil, ErrInvalidEmployeeID
	}

	limit, err := s.normalizeMaxRows(in.MaxRows)
	if err != nil {
		return nil, err
	}

	return s.repo.ListByManager(ctx, managerID, limit)
}

func (s *Service) normalizeMaxRows(maxRows int) (int, error) {
	if maxRows <= 0 {
		return s.policy.DefaultListRows, nil
	}
	if maxRows > s.policy.DefaultListRows*maxListRowsFactor {
		return 0, ErrInvalidMaxRows
	}
	return maxRows, nil
}
