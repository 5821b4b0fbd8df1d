package leave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	"github.com/sirupsen/logrus"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// EmployeeDirectory は申請者のプロフィール確認に使う社員ディレクトリです。
type EmployeeDirectory interface {
	RequireActive(ctx context.Context, id string) (*employee.Employee, error)
}

// Authorizer は承認者が対象社員の休暇を承認できるか判定します。
type Authorizer interface {
	AuthorizeApproval(ctx context.Context, approverID, employeeID string) error
}

// AttendanceLedger は承認済み休暇を勤怠台帳へ反映します。
type AttendanceLedger interface {
	ApplyLeave(ctx context.Context, employeeID string, start, end time.Time) (int, error)
}

// BalanceTracker は承認済み休暇の日数を残高へ反映します。
type BalanceTracker interface {
	Debit(ctx context.Context, employeeID, category string, year, days int) (*balance.Balance, error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	maxReasonLength     = 500
	maxRequestDays      = 366
)

// Deps は Service の依存関係です。Clock / Tx / Logger は省略できます。
type Deps struct {
	Requests   Repository
	Categories CategoryRepository
	Directory  EmployeeDirectory
	Authorizer Authorizer
	Ledger     AttendanceLedger
	Balances   BalanceTracker
	Tx         TransactionManager
	Clock      Clock
	Logger     logrus.FieldLogger
	Retry      *RetryPolicy
}

// Service は休暇申請の状態遷移を管理します。
type Service struct {
	repo       Repository
	categories CategoryRepository
	directory  EmployeeDirectory
	authorizer Authorizer
	ledger     AttendanceLedger
	balances   BalanceTracker
	tx         TransactionManager
	clock      Clock
	log        logrus.FieldLogger
	retry      RetryPolicy
	sleep      sleeper
}

// UseCase は休暇申請ユースケースの公開インターフェースです。
type UseCase interface {
	Submit(ctx context.Context, in SubmitInput) (*Request, error)
	Decide(ctx context.Context, in DecideInput) (*Request, error)
	GetRequest(ctx context.Context, id string) (*Request, error)
	ListRequests(ctx context.Context, in ListRequestsInput) (*ListRequestsResult, error)
}

// NewService は Service を生成します。
func NewService(deps Deps) *Service {
	s := &Service{
		repo:       deps.Requests,
		categories: deps.Categories,
		directory:  deps.Directory,
		authorizer: deps.Authorizer,
		ledger:     deps.Ledger,
		balances:   deps.Balances,
		tx:         deps.Tx,
		clock:      deps.Clock,
		log:        deps.Logger,
		retry:      DefaultRetryPolicy(),
		sleep:      sleepContext,
	}
	if s.tx == nil {
		s.tx = noopTransactionManager{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		s.log = discard
	}
	if deps.Retry != nil {
		s.retry = deps.Retry.normalized()
	}
	return s
}

// SubmitInput は休暇申請時の入力です。
type SubmitInput struct {
	EmployeeID string
	Category   string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// DecideInput は承認・却下時の入力です。
type DecideInput struct {
	RequestID  string
	Decision   Status
	ApproverID string
}

// ListRequestsInput は一覧取得時の入力です。
type ListRequestsInput struct {
	EmployeeID string
	Status     *Status
	PageSize   int
	PageToken  string
}

// ListRequestsResult は一覧取得結果です。
type ListRequestsResult struct {
	Requests      []*Request
	NextPageToken string
}

// Submit は pending の休暇申請を作成します。勤怠と残高には触れません。
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Request, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, ErrInvalidDateRange
	}
	start, end := normalizeDate(in.StartDate), normalizeDate(in.EndDate)
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}
	if inclusiveDays(start, end) > maxRequestDays {
		return nil, ErrRequestTooLong
	}

	category := normalizeCategory(in.Category)
	reason := strings.TrimSpace(in.Reason)
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, ErrInvalidReason
	}

	var created *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if category == "" {
			return ErrUnknownCategory
		}
		ok, err := s.categories.Exists(txCtx, category)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnknownCategory
		}

		if _, err := s.directory.RequireActive(txCtx, employeeID); err != nil {
			if isInactive(err) {
				return ErrInactiveEmployee
			}
			return err
		}

		result, err := s.repo.Create(txCtx, &Request{
			EmployeeID: employeeID,
			Category:   category,
			StartDate:  start,
			EndDate:    end,
			Reason:     reason,
			Status:     StatusPending,
			CreatedAt:  s.clock.Now(),
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  created.ID,
		"employee_id": created.EmployeeID,
		"category":    created.Category,
		"days":        created.Days(),
	}).Info("leave request submitted")

	return created, nil
}

// Decide は pending の申請を approved / rejected へ遷移させます。
// 状態更新・勤怠反映・残高加算は 1 トランザクションで行い、全て成功するか全て取り消されます。
// 同じ申請への同時実行では 1 件だけが成功し、他は ErrRequestNotFound になります。
func (s *Service) Decide(ctx context.Context, in DecideInput) (*Request, error) {
	id := strings.TrimSpace(in.RequestID)
	if id == "" {
		return nil, ErrInvalidID
	}
	decision := Status(strings.ToLower(strings.TrimSpace(string(in.Decision))))
	if !decision.IsTerminal() {
		return nil, ErrInvalidDecision
	}
	approverID := strings.TrimSpace(in.ApproverID)
	if approverID == "" {
		return nil, ErrInvalidApprover
	}

	var decided *Request
	onRetry := func(attempt int, err error) {
		s.log.WithFields(logrus.Fields{"request_id": id, "attempt": attempt}).WithError(err).Warn("leave decision conflicted, retrying")
	}

	err := withRetry(ctx, s.retry, s.sleep, onRetry, func() error {
		decided = nil
		return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			req, err := s.repo.LockPending(txCtx, id)
			if err != nil {
				return err
			}

			if err := s.authorizer.AuthorizeApproval(txCtx, approverID, req.EmployeeID); err != nil {
				return err
			}

			now := s.clock.Now()
			req.Status = decision
			req.ApproverID = &approverID
			req.DecidedAt = &now
			if err := s.repo.SaveDecision(txCtx, req); err != nil {
				return err
			}

			if decision == StatusApproved {
				if err := s.applyApproval(txCtx, req); err != nil {
					return err
				}
			}

			decided = req
			return nil
		})
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"request_id": id, "decision": decision}).WithError(err).Info("leave decision failed")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  decided.ID,
		"employee_id": decided.EmployeeID,
		"decision":    decided.Status,
		"approver_id": approverID,
	}).Info("leave request decided")

	return decided, nil
}

func (s *Service) applyApproval(ctx context.Context, req *Request) error {
	days := req.Days()

	applied, err := s.ledger.ApplyLeave(ctx, req.EmployeeID, req.StartDate, req.EndDate)
	if err != nil {
		return fmt.Errorf("apply attendance: %w", err)
	}
	if applied != days {
		return fmt.Errorf("applied %d of %d days: %w", applied, days, ErrBackfillIncomplete)
	}

	if _, err := s.balances.Debit(ctx, req.EmployeeID, req.Category, req.StartDate.Year(), days); err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	return nil
}

// GetRequest は申請を取得します。
func (s *Service) GetRequest(ctx context.Context, id string) (*Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidID
	}

	var found *Request
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// ListRequests は社員の申請を新しい順に返します。
func (s *Service) ListRequests(ctx context.Context, in ListRequestsInput) (*ListRequestsResult, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var result ListRequestsResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		requests, next, err := s.repo.List(txCtx, ListFilter{
			EmployeeID: employeeID,
			Status:     statusPtr,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		result = ListRequestsResult{Requests: requests, NextPageToken: next}
		return nil
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

func isInactive(err error) bool {
	return errors.Is(err, employee.ErrEmployeeNotActive)
}

func normalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeCategory(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
