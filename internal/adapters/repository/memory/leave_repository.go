package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
)

// LeaveRequestRepository は leave.Repository のメモリ実装です。
type LeaveRequestRepository struct {
	s *Store
}

// CategoryRepository は leave.CategoryRepository のメモリ実装です。
type CategoryRepository struct {
	s *Store
}

// PutCategory は休暇区分をカタログへ登録します。
func (s *Store) PutCategory(c leave.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Code = strings.ToLower(strings.TrimSpace(c.Code))
	s.categories[c.Code] = c
}

// Exists は区分コードがカタログに存在するか判定します。
func (r *CategoryRepository) Exists(ctx context.Context, code string) (bool, error) {
	var ok bool
	r.s.read(ctx, func() {
		_, ok = r.s.categories[code]
	})
	return ok, nil
}

// Create は新しい ID を採番して申請を保存します。
func (r *LeaveRequestRepository) Create(ctx context.Context, req *leave.Request) (*leave.Request, error) {
	created := cloneRequest(req)
	created.ID = uuid.NewString()

	stored := cloneRequest(created)
	r.s.write(ctx, func(s *Store) {
		s.requests[stored.ID] = stored
		s.requestOrder = append(s.requestOrder, stored.ID)
	})
	return created, nil
}

// FindByID は ID で申請を取得します。
func (r *LeaveRequestRepository) FindByID(ctx context.Context, id string) (*leave.Request, error) {
	var found *leave.Request
	r.s.read(ctx, func() {
		if req, ok := r.s.requests[id]; ok {
			found = cloneRequest(req)
		}
	})
	if found == nil {
		return nil, leave.ErrRequestNotFound
	}
	return found, nil
}

// LockPending は申請 ID のロックを取得し、pending であれば返します。
// ロックは所属するトランザクションの終了時に解放されます。
func (r *LeaveRequestRepository) LockPending(ctx context.Context, id string) (*leave.Request, error) {
	unlock, err := r.s.locks.acquire(ctx, "leave_request:"+id)
	if err != nil {
		return nil, err
	}
	if tx, ok := txFromContext(ctx); ok {
		tx.unlocks = append(tx.unlocks, unlock)
	} else {
		defer unlock()
	}

	found, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found.Status != leave.StatusPending {
		return nil, leave.ErrRequestNotFound
	}
	return found, nil
}

// SaveDecision は終端状態・承認者・決定日時を保存します。
func (r *LeaveRequestRepository) SaveDecision(ctx context.Context, req *leave.Request) error {
	if _, err := r.FindByID(ctx, req.ID); err != nil {
		return err
	}
	decided := cloneRequest(req)
	r.s.write(ctx, func(s *Store) {
		current, ok := s.requests[decided.ID]
		if !ok {
			return
		}
		current.Status = decided.Status
		current.ApproverID = decided.ApproverID
		current.DecidedAt = decided.DecidedAt
	})
	return nil
}

// List は社員の申請を作成日時の新しい順で返します。
func (r *LeaveRequestRepository) List(ctx context.Context, filter leave.ListFilter) ([]*leave.Request, string, error) {
	matched := make([]*leave.Request, 0)
	r.s.read(ctx, func() {
		for i := len(r.s.requestOrder) - 1; i >= 0; i-- {
			req := r.s.requests[r.s.requestOrder[i]]
			if req.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.Status != nil && req.Status != *filter.Status {
				continue
			}
			matched = append(matched, cloneRequest(req))
		}
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []*leave.Request{}, "", nil
	}
	end := filter.Offset + filter.Limit
	next := ""
	if end < len(matched) {
		next = strconv.Itoa(end)
	} else {
		end = len(matched)
	}
	return matched[filter.Offset:end], next, nil
}

func cloneRequest(req *leave.Request) *leave.Request {
	copy := *req
	if req.ApproverID != nil {
		approver := *req.ApproverID
		copy.ApproverID = &approver
	}
	if req.DecidedAt != nil {
		decided := *req.DecidedAt
		copy.DecidedAt = &decided
	}
	return &copy
}
