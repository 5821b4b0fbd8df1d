package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
)

// EmployeeRepository は employee.Repository のメモリ実装です。
type EmployeeRepository struct {
	s *Store
}

// PutEmployee は社員を登録または置き換えます。ディレクトリは外部サブシステムのため、シードとテストで使用します。
func (s *Store) PutEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = cloneEmployee(&e)
}

// PutCompensation は報酬レコードを登録します。同じ発効日のレコードは置き換えます。
func (s *Store) PutCompensation(c employee.Compensation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.EffectiveFrom = dateOnly(c.EffectiveFrom)
	records := s.compensations[c.EmployeeID]
	for i := range records {
		if records[i].EffectiveFrom.Equal(c.EffectiveFrom) {
			records[i] = c
			return
		}
	}
	s.compensations[c.EmployeeID] = append(records, c)
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	var found *employee.Employee
	r.s.read(ctx, func() {
		if e, ok := r.s.employees[id]; ok {
			found = cloneEmployee(e)
		}
	})
	if found == nil {
		return nil, employee.ErrEmployeeNotFound
	}
	return found, nil
}

// ListAll は全社員を ID 順で返します。
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*employee.Employee, error) {
	return r.list(ctx, func(*employee.Employee) bool { return true }), nil
}

// ListReports は直属の部下を ID 順で返します。
func (r *EmployeeRepository) ListReports(ctx context.Context, managerID string) ([]*employee.Employee, error) {
	return r.list(ctx, func(e *employee.Employee) bool {
		return e.ManagerID != nil && *e.ManagerID == managerID
	}), nil
}

func (r *EmployeeRepository) list(ctx context.Context, match func(*employee.Employee) bool) []*employee.Employee {
	out := make([]*employee.Employee, 0)
	r.s.read(ctx, func() {
		for _, e := range r.s.employees {
			if match(e) {
				out = append(out, cloneEmployee(e))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EffectiveCompensations は asOf 時点で有効な最新の報酬を社員ごとに返します。
func (r *EmployeeRepository) EffectiveCompensations(ctx context.Context, asOf time.Time) (map[string]employee.Compensation, error) {
	asOf = dateOnly(asOf)
	out := make(map[string]employee.Compensation)
	r.s.read(ctx, func() {
		for employeeID, records := range r.s.compensations {
			for _, c := range records {
				if c.EffectiveFrom.After(asOf) {
					continue
				}
				if current, ok := out[employeeID]; !ok || c.EffectiveFrom.After(current.EffectiveFrom) {
					out[employeeID] = c
				}
			}
		}
	})
	return out, nil
}

func cloneEmployee(e *employee.Employee) *employee.Employee {
	copy := *e
	if e.ManagerID != nil {
		manager := *e.ManagerID
		copy.ManagerID = &manager
	}
	return &copy
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
