package memory

import (
	"context"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
)

// BalanceRepository は balance.Repository のメモリ実装です。
type BalanceRepository struct {
	s *Store
}

// PutBalance は期首の残高行を用意します。
func (s *Store) PutBalance(b balance.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := b
	s.balances[balance.Key{EmployeeID: b.EmployeeID, Category: b.Category, Year: b.Year}] = &copy
}

// AddUsed は used に delta を加算します。トランザクション中はコミットまで反映されません。
// トランザクション外では確認と更新をストアロック下で一度に行います。
func (r *BalanceRepository) AddUsed(ctx context.Context, key balance.Key, delta int) (*balance.Balance, error) {
	tx, ok := txFromContext(ctx)
	if !ok {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		b, found := r.s.balances[key]
		if !found {
			return nil, balance.ErrBalanceNotFound
		}
		if b.Used+delta < 0 {
			return nil, balance.ErrUsedBelowZero
		}
		b.Used += delta
		updated := *b
		return &updated, nil
	}

	var current *balance.Balance
	r.s.read(ctx, func() {
		if b, found := r.s.balances[key]; found {
			snapshot := *b
			current = &snapshot
		}
	})
	if current == nil {
		return nil, balance.ErrBalanceNotFound
	}

	pending := tx.balanceDelta[key] + delta
	if current.Used+pending < 0 {
		return nil, balance.ErrUsedBelowZero
	}
	tx.balanceDelta[key] = pending
	current.Used += pending

	tx.stage(func(s *Store) {
		s.balances[key].Used += delta
	})
	return current, nil
}

// ListByEmployee は社員の年度内の残高を返します。
func (r *BalanceRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]*balance.Balance, error) {
	out := make([]*balance.Balance, 0)
	r.s.read(ctx, func() {
		for key, b := range r.s.balances {
			if key.EmployeeID == employeeID && key.Year == year {
				copy := *b
				out = append(out, &copy)
			}
		}
	})
	return out, nil
}
