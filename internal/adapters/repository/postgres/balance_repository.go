package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	pgdb "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
)

const balanceUsedCheck = "leave_balances_used_check"

// BalanceRepository は PostgreSQL を利用した休暇残高の実装です。
type BalanceRepository struct {
	pool pgdb.Queryer
}

// NewBalanceRepository は BalanceRepository を生成します。
func NewBalanceRepository(pool pgdb.Queryer) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// AddUsed は used に delta を加算し、更新後の行を返します。
func (r *BalanceRepository) AddUsed(ctx context.Context, key balance.Key, delta int) (*balance.Balance, error) {
	if _, err := uuid.Parse(key.EmployeeID); err != nil {
		return nil, balance.ErrBalanceNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE leave_balances
           SET used = used + $1
         WHERE employee_id = $2 AND category = $3 AND year = $4
        RETURNING employee_id, category, year, allocated, used
    `, delta, key.EmployeeID, key.Category, key.Year)

	updated, err := scanBalance(row)
	if err != nil {
		return nil, translateBalancePgError(err)
	}
	return updated, nil
}

// ListByEmployee は社員の年度内の残高を区分コード順で返します。
func (r *BalanceRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]*balance.Balance, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return []*balance.Balance{}, nil
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT employee_id, category, year, allocated, used
          FROM leave_balances
         WHERE employee_id = $1 AND year = $2
         ORDER BY category
    `, employeeID, year)
	if err != nil {
		return nil, translateBalancePgError(err)
	}
	defer rows.Close()

	out := make([]*balance.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, translateBalancePgError(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, translateBalancePgError(err)
	}
	return out, nil
}

func scanBalance(row pgx.Row) (*balance.Balance, error) {
	var b balance.Balance
	if err := row.Scan(&b.EmployeeID, &b.Category, &b.Year, &b.Allocated, &b.Used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, balance.ErrBalanceNotFound
		}
		return nil, err
	}
	return &b, nil
}

func translateBalancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return balance.ErrBalanceNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgdb.CodeCheckViolation && pgErr.ConstraintName == balanceUsedCheck {
		return balance.ErrUsedBelowZero
	}
	return pgdb.Classify("postgres: leave_balances", err)
}
