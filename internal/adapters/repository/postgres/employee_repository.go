package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const employeeColumns = `id, employee_code, name, manager_id, status, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員ディレクトリの読み取り実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employee.ErrEmployeeNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// ListAll は全社員を ID 順で返します。
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*employee.Employee, error) {
	return r.list(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         ORDER BY id
    `)
}

// ListReports は直属の部下を ID 順で返します。
func (r *EmployeeRepository) ListReports(ctx context.Context, managerID string) ([]*employee.Employee, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return []*employee.Employee{}, nil
	}
	return r.list(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE manager_id = $1
         ORDER BY id
    `, managerID)
}

func (r *EmployeeRepository) list(ctx context.Context, query string, args ...any) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

// EffectiveCompensations は asOf 時点で有効な最新の報酬を社員ごとに返します。
func (r *EmployeeRepository) EffectiveCompensations(ctx context.Context, asOf time.Time) (map[string]employee.Compensation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT DISTINCT ON (employee_id) employee_id, base_amount::text, effective_from
          FROM compensations
         WHERE effective_from <= $1
         ORDER BY employee_id, effective_from DESC
    `, dateOnly(asOf))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	out := make(map[string]employee.Compensation)
	for rows.Next() {
		var (
			employeeID    string
			rawAmount     string
			effectiveFrom time.Time
		)
		if err := rows.Scan(&employeeID, &rawAmount, &effectiveFrom); err != nil {
			return nil, translateEmployeePgError(err)
		}
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return nil, fmt.Errorf("postgres: parse base_amount for %s: %w", employeeID, err)
		}
		out[employeeID] = employee.Compensation{
			EmployeeID:    employeeID,
			BaseAmount:    amount,
			EffectiveFrom: dateOnly(effectiveFrom),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return out, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id        string
		code      string
		name      string
		managerID sql.NullString
		status    string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &code, &name, &managerID, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var managerPtr *string
	if managerID.Valid {
		m := managerID.String
		managerPtr = &m
	}

	return &employee.Employee{
		ID:           id,
		EmployeeCode: code,
		Name:         name,
		ManagerID:    managerPtr,
		Status:       employee.Status(status),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}
	return pgdb.Classify("postgres: employees", err)
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
