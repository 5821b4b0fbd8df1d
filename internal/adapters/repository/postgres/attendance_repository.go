package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
)

const attendanceColumns = `employee_id, work_date, status, source, is_valid, updated_at`

// AttendanceRepository は PostgreSQL を利用した勤怠台帳の実装です。
// (employee_id, work_date) の主キーで 1 日 1 レコードを保証します。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Upsert は自然キーで挿入または上書きします。値が同一なら行を更新せず既存レコードを返します。
func (r *AttendanceRepository) Upsert(ctx context.Context, day *attendance.Day) (*attendance.Day, error) {
	if _, err := uuid.Parse(day.EmployeeID); err != nil {
		return nil, employee.ErrEmployeeNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH upserted AS (
            INSERT INTO attendance_days (employee_id, work_date, status, source, is_valid, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (employee_id, work_date) DO UPDATE
               SET status = EXCLUDED.status,
                   source = EXCLUDED.source,
                   is_valid = EXCLUDED.is_valid,
                   updated_at = EXCLUDED.updated_at
             WHERE (attendance_days.status, attendance_days.source, attendance_days.is_valid)
                   IS DISTINCT FROM (EXCLUDED.status, EXCLUDED.source, EXCLUDED.is_valid)
            RETURNING `+attendanceColumns+`
        )
        SELECT `+attendanceColumns+` FROM upserted
        UNION ALL
        SELECT `+attendanceColumns+`
          FROM attendance_days
         WHERE employee_id = $1 AND work_date = $2
           AND NOT EXISTS (SELECT 1 FROM upserted)
    `,
		day.EmployeeID,
		dateOnly(day.Date),
		string(day.Status),
		day.Source,
		day.Valid,
		day.UpdatedAt,
	)

	stored, err := scanAttendanceDay(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return stored, nil
}

// UpsertRange は [Start, End] の各日を 1 文で上書きし、書き込んだ行数を返します。
func (r *AttendanceRepository) UpsertRange(ctx context.Context, in attendance.RangeWrite) (int, error) {
	if _, err := uuid.Parse(in.EmployeeID); err != nil {
		return 0, employee.ErrEmployeeNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        INSERT INTO attendance_days (employee_id, work_date, status, source, is_valid, updated_at)
        SELECT $1, d::date, $4, $5, $6, $7
          FROM generate_series($2::date, $3::date, interval '1 day') AS d
        ON CONFLICT (employee_id, work_date) DO UPDATE
           SET status = EXCLUDED.status,
               source = EXCLUDED.source,
               is_valid = EXCLUDED.is_valid,
               updated_at = EXCLUDED.updated_at
    `,
		in.EmployeeID,
		dateOnly(in.Start),
		dateOnly(in.End),
		string(in.Status),
		in.Source,
		in.Valid,
		in.At,
	)
	if err != nil {
		return 0, translateAttendancePgError(err)
	}
	return int(tag.RowsAffected()), nil
}

// ListByEmployee は期間内の勤怠を新しい日付順で取得します。
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Day, error) {
	if _, err := uuid.Parse(filter.EmployeeID); err != nil {
		return []*attendance.Day{}, nil
	}
	return r.list(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance_days
         WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3
         ORDER BY work_date DESC
         LIMIT $4
    `, filter.EmployeeID, dateOnly(filter.From), dateOnly(filter.To), filter.Limit)
}

// ListByManager は直属メンバー全員の勤怠を新しい日付順で取得します。
func (r *AttendanceRepository) ListByManager(ctx context.Context, managerID string, limit int) ([]*attendance.Day, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return []*attendance.Day{}, nil
	}
	return r.list(ctx, `
        SELECT a.employee_id, a.work_date, a.status, a.source, a.is_valid, a.updated_at
          FROM attendance_days a
          JOIN employees e ON e.id = a.employee_id
         WHERE e.manager_id = $1
         ORDER BY a.work_date DESC, a.employee_id
         LIMIT $2
    `, managerID, limit)
}

func (r *AttendanceRepository) list(ctx context.Context, query string, args ...any) ([]*attendance.Day, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	days := make([]*attendance.Day, 0)
	for rows.Next() {
		d, err := scanAttendanceDay(rows)
		if err != nil {
			return nil, translateAttendancePgError(err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, translateAttendancePgError(err)
	}
	return days, nil
}

// CountByStatus は [from, to) のレコードを社員ごとにステータス別で集計します。
func (r *AttendanceRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[string]attendance.Counts, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT employee_id, status, COUNT(*)
          FROM attendance_days
         WHERE work_date >= $1 AND work_date < $2
         GROUP BY employee_id, status
    `, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	out := make(map[string]attendance.Counts)
	for rows.Next() {
		var (
			employeeID string
			status     string
			n          int64
		)
		if err := rows.Scan(&employeeID, &status, &n); err != nil {
			return nil, translateAttendancePgError(err)
		}
		counts := out[employeeID]
		counts.Add(attendance.Status(status), int(n))
		out[employeeID] = counts
	}
	if err := rows.Err(); err != nil {
		return nil, translateAttendancePgError(err)
	}
	return out, nil
}

func scanAttendanceDay(row pgx.Row) (*attendance.Day, error) {
	var (
		d       attendance.Day
		status  string
		workDay time.Time
	)
	if err := row.Scan(&d.EmployeeID, &workDay, &status, &d.Source, &d.Valid, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Date = dateOnly(workDay)
	d.Status = attendance.Status(status)
	return &d, nil
}

func translateAttendancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.ErrStorageUnavailable, "postgres: attendance_days: upsert returned no row", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgdb.CodeForeignKeyViolation {
		return employee.ErrEmployeeNotFound
	}
	return pgdb.Classify("postgres: attendance_days", err)
}
