package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	pgdb "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
)

const leaveRequestColumns = `id, employee_id, category, start_date, end_date, reason, status, approver_id, decided_at, created_at`

// LeaveRequestRepository は PostgreSQL を利用した休暇申請の永続化実装です。
type LeaveRequestRepository struct {
	pool pgdb.Queryer
}

// NewLeaveRequestRepository は LeaveRequestRepository を生成します。
func NewLeaveRequestRepository(pool pgdb.Queryer) *LeaveRequestRepository {
	return &LeaveRequestRepository{pool: pool}
}

// Create は申請を新規作成します。
func (r *LeaveRequestRepository) Create(ctx context.Context, req *leave.Request) (*leave.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO leave_requests (employee_id, category, start_date, end_date, reason, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+leaveRequestColumns+`
    `,
		req.EmployeeID,
		req.Category,
		dateOnly(req.StartDate),
		dateOnly(req.EndDate),
		req.Reason,
		string(req.Status),
		req.CreatedAt,
	)

	created, err := scanLeaveRequest(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return created, nil
}

// FindByID は ID で申請を取得します。
func (r *LeaveRequestRepository) FindByID(ctx context.Context, id string) (*leave.Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leave.ErrRequestNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+leaveRequestColumns+`
          FROM leave_requests
         WHERE id = $1
    `, id)

	found, err := scanLeaveRequest(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return found, nil
}

// LockPending は pending の申請を行ロックして取得します。ロックはトランザクション終了まで保持されます。
func (r *LeaveRequestRepository) LockPending(ctx context.Context, id string) (*leave.Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leave.ErrRequestNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+leaveRequestColumns+`
          FROM leave_requests
         WHERE id = $1 AND status = $2
           FOR UPDATE
    `, id, string(leave.StatusPending))

	found, err := scanLeaveRequest(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return found, nil
}

// SaveDecision は終端状態・承認者・決定日時を保存します。
func (r *LeaveRequestRepository) SaveDecision(ctx context.Context, req *leave.Request) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE leave_requests
           SET status = $1,
               approver_id = $2,
               decided_at = $3
         WHERE id = $4 AND status = $5
    `, string(req.Status), nullableString(req.ApproverID), nullableTimestamp(req.DecidedAt), req.ID, string(leave.StatusPending))
	if err != nil {
		return translateLeavePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrRequestNotFound
	}
	return nil
}

// List は社員の申請を作成日時の新しい順で取得します。
func (r *LeaveRequestRepository) List(ctx context.Context, filter leave.ListFilter) ([]*leave.Request, string, error) {
	if strings.TrimSpace(filter.EmployeeID) == "" {
		return nil, "", leave.ErrInvalidEmployeeID
	}
	if filter.Limit <= 0 {
		return nil, "", leave.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", leave.ErrInvalidPageToken
	}
	if _, err := uuid.Parse(filter.EmployeeID); err != nil {
		return []*leave.Request{}, "", nil
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	args = append(args, filter.EmployeeID)
	conditions = append(conditions, "employee_id = $"+strconv.Itoa(len(args)))

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + leaveRequestColumns + `
          FROM leave_requests WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateLeavePgError(err)
	}
	defer rows.Close()

	requests := make([]*leave.Request, 0, filter.Limit)
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, "", translateLeavePgError(err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateLeavePgError(err)
	}

	var nextToken string
	if len(requests) == limitWithBuffer {
		requests = requests[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}
	return requests, nextToken, nil
}

func scanLeaveRequest(row pgx.Row) (*leave.Request, error) {
	var (
		id         string
		employeeID string
		category   string
		startDate  time.Time
		endDate    time.Time
		reason     string
		status     string
		approverID sql.NullString
		decidedAt  sql.NullTime
		createdAt  time.Time
	)

	if err := row.Scan(&id, &employeeID, &category, &startDate, &endDate, &reason, &status, &approverID, &decidedAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrRequestNotFound
		}
		return nil, err
	}

	req := &leave.Request{
		ID:         id,
		EmployeeID: employeeID,
		Category:   category,
		StartDate:  dateOnly(startDate),
		EndDate:    dateOnly(endDate),
		Reason:     reason,
		Status:     leave.Status(status),
		CreatedAt:  createdAt,
	}
	if approverID.Valid {
		approver := approverID.String
		req.ApproverID = &approver
	}
	if decidedAt.Valid {
		decided := decidedAt.Time
		req.DecidedAt = &decided
	}
	return req, nil
}

func translateLeavePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.ErrRequestNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgdb.CodeForeignKeyViolation:
			if pgErr.ConstraintName == "leave_requests_category_fkey" {
				return leave.ErrUnknownCategory
			}
			return leave.ErrInactiveEmployee
		case pgdb.CodeCheckViolation:
			return leave.ErrInvalidDateRange
		}
	}
	return pgdb.Classify("postgres: leave_requests", err)
}

func nullableTimestamp(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}

// CategoryRepository は休暇区分カタログの PostgreSQL 実装です。
type CategoryRepository struct {
	pool pgdb.Queryer
}

// NewCategoryRepository は CategoryRepository を生成します。
func NewCategoryRepository(pool pgdb.Queryer) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Exists は区分コードがカタログに存在するか判定します。
func (r *CategoryRepository) Exists(ctx context.Context, code string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leave_categories WHERE code = $1)`, code).Scan(&exists); err != nil {
		return false, pgdb.Classify("postgres: leave_categories", err)
	}
	return exists, nil
}
