package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	pgdb "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var leaveRowColumns = []string{"id", "employee_id", "category", "start_date", "end_date", "reason", "status", "approver_id", "decided_at", "created_at"}

func TestLeaveRequestRepository_LockPending(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)
	now := time.Now().UTC()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM leave_requests WHERE id = \$1 AND status = \$2 FOR UPDATE`).
		WithArgs(testRequestID, "pending").
		WillReturnRows(pgxmock.NewRows(leaveRowColumns).
			AddRow(testRequestID, testEmployeeID, "casual", start, start.AddDate(0, 0, 2), "", "pending", nil, nil, now))

	req, err := repo.LockPending(context.Background(), testRequestID)
	if err != nil {
		t.Fatalf("LockPending returned error: %v", err)
	}
	if req.Days() != 3 || req.Status != leave.StatusPending || req.ApproverID != nil {
		t.Fatalf("unexpected request %+v", req)
	}
	expectMet(t, mock)
}

func TestLeaveRequestRepository_LockPending_AlreadyDecided(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(testRequestID, "pending").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.LockPending(context.Background(), testRequestID); !errors.Is(err, leave.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestLeaveRequestRepository_LockPending_Deadlock(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(testRequestID, "pending").
		WillReturnError(&pgconn.PgError{Code: "40P01"})

	_, err := repo.LockPending(context.Background(), testRequestID)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !apperr.IsRetryable(err) {
		t.Fatal("deadlock must be retryable")
	}
	expectMet(t, mock)
}

func TestLeaveRequestRepository_MalformedIDIsNotFound(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)

	if _, err := repo.FindByID(context.Background(), "42"); !errors.Is(err, leave.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if _, err := repo.LockPending(context.Background(), "42"); !errors.Is(err, leave.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestLeaveRequestRepository_SaveDecision(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)
	approver := testManagerID
	decidedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE leave_requests SET status = \$1, approver_id = \$2, decided_at = \$3 WHERE id = \$4 AND status = \$5`).
		WithArgs("approved", approver, decidedAt, testRequestID, "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SaveDecision(context.Background(), &leave.Request{
		ID: testRequestID, Status: leave.StatusApproved, ApproverID: &approver, DecidedAt: &decidedAt,
	})
	if err != nil {
		t.Fatalf("SaveDecision returned error: %v", err)
	}
	expectMet(t, mock)
}

func TestLeaveRequestRepository_SaveDecision_NoRow(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectExec(`UPDATE leave_requests`).
		WithArgs("rejected", nil, nil, testRequestID, "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SaveDecision(context.Background(), &leave.Request{ID: testRequestID, Status: leave.StatusRejected})
	if !errors.Is(err, leave.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestLeaveRequestRepository_List_WithStatus(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)
	status := leave.StatusApproved
	now := time.Now().UTC()
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(leaveRowColumns).
		AddRow("0d7f3e64-2a91-4b0e-8f7a-5c3e1b2a9d11", testEmployeeID, "casual", day, day, "", "approved", testManagerID, now, now).
		AddRow("0d7f3e64-2a91-4b0e-8f7a-5c3e1b2a9d12", testEmployeeID, "casual", day, day, "", "approved", testManagerID, now, now).
		AddRow("0d7f3e64-2a91-4b0e-8f7a-5c3e1b2a9d13", testEmployeeID, "casual", day, day, "", "approved", testManagerID, now, now)

	mock.ExpectQuery(`FROM leave_requests WHERE employee_id = \$1 AND status = \$2 ORDER BY created_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(testEmployeeID, "approved", 3, 0).
		WillReturnRows(rows)

	requests, next, err := repo.List(context.Background(), leave.ListFilter{
		EmployeeID: testEmployeeID, Status: &status, Limit: 2,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	if next != "2" {
		t.Fatalf("expected next token '2', got %q", next)
	}
	if requests[0].ApproverID == nil || requests[0].DecidedAt == nil {
		t.Fatalf("decision fields not scanned: %+v", requests[0])
	}
	expectMet(t, mock)
}

func TestTranslateLeavePgError(t *testing.T) {
	t.Parallel()

	fk := &pgconn.PgError{Code: pgdb.CodeForeignKeyViolation, ConstraintName: "leave_requests_category_fkey"}
	if !errors.Is(translateLeavePgError(fk), leave.ErrUnknownCategory) {
		t.Fatal("category fk violation must map to ErrUnknownCategory")
	}

	employeeFK := &pgconn.PgError{Code: pgdb.CodeForeignKeyViolation, ConstraintName: "leave_requests_employee_fkey"}
	if !errors.Is(translateLeavePgError(employeeFK), leave.ErrInactiveEmployee) {
		t.Fatal("employee fk violation must map to ErrInactiveEmployee")
	}

	check := &pgconn.PgError{Code: pgdb.CodeCheckViolation}
	if !errors.Is(translateLeavePgError(check), leave.ErrInvalidDateRange) {
		t.Fatal("check violation must map to ErrInvalidDateRange")
	}

	other := errors.New("other")
	got := translateLeavePgError(other)
	if !errors.Is(got, other) || !errors.Is(got, apperr.ErrStorageUnavailable) {
		t.Fatalf("generic error must be storage unavailable, got %v", got)
	}
}

func TestCategoryRepository_Exists(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM leave_categories WHERE code = \$1\)`).
		WithArgs("casual").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "casual")
	if err != nil || !ok {
		t.Fatalf("expected category to exist, got %v %v", ok, err)
	}
	expectMet(t, mock)
}
