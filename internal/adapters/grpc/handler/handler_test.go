package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/grpc/hrapi"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/payroll"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type stubLeaveUseCase struct {
	submitInput leave.SubmitInput
	submitOut   *leave.Request
	submitErr   error

	decideInput leave.DecideInput
	decideOut   *leave.Request
	decideErr   error

	getID  string
	getOut *leave.Request
	getErr error

	listInput leave.ListRequestsInput
	listOut   *leave.ListRequestsResult
	listErr   error
}

func (s *stubLeaveUseCase) Submit(ctx context.Context, in leave.SubmitInput) (*leave.Request, error) {
	s.submitInput = in
	return s.submitOut, s.submitErr
}

func (s *stubLeaveUseCase) Decide(ctx context.Context, in leave.DecideInput) (*leave.Request, error) {
	s.decideInput = in
	return s.decideOut, s.decideErr
}

func (s *stubLeaveUseCase) GetRequest(ctx context.Context, id string) (*leave.Request, error) {
	s.getID = id
	return s.getOut, s.getErr
}

func (s *stubLeaveUseCase) ListRequests(ctx context.Context, in leave.ListRequestsInput) (*leave.ListRequestsResult, error) {
	s.listInput = in
	return s.listOut, s.listErr
}

type stubBalanceUseCase struct {
	employeeID string
	year       int
	out        []balance.View
	err        error
}

func (s *stubBalanceUseCase) Credit(ctx context.Context, in balance.CreditInput) (*balance.Balance, error) {
	return nil, errors.New("not implemented")
}

func (s *stubBalanceUseCase) Query(ctx context.Context, employeeID string, year int) ([]balance.View, error) {
	s.employeeID, s.year = employeeID, year
	return s.out, s.err
}

type stubAttendanceUseCase struct {
	upsertInput attendance.UpsertInput
	upsertOut   *attendance.Day
	upsertErr   error

	rangeInput attendance.ListRangeInput
	teamInput  attendance.ListTeamInput
	listOut    []*attendance.Day
	listErr    error
}

func (s *stubAttendanceUseCase) Upsert(ctx context.Context, in attendance.UpsertInput) (*attendance.Day, error) {
	s.upsertInput = in
	return s.upsertOut, s.upsertErr
}

func (s *stubAttendanceUseCase) ListRange(ctx context.Context, in attendance.ListRangeInput) ([]*attendance.Day, error) {
	s.rangeInput = in
	return s.listOut, s.listErr
}

func (s *stubAttendanceUseCase) ListForTeam(ctx context.Context, in attendance.ListTeamInput) ([]*attendance.Day, error) {
	s.teamInput = in
	return s.listOut, s.listErr
}

type stubPayrollUseCase struct {
	period payroll.Period
	out    *payroll.Report
	err    error
}

func (s *stubPayrollUseCase) Compute(ctx context.Context, period payroll.Period) (*payroll.Report, error) {
	s.period = period
	return s.out, s.err
}

func withActor(actor string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(ActorMetadataKey, actor))
}

func TestLeaveGrpcHandler_SubmitLeaveRequest_Success(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	stub := &stubLeaveUseCase{submitOut: &leave.Request{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Category:   "casual",
		StartDate:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		Status:     leave.StatusPending,
		CreatedAt:  created,
	}}
	h := NewLeaveGrpcHandler(stub, &stubBalanceUseCase{})

	resp, err := h.SubmitLeaveRequest(context.Background(), &hrapi.SubmitLeaveRequestRequest{
		EmployeeID: "emp-1",
		Category:   "casual",
		StartDate:  "2024-03-04",
		EndDate:    "2024-03-06",
		Reason:     "family",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.submitInput.StartDate; !got.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %v", got)
	}
	if stub.submitInput.Reason != "family" {
		t.Fatalf("unexpected reason: %q", stub.submitInput.Reason)
	}
	if resp.Request.Days != 3 || resp.Request.Status != "pending" {
		t.Fatalf("unexpected response: %+v", resp.Request)
	}
	if resp.Request.CreatedAt != "2024-03-01T09:00:00Z" {
		t.Fatalf("unexpected created_at: %s", resp.Request.CreatedAt)
	}
	if resp.Request.ApproverID != "" || resp.Request.DecidedAt != "" {
		t.Fatalf("pending request must not carry decision fields: %+v", resp.Request)
	}
}

func TestLeaveGrpcHandler_SubmitLeaveRequest_InvalidDate(t *testing.T) {
	t.Parallel()

	stub := &stubLeaveUseCase{}
	h := NewLeaveGrpcHandler(stub, &stubBalanceUseCase{})

	cases := []*hrapi.SubmitLeaveRequestRequest{
		nil,
		{EmployeeID: "emp-1", Category: "casual", StartDate: "2024/03/04", EndDate: "2024-03-06"},
		{EmployeeID: "emp-1", Category: "casual", StartDate: "2024-03-04"},
	}
	for _, req := range cases {
		_, err := h.SubmitLeaveRequest(context.Background(), req)
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("expected InvalidArgument for %+v, got %v", req, err)
		}
	}
	if stub.submitInput.EmployeeID != "" {
		t.Fatalf("use case must not be called on malformed input")
	}
}

func TestLeaveGrpcHandler_DecideLeaveRequest_UsesActorMetadata(t *testing.T) {
	t.Parallel()

	approver := "mgr-1"
	decidedAt := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	stub := &stubLeaveUseCase{decideOut: &leave.Request{
		ID:         "req-1",
		EmployeeID: "emp-1",
		StartDate:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Status:     leave.StatusApproved,
		ApproverID: &approver,
		DecidedAt:  &decidedAt,
	}}
	h := NewLeaveGrpcHandler(stub, &stubBalanceUseCase{})

	resp, err := h.DecideLeaveRequest(withActor("mgr-1"), &hrapi.DecideLeaveRequestRequest{ID: "req-1", Decision: "approved"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.decideInput.ApproverID != "mgr-1" || stub.decideInput.Decision != leave.StatusApproved {
		t.Fatalf("unexpected decide input: %+v", stub.decideInput)
	}
	if resp.Request.ApproverID != "mgr-1" || resp.Request.DecidedAt != "2024-03-02T10:00:00Z" {
		t.Fatalf("unexpected response: %+v", resp.Request)
	}
}

func TestLeaveGrpcHandler_DecideLeaveRequest_MissingActor(t *testing.T) {
	t.Parallel()

	stub := &stubLeaveUseCase{}
	h := NewLeaveGrpcHandler(stub, &stubBalanceUseCase{})

	_, err := h.DecideLeaveRequest(context.Background(), &hrapi.DecideLeaveRequestRequest{ID: "req-1", Decision: "approved"})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	_, err = h.DecideLeaveRequest(withActor("  "), &hrapi.DecideLeaveRequestRequest{ID: "req-1", Decision: "approved"})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated for blank actor, got %v", err)
	}
}

func TestLeaveGrpcHandler_DecideLeaveRequest_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "already decided", err: leave.ErrRequestNotFound, want: codes.NotFound},
		{name: "invalid decision", err: leave.ErrInvalidDecision, want: codes.InvalidArgument},
		{name: "conflict", err: apperr.Wrap(apperr.ErrConflict, "leave: decide", errors.New("40001")), want: codes.Aborted},
		{name: "storage", err: leave.ErrBackfillIncomplete, want: codes.Unavailable},
		{name: "permission", err: apperr.New(apperr.ErrPermissionDenied, "denied"), want: codes.PermissionDenied},
		{name: "unclassified", err: errors.New("boom"), want: codes.Internal},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewLeaveGrpcHandler(&stubLeaveUseCase{decideErr: tc.err}, &stubBalanceUseCase{})
			_, err := h.DecideLeaveRequest(withActor("mgr-1"), &hrapi.DecideLeaveRequestRequest{ID: "req-1", Decision: "approved"})
			if status.Code(err) != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestLeaveGrpcHandler_ListLeaveRequests(t *testing.T) {
	t.Parallel()

	stub := &stubLeaveUseCase{listOut: &leave.ListRequestsResult{
		Requests: []*leave.Request{
			{ID: "req-2", StartDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		},
		NextPageToken: "1",
	}}
	h := NewLeaveGrpcHandler(stub, &stubBalanceUseCase{})

	resp, err := h.ListLeaveRequests(context.Background(), &hrapi.ListLeaveRequestsRequest{
		EmployeeID: "emp-1",
		Status:     "Pending",
		PageSize:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.listInput.Status == nil || *stub.listInput.Status != leave.StatusPending {
		t.Fatalf("expected status filter pending, got %+v", stub.listInput.Status)
	}
	if len(resp.Requests) != 1 || resp.NextPageToken != "1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLeaveGrpcHandler_GetLeaveBalances(t *testing.T) {
	t.Parallel()

	bal := &stubBalanceUseCase{out: []balance.View{
		{Category: "casual", Year: 2024, Allocated: 12, Used: 14, Remaining: -2},
	}}
	h := NewLeaveGrpcHandler(&stubLeaveUseCase{}, bal)

	resp, err := h.GetLeaveBalances(context.Background(), &hrapi.GetLeaveBalancesRequest{EmployeeID: "emp-1", Year: 2024})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal.employeeID != "emp-1" || bal.year != 2024 {
		t.Fatalf("unexpected query: %s %d", bal.employeeID, bal.year)
	}
	if len(resp.Balances) != 1 || resp.Balances[0].Remaining != -2 {
		t.Fatalf("unexpected balances: %+v", resp.Balances)
	}
}

func TestAttendanceGrpcHandler_UpsertAttendance(t *testing.T) {
	t.Parallel()

	valid := false
	stub := &stubAttendanceUseCase{upsertOut: &attendance.Day{
		EmployeeID: "emp-1",
		Date:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Status:     attendance.StatusWFH,
		Source:     "badge",
		UpdatedAt:  time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC),
	}}
	h := NewAttendanceGrpcHandler(stub)

	resp, err := h.UpsertAttendance(context.Background(), &hrapi.UpsertAttendanceRequest{
		EmployeeID: "emp-1",
		Date:       "2024-03-04",
		Status:     "wfh",
		Source:     "badge",
		Valid:      &valid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.upsertInput.Valid == nil || *stub.upsertInput.Valid {
		t.Fatalf("expected valid=false to be forwarded")
	}
	if resp.Day.Date != "2024-03-04" || resp.Day.Status != "wfh" {
		t.Fatalf("unexpected day: %+v", resp.Day)
	}
}

func TestAttendanceGrpcHandler_ListAttendance(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{listOut: []*attendance.Day{
		{EmployeeID: "emp-1", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Status: attendance.StatusPresent},
		{EmployeeID: "emp-1", Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Status: attendance.StatusLeave},
	}}
	h := NewAttendanceGrpcHandler(stub)

	resp, err := h.ListAttendance(context.Background(), &hrapi.ListAttendanceRequest{
		EmployeeID: "emp-1",
		From:       "2024-03-01",
		To:         "2024-03-31",
		MaxRows:    10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.rangeInput.MaxRows != 10 || stub.rangeInput.To.Day() != 31 {
		t.Fatalf("unexpected range input: %+v", stub.rangeInput)
	}
	if len(resp.Days) != 2 || resp.Days[0].Date != "2024-03-05" {
		t.Fatalf("unexpected days: %+v", resp.Days)
	}

	if _, err := h.ListAttendance(context.Background(), &hrapi.ListAttendanceRequest{EmployeeID: "emp-1", From: "bad", To: "2024-03-31"}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestAttendanceGrpcHandler_ListTeamAttendance_Error(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{listErr: attendance.ErrInvalidMaxRows}
	h := NewAttendanceGrpcHandler(stub)

	_, err := h.ListTeamAttendance(context.Background(), &hrapi.ListTeamAttendanceRequest{ManagerID: "mgr-1", MaxRows: 99999})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if stub.teamInput.ManagerID != "mgr-1" {
		t.Fatalf("unexpected team input: %+v", stub.teamInput)
	}
}

func TestPayrollGrpcHandler_ComputePayroll(t *testing.T) {
	t.Parallel()

	stub := &stubPayrollUseCase{out: &payroll.Report{
		Period:              payroll.Period{Year: 2024, Month: 3},
		WorkingDaysPerMonth: 26,
		Rows: []payroll.Row{
			{EmployeeID: "emp-1", Present: 18, Leave: 2, BaseAmount: decimal.NewFromInt(30000), HasCompensation: true, Payable: decimal.NewFromInt(23077)},
			{EmployeeID: "emp-2", Payable: decimal.Zero},
		},
	}}
	h := NewPayrollGrpcHandler(stub)

	resp, err := h.ComputePayroll(context.Background(), &hrapi.ComputePayrollRequest{Year: 2024, Month: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.period != (payroll.Period{Year: 2024, Month: 3}) {
		t.Fatalf("unexpected period: %+v", stub.period)
	}
	if resp.Period != "2024-03" || len(resp.Rows) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.Total.Equal(decimal.NewFromInt(23077)) {
		t.Fatalf("unexpected total: %s", resp.Total)
	}
}

func TestPayrollGrpcHandler_ComputePayroll_InvalidPeriod(t *testing.T) {
	t.Parallel()

	h := NewPayrollGrpcHandler(&stubPayrollUseCase{err: payroll.ErrInvalidPeriod})
	_, err := h.ComputePayroll(context.Background(), &hrapi.ComputePayrollRequest{Year: 2024, Month: 13})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}
