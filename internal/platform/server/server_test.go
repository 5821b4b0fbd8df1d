package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/grpc/handler"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/grpc/hrapi"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/repository/memory"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/app"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/authz"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/platform/config"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/platform/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

func seedStore() *memory.Store {
	store := memory.NewStore()
	manager := "mgr-1"
	store.PutEmployee(employee.Employee{ID: "mgr-1", EmployeeCode: "E000", Name: "Manager", Status: employee.StatusActive})
	store.PutEmployee(employee.Employee{ID: "emp-1", EmployeeCode: "E001", Name: "Aiko", ManagerID: &manager, Status: employee.StatusActive})
	store.PutCompensation(employee.Compensation{EmployeeID: "emp-1", BaseAmount: decimal.NewFromInt(30000), EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	store.PutCategory(leave.Category{Code: "casual", Name: "Casual"})
	store.PutBalance(balance.Balance{EmployeeID: "emp-1", Category: "casual", Year: 2024, Allocated: 12})
	store.GrantCapabilities("mgr-1", authz.CapabilityApproveLeave)
	return store
}

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()

	cfg := &config.Config{}
	svcs := app.NewServices(app.MemoryRepositories(seedStore()), cfg, logger.Discard(), fixedClock(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)))
	srv := New("bufconn", Services{
		Leave:      svcs.Leave,
		Balances:   svcs.Balances,
		Attendance: svcs.Attendance,
		Payroll:    svcs.Payroll,
	}, logger.Discard())

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		require.NoError(t, <-done)
	})
	return conn
}

func TestServer_LeaveToPayrollRoundTrip(t *testing.T) {
	t.Parallel()

	conn := startServer(t)
	ctx := context.Background()
	leaveClient := hrapi.NewLeaveServiceClient(conn)
	attendanceClient := hrapi.NewAttendanceServiceClient(conn)
	payrollClient := hrapi.NewPayrollServiceClient(conn)

	for day := 1; day <= 18; day++ {
		_, err := attendanceClient.UpsertAttendance(ctx, &hrapi.UpsertAttendanceRequest{
			EmployeeID: "emp-1",
			Date:       time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Status:     "present",
			Source:     "badge",
		})
		require.NoError(t, err)
	}

	submitted, err := leaveClient.SubmitLeaveRequest(ctx, &hrapi.SubmitLeaveRequestRequest{
		EmployeeID: "emp-1",
		Category:   "casual",
		StartDate:  "2024-03-19",
		EndDate:    "2024-03-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", submitted.Request.Status)
	assert.Equal(t, 2, submitted.Request.Days)

	approverCtx := metadata.AppendToOutgoingContext(ctx, handler.ActorMetadataKey, "mgr-1")
	decided, err := leaveClient.DecideLeaveRequest(approverCtx, &hrapi.DecideLeaveRequestRequest{ID: submitted.Request.ID, Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", decided.Request.Status)
	assert.Equal(t, "mgr-1", decided.Request.ApproverID)

	_, err = leaveClient.DecideLeaveRequest(approverCtx, &hrapi.DecideLeaveRequestRequest{ID: submitted.Request.ID, Decision: "rejected"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	balances, err := leaveClient.GetLeaveBalances(ctx, &hrapi.GetLeaveBalancesRequest{EmployeeID: "emp-1", Year: 2024})
	require.NoError(t, err)
	require.Len(t, balances.Balances, 1)
	assert.Equal(t, 2, balances.Balances[0].Used)
	assert.Equal(t, 10, balances.Balances[0].Remaining)

	days, err := attendanceClient.ListAttendance(ctx, &hrapi.ListAttendanceRequest{EmployeeID: "emp-1", From: "2024-03-19", To: "2024-03-20"})
	require.NoError(t, err)
	require.Len(t, days.Days, 2)
	for _, d := range days.Days {
		assert.Equal(t, "leave", d.Status)
		assert.Equal(t, "leave_approval", d.Source)
	}

	report, err := payrollClient.ComputePayroll(ctx, &hrapi.ComputePayrollRequest{Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, "2024-03", report.Period)
	require.Len(t, report.Rows, 2)

	row := report.Rows[0]
	assert.Equal(t, "emp-1", row.EmployeeID)
	assert.Equal(t, 18, row.Present)
	assert.Equal(t, 2, row.Leave)
	assert.True(t, row.Payable.Equal(decimal.NewFromInt(23077)), "payable %s", row.Payable)

	manager := report.Rows[1]
	assert.Equal(t, "mgr-1", manager.EmployeeID)
	assert.False(t, manager.HasCompensation)
	assert.True(t, manager.Payable.IsZero())
}

func TestServer_ErrorsMapToStatusCodes(t *testing.T) {
	t.Parallel()

	conn := startServer(t)
	ctx := context.Background()
	leaveClient := hrapi.NewLeaveServiceClient(conn)

	_, err := leaveClient.SubmitLeaveRequest(ctx, &hrapi.SubmitLeaveRequestRequest{
		EmployeeID: "emp-1",
		Category:   "casual",
		StartDate:  "2024-03-20",
		EndDate:    "2024-03-19",
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	submitted, err := leaveClient.SubmitLeaveRequest(ctx, &hrapi.SubmitLeaveRequestRequest{
		EmployeeID: "emp-1",
		Category:   "casual",
		StartDate:  "2024-03-19",
		EndDate:    "2024-03-19",
	})
	require.NoError(t, err)

	selfCtx := metadata.AppendToOutgoingContext(ctx, handler.ActorMetadataKey, "emp-1")
	_, err = leaveClient.DecideLeaveRequest(selfCtx, &hrapi.DecideLeaveRequestRequest{ID: submitted.Request.ID, Decision: "approved"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = leaveClient.DecideLeaveRequest(ctx, &hrapi.DecideLeaveRequestRequest{ID: submitted.Request.ID, Decision: "approved"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	got, err := leaveClient.GetLeaveRequest(ctx, &hrapi.GetLeaveRequestRequest{ID: submitted.Request.ID})
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Request.Status)

	_, err = hrapi.NewPayrollServiceClient(conn).ComputePayroll(ctx, &hrapi.ComputePayrollRequest{Year: 2024, Month: 13})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_HealthReportsServing(t *testing.T) {
	t.Parallel()

	conn := startServer(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: hrapi.LeaveServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
