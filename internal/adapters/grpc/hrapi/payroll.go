package hrapi

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

// PayrollRow は社員 1 人分の月次サマリです。金額は文字列化された10進数で送ります。
type PayrollRow struct {
	EmployeeID         string          `json:"employee_id"`
	EmployeeCode       string          `json:"employee_code"`
	Name               string          `json:"name"`
	Present            int             `json:"present"`
	Leave              int             `json:"leave"`
	Absent             int             `json:"absent"`
	BaseAmount         decimal.Decimal `json:"base_amount"`
	HasCompensation    bool            `json:"has_compensation"`
	Payable            decimal.Decimal `json:"payable"`
	ExceedsWorkingDays bool            `json:"exceeds_working_days,omitempty"`
}

type ComputePayrollRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type ComputePayrollResponse struct {
	Period              string          `json:"period"`
	WorkingDaysPerMonth int             `json:"working_days_per_month"`
	Rows                []*PayrollRow   `json:"rows"`
	Total               decimal.Decimal `json:"total"`
}

const (
	PayrollServiceName = "hr.payroll.v1.PayrollService"

	PayrollService_ComputePayroll_FullMethodName = "/hr.payroll.v1.PayrollService/ComputePayroll"
)

// PayrollServiceServer は PayrollService のサーバー実装が満たすインターフェースです。
type PayrollServiceServer interface {
	ComputePayroll(context.Context, *ComputePayrollRequest) (*ComputePayrollResponse, error)
}

// PayrollService_ServiceDesc は PayrollService のサービス記述子です。
var PayrollService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: PayrollServiceName,
	HandlerType: (*PayrollServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ComputePayroll",
			Handler:    unaryHandler(PayrollService_ComputePayroll_FullMethodName, PayrollServiceServer.ComputePayroll),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hr/payroll/v1/payroll.proto",
}

// RegisterPayrollServiceServer は PayrollService をサーバーへ登録します。
func RegisterPayrollServiceServer(s grpc.ServiceRegistrar, srv PayrollServiceServer) {
	s.RegisterService(&PayrollService_ServiceDesc, srv)
}

// PayrollServiceClient は PayrollService のクライアントです。
type PayrollServiceClient interface {
	ComputePayroll(ctx context.Context, in *ComputePayrollRequest, opts ...grpc.CallOption) (*ComputePayrollResponse, error)
}

type payrollServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPayrollServiceClient は JSON コーデックで呼び出す PayrollServiceClient を返します。
func NewPayrollServiceClient(cc grpc.ClientConnInterface) PayrollServiceClient {
	return &payrollServiceClient{cc: cc}
}

func (c *payrollServiceClient) ComputePayroll(ctx context.Context, in *ComputePayrollRequest, opts ...grpc.CallOption) (*ComputePayrollResponse, error) {
	return invoke[ComputePayrollResponse](ctx, c.cc, PayrollService_ComputePayroll_FullMethodName, in, opts)
}
