package hrapi

import (
	"context"

	"google.golang.org/grpc"
)

// AttendanceDay は (社員, 日付) 1 件分の勤怠です。
type AttendanceDay struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Source     string `json:"source"`
	Valid      bool   `json:"valid"`
	UpdatedAt  string `json:"updated_at"`
}

type UpsertAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	Valid      *bool  `json:"valid,omitempty"`
}

type UpsertAttendanceResponse struct {
	Day *AttendanceDay `json:"day"`
}

type ListAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	MaxRows    int    `json:"max_rows,omitempty"`
}

type ListAttendanceResponse struct {
	Days []*AttendanceDay `json:"days"`
}

type ListTeamAttendanceRequest struct {
	ManagerID string `json:"manager_id"`
	MaxRows   int    `json:"max_rows,omitempty"`
}

type ListTeamAttendanceResponse struct {
	Days []*AttendanceDay `json:"days"`
}

const (
	AttendanceServiceName = "hr.attendance.v1.AttendanceService"

	AttendanceService_UpsertAttendance_FullMethodName   = "/hr.attendance.v1.AttendanceService/UpsertAttendance"
	AttendanceService_ListAttendance_FullMethodName     = "/hr.attendance.v1.AttendanceService/ListAttendance"
	AttendanceService_ListTeamAttendance_FullMethodName = "/hr.attendance.v1.AttendanceService/ListTeamAttendance"
)

// AttendanceServiceServer は AttendanceService のサーバー実装が満たすインターフェースです。
type AttendanceServiceServer interface {
	UpsertAttendance(context.Context, *UpsertAttendanceRequest) (*UpsertAttendanceResponse, error)
	ListAttendance(context.Context, *ListAttendanceRequest) (*ListAttendanceResponse, error)
	ListTeamAttendance(context.Context, *ListTeamAttendanceRequest) (*ListTeamAttendanceResponse, error)
}

// AttendanceService_ServiceDesc は AttendanceService のサービス記述子です。
var AttendanceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AttendanceServiceName,
	HandlerType: (*AttendanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "UpsertAttendance",
			Handler:    unaryHandler(AttendanceService_UpsertAttendance_FullMethodName, AttendanceServiceServer.UpsertAttendance),
		},
		{
			MethodName: "ListAttendance",
			Handler:    unaryHandler(AttendanceService_ListAttendance_FullMethodName, AttendanceServiceServer.ListAttendance),
		},
		{
			MethodName: "ListTeamAttendance",
			Handler:    unaryHandler(AttendanceService_ListTeamAttendance_FullMethodName, AttendanceServiceServer.ListTeamAttendance),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hr/attendance/v1/attendance.proto",
}

// RegisterAttendanceServiceServer は AttendanceService をサーバーへ登録します。
func RegisterAttendanceServiceServer(s grpc.ServiceRegistrar, srv AttendanceServiceServer) {
	s.RegisterService(&AttendanceService_ServiceDesc, srv)
}

// AttendanceServiceClient は AttendanceService のクライアントです。
type AttendanceServiceClient interface {
	UpsertAttendance(ctx context.Context, in *UpsertAttendanceRequest, opts ...grpc.CallOption) (*UpsertAttendanceResponse, error)
	ListAttendance(ctx context.Context, in *ListAttendanceRequest, opts ...grpc.CallOption) (*ListAttendanceResponse, error)
	ListTeamAttendance(ctx context.Context, in *ListTeamAttendanceRequest, opts ...grpc.CallOption) (*ListTeamAttendanceResponse, error)
}

type attendanceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAttendanceServiceClient は JSON コーデックで呼び出す AttendanceServiceClient を返します。
func NewAttendanceServiceClient(cc grpc.ClientConnInterface) AttendanceServiceClient {
	return &attendanceServiceClient{cc: cc}
}

func (c *attendanceServiceClient) UpsertAttendance(ctx context.Context, in *UpsertAttendanceRequest, opts ...grpc.CallOption) (*UpsertAttendanceResponse, error) {
	return invoke[UpsertAttendanceResponse](ctx, c.cc, AttendanceService_UpsertAttendance_FullMethodName, in, opts)
}

func (c *attendanceServiceClient) ListAttendance(ctx context.Context, in *ListAttendanceRequest, opts ...grpc.CallOption) (*ListAttendanceResponse, error) {
	return invoke[ListAttendanceResponse](ctx, c.cc, AttendanceService_ListAttendance_FullMethodName, in, opts)
}

func (c *attendanceServiceClient) ListTeamAttendance(ctx context.Context, in *ListTeamAttendanceRequest, opts ...grpc.CallOption) (*ListTeamAttendanceResponse, error) {
	return invoke[ListTeamAttendanceResponse](ctx, c.cc, AttendanceService_ListTeamAttendance_FullMethodName, in, opts)
}
