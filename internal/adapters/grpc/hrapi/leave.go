package hrapi

import (
	"context"

	"google.golang.org/grpc"
)

// LeaveRequest は休暇申請のメッセージ表現です。日付は YYYY-MM-DD、時刻は RFC3339 です。
type LeaveRequest struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Category   string `json:"category"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Days       int    `json:"days"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status"`
	ApproverID string `json:"approver_id,omitempty"`
	DecidedAt  string `json:"decided_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type SubmitLeaveRequestRequest struct {
	EmployeeID string `json:"employee_id"`
	Category   string `json:"category"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason,omitempty"`
}

type SubmitLeaveRequestResponse struct {
	Request *LeaveRequest `json:"request"`
}

// DecideLeaveRequestRequest の承認者は x-actor-id メタデータから取得します。
type DecideLeaveRequestRequest struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
}

type DecideLeaveRequestResponse struct {
	Request *LeaveRequest `json:"request"`
}

type GetLeaveRequestRequest struct {
	ID string `json:"id"`
}

type GetLeaveRequestResponse struct {
	Request *LeaveRequest `json:"request"`
}

type ListLeaveRequestsRequest struct {
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
	PageToken  string `json:"page_token,omitempty"`
}

type ListLeaveRequestsResponse struct {
	Requests      []*LeaveRequest `json:"requests"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

// LeaveBalance は 1 区分分の残高です。Remaining は超過消化時に負になります。
type LeaveBalance struct {
	Category  string `json:"category"`
	Year      int    `json:"year"`
	Allocated int    `json:"allocated"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

type GetLeaveBalancesRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
}

type GetLeaveBalancesResponse struct {
	Balances []*LeaveBalance `json:"balances"`
}

const (
	LeaveServiceName = "hr.leave.v1.LeaveService"

	LeaveService_SubmitLeaveRequest_FullMethodName = "/hr.leave.v1.LeaveService/SubmitLeaveRequest"
	LeaveService_DecideLeaveRequest_FullMethodName = "/hr.leave.v1.LeaveService/DecideLeaveRequest"
	LeaveService_GetLeaveRequest_FullMethodName    = "/hr.leave.v1.LeaveService/GetLeaveRequest"
	LeaveService_ListLeaveRequests_FullMethodName  = "/hr.leave.v1.LeaveService/ListLeaveRequests"
	LeaveService_GetLeaveBalances_FullMethodName   = "/hr.leave.v1.LeaveService/GetLeaveBalances"
)

// LeaveServiceServer は LeaveService のサーバー実装が満たすインターフェースです。
type LeaveServiceServer interface {
	SubmitLeaveRequest(context.Context, *SubmitLeaveRequestRequest) (*SubmitLeaveRequestResponse, error)
	DecideLeaveRequest(context.Context, *DecideLeaveRequestRequest) (*DecideLeaveRequestResponse, error)
	GetLeaveRequest(context.Context, *GetLeaveRequestRequest) (*GetLeaveRequestResponse, error)
	ListLeaveRequests(context.Context, *ListLeaveRequestsRequest) (*ListLeaveRequestsResponse, error)
	GetLeaveBalances(context.Context, *GetLeaveBalancesRequest) (*GetLeaveBalancesResponse, error)
}

// LeaveService_ServiceDesc は LeaveService のサービス記述子です。
var LeaveService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: LeaveServiceName,
	HandlerType: (*LeaveServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitLeaveRequest",
			Handler:    unaryHandler(LeaveService_SubmitLeaveRequest_FullMethodName, LeaveServiceServer.SubmitLeaveRequest),
		},
		{
			MethodName: "DecideLeaveRequest",
			Handler:    unaryHandler(LeaveService_DecideLeaveRequest_FullMethodName, LeaveServiceServer.DecideLeaveRequest),
		},
		{
			MethodName: "GetLeaveRequest",
			Handler:    unaryHandler(LeaveService_GetLeaveRequest_FullMethodName, LeaveServiceServer.GetLeaveRequest),
		},
		{
			MethodName: "ListLeaveRequests",
			Handler:    unaryHandler(LeaveService_ListLeaveRequests_FullMethodName, LeaveServiceServer.ListLeaveRequests),
		},
		{
			MethodName: "GetLeaveBalances",
			Handler:    unaryHandler(LeaveService_GetLeaveBalances_FullMethodName, LeaveServiceServer.GetLeaveBalances),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hr/leave/v1/leave.proto",
}

// RegisterLeaveServiceServer は LeaveService をサーバーへ登録します。
func RegisterLeaveServiceServer(s grpc.ServiceRegistrar, srv LeaveServiceServer) {
	s.RegisterService(&LeaveService_ServiceDesc, srv)
}

// LeaveServiceClient は LeaveService のクライアントです。
type LeaveServiceClient interface {
	SubmitLeaveRequest(ctx context.Context, in *SubmitLeaveRequestRequest, opts ...grpc.CallOption) (*SubmitLeaveRequestResponse, error)
	DecideLeaveRequest(ctx context.Context, in *DecideLeaveRequestRequest, opts ...grpc.CallOption) (*DecideLeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, in *GetLeaveRequestRequest, opts ...grpc.CallOption) (*GetLeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, in *ListLeaveRequestsRequest, opts ...grpc.CallOption) (*ListLeaveRequestsResponse, error)
	GetLeaveBalances(ctx context.Context, in *GetLeaveBalancesRequest, opts ...grpc.CallOption) (*GetLeaveBalancesResponse, error)
}

type leaveServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLeaveServiceClient は JSON コーデックで呼び出す LeaveServiceClient を返します。
func NewLeaveServiceClient(cc grpc.ClientConnInterface) LeaveServiceClient {
	return &leaveServiceClient{cc: cc}
}

func (c *leaveServiceClient) SubmitLeaveRequest(ctx context.Context, in *SubmitLeaveRequestRequest, opts ...grpc.CallOption) (*SubmitLeaveRequestResponse, error) {
	return invoke[SubmitLeaveRequestResponse](ctx, c.cc, LeaveService_SubmitLeaveRequest_FullMethodName, in, opts)
}

func (c *leaveServiceClient) DecideLeaveRequest(ctx context.Context, in *DecideLeaveRequestRequest, opts ...grpc.CallOption) (*DecideLeaveRequestResponse, error) {
	return invoke[DecideLeaveRequestResponse](ctx, c.cc, LeaveService_DecideLeaveRequest_FullMethodName, in, opts)
}

func (c *leaveServiceClient) GetLeaveRequest(ctx context.Context, in *GetLeaveRequestRequest, opts ...grpc.CallOption) (*GetLeaveRequestResponse, error) {
	return invoke[GetLeaveRequestResponse](ctx, c.cc, LeaveService_GetLeaveRequest_FullMethodName, in, opts)
}

func (c *leaveServiceClient) ListLeaveRequests(ctx context.Context, in *ListLeaveRequestsRequest, opts ...grpc.CallOption) (*ListLeaveRequestsResponse, error) {
	return invoke[ListLeaveRequestsResponse](ctx, c.cc, LeaveService_ListLeaveRequests_FullMethodName, in, opts)
}

func (c *leaveServiceClient) GetLeaveBalances(ctx context.Context, in *GetLeaveBalancesRequest, opts ...grpc.CallOption) (*GetLeaveBalancesResponse, error) {
	return invoke[GetLeaveBalancesResponse](ctx, c.cc, LeaveService_GetLeaveBalances_FullMethodName, in, opts)
}
