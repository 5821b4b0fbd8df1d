package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/grpc/hrapi"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LeaveGrpcHandler は LeaveService の gRPC 実装です。
type LeaveGrpcHandler struct {
	svc      leave.UseCase
	balances balance.UseCase
}

var _ hrapi.LeaveServiceServer = (*LeaveGrpcHandler)(nil)

// NewLeaveGrpcHandler は LeaveGrpcHandler を生成します。
func NewLeaveGrpcHandler(svc leave.UseCase, balances balance.UseCase) *LeaveGrpcHandler {
	return &LeaveGrpcHandler{svc: svc, balances: balances}
}

// SubmitLeaveRequest は休暇申請を作成します。
func (h *LeaveGrpcHandler) SubmitLeaveRequest(ctx context.Context, req *hrapi.SubmitLeaveRequestRequest) (*hrapi.SubmitLeaveRequestResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("start_date: %v", err))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("end_date: %v", err))
	}

	created, err := h.svc.Submit(ctx, leave.SubmitInput{
		EmployeeID: req.EmployeeID,
		Category:   req.Category,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.SubmitLeaveRequestResponse{Request: hrapi.FromLeaveRequest(created)}, nil
}

// DecideLeaveRequest は x-actor-id の社員を承認者として申請を承認または却下します。
func (h *LeaveGrpcHandler) DecideLeaveRequest(ctx context.Context, req *hrapi.DecideLeaveRequestRequest) (*hrapi.DecideLeaveRequestResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	approverID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	decided, err := h.svc.Decide(ctx, leave.DecideInput{
		RequestID:  req.ID,
		Decision:   leave.Status(req.Decision),
		ApproverID: approverID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.DecideLeaveRequestResponse{Request: hrapi.FromLeaveRequest(decided)}, nil
}

// GetLeaveRequest は申請を取得します。
func (h *LeaveGrpcHandler) GetLeaveRequest(ctx context.Context, req *hrapi.GetLeaveRequestRequest) (*hrapi.GetLeaveRequestResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.GetRequest(ctx, req.ID)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.GetLeaveRequestResponse{Request: hrapi.FromLeaveRequest(found)}, nil
}

// ListLeaveRequests は社員の申請を新しい順に返します。
func (h *LeaveGrpcHandler) ListLeaveRequests(ctx context.Context, req *hrapi.ListLeaveRequestsRequest) (*hrapi.ListLeaveRequestsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var statusPtr *leave.Status
	if s := strings.TrimSpace(req.Status); s != "" {
		st := leave.Status(strings.ToLower(s))
		statusPtr = &st
	}

	result, err := h.svc.ListRequests(ctx, leave.ListRequestsInput{
		EmployeeID: req.EmployeeID,
		Status:     statusPtr,
		PageSize:   req.PageSize,
		PageToken:  req.PageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.ListLeaveRequestsResponse{
		Requests:      hrapi.FromLeaveRequests(result.Requests),
		NextPageToken: result.NextPageToken,
	}, nil
}

// GetLeaveBalances は社員の年度内の残高を返します。
func (h *LeaveGrpcHandler) GetLeaveBalances(ctx context.Context, req *hrapi.GetLeaveBalancesRequest) (*hrapi.GetLeaveBalancesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	views, err := h.balances.Query(ctx, req.EmployeeID, req.Year)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.GetLeaveBalancesResponse{Balances: hrapi.FromBalanceViews(views)}, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("is required")
	}
	t, err := time.Parse(hrapi.DateLayout, value)
	if err != nil {
		return time.Time{}, errors.New("must be in YYYY-MM-DD format")
	}
	return t, nil
}
