package handler

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/grpc/hrapi"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AttendanceGrpcHandler は AttendanceService の gRPC 実装です。
type AttendanceGrpcHandler struct {
	svc attendance.UseCase
}

var _ hrapi.AttendanceServiceServer = (*AttendanceGrpcHandler)(nil)

// NewAttendanceGrpcHandler は AttendanceGrpcHandler を生成します。
func NewAttendanceGrpcHandler(svc attendance.UseCase) *AttendanceGrpcHandler {
	return &AttendanceGrpcHandler{svc: svc}
}

// UpsertAttendance は 1 日分の勤怠を記録します。
func (h *AttendanceGrpcHandler) UpsertAttendance(ctx context.Context, req *hrapi.UpsertAttendanceRequest) (*hrapi.UpsertAttendanceResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("date: %v", err))
	}

	day, err := h.svc.Upsert(ctx, attendance.UpsertInput{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Status:     attendance.Status(req.Status),
		Source:     req.Source,
		Valid:      req.Valid,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.UpsertAttendanceResponse{Day: hrapi.FromAttendanceDay(day)}, nil
}

// ListAttendance は社員の期間内の勤怠を返します。
func (h *AttendanceGrpcHandler) ListAttendance(ctx context.Context, req *hrapi.ListAttendanceRequest) (*hrapi.ListAttendanceResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	from, err := parseDate(req.From)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("from: %v", err))
	}
	to, err := parseDate(req.To)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("to: %v", err))
	}

	days, err := h.svc.ListRange(ctx, attendance.ListRangeInput{
		EmployeeID: req.EmployeeID,
		From:       from,
		To:         to,
		MaxRows:    req.MaxRows,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.ListAttendanceResponse{Days: hrapi.FromAttendanceDays(days)}, nil
}

// ListTeamAttendance は管理者の直属メンバーの勤怠を返します。
func (h *AttendanceGrpcHandler) ListTeamAttendance(ctx context.Context, req *hrapi.ListTeamAttendanceRequest) (*hrapi.ListTeamAttendanceResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	days, err := h.svc.ListForTeam(ctx, attendance.ListTeamInput{
		ManagerID: req.ManagerID,
		MaxRows:   req.MaxRows,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &hrapi.ListTeamAttendanceResponse{Days: hrapi.FromAttendanceDays(days)}, nil
}
