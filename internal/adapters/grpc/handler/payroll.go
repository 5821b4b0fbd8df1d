package handler

import (
	"context"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/grpc/hrapi"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/payroll"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PayrollGrpcHandler は PayrollService の gRPC 実装です。
type PayrollGrpcHandler struct {
	svc payroll.UseCase
}

var _ hrapi.PayrollServiceServer = (*PayrollGrpcHandler)(nil)

// NewPayrollGrpcHandler は PayrollGrpcHandler を生成します。
func NewPayrollGrpcHandler(svc payroll.UseCase) *PayrollGrpcHandler {
	return &PayrollGrpcHandler{svc: svc}
}

// ComputePayroll は指定月の給与サマリを計算します。
func (h *PayrollGrpcHandler) ComputePayroll(ctx context.Context, req *hrapi.ComputePayrollRequest) (*hrapi.ComputePayrollResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	report, err := h.svc.Compute(ctx, payroll.Period{Year: req.Year, Month: time.Month(req.Month)})
	if err != nil {
		return nil, toStatusError(err)
	}

	return hrapi.FromPayrollReport(report), nil
}
