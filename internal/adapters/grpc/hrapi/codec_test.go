package hrapi

import (
	"testing"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodecRegistered(t *testing.T) {
	t.Parallel()

	codec := encoding.GetCodec(CodecName)
	if codec == nil {
		t.Fatalf("codec %q not registered", CodecName)
	}

	in := &ComputePayrollResponse{
		Period: "2024-03",
		Rows: []*PayrollRow{
			{EmployeeID: "emp-1", Payable: decimal.RequireFromString("23077")},
		},
		Total: decimal.RequireFromString("23077"),
	}
	data, err := codec.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	var out ComputePayrollResponse
	if err := codec.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if len(out.Rows) != 1 || !out.Rows[0].Payable.Equal(decimal.NewFromInt(23077)) {
		t.Fatalf("unexpected rows: %+v", out.Rows)
	}
}

func TestJSONCodecEmptyPayload(t *testing.T) {
	t.Parallel()

	var req GetLeaveRequestRequest
	if err := (jsonCodec{}).Unmarshal(nil, &req); err != nil {
		t.Fatalf("expected empty payload to decode, got %v", err)
	}
	if req.ID != "" {
		t.Fatalf("expected zero message, got %+v", req)
	}
}
