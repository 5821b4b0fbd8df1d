package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/grpc/hrapi"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/payroll"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 16

// Deps は Handler が呼び出すユースケースです。Logger は省略できます。
type Deps struct {
	Leave      leave.UseCase
	Balances   balance.UseCase
	Attendance attendance.UseCase
	Payroll    payroll.UseCase
	Logger     logrus.FieldLogger
}

// Handler は REST エンドポイントの実装です。
type Handler struct {
	deps     Deps
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewHandler は Handler を生成します。
func NewHandler(deps Deps) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	log := deps.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Handler{deps: deps, validate: v, log: log}
}

type submitLeaveRequestBody struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Category   string `json:"category" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" validate:"max=500"`
}

type decisionBody struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

type upsertAttendanceBody struct {
	Status string `json:"status" validate:"required,oneof=present absent leave wfh"`
	Source string `json:"source" validate:"omitempty,max=64"`
	Valid  *bool  `json:"valid"`
}

type balanceCorrectionBody struct {
	Year int `json:"year" validate:"required,gte=1900,lte=9999"`
	Days int `json:"days" validate:"required,gt=0"`
}

type rangeQuery struct {
	From    string `validate:"required,datetime=2006-01-02"`
	To      string `validate:"required,datetime=2006-01-02"`
	MaxRows int    `validate:"gte=0"`
}

// Healthz は死活監視用です。
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SubmitLeaveRequest は POST /api/leave-requests です。
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var body submitLeaveRequestBody
	if !h.decode(w, r, &body) {
		return
	}

	start, _ := time.Parse(hrapi.DateLayout, body.StartDate)
	end, _ := time.Parse(hrapi.DateLayout, body.EndDate)
	created, err := h.deps.Leave.Submit(r.Context(), leave.SubmitInput{
		EmployeeID: body.EmployeeID,
		Category:   body.Category,
		StartDate:  start,
		EndDate:    end,
		Reason:     body.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hrapi.SubmitLeaveRequestResponse{Request: hrapi.FromLeaveRequest(created)})
}

// DecideLeaveRequest は POST /api/leave-requests/{id}/decision です。承認者は X-Actor-ID です。
func (h *Handler) DecideLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var body decisionBody
	if !h.decode(w, r, &body) {
		return
	}

	decided, err := h.deps.Leave.Decide(r.Context(), leave.DecideInput{
		RequestID:  chi.URLParam(r, "id"),
		Decision:   leave.Status(body.Decision),
		ApproverID: actor,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.DecideLeaveRequestResponse{Request: hrapi.FromLeaveRequest(decided)})
}

// GetLeaveRequest は GET /api/leave-requests/{id} です。
func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	found, err := h.deps.Leave.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.GetLeaveRequestResponse{Request: hrapi.FromLeaveRequest(found)})
}

// ListLeaveRequests は GET /api/employees/{id}/leave-requests です。
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageSize, ok := intParam(w, q.Get("page_size"), "page_size")
	if !ok {
		return
	}

	in := leave.ListRequestsInput{
		EmployeeID: chi.URLParam(r, "id"),
		PageSize:   pageSize,
		PageToken:  q.Get("page_token"),
	}
	if s := strings.TrimSpace(q.Get("status")); s != "" {
		st := leave.Status(strings.ToLower(s))
		in.Status = &st
	}

	result, err := h.deps.Leave.ListRequests(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.ListLeaveRequestsResponse{
		Requests:      hrapi.FromLeaveRequests(result.Requests),
		NextPageToken: result.NextPageToken,
	})
}

// GetLeaveBalances は GET /api/employees/{id}/balances?year= です。year 省略時は今年です。
func (h *Handler) GetLeaveBalances(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r.URL.Query().Get("year"), "year")
	if !ok {
		return
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	views, err := h.deps.Balances.Query(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.GetLeaveBalancesResponse{Balances: hrapi.FromBalanceViews(views)})
}

// CorrectLeaveBalance は POST /api/employees/{id}/balances/{category}/corrections です。
// leave.balance.correct 権限を持つ本人以外の操作者だけが used から days を差し引けます。
func (h *Handler) CorrectLeaveBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var body balanceCorrectionBody
	if !h.decode(w, r, &body) {
		return
	}

	employeeID := chi.URLParam(r, "id")
	corrected, err := h.deps.Balances.Credit(r.Context(), balance.CreditInput{
		ActorID:    actor,
		EmployeeID: employeeID,
		Category:   chi.URLParam(r, "category"),
		Year:       body.Year,
		Days:       body.Days,
	})
	if err != nil {
		h.log.WithFields(logrus.Fields{"actor_id": actor, "employee_id": employeeID}).WithError(err).Warn("leave balance correction rejected")
		writeError(w, err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"actor_id":    actor,
		"employee_id": employeeID,
		"category":    corrected.Category,
		"year":        corrected.Year,
		"days":        body.Days,
	}).Info("leave balance corrected")
	writeJSON(w, http.StatusOK, hrapi.FromBalance(corrected))
}

// UpsertAttendance は PUT /api/employees/{id}/attendance/{date} です。
func (h *Handler) UpsertAttendance(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(hrapi.DateLayout, chi.URLParam(r, "date"))
	if err != nil {
		writeBadRequest(w, "date must be in YYYY-MM-DD format")
		return
	}

	var body upsertAttendanceBody
	if !h.decode(w, r, &body) {
		return
	}

	day, err := h.deps.Attendance.Upsert(r.Context(), attendance.UpsertInput{
		EmployeeID: chi.URLParam(r, "id"),
		Date:       date,
		Status:     attendance.Status(body.Status),
		Source:     body.Source,
		Valid:      body.Valid,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.UpsertAttendanceResponse{Day: hrapi.FromAttendanceDay(day)})
}

// ListAttendance は GET /api/employees/{id}/attendance?from=&to=&max_rows= です。
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxRows, ok := intParam(w, q.Get("max_rows"), "max_rows")
	if !ok {
		return
	}
	query := rangeQuery{From: q.Get("from"), To: q.Get("to"), MaxRows: maxRows}
	if err := h.validate.Struct(query); err != nil {
		writeValidationError(w, err)
		return
	}

	from, _ := time.Parse(hrapi.DateLayout, query.From)
	to, _ := time.Parse(hrapi.DateLayout, query.To)
	days, err := h.deps.Attendance.ListRange(r.Context(), attendance.ListRangeInput{
		EmployeeID: chi.URLParam(r, "id"),
		From:       from,
		To:         to,
		MaxRows:    query.MaxRows,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.ListAttendanceResponse{Days: hrapi.FromAttendanceDays(days)})
}

// ListTeamAttendance は GET /api/managers/{id}/team-attendance です。
func (h *Handler) ListTeamAttendance(w http.ResponseWriter, r *http.Request) {
	maxRows, ok := intParam(w, r.URL.Query().Get("max_rows"), "max_rows")
	if !ok {
		return
	}

	days, err := h.deps.Attendance.ListForTeam(r.Context(), attendance.ListTeamInput{
		ManagerID: chi.URLParam(r, "id"),
		MaxRows:   maxRows,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.ListTeamAttendanceResponse{Days: hrapi.FromAttendanceDays(days)})
}

// ComputePayroll は GET /api/payroll/{year}/{month} です。
func (h *Handler) ComputePayroll(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeBadRequest(w, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeBadRequest(w, "month must be an integer")
		return
	}

	report, err := h.deps.Payroll.Compute(r.Context(), payroll.Period{Year: year, Month: time.Month(month)})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hrapi.FromPayrollReport(report))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor := strings.TrimSpace(r.Header.Get(ActorHeader))
	if actor == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{Kind: "unauthenticated", Message: ActorHeader + " header is required"}})
		return "", false
	}
	return actor, true
}

func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeBadRequest(w, name+" must be an integer")
		return 0, false
	}
	return v, true
}
