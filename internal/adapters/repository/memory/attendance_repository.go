package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
)

// AttendanceRepository は attendance.Repository のメモリ実装です。
type AttendanceRepository struct {
	s *Store
}

// Upsert は (社員, 日付) で挿入または上書きします。値が同一なら既存レコードをそのまま返します。
func (r *AttendanceRepository) Upsert(ctx context.Context, day *attendance.Day) (*attendance.Day, error) {
	next := *day
	next.Date = attendance.DateOf(day.Date)
	key := dayKey{employeeID: next.EmployeeID, date: next.Date.Unix()}

	var current *attendance.Day
	r.s.read(ctx, func() {
		if existing, ok := r.s.days[key]; ok {
			copy := *existing
			current = &copy
		}
	})
	if current != nil && sameFacts(current, &next) {
		return current, nil
	}

	stored := next
	r.s.write(ctx, func(s *Store) {
		copy := stored
		s.days[key] = &copy
	})
	return &next, nil
}

// UpsertRange は [Start, End] の各日を上書きし、対象日数を返します。
func (r *AttendanceRepository) UpsertRange(ctx context.Context, in attendance.RangeWrite) (int, error) {
	start, end := attendance.DateOf(in.Start), attendance.DateOf(in.End)
	days := make([]attendance.Day, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, attendance.Day{
			EmployeeID: in.EmployeeID,
			Date:       d,
			Status:     in.Status,
			Source:     in.Source,
			Valid:      in.Valid,
			UpdatedAt:  in.At,
		})
	}

	r.s.write(ctx, func(s *Store) {
		for i := range days {
			day := days[i]
			key := dayKey{employeeID: day.EmployeeID, date: day.Date.Unix()}
			if existing, ok := s.days[key]; ok && sameFacts(existing, &day) {
				continue
			}
			s.days[key] = &day
		}
	})
	return len(days), nil
}

// ListByEmployee は期間内の勤怠を新しい日付順で Limit 件まで返します。
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Day, error) {
	from, to := attendance.DateOf(filter.From), attendance.DateOf(filter.To)
	out := make([]*attendance.Day, 0)
	r.s.read(ctx, func() {
		for key, day := range r.s.days {
			if key.employeeID != filter.EmployeeID || day.Date.Before(from) || day.Date.After(to) {
				continue
			}
			copy := *day
			out = append(out, &copy)
		}
	})
	return limitDays(sortDays(out), filter.Limit), nil
}

// ListByManager は直属メンバー全員の勤怠を新しい日付順で limit 件まで返します。
func (r *AttendanceRepository) ListByManager(ctx context.Context, managerID string, limit int) ([]*attendance.Day, error) {
	out := make([]*attendance.Day, 0)
	r.s.read(ctx, func() {
		reports := make(map[string]struct{})
		for id, e := range r.s.employees {
			if e.ManagerID != nil && *e.ManagerID == managerID {
				reports[id] = struct{}{}
			}
		}
		for key, day := range r.s.days {
			if _, ok := reports[key.employeeID]; !ok {
				continue
			}
			copy := *day
			out = append(out, &copy)
		}
	})
	return limitDays(sortDays(out), limit), nil
}

// CountByStatus は [from, to) のレコードを社員ごとにステータス別で集計します。
func (r *AttendanceRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[string]attendance.Counts, error) {
	from, to = attendance.DateOf(from), attendance.DateOf(to)
	out := make(map[string]attendance.Counts)
	r.s.read(ctx, func() {
		for key, day := range r.s.days {
			if day.Date.Before(from) || !day.Date.Before(to) {
				continue
			}
			counts := out[key.employeeID]
			counts.Add(day.Status, 1)
			out[key.employeeID] = counts
		}
	})
	return out, nil
}

func sameFacts(a, b *attendance.Day) bool {
	return a.Status == b.Status && a.Source == b.Source && a.Valid == b.Valid
}

func sortDays(days []*attendance.Day) []*attendance.Day {
	sort.Slice(days, func(i, j int) bool {
		if !days[i].Date.Equal(days[j].Date) {
			return days[i].Date.After(days[j].Date)
		}
		return days[i].EmployeeID < days[j].EmployeeID
	})
	return days
}

func limitDays(days []*attendance.Day, limit int) []*attendance.Day {
	if limit > 0 && len(days) > limit {
		return days[:limit]
	}
	return days
}
