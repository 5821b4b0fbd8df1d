package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
)

type fakeBalanceRepo struct {
	rows map[Key]*Balance
}

func newFakeBalanceRepo(rows ...*Balance) *fakeBalanceRepo {
	repo := &fakeBalanceRepo{rows: make(map[Key]*Balance)}
	for _, b := range rows {
		repo.rows[Key{b.EmployeeID, b.Category, b.Year}] = b
	}
	return repo
}

func (r *fakeBalanceRepo) AddUsed(_ context.Context, key Key, delta int) (*Balance, error) {
	b, ok := r.rows[key]
	if !ok {
		return nil, ErrBalanceNotFound
	}
	if b.Used+delta < 0 {
		return nil, ErrUsedBelowZero
	}
	b.Used += delta
	copy := *b
	return &copy, nil
}

func (r *fakeBalanceRepo) ListByEmployee(_ context.Context, employeeID string, year int) ([]*Balance, error) {
	var out []*Balance
	for _, b := range r.rows {
		if b.EmployeeID == employeeID && b.Year == year {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func TestService_Debit(t *testing.T) {
	t.Parallel()

	repo := newFakeBalanceRepo(&Balance{EmployeeID: "emp-1", Category: "casual", Year: 2025, Allocated: 12, Used: 2})
	svc := NewService(repo, nil)

	got, err := svc.Debit(context.Background(), "emp-1", " Casual ", 2025, 3)
	if err != nil {
		t.Fatalf("Debit returned error: %v", err)
	}
	if got.Used != 5 || got.Remaining() != 7 {
		t.Fatalf("unexpected balance after debit: %+v", got)
	}
}

func TestService_Debit_NotProvisioned(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeBalanceRepo(), nil)

	_, err := svc.Debit(context.Background(), "emp-1", "sick", 2025, 1)
	if !errors.Is(err, ErrBalanceNotFound) || !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrBalanceNotFound, got %v", err)
	}
}

func TestService_Debit_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeBalanceRepo(), nil)

	tests := []struct {
		name     string
		employee string
		category string
		year     int
		days     int
		want     error
	}{
		{name: "employee", employee: "", category: "sick", year: 2025, days: 1, want: ErrInvalidEmployeeID},
		{name: "category", employee: "emp-1", category: " ", year: 2025, days: 1, want: ErrInvalidCategory},
		{name: "year", employee: "emp-1", category: "sick", year: 0, days: 1, want: ErrInvalidYear},
		{name: "days", employee: "emp-1", category: "sick", year: 2025, days: 0, want: ErrInvalidDays},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.Debit(context.Background(), tt.employee, tt.category, tt.year, tt.days); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

type stubCorrections struct {
	allowed map[string]bool
	calls   int
}

func (s *stubCorrections) AuthorizeBalanceCorrection(_ context.Context, actorID, employeeID string) error {
	s.calls++
	if actorID == employeeID || !s.allowed[actorID] {
		return apperr.New(apperr.ErrPermissionDenied, "denied")
	}
	return nil
}

func TestService_Credit(t *testing.T) {
	t.Parallel()

	repo := newFakeBalanceRepo(&Balance{EmployeeID: "emp-1", Category: "earned", Year: 2025, Allocated: 10, Used: 4})
	svc := NewService(repo, &stubCorrections{allowed: map[string]bool{"hr-1": true}})

	got, err := svc.Credit(context.Background(), CreditInput{ActorID: "hr-1", EmployeeID: "emp-1", Category: "earned", Year: 2025, Days: 3})
	if err != nil {
		t.Fatalf("Credit returned error: %v", err)
	}
	if got.Used != 1 {
		t.Fatalf("expected used 1 after credit, got %d", got.Used)
	}
	if _, err := svc.Credit(context.Background(), CreditInput{ActorID: "hr-1", EmployeeID: "emp-1", Category: "earned", Year: 2025, Days: -1}); !errors.Is(err, ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}
}

func TestService_Credit_RejectsNegativeUsed(t *testing.T) {
	t.Parallel()

	repo := newFakeBalanceRepo(&Balance{EmployeeID: "emp-1", Category: "earned", Year: 2025, Allocated: 10, Used: 2})
	svc := NewService(repo, &stubCorrections{allowed: map[string]bool{"hr-1": true}})

	_, err := svc.Credit(context.Background(), CreditInput{ActorID: "hr-1", EmployeeID: "emp-1", Category: "earned", Year: 2025, Days: 3})
	if !errors.Is(err, ErrUsedBelowZero) || !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrUsedBelowZero, got %v", err)
	}
	if used := repo.rows[Key{"emp-1", "earned", 2025}].Used; used != 2 {
		t.Fatalf("balance must stay unchanged, used=%d", used)
	}
}

func TestService_Credit_Authorization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		auth  CorrectionAuthorizer
		actor string
		want  error
	}{
		{name: "missing actor", auth: &stubCorrections{}, actor: " ", want: ErrInvalidActor},
		{name: "no authorizer", auth: nil, actor: "hr-1", want: apperr.ErrPermissionDenied},
		{name: "self correction", auth: &stubCorrections{allowed: map[string]bool{"emp-1": true}}, actor: "emp-1", want: apperr.ErrPermissionDenied},
		{name: "no capability", auth: &stubCorrections{}, actor: "mgr-1", want: apperr.ErrPermissionDenied},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeBalanceRepo(&Balance{EmployeeID: "emp-1", Category: "earned", Year: 2025, Allocated: 10, Used: 4})
			svc := NewService(repo, tt.auth)

			_, err := svc.Credit(context.Background(), CreditInput{ActorID: tt.actor, EmployeeID: "emp-1", Category: "earned", Year: 2025, Days: 1})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if used := repo.rows[Key{"emp-1", "earned", 2025}].Used; used != 4 {
				t.Fatalf("balance must stay unchanged, used=%d", used)
			}
		})
	}
}

func TestService_Query_NegativeRemainingIsNotClamped(t *testing.T) {
	t.Parallel()

	repo := newFakeBalanceRepo(
		&Balance{EmployeeID: "emp-1", Category: "sick", Year: 2025, Allocated: 5, Used: 7},
		&Balance{EmployeeID: "emp-1", Category: "casual", Year: 2025, Allocated: 12, Used: 0},
		&Balance{EmployeeID: "emp-1", Category: "casual", Year: 2024, Allocated: 12, Used: 12},
		&Balance{EmployeeID: "emp-2", Category: "casual", Year: 2025, Allocated: 12, Used: 1},
	)
	svc := NewService(repo, nil)

	views, err := svc.Query(context.Background(), "emp-1", 2025)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(views))
	}
	if views[0].Category != "casual" || views[1].Category != "sick" {
		t.Fatalf("expected categories sorted, got %+v", views)
	}
	if views[1].Remaining != -2 {
		t.Fatalf("expected negative remaining -2, got %d", views[1].Remaining)
	}

	if _, err := svc.Query(context.Background(), "", 2025); !errors.Is(err, ErrInvalidEmployeeID) {
		t.Fatalf("expected ErrInvalidEmployeeID, got %v", err)
	}
}
