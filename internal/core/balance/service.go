package balance

import (
	"context"
	"sort"
	"strings"
)

// CorrectionAuthorizer は残高訂正を行う操作者の権限を判定します。
type CorrectionAuthorizer interface {
	AuthorizeBalanceCorrection(ctx context.Context, actorID, employeeID string) error
}

// Service は休暇残高の加減算と照会を提供します。
type Service struct {
	repo        Repository
	corrections CorrectionAuthorizer
}

// UseCase は残高照会と訂正の公開インターフェースです。
type UseCase interface {
	Query(ctx context.Context, employeeID string, year int) ([]View, error)
	Credit(ctx context.Context, in CreditInput) (*Balance, error)
}

// NewService は Service を生成します。corrections が nil の場合 Credit は常に拒否されます。
func NewService(repo Repository, corrections CorrectionAuthorizer) *Service {
	return &Service{repo: repo, corrections: corrections}
}

// CreditInput は残高訂正の入力です。
type CreditInput struct {
	ActorID    string
	EmployeeID string
	Category   string
	Year       int
	Days       int
}

// Debit は承認済み休暇の日数を used に加算します。
func (s *Service) Debit(ctx context.Context, employeeID, category string, year, days int) (*Balance, error) {
	key, err := normalizeKey(employeeID, category, year)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, ErrInvalidDays
	}
	return s.repo.AddUsed(ctx, key, days)
}

// Credit は権限を持つ管理者の訂正として used から日数を差し引きます。
// used が負になる訂正は ErrUsedBelowZero で拒否され、残高は変わりません。
func (s *Service) Credit(ctx context.Context, in CreditInput) (*Balance, error) {
	key, err := normalizeKey(in.EmployeeID, in.Category, in.Year)
	if err != nil {
		return nil, err
	}
	if in.Days <= 0 {
		return nil, ErrInvalidDays
	}
	actorID := strings.TrimSpace(in.ActorID)
	if actorID == "" {
		return nil, ErrInvalidActor
	}
	if s.corrections == nil {
		return nil, ErrNotAuthorized
	}
	if err := s.corrections.AuthorizeBalanceCorrection(ctx, actorID, key.EmployeeID); err != nil {
		return nil, err
	}
	return s.repo.AddUsed(ctx, key, -in.Days)
}

// Query は社員の年度内の全区分の残高を区分コード順で返します。
func (s *Service) Query(ctx context.Context, employeeID string, year int) ([]View, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	if year < 1 {
		return nil, ErrInvalidYear
	}

	balances, err := s.repo.ListByEmployee(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(balances))
	for _, b := range balances {
		views = append(views, View{
			Category:  b.Category,
			Year:      b.Year,
			Allocated: b.Allocated,
			Used:      b.Used,
			Remaining: b.Remaining(),
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Category < views[j].Category })
	return views, nil
}

func normalizeKey(employeeID, category string, year int) (Key, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return Key{}, ErrInvalidEmployeeID
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return Key{}, ErrInvalidCategory
	}
	if year < 1 {
		return Key{}, ErrInvalidYear
	}
	return Key{EmployeeID: employeeID, Category: category, Year: year}, nil
}
