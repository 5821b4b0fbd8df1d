package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// maxChainDepth は管理チェーン探索の上限です。
const maxChainDepth = 64

// Service は社員ディレクトリに対する参照系ユースケースをまとめます。
type Service struct {
	repo Repository
}

// NewService は Service を生成します。
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, trimmed)
}

// RequireActive は社員が active であることを確認します。
// 存在しない社員も有効なプロフィールを持たないものとして扱います。
func (s *Service) RequireActive(ctx context.Context, id string) (*Employee, error) {
	emp, err := s.GetEmployee(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEmployeeNotActive
		}
		return nil, err
	}
	if emp.Status != StatusActive {
		return nil, ErrEmployeeNotActive
	}
	return emp, nil
}

// ManagementChain は直属の上長から順に上位の管理者 ID を返します。
func (s *Service) ManagementChain(ctx context.Context, id string) ([]string, error) {
	current, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{current.ID: {}}
	chain := make([]string, 0, 4)
	for current.ManagerID != nil {
		managerID := *current.ManagerID
		if _, ok := seen[managerID]; ok || len(chain) >= maxChainDepth {
			return nil, ErrManagementCycle
		}
		seen[managerID] = struct{}{}
		chain = append(chain, managerID)

		next, err := s.repo.FindByID(ctx, managerID)
		if err != nil {
			if isNotFound(err) {
				break
			}
			return nil, err
		}
		current = next
	}

	return chain, nil
}

// ListReports は直属の部下を返します。
func (s *Service) ListReports(ctx context.Context, managerID string) ([]*Employee, error) {
	trimmed := strings.TrimSpace(managerID)
	if trimmed == "" {
		return nil, fmt.Errorf("manager id: %w", ErrInvalidID)
	}
	return s.repo.ListReports(ctx, trimmed)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
