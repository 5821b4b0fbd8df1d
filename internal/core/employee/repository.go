package employee

import (
	"context"
	"time"
)

// Repository は社員ディレクトリ(外部サブシステム)の読み取り抽象です。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Employee, error)
	ListAll(ctx context.Context) ([]*Employee, error)
	ListReports(ctx context.Context, managerID string) ([]*Employee, error)
	// EffectiveCompensations は asOf 時点で有効な報酬を社員ごとに返します。
	// 発効日が asOf 以下のうち最新のレコードが採用されます。
	EffectiveCompensations(ctx context.Context, asOf time.Time) (map[string]Compensation, error)
}
