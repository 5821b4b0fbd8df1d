package postgres

import (
	"context"

	"github.com/google/uuid"
	pgdb "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
)

// CapabilityRepository は actor_capabilities テーブルから権限コードを読み取ります。
type CapabilityRepository struct {
	pool pgdb.Queryer
}

// NewCapabilityRepository は CapabilityRepository を生成します。
func NewCapabilityRepository(pool pgdb.Queryer) *CapabilityRepository {
	return &CapabilityRepository{pool: pool}
}

// Capabilities は actor の権限コード一覧を返します。
func (r *CapabilityRepository) Capabilities(ctx context.Context, actorID string) ([]string, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return []string{}, nil
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT capability
          FROM actor_capabilities
         WHERE actor_id = $1
         ORDER BY capability
    `, actorID)
	if err != nil {
		return nil, pgdb.Classify("postgres: actor_capabilities", err)
	}
	defer rows.Close()

	caps := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, pgdb.Classify("postgres: actor_capabilities", err)
		}
		caps = append(caps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, pgdb.Classify("postgres: actor_capabilities", err)
	}
	return caps, nil
}
