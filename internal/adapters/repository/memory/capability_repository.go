package memory

import "context"

// CapabilityRepository は authz.CapabilitySource のメモリ実装です。
type CapabilityRepository struct {
	s *Store
}

// GrantCapabilities は actor に権限コードを付与します。
func (s *Store) GrantCapabilities(actorID string, codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capabilities[actorID] = append(s.capabilities[actorID], codes...)
}

// Capabilities は actor の権限コード一覧を返します。
func (r *CapabilityRepository) Capabilities(ctx context.Context, actorID string) ([]string, error) {
	var out []string
	r.s.read(ctx, func() {
		out = append(out, r.s.capabilities[actorID]...)
	})
	return out, nil
}
