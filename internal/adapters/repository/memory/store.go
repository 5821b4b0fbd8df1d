// Package memory はプロセス内で完結するリポジトリ実装を提供します。
//
// 書き込みはトランザクションごとにステージされ、コミット時にストアロック下で
// まとめて適用されます。そのため他のトランザクションから途中状態は見えません。
// 休暇申請の行ロックは申請 ID 単位のロックで表現し、コミットまたはロールバックまで保持します。
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
)

type dayKey struct {
	employeeID string
	date       int64
}

// Store はメモリ上の全テーブルを保持します。
type Store struct {
	mu sync.RWMutex

	employees     map[string]*employee.Employee
	compensations map[string][]employee.Compensation
	categories    map[string]leave.Category
	requests      map[string]*leave.Request
	requestOrder  []string
	balances      map[balance.Key]*balance.Balance
	days          map[dayKey]*attendance.Day
	capabilities  map[string][]string

	locks *keyedLocks
}

// NewStore は空の Store を生成します。
func NewStore() *Store {
	return &Store{
		employees:     make(map[string]*employee.Employee),
		compensations: make(map[string][]employee.Compensation),
		categories:    make(map[string]leave.Category),
		requests:      make(map[string]*leave.Request),
		balances:      make(map[balance.Key]*balance.Balance),
		days:          make(map[dayKey]*attendance.Day),
		capabilities:  make(map[string][]string),
		locks:         newKeyedLocks(),
	}
}

type txContextKey struct{}

type snapshotContextKey struct{}

type txState struct {
	ops          []func(*Store)
	unlocks      []func()
	balanceDelta map[balance.Key]int
}

func (t *txState) stage(op func(*Store)) {
	t.ops = append(t.ops, op)
}

func (t *txState) release() {
	for i := len(t.unlocks) - 1; i >= 0; i-- {
		t.unlocks[i]()
	}
	t.unlocks = nil
}

func txFromContext(ctx context.Context) (*txState, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey{}).(*txState)
	return tx, ok
}

// WithinReadWrite は書き込みをステージするトランザクションを開始し、fn が成功すればコミットします。
func (s *Store) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("memory: transaction function is required")
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx := &txState{balanceDelta: make(map[balance.Key]int)}
	defer tx.release()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		return err
	}

	s.mu.Lock()
	for _, op := range tx.ops {
		op(s)
	}
	s.mu.Unlock()
	return nil
}

// WithinReadOnly は fn の実行中、コミット済み状態を 1 つのスナップショットとして固定します。
func (s *Store) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("memory: transaction function is required")
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	if held, _ := ctx.Value(snapshotContextKey{}).(bool); held {
		return fn(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, snapshotContextKey{}, true))
}

// read は読み取りロック下で fn を実行します。スナップショット中は既に保持しているロックを使います。
func (s *Store) read(ctx context.Context, fn func()) {
	if held, _ := ctx.Value(snapshotContextKey{}).(bool); held {
		fn()
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// write はトランザクション中ならステージし、そうでなければ即時に適用します。
func (s *Store) write(ctx context.Context, op func(*Store)) {
	if tx, ok := txFromContext(ctx); ok {
		tx.stage(op)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	op(s)
}

type keyedLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{slots: make(map[string]chan struct{})}
}

func (k *keyedLocks) acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	slot, ok := k.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		k.slots[key] = slot
	}
	k.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "memory: lock wait aborted", ctx.Err())
	}
}

// Employees は社員ディレクトリのリポジトリを返します。
func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{s: s}
}

// LeaveRequests は休暇申請のリポジトリを返します。
func (s *Store) LeaveRequests() *LeaveRequestRepository {
	return &LeaveRequestRepository{s: s}
}

// Categories は休暇区分カタログのリポジトリを返します。
func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{s: s}
}

// Balances は休暇残高のリポジトリを返します。
func (s *Store) Balances() *BalanceRepository {
	return &BalanceRepository{s: s}
}

// Attendance は勤怠台帳のリポジトリを返します。
func (s *Store) Attendance() *AttendanceRepository {
	return &AttendanceRepository{s: s}
}

// Capabilities は権限コードのソースを返します。
func (s *Store) Capabilities() *CapabilityRepository {
	return &CapabilityRepository{s: s}
}
