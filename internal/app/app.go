// Package app はストレージ実装からユースケース群を組み立てます。
package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/repository/memory"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/attendance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/authz"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/payroll"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/platform/config"
	pgdb "github.com/ogurasousui/codex-grpc-hr-core/internal/platform/db/postgres"
	"github.com/sirupsen/logrus"
)

// Repositories は 1 つのストレージが提供するリポジトリとトランザクション境界です。
type Repositories struct {
	Employees     employee.Repository
	LeaveRequests leave.Repository
	Categories    leave.CategoryRepository
	Balances      balance.Repository
	Attendance    attendance.Repository
	Capabilities  authz.CapabilitySource
	Tx            leave.TransactionManager
}

// MemoryRepositories はメモリストアのリポジトリを返します。
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Employees:     store.Employees(),
		LeaveRequests: store.LeaveRequests(),
		Categories:    store.Categories(),
		Balances:      store.Balances(),
		Attendance:    store.Attendance(),
		Capabilities:  store.Capabilities(),
		Tx:            store,
	}
}

// PostgresRepositories は PostgreSQL のリポジトリを返します。
func PostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Employees:     postgres.NewEmployeeRepository(pool),
		LeaveRequests: postgres.NewLeaveRequestRepository(pool),
		Categories:    postgres.NewCategoryRepository(pool),
		Balances:      postgres.NewBalanceRepository(pool),
		Attendance:    postgres.NewAttendanceRepository(pool),
		Capabilities:  postgres.NewCapabilityRepository(pool),
		Tx:            pgdb.NewTransactionManager(pool),
	}
}

// Services は組み立て済みのユースケース群です。
type Services struct {
	Directory  *employee.Service
	Leave      *leave.Service
	Balances   *balance.Service
	Attendance *attendance.Service
	Payroll    *payroll.Engine
}

// Clock は現在時刻を提供します。nil なら実時間を使います。
type Clock interface {
	Now() time.Time
}

// NewServices は設定に従って各ユースケースを生成します。
func NewServices(repos Repositories, cfg *config.Config, log logrus.FieldLogger, clock Clock) *Services {
	directory := employee.NewService(repos.Employees)
	authorizer := authz.NewChainAuthorizer(repos.Capabilities, directory)
	balances := balance.NewService(repos.Balances, authorizer)

	ledger := attendance.NewService(repos.Attendance, clock, attendance.Policy{
		MaxFutureDays:   cfg.Attendance.MaxFutureDays,
		DefaultListRows: cfg.Attendance.MaxListRows,
	})

	retry := leave.DefaultRetryPolicy()
	if cfg.Leave.MaxConflictRetries != nil {
		retry.MaxRetries = *cfg.Leave.MaxConflictRetries
	}
	if cfg.Leave.RetryBackoff > 0 {
		retry.Backoff = cfg.Leave.RetryBackoff
	}

	leaveSvc := leave.NewService(leave.Deps{
		Requests:   repos.LeaveRequests,
		Categories: repos.Categories,
		Directory:  directory,
		Authorizer: authorizer,
		Ledger:     ledger,
		Balances:   balances,
		Tx:         repos.Tx,
		Clock:      clock,
		Logger:     log.WithField("component", "leave"),
		Retry:      &retry,
	})

	engine := payroll.NewEngine(repos.Employees, repos.Attendance, repos.Tx, cfg.Payroll.WorkingDaysPerMonth)

	return &Services{
		Directory:  directory,
		Leave:      leaveSvc,
		Balances:   balances,
		Attendance: ledger,
		Payroll:    engine,
	}
}
