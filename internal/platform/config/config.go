package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ストレージドライバ。
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// 環境変数による上書きキー。
const (
	EnvDatabasePassword = "HR_DATABASE_PASSWORD"
	EnvStorageDriver    = "HR_STORAGE_DRIVER"
	EnvLogLevel         = "HR_LOG_LEVEL"
)

const (
	defaultMaxListRows         = 366
	defaultMaxConflictRetries  = 3
	defaultRetryBackoff        = 50 * time.Millisecond
	defaultWorkingDaysPerMonth = 26
	defaultShutdownTimeout     = 10 * time.Second
	defaultApplicationName     = "hr-core"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Leave      LeaveConfig      `yaml:"leave"`
	Payroll    PayrollConfig    `yaml:"payroll"`
}

// ServerConfig は gRPC / HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	HTTPListenAddr string `yaml:"http_listen_addr"`
	// AllowedOrigins は HTTP ゲートウェイの CORS 許可オリジンです。
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// StorageConfig は永続化層の選択です。
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// SeedPath は memory ドライバ起動時に読み込む YAML フィクスチャです。空なら空のストアで起動します。
	SeedPath string `yaml:"seed_path"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`

	// ApplicationName は pg_stat_activity に表示される接続名です。
	ApplicationName string `yaml:"application_name"`
	// StatementTimeout と LockTimeout はセッション単位で設定され、0 ならサーバー既定値のままです。
	// ロック待ちのタイムアウトは Conflict として扱われ、休暇承認では再試行されます。
	StatementTimeout    time.Duration `yaml:"-"`
	LockTimeout         time.Duration `yaml:"-"`
	StatementTimeoutRaw string        `yaml:"statement_timeout"`
	LockTimeoutRaw      string        `yaml:"lock_timeout"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   LogFileConfig `yaml:"file"`
}

// LogFileConfig はローテーション付きファイル出力の設定です。Path が空ならファイル出力しません。
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AttendanceConfig は勤怠台帳の設定です。
type AttendanceConfig struct {
	MaxFutureDays int `yaml:"max_future_days"`
	MaxListRows   int `yaml:"max_list_rows"`
}

// LeaveConfig は休暇承認の設定です。
type LeaveConfig struct {
	MaxConflictRetries *int          `yaml:"max_conflict_retries"`
	RetryBackoff       time.Duration `yaml:"-"`
	RetryBackoffRaw    string        `yaml:"retry_backoff"`
}

// PayrollConfig は給与サマリの設定です。
type PayrollConfig struct {
	WorkingDaysPerMonth int `yaml:"working_days_per_month"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
// 同じディレクトリまたはカレントディレクトリの .env があれば環境変数として読み込み、上書きキーを適用します。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.applyEnv(os.Getenv)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv は .env ファイルを読み込みます。ファイルが無い場合は何もしません。
// 既に設定済みの環境変数は上書きしません。
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDatabasePassword)); v != "" {
		c.Database.Password = v
	}
	if v := strings.TrimSpace(getenv(EnvStorageDriver)); v != "" {
		c.Storage.Driver = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	timeout, err := parseDurationAllowEmpty(c.Server.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}
	c.Server.ShutdownTimeout = timeout

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = DriverPostgres
		fallthrough
	case DriverPostgres:
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: storage.driver %q is not supported", c.Storage.Driver)
	}

	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Attendance.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Leave.validateAndNormalize(); err != nil {
		return err
	}
	return c.Payroll.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	if d.ApplicationName == "" {
		d.ApplicationName = defaultApplicationName
	}

	statementTimeout, err := parseDurationAllowEmpty(d.StatementTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: database.statement_timeout: %w", err)
	}
	d.StatementTimeout = statementTimeout

	lockTimeout, err := parseDurationAllowEmpty(d.LockTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: database.lock_timeout: %w", err)
	}
	d.LockTimeout = lockTimeout

	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q is not supported", l.Format)
	}
	if l.File.Path != "" && l.File.MaxSizeMB <= 0 {
		l.File.MaxSizeMB = 100
	}
	return nil
}

func (a *AttendanceConfig) validateAndNormalize() error {
	if a.MaxFutureDays < 0 {
		return fmt.Errorf("config: attendance.max_future_days must not be negative")
	}
	if a.MaxListRows < 0 {
		return fmt.Errorf("config: attendance.max_list_rows must not be negative")
	}
	if a.MaxListRows == 0 {
		a.MaxListRows = defaultMaxListRows
	}
	return nil
}

func (l *LeaveConfig) validateAndNormalize() error {
	if l.MaxConflictRetries == nil {
		retries := defaultMaxConflictRetries
		l.MaxConflictRetries = &retries
	}
	if *l.MaxConflictRetries < 0 {
		return fmt.Errorf("config: leave.max_conflict_retries must not be negative")
	}

	backoff, err := parseDurationAllowEmpty(l.RetryBackoffRaw)
	if err != nil {
		return fmt.Errorf("config: leave.retry_backoff: %w", err)
	}
	if backoff < 0 {
		return fmt.Errorf("config: leave.retry_backoff must not be negative")
	}
	if backoff == 0 {
		backoff = defaultRetryBackoff
	}
	l.RetryBackoff = backoff
	return nil
}

func (p *PayrollConfig) validateAndNormalize() error {
	if p.WorkingDaysPerMonth < 0 {
		return fmt.Errorf("config: payroll.working_days_per_month must be positive")
	}
	if p.WorkingDaysPerMonth == 0 {
		p.WorkingDaysPerMonth = defaultWorkingDaysPerMonth
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。ユーザー名とパスワードはエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
