package postgres

import (
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/platform/config"
)

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	dbCfg := config.DatabaseConfig{
		Host:             "localhost",
		Port:             15432,
		User:             "hr",
		Password:         "pass",
		Name:             "hr_core",
		SSLMode:          "disable",
		MaxOpenConns:     20,
		MaxIdleConns:     5,
		ConnMaxLifetime:  30 * time.Minute,
		ConnMaxIdleTime:  10 * time.Minute,
		ApplicationName:  "hr-core-test",
		StatementTimeout: 5 * time.Second,
		LockTimeout:      1500 * time.Millisecond,
	}

	poolCfg, err := BuildPoolConfig(dbCfg)
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 20 || poolCfg.MinConns != 5 {
		t.Errorf("unexpected pool size %d/%d", poolCfg.MaxConns, poolCfg.MinConns)
	}
	if poolCfg.MaxConnLifetime != 30*time.Minute || poolCfg.MaxConnIdleTime != 10*time.Minute {
		t.Errorf("unexpected lifetimes %v/%v", poolCfg.MaxConnLifetime, poolCfg.MaxConnIdleTime)
	}
	if poolCfg.ConnConfig.Database != "hr_core" {
		t.Errorf("expected database hr_core, got %s", poolCfg.ConnConfig.Database)
	}

	params := poolCfg.ConnConfig.RuntimeParams
	if params["application_name"] != "hr-core-test" {
		t.Errorf("unexpected application_name %q", params["application_name"])
	}
	if params["statement_timeout"] != "5000" {
		t.Errorf("unexpected statement_timeout %q", params["statement_timeout"])
	}
	if params["lock_timeout"] != "1500" {
		t.Errorf("unexpected lock_timeout %q", params["lock_timeout"])
	}
}

func TestBuildPoolConfig_LeavesServerDefaults(t *testing.T) {
	t.Parallel()

	poolCfg, err := BuildPoolConfig(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "hr", Password: "pass", Name: "hr_core", SSLMode: "disable"})
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	params := poolCfg.ConnConfig.RuntimeParams
	if _, ok := params["statement_timeout"]; ok {
		t.Error("statement_timeout must not be set when zero")
	}
	if _, ok := params["lock_timeout"]; ok {
		t.Error("lock_timeout must not be set when zero")
	}
}
