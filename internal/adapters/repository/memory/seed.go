package memory

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/balance"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/employee"
	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/leave"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed はローカル起動用のフィクスチャです。
type Seed struct {
	Employees []struct {
		ID        string `yaml:"id"`
		Code      string `yaml:"code"`
		Name      string `yaml:"name"`
		ManagerID string `yaml:"manager_id"`
		Status    string `yaml:"status"`
	} `yaml:"employees"`
	Compensations []struct {
		EmployeeID    string `yaml:"employee_id"`
		BaseAmount    string `yaml:"base_amount"`
		EffectiveFrom string `yaml:"effective_from"`
	} `yaml:"compensations"`
	Categories []struct {
		Code string `yaml:"code"`
		Name string `yaml:"name"`
	} `yaml:"categories"`
	Balances []struct {
		EmployeeID string `yaml:"employee_id"`
		Category   string `yaml:"category"`
		Year       int    `yaml:"year"`
		Allocated  int    `yaml:"allocated"`
		Used       int    `yaml:"used"`
	} `yaml:"balances"`
	Capabilities map[string][]string `yaml:"capabilities"`
}

// LoadSeedFile は path のフィクスチャをストアへ投入します。
func (s *Store) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("memory: open seed %s: %w", path, err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}

// LoadSeed は YAML フィクスチャを読み込み、全件検証してから投入します。
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("memory: decode seed: %w", err)
	}

	employees := make([]employee.Employee, 0, len(seed.Employees))
	for _, e := range seed.Employees {
		if e.ID == "" {
			return fmt.Errorf("memory: seed employee without id")
		}
		emp := employee.Employee{ID: e.ID, EmployeeCode: e.Code, Name: e.Name, Status: employee.Status(e.Status)}
		if e.ManagerID != "" {
			manager := e.ManagerID
			emp.ManagerID = &manager
		}
		employees = append(employees, emp)
	}

	comps := make([]employee.Compensation, 0, len(seed.Compensations))
	for _, c := range seed.Compensations {
		amount, err := decimal.NewFromString(c.BaseAmount)
		if err != nil {
			return fmt.Errorf("memory: seed compensation for %s: %w", c.EmployeeID, err)
		}
		from, err := time.Parse(time.DateOnly, c.EffectiveFrom)
		if err != nil {
			return fmt.Errorf("memory: seed compensation for %s: %w", c.EmployeeID, err)
		}
		comps = append(comps, employee.Compensation{EmployeeID: c.EmployeeID, BaseAmount: amount, EffectiveFrom: from})
	}

	for _, b := range seed.Balances {
		if b.Allocated < 0 || b.Used < 0 {
			return fmt.Errorf("memory: seed balance for %s/%s/%d: allocated and used must not be negative", b.EmployeeID, b.Category, b.Year)
		}
	}

	for _, e := range employees {
		s.PutEmployee(e)
	}
	for _, c := range comps {
		s.PutCompensation(c)
	}
	for _, c := range seed.Categories {
		s.PutCategory(leave.Category{Code: c.Code, Name: c.Name})
	}
	for _, b := range seed.Balances {
		s.PutBalance(balance.Balance{EmployeeID: b.EmployeeID, Category: b.Category, Year: b.Year, Allocated: b.Allocated, Used: b.Used})
	}
	for actor, codes := range seed.Capabilities {
		s.GrantCapabilities(actor, codes...)
	}
	return nil
}
