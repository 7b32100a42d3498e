package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/model"
)

// Config represents the top-level bankist.yaml configuration.
type Config struct {
	Session  SessionConfig   `yaml:"session"`
	Loan     LoanConfig      `yaml:"loan"`
	Log      LogConfig       `yaml:"log"`
	Accounts []AccountConfig `yaml:"accounts"`
}

// SessionConfig controls the inactivity logout countdown.
type SessionConfig struct {
	TimeoutTicks int           `yaml:"timeout_ticks"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// LoanConfig controls loan approval and crediting.
type LoanConfig struct {
	Delay            time.Duration `yaml:"delay"`
	MinMovementRatio float64       `yaml:"min_movement_ratio"` // 0.1 = some movement must be >= 10% of the loan
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, logfmt
}

// AccountConfig is a seed account registered at startup.
type AccountConfig struct {
	Owner        string           `yaml:"owner"`
	PIN          int              `yaml:"pin"`
	InterestRate float64          `yaml:"interest_rate"`
	Currency     string           `yaml:"currency"`
	Locale       string           `yaml:"locale"`
	Movements    []MovementConfig `yaml:"movements"`
}

// MovementConfig is one seed movement.
type MovementConfig struct {
	Amount float64 `yaml:"amount"`
	Date   string  `yaml:"date"` // RFC 3339
}

// Load reads a bankist.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the standard timings and the demo accounts.
func Default() *Config {
	cfg := &Config{
		Session: SessionConfig{
			TimeoutTicks: 300,
			TickInterval: time.Second,
		},
		Loan: LoanConfig{
			Delay:            2500 * time.Millisecond,
			MinMovementRatio: 0.1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
	for _, acct := range directory.DefaultAccounts() {
		cfg.Accounts = append(cfg.Accounts, FromModel(acct))
	}
	return cfg
}

// Validate checks the timing and loan settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.TimeoutTicks <= 0 {
		errs = append(errs, fmt.Errorf("session.timeout_ticks must be > 0, got %d", c.Session.TimeoutTicks))
	}
	if c.Session.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("session.tick_interval must be > 0, got %s", c.Session.TickInterval))
	}
	if c.Loan.Delay <= 0 {
		errs = append(errs, fmt.Errorf("loan.delay must be > 0, got %s", c.Loan.Delay))
	}
	if c.Loan.MinMovementRatio <= 0 {
		errs = append(errs, fmt.Errorf("loan.min_movement_ratio must be > 0, got %v", c.Loan.MinMovementRatio))
	}
	return errors.Join(errs...)
}

// SeedAccounts converts every configured account.
func (c *Config) SeedAccounts() ([]model.Account, error) {
	accts := make([]model.Account, 0, len(c.Accounts))
	for i, ac := range c.Accounts {
		acct, err := ac.ToModel()
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i+1, err)
		}
		accts = append(accts, acct)
	}
	return accts, nil
}

// ToModel converts a seed account, parsing its movement dates.
func (ac AccountConfig) ToModel() (model.Account, error) {
	if ac.Owner == "" {
		return model.Account{}, errors.New("owner is required")
	}
	acct := model.Account{
		Owner:        ac.Owner,
		PIN:          ac.PIN,
		InterestRate: decimal.NewFromFloat(ac.InterestRate),
		Currency:     ac.Currency,
		Locale:       ac.Locale,
		Movements:    make([]model.Movement, 0, len(ac.Movements)),
	}
	for i, mc := range ac.Movements {
		date, err := time.Parse(time.RFC3339Nano, mc.Date)
		if err != nil {
			return model.Account{}, fmt.Errorf("movement %d: parsing date %q: %w", i+1, mc.Date, err)
		}
		acct.Movements = append(acct.Movements, model.Movement{
			Amount: decimal.NewFromFloat(mc.Amount),
			Date:   date,
		})
	}
	return acct, nil
}

// FromModel converts an account back into its seed form.
func FromModel(acct model.Account) AccountConfig {
	ac := AccountConfig{
		Owner:        acct.Owner,
		PIN:          acct.PIN,
		InterestRate: acct.InterestRate.InexactFloat64(),
		Currency:     acct.Currency,
		Locale:       acct.Locale,
	}
	for _, m := range acct.Movements {
		ac.Movements = append(ac.Movements, MovementConfig{
			Amount: m.Amount.InexactFloat64(),
			Date:   m.Date.UTC().Format(time.RFC3339Nano),
		})
	}
	return ac
}
