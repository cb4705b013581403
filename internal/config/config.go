// Package config defines all configuration for the simulated venue.
// Config is loaded from a YAML file (default: configs/config.yaml) with
// select fields overridable via SIMVENUE_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"simvenue/pkg/money"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Venue               string             `mapstructure:"venue"`
	OMSType             string             `mapstructure:"oms_type"`
	GeneratePositionIDs bool               `mapstructure:"generate_position_ids"`
	IsFrozenAccount     bool               `mapstructure:"is_frozen_account"`
	MarginCheckEnabled  bool               `mapstructure:"margin_check_enabled"`
	StartingBalances    []BalanceConfig    `mapstructure:"starting_balances"`
	Instruments         []InstrumentConfig `mapstructure:"instruments"`
	FillModel           FillModelConfig    `mapstructure:"fill_model"`
	Dashboard           DashboardConfig    `mapstructure:"dashboard"`
	Notify              NotifyConfig       `mapstructure:"notify"`
	Report              ReportConfig       `mapstructure:"report"`
	Logging             LoggingConfig      `mapstructure:"logging"`
}

// LoggingConfig controls the structured logger cmd/simrunner builds.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BalanceConfig seeds one currency's starting account balance.
type BalanceConfig struct {
	Currency string `mapstructure:"currency"`
	Amount   string `mapstructure:"amount"`
}

// InstrumentConfig is the YAML shape of one pkg/instrument.Instrument.
type InstrumentConfig struct {
	Symbol             string `mapstructure:"symbol"`
	Venue              string `mapstructure:"venue"`
	PricePrecision     int32  `mapstructure:"price_precision"`
	SizePrecision      int32  `mapstructure:"size_precision"`
	TickSize           string `mapstructure:"tick_size"`
	MinQty             string `mapstructure:"min_qty"`
	MaxQty             string `mapstructure:"max_qty"`
	MakerFeeRate       string `mapstructure:"maker_fee_rate"`
	TakerFeeRate       string `mapstructure:"taker_fee_rate"`
	QuoteCurrency      string `mapstructure:"quote_currency"`
	BaseCurrency       string `mapstructure:"base_currency"`
	SettlementCurrency string `mapstructure:"settlement_currency"`
	IsInverse          bool   `mapstructure:"is_inverse"`
	Multiplier         string `mapstructure:"multiplier"`
}

// FillModelConfig tunes the deterministic slippage model.
type FillModelConfig struct {
	Seed            int64   `mapstructure:"seed"`
	ProbSlippage    float64 `mapstructure:"prob_slippage"`
	ProbFillOnLimit float64 `mapstructure:"prob_fill_on_limit"`
}

// DashboardConfig controls the read-only dashboard server.
type DashboardConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NotifyConfig controls the outbound webhook sink.
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// ReportConfig controls the run log and summary output location.
type ReportConfig struct {
	OutDir string `mapstructure:"out_dir"`
}

// Load reads config from a YAML file with env var overrides. Every field
// is overridable as SIMVENUE_SECTION_FIELD, e.g. SIMVENUE_NOTIFY_WEBHOOK_URL.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SIMVENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Venue == "" {
		return fmt.Errorf("venue is required")
	}
	switch c.OMSType {
	case "NETTING", "HEDGING":
	default:
		return fmt.Errorf("oms_type must be one of: NETTING, HEDGING")
	}
	if len(c.StartingBalances) == 0 {
		return fmt.Errorf("starting_balances must have at least one entry")
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("instruments must have at least one entry")
	}
	for _, b := range c.StartingBalances {
		if b.Currency == "" {
			return fmt.Errorf("starting_balances entry missing currency")
		}
		if _, err := decimal.NewFromString(b.Amount); err != nil {
			return fmt.Errorf("starting_balances[%s].amount invalid: %w", b.Currency, err)
		}
	}
	for _, inst := range c.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("instrument entry missing symbol")
		}
		if err := inst.validateDecimals(); err != nil {
			return fmt.Errorf("instrument %s: %w", inst.Symbol, err)
		}
	}
	if c.FillModel.ProbSlippage < 0 || c.FillModel.ProbSlippage > 1 {
		return fmt.Errorf("fill_model.prob_slippage must be in [0, 1]")
	}
	if c.FillModel.ProbFillOnLimit < 0 || c.FillModel.ProbFillOnLimit > 1 {
		return fmt.Errorf("fill_model.prob_fill_on_limit must be in [0, 1]")
	}
	if c.Dashboard.Enabled && c.Dashboard.Port == 0 {
		return fmt.Errorf("dashboard.port is required when dashboard.enabled is true")
	}
	return nil
}

func (inst InstrumentConfig) validateDecimals() error {
	fields := map[string]string{
		"tick_size":      inst.TickSize,
		"min_qty":        inst.MinQty,
		"max_qty":        inst.MaxQty,
		"maker_fee_rate": inst.MakerFeeRate,
		"taker_fee_rate": inst.TakerFeeRate,
		"multiplier":     inst.Multiplier,
	}
	for name, raw := range fields {
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("%s invalid: %w", name, err)
		}
	}
	return nil
}

// StartingBalance parses one BalanceConfig entry into a money.Money.
func (b BalanceConfig) StartingBalance() money.Money {
	return money.MustParseMoney(b.Amount, money.Currency(b.Currency))
}
