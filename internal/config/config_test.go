package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
venue: SIM
oms_type: NETTING
generate_position_ids: true
is_frozen_account: false
margin_check_enabled: true
starting_balances:
  - currency: USD
    amount: "100000"
instruments:
  - symbol: USDJPY
    venue: SIM
    price_precision: 3
    size_precision: 0
    tick_size: "0.001"
    min_qty: "1000"
    max_qty: "10000000"
    maker_fee_rate: "0.0002"
    taker_fee_rate: "0.0005"
    quote_currency: JPY
    base_currency: USD
    settlement_currency: USD
    is_inverse: false
    multiplier: "1"
fill_model:
  seed: 42
  prob_slippage: 0.0
  prob_fill_on_limit: 1.0
dashboard:
  enabled: false
  port: 8089
notify:
  webhook_url: ""
report:
  out_dir: ./run-artifacts
logging:
  level: info
  format: text
`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	t.Parallel()
	path := writeSampleConfig(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Venue != "SIM" {
		t.Errorf("Venue = %q, want SIM", cfg.Venue)
	}
	if cfg.OMSType != "NETTING" {
		t.Errorf("OMSType = %q, want NETTING", cfg.OMSType)
	}
	if len(cfg.Instruments) != 1 || cfg.Instruments[0].Symbol != "USDJPY" {
		t.Fatalf("unexpected instruments: %+v", cfg.Instruments)
	}
	if cfg.FillModel.Seed != 42 {
		t.Errorf("FillModel.Seed = %d, want 42", cfg.FillModel.Seed)
	}
}

func TestValidateRejectsUnknownOMSType(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Venue:            "SIM",
		OMSType:          "BOGUS",
		StartingBalances: []BalanceConfig{{Currency: "USD", Amount: "1"}},
		Instruments: []InstrumentConfig{{
			Symbol: "X", TickSize: "0.1", MinQty: "1", MaxQty: "10",
			MakerFeeRate: "0", TakerFeeRate: "0", Multiplier: "1",
		}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown oms_type")
	}
}

func TestValidateRejectsMissingInstruments(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Venue:            "SIM",
		OMSType:          "NETTING",
		StartingBalances: []BalanceConfig{{Currency: "USD", Amount: "1"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing instruments")
	}
}

func TestValidateRejectsBadDecimalString(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Venue:            "SIM",
		OMSType:          "NETTING",
		StartingBalances: []BalanceConfig{{Currency: "USD", Amount: "not-a-number"}},
		Instruments: []InstrumentConfig{{
			Symbol: "X", TickSize: "0.1", MinQty: "1", MaxQty: "10",
			MakerFeeRate: "0", TakerFeeRate: "0", Multiplier: "1",
		}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed starting balance amount")
	}
}

func TestValidateRejectsDashboardPortMissing(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Venue:            "SIM",
		OMSType:          "NETTING",
		StartingBalances: []BalanceConfig{{Currency: "USD", Amount: "1"}},
		Instruments: []InstrumentConfig{{
			Symbol: "X", TickSize: "0.1", MinQty: "1", MaxQty: "10",
			MakerFeeRate: "0", TakerFeeRate: "0", Multiplier: "1",
		}},
		Dashboard: DashboardConfig{Enabled: true},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for dashboard enabled with no port")
	}
}

func TestRegistryAndBalancesFromConfig(t *testing.T) {
	t.Parallel()
	path := writeSampleConfig(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	reg := cfg.Registry()
	all := reg.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 registered instrument, got %d", len(all))
	}

	balances := cfg.Balances()
	if len(balances) != 1 || balances[0].Currency() != "USD" {
		t.Fatalf("unexpected balances: %+v", balances)
	}
}
