package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentmarket/logging"
)

// ErrInvalidConfig is wrapped by every load and validation error.
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables that override file values.
const (
	EnvLogLevel = "AGENTMARKET_LOG_LEVEL"
	EnvTimeUnit = "AGENTMARKET_TIME_UNIT"
)

// Solvency policies applied by the auctioneer.
const (
	SolvencyBank       = "bank"
	SolvencyPermissive = "permissive"
)

// Config is the complete simulation configuration. Every protocol period and
// deadline is an integer number of time units; TimeUnit converts them into
// wall-clock durations.
type Config struct {
	TimeUnit  Duration        `yaml:"time_unit" toml:"time_unit"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Runtime   RuntimeConfig   `yaml:"runtime" toml:"runtime"`
	Auction   AuctionConfig   `yaml:"auction" toml:"auction"`
	Bidders   BiddersConfig   `yaml:"bidders" toml:"bidders"`
	Bank      BankConfig      `yaml:"bank" toml:"bank"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Regulator RegulatorConfig `yaml:"regulator" toml:"regulator"`
	Coalition CoalitionConfig `yaml:"coalition" toml:"coalition"`
	Monitor   MonitorConfig   `yaml:"monitor" toml:"monitor"`
	Analyst   AnalystConfig   `yaml:"analyst" toml:"analyst"`
	Notify    NotifyConfig    `yaml:"notify" toml:"notify"`
	Logistics LogisticsConfig `yaml:"logistics" toml:"logistics"`
	Bootstrap BootstrapConfig `yaml:"bootstrap" toml:"bootstrap"`
}

// LogConfig selects the logging backend.
type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	Format  string `yaml:"format" toml:"format"`   // json or text
	Backend string `yaml:"backend" toml:"backend"` // slog or zap
}

// RuntimeConfig tunes the engine and the presentation dispatcher.
type RuntimeConfig struct {
	DropUnmatched bool    `yaml:"drop_unmatched" toml:"drop_unmatched"`
	ObserverQueue int     `yaml:"observer_queue" toml:"observer_queue"`
	LogRate       float64 `yaml:"log_rate" toml:"log_rate"`
	LogBurst      int     `yaml:"log_burst" toml:"log_burst"`
}

// AuctionConfig configures the auctioneer.
type AuctionConfig struct {
	CreateEvery    int      `yaml:"create_every" toml:"create_every"`
	CloseEvery     int      `yaml:"close_every" toml:"close_every"`
	Length         int      `yaml:"length" toml:"length"`
	MaxOpen        int      `yaml:"max_open" toml:"max_open"`
	MinStart       float64  `yaml:"min_start" toml:"min_start"`
	MaxStart       float64  `yaml:"max_start" toml:"max_start"`
	ReserveFactor  float64  `yaml:"reserve_factor" toml:"reserve_factor"`
	Solvency       string   `yaml:"solvency" toml:"solvency"`
	PendingTimeout int      `yaml:"pending_timeout" toml:"pending_timeout"`
	Catalogue      []string `yaml:"catalogue" toml:"catalogue"`
}

// StrategyConfig configures one bidder population.
type StrategyConfig struct {
	Count        int     `yaml:"count" toml:"count"`
	Budget       float64 `yaml:"budget" toml:"budget"`
	BudgetSpread float64 `yaml:"budget_spread" toml:"budget_spread"`
	TickEvery    int     `yaml:"tick_every" toml:"tick_every"`
}

// BiddersConfig configures the three bidder strategies.
type BiddersConfig struct {
	Aggressive   StrategyConfig `yaml:"aggressive" toml:"aggressive"`
	Conservative StrategyConfig `yaml:"conservative" toml:"conservative"`
	Adaptive     StrategyConfig `yaml:"adaptive" toml:"adaptive"`
	SnipeWindow  int            `yaml:"snipe_window" toml:"snipe_window"`
	LearnEvery   int            `yaml:"learn_every" toml:"learn_every"`
}

// BankConfig configures the bank.
type BankConfig struct {
	DiscoverEvery int     `yaml:"discover_every" toml:"discover_every"`
	MinBalance    float64 `yaml:"min_balance" toml:"min_balance"`
	MaxBalance    float64 `yaml:"max_balance" toml:"max_balance"`
}

// AuthConfig configures the authenticator.
type AuthConfig struct {
	ReportEvery int `yaml:"report_every" toml:"report_every"`
	MaxAttempts int `yaml:"max_attempts" toml:"max_attempts"`
}

// RegulatorConfig configures the regulator.
type RegulatorConfig struct {
	ReportEvery       int     `yaml:"report_every" toml:"report_every"`
	SanctionThreshold int     `yaml:"sanction_threshold" toml:"sanction_threshold"`
	MinFine           float64 `yaml:"min_fine" toml:"min_fine"`
	MaxFine           float64 `yaml:"max_fine" toml:"max_fine"`
	JournalLimit      int     `yaml:"journal_limit" toml:"journal_limit"`
}

// CoalitionConfig configures the coalition coordinator.
type CoalitionConfig struct {
	BidFactor float64 `yaml:"bid_factor" toml:"bid_factor"`
}

// MonitorConfig configures the market monitor.
type MonitorConfig struct {
	ReportEvery  int     `yaml:"report_every" toml:"report_every"`
	AnomalyEvery int     `yaml:"anomaly_every" toml:"anomaly_every"`
	MaxBids      int     `yaml:"max_bids" toml:"max_bids"`
	MaxSpent     float64 `yaml:"max_spent" toml:"max_spent"`
	JournalLimit int     `yaml:"journal_limit" toml:"journal_limit"`
}

// AnalystConfig configures the market analyst.
type AnalystConfig struct {
	AnalyzeEvery int `yaml:"analyze_every" toml:"analyze_every"`
	HistorySize  int `yaml:"history_size" toml:"history_size"`
}

// NotifyConfig configures the notification service.
type NotifyConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// LogisticsConfig configures the logistics actor.
type LogisticsConfig struct {
	UpdateEvery        int     `yaml:"update_every" toml:"update_every"`
	TransitProbability float64 `yaml:"transit_probability" toml:"transit_probability"`
	MinCost            float64 `yaml:"min_cost" toml:"min_cost"`
	MaxCost            float64 `yaml:"max_cost" toml:"max_cost"`
	MinETA             int     `yaml:"min_eta" toml:"min_eta"`
	MaxETA             int     `yaml:"max_eta" toml:"max_eta"`
}

// BootstrapConfig configures the reference launch sequence.
type BootstrapConfig struct {
	Stagger Duration `yaml:"stagger" toml:"stagger"`
}

// DefaultCatalogue lists the item names the auctioneer draws from.
var DefaultCatalogue = []string{
	"Vintage Watch",
	"Laptop",
	"Antique Vase",
	"Oil Painting",
	"Mountain Bike",
	"Camera",
	"Guitar",
	"Designer Handbag",
	"Rare Coin",
	"First Edition Book",
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		TimeUnit: D(time.Second),
		Log: LogConfig{
			Level:   "info",
			Format:  "text",
			Backend: "slog",
		},
		Runtime: RuntimeConfig{
			DropUnmatched: true,
			ObserverQueue: 1024,
			LogRate:       50,
			LogBurst:      100,
		},
		Auction: AuctionConfig{
			CreateEvery:    5,
			CloseEvery:     2,
			Length:         300,
			MaxOpen:        5,
			MinStart:       100,
			MaxStart:       1000,
			ReserveFactor:  1.5,
			Solvency:       SolvencyBank,
			PendingTimeout: 10,
			Catalogue:      append([]string(nil), DefaultCatalogue...),
		},
		Bidders: BiddersConfig{
			Aggressive:   StrategyConfig{Count: 2, Budget: 5000, BudgetSpread: 5000, TickEvery: 1},
			Conservative: StrategyConfig{Count: 2, Budget: 3000, BudgetSpread: 3000, TickEvery: 3},
			Adaptive:     StrategyConfig{Count: 2, Budget: 8000, BudgetSpread: 4000, TickEvery: 2},
			SnipeWindow:  240,
			LearnEvery:   5,
		},
		Bank: BankConfig{
			DiscoverEvery: 3,
			MinBalance:    5000,
			MaxBalance:    15000,
		},
		Auth: AuthConfig{
			ReportEvery: 8,
			MaxAttempts: 3,
		},
		Regulator: RegulatorConfig{
			ReportEvery:       10,
			SanctionThreshold: 10,
			MinFine:           100,
			MaxFine:           500,
			JournalLimit:      10000,
		},
		Coalition: CoalitionConfig{
			BidFactor: 0.8,
		},
		Monitor: MonitorConfig{
			ReportEvery:  10,
			AnomalyEvery: 5,
			MaxBids:      50,
			MaxSpent:     50000,
			JournalLimit: 10000,
		},
		Analyst: AnalystConfig{
			AnalyzeEvery: 7,
			HistorySize:  256,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
		Logistics: LogisticsConfig{
			UpdateEvery:        6,
			TransitProbability: 0.3,
			MinCost:            10,
			MaxCost:            50,
			MinETA:             20,
			MaxETA:             70,
		},
		Bootstrap: BootstrapConfig{
			Stagger: D(time.Second),
		},
	}
}

// Units converts n time units into a duration.
func (c Config) Units(n int) time.Duration {
	return time.Duration(n) * c.TimeUnit.Duration
}

// Load reads the file at path on top of Default. The decoder is chosen by
// extension: .yaml/.yml or .toml. Environment overrides are applied last and
// the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}

		if err := Decode(&cfg, filepath.Ext(path), data); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Decode unmarshals data in the format named by ext into cfg. Fields absent
// from data keep their current values.
func Decode(cfg *Config, ext string, data []byte) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}

	return nil
}

// ApplyEnv overrides the log level and time unit from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}

	if v, ok := lookup(EnvTimeUnit); ok && v != "" {
		if err := c.TimeUnit.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvTimeUnit, err)
		}
	}

	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.TimeUnit.Duration > 0, "time_unit must be positive")

	_, err := logging.ParseLevel(c.Log.Level)
	check(err == nil, "unknown log level %q", c.Log.Level)
	check(c.Log.Format == "json" || c.Log.Format == "text", "log format must be json or text, got %q", c.Log.Format)
	check(c.Log.Backend == "slog" || c.Log.Backend == "zap", "log backend must be slog or zap, got %q", c.Log.Backend)

	check(c.Runtime.ObserverQueue > 0, "observer_queue must be positive")
	check(c.Runtime.LogRate > 0, "log_rate must be positive")
	check(c.Runtime.LogBurst > 0, "log_burst must be positive")

	a := c.Auction
	check(a.CreateEvery > 0 && a.CloseEvery > 0 && a.Length > 0, "auction periods must be positive")
	check(a.MaxOpen > 0, "auction max_open must be positive")
	check(a.MinStart > 0 && a.MaxStart > a.MinStart, "auction start range [%v,%v) is empty", a.MinStart, a.MaxStart)
	check(a.ReserveFactor >= 1, "auction reserve_factor must be at least 1")
	check(a.Solvency == SolvencyBank || a.Solvency == SolvencyPermissive, "unknown solvency policy %q", a.Solvency)
	check(a.PendingTimeout > 0, "auction pending_timeout must be positive")
	check(len(a.Catalogue) > 0, "auction catalogue is empty")

	for name, s := range map[string]StrategyConfig{
		"aggressive":   c.Bidders.Aggressive,
		"conservative": c.Bidders.Conservative,
		"adaptive":     c.Bidders.Adaptive,
	} {
		check(s.Count >= 0, "%s count must not be negative", name)
		check(s.Budget > 0 && s.BudgetSpread >= 0, "%s budget must be positive", name)
		check(s.TickEvery > 0, "%s tick_every must be positive", name)
	}

	check(c.Bidders.SnipeWindow > 0 && c.Bidders.LearnEvery > 0, "bidder windows must be positive")
	check(c.Bank.DiscoverEvery > 0, "bank discover_every must be positive")
	check(c.Bank.MinBalance >= 0 && c.Bank.MaxBalance > c.Bank.MinBalance, "bank balance range is empty")
	check(c.Auth.ReportEvery > 0 && c.Auth.MaxAttempts > 0, "auth settings must be positive")
	check(c.Regulator.ReportEvery > 0 && c.Regulator.JournalLimit > 0, "regulator settings must be positive")
	check(c.Regulator.MaxFine > c.Regulator.MinFine && c.Regulator.MinFine >= 0, "regulator fine range is empty")
	check(c.Coalition.BidFactor > 0 && c.Coalition.BidFactor <= 1, "coalition bid_factor must be in (0,1]")
	check(c.Monitor.ReportEvery > 0 && c.Monitor.AnomalyEvery > 0 && c.Monitor.JournalLimit > 0, "monitor periods must be positive")
	check(c.Analyst.AnalyzeEvery > 0 && c.Analyst.HistorySize > 0, "analyst settings must be positive")

	l := c.Logistics
	check(l.UpdateEvery > 0, "logistics update_every must be positive")
	check(l.TransitProbability >= 0 && l.TransitProbability <= 1, "logistics transit_probability must be in [0,1]")
	check(l.MaxCost > l.MinCost && l.MinCost >= 0, "logistics cost range is empty")
	check(l.MaxETA > l.MinETA && l.MinETA >= 0, "logistics eta range is empty")

	check(c.Bootstrap.Stagger.Duration >= 0, "bootstrap stagger must not be negative")

	return result.ErrorOrNil()
}
