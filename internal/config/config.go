// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Provider describes the historical price source the feed should use.
type Provider struct {
	Name                string
	YahooBaseURL        string `yaml:"yahoo_base_url"`
	AlphaVantageBaseURL string `yaml:"alphavantage_base_url"`
	APIKeyEnv           string `yaml:"api_key_env"`
	TimeoutSecs         int    `yaml:"timeout_secs"`
	RefreshIntervalSecs int    `yaml:"refresh_interval_secs"`
}

// Watchlist names the symbols the service tracks and the history window it analyzes.
type Watchlist struct {
	Symbols []string
	Period  string
}

// Indicators groups the tunable indicator parameters.
type Indicators struct {
	SMALengths []int   `yaml:"sma_lengths"`
	BBLength   int     `yaml:"bb_length"`
	BBMult     float64 `yaml:"bb_mult"`
	RSILength  int     `yaml:"rsi_length"`
	MACDFast   int     `yaml:"macd_fast"`
	MACDSlow   int     `yaml:"macd_slow"`
	MACDSignal int     `yaml:"macd_signal"`
}

// WatchParams expresses thresholds consumed by watch rule constructors.
type WatchParams struct {
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
}

// Watch specifies which alert rules are active along with the parameter bundle.
type Watch struct {
	Modes  []string
	Params WatchParams
}

// Cache configures the SQLite bar cache.
type Cache struct {
	Path    string
	TTLSecs int `yaml:"ttl_secs"`
}

// Server holds HTTP API settings.
type Server struct {
	Addr         string
	RateLimitRPM int `yaml:"rate_limit_rpm"`
	MaxAlerts    int `yaml:"max_alerts"`
}

// Report configures where JSONL records land.
type Report struct {
	AlertsPath    string `yaml:"alerts_path"`
	SummariesPath string `yaml:"summaries_path"`
}

// Holding is one configured portfolio position.
type Holding struct {
	Symbol    string
	Qty       float64
	CostBasis float64 `yaml:"cost_basis"`
}

// Portfolio lists holdings marked to market by the analyzer.
type Portfolio struct {
	Holdings []Holding
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Provider   Provider   `yaml:"provider"`
	Watchlist  Watchlist  `yaml:"watchlist"`
	Indicators Indicators `yaml:"indicators"`
	Watch      Watch      `yaml:"watch"`
	Cache      Cache      `yaml:"cache"`
	Server     Server     `yaml:"server"`
	Report     Report     `yaml:"report"`
	Portfolio  Portfolio  `yaml:"portfolio"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
