package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/beesafe/broodwatch/internal/corridor"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultSourceType = "demo"
	DefaultMetric     = "hive_brood_temperature_celsius"
	DefaultFormat     = "text"
	DefaultTimeout    = 10 * time.Second
)

// Config is the top-level configuration for broodcheck.
type Config struct {
	Source Source       `yaml:"source"`
	Output OutputConfig `yaml:"output"`

	// Strict rejects series containing NaN or infinite temperatures instead
	// of counting them as drift hours.
	Strict bool `yaml:"strict"`

	Neural NeuralConfig `yaml:"neural"`
	Notify NotifyConfig `yaml:"notify"`
}

// Source describes where brood temperature samples come from.
type Source struct {
	// Type is one of: demo | csv | prometheus.
	Type string `yaml:"type"`

	// Path is a local file: CSV for csv, text exposition for prometheus.
	Path string `yaml:"path"`

	// Endpoint is an http(s) URL serving a Prometheus text exposition.
	// Only used by the prometheus type, and only when Path is empty.
	Endpoint string `yaml:"endpoint"`

	// Metric is the metric family holding brood temperatures.
	Metric string `yaml:"metric"`

	// Labels restricts the prometheus source to series carrying all of
	// these label values.
	Labels map[string]string `yaml:"labels"`

	// Timeout bounds a single HTTP fetch.
	Timeout time.Duration `yaml:"timeout"`

	Auth AuthConfig `yaml:"auth"`
	TLS  TLSConfig  `yaml:"tls"`
}

// AuthConfig specifies how the prometheus source authenticates to Endpoint.
type AuthConfig struct {
	// Mode is one of: apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the key when Mode == "apikey".
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv is the name of the environment variable that holds the bearer token.
	TokenEnv string `yaml:"token_env"`

	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
func (a AuthConfig) Key() string {
	return lookupEnv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	return lookupEnv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	return lookupEnv(a.PasswordEnv)
}

// TLSConfig holds TLS dial options for Endpoint.
type TLSConfig struct {
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// OutputConfig controls how the verdict is reported on stdout.
type OutputConfig struct {
	// Format is one of: text | json | prometheus.
	Format string `yaml:"format"`
}

// NeuralConfig enables the multi-sensor series validation and overrides the
// default neural corridor. Zero fields keep the corridor default.
type NeuralConfig struct {
	Enabled               bool          `yaml:"enabled"`
	MaxHiveInternalC      float64       `yaml:"max_hive_internal_c"`
	MaxBrainTempC         float64       `yaml:"max_brain_temp_c"`
	MaxWBGTC              float64       `yaml:"max_wbgt_c"`
	MaxViolationDuration  time.Duration `yaml:"max_violation_duration"`
	MinCooldownRatePerMin *float64      `yaml:"min_cooldown_rate_c_per_min"`
}

// Corridor returns the effective neural corridor.
func (n NeuralConfig) Corridor() corridor.NeuralCorridor {
	c := corridor.DefaultNeuralCorridor()
	if n.MaxHiveInternalC != 0 {
		c.MaxHiveInternalC = n.MaxHiveInternalC
	}
	if n.MaxBrainTempC != 0 {
		c.MaxBrainTempC = n.MaxBrainTempC
	}
	if n.MaxWBGTC != 0 {
		c.MaxWBGTC = n.MaxWBGTC
	}
	if n.MaxViolationDuration != 0 {
		c.MaxViolationDuration = n.MaxViolationDuration
	}
	// A pointer so an explicit 0 can disable the cooldown check.
	if n.MinCooldownRatePerMin != nil {
		c.MinCooldownRatePerMin = *n.MinCooldownRatePerMin
	}
	return c
}

// NotifyConfig holds webhook targets for verdict delivery.
type NotifyConfig struct {
	// OnHealthy also delivers healthy verdicts. By default only unhealthy
	// verdicts are sent.
	OnHealthy bool            `yaml:"on_healthy"`
	Webhooks  []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	return lookupEnv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given: the
// built-in demonstration source reported as text.
func Default() *Config {
	return &Config{
		Source: Source{
			Type:    DefaultSourceType,
			Metric:  DefaultMetric,
			Timeout: DefaultTimeout,
		},
		Output: OutputConfig{Format: DefaultFormat},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	src := cfg.Source
	switch src.Type {
	case "demo":
	case "csv":
		if src.Path == "" {
			return fmt.Errorf("source.path is required for csv sources")
		}
	case "prometheus":
		if src.Path == "" && src.Endpoint == "" {
			return fmt.Errorf("source: prometheus needs path or endpoint")
		}
		if src.Path != "" && src.Endpoint != "" {
			return fmt.Errorf("source: set only one of path and endpoint")
		}
		if src.Metric == "" {
			return fmt.Errorf("source.metric must not be empty")
		}
	default:
		return fmt.Errorf("source: unknown type %q", src.Type)
	}
	if src.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive")
	}

	switch src.Auth.Mode {
	case "apikey":
		if src.Auth.Header == "" {
			return fmt.Errorf("source.auth.header is required for apikey mode")
		}
	case "bearer", "basic", "none", "":
	default:
		return fmt.Errorf("source: unknown auth mode %q", src.Auth.Mode)
	}

	switch cfg.Output.Format {
	case "text", "json", "prometheus":
	default:
		return fmt.Errorf("output: unknown format %q", cfg.Output.Format)
	}

	if cfg.Neural.Enabled && src.Type != "csv" {
		return fmt.Errorf("neural: series validation needs a csv source, got %q", src.Type)
	}
	if n := cfg.Neural; n.MaxViolationDuration < 0 {
		return fmt.Errorf("neural.max_violation_duration must not be negative")
	}

	for i, wh := range cfg.Notify.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("notify.webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("notify.webhooks[%d]: url_env is required", i)
		}
	}
	return nil
}

func lookupEnv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
