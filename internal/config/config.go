package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// Viper keys, shared with the command line flags
const (
	KeyAPIKey             = "api-key"
	KeyRegion             = "region"
	KeyEndpoint           = "endpoint"
	KeyTimeout            = "timeout"
	KeyWorkers            = "workers"
	KeyLogPageSize        = "log-page-size"
	KeyCABundle           = "ca-bundle"
	KeyInsecureSkipVerify = "insecure-skip-verify"
	KeyOutput             = "output"
	KeyOutputFile         = "output-file"
	KeyMetricsFile        = "metrics-file"
	KeyLogLevel           = "log-level"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultWorkers     = 4
	defaultLogPageSize = 5000
	maxLogPageSize     = 5000
	defaultOutput      = "table"
)

// Config holds the application configuration
type Config struct {
	APIKey             string        `yaml:"api-key,omitempty"`
	Region             string        `yaml:"region"`
	Endpoint           string        `yaml:"endpoint,omitempty"`
	Timeout            time.Duration `yaml:"timeout"`
	Workers            int           `yaml:"workers"`
	LogPageSize        int           `yaml:"log-page-size"`
	CABundle           string        `yaml:"ca-bundle,omitempty"`
	InsecureSkipVerify bool          `yaml:"insecure-skip-verify"`
	Output             string        `yaml:"output"`
	OutputFile         string        `yaml:"output-file,omitempty"`
	MetricsFile        string        `yaml:"metrics-file,omitempty"`
	LogLevel           string        `yaml:"log-level"`

	// endpointFromRegion is set when Endpoint was derived from Region
	// rather than configured.
	endpointFromRegion bool
}

// Load reads the configuration from v and fills in defaults. The endpoint
// is resolved from the region unless set explicitly.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		APIKey:             strings.TrimSpace(v.GetString(KeyAPIKey)),
		Region:             strings.ToLower(strings.TrimSpace(v.GetString(KeyRegion))),
		Endpoint:           strings.TrimSpace(v.GetString(KeyEndpoint)),
		Timeout:            v.GetDuration(KeyTimeout),
		Workers:            v.GetInt(KeyWorkers),
		LogPageSize:        v.GetInt(KeyLogPageSize),
		CABundle:           v.GetString(KeyCABundle),
		InsecureSkipVerify: v.GetBool(KeyInsecureSkipVerify),
		Output:             v.GetString(KeyOutput),
		OutputFile:         v.GetString(KeyOutputFile),
		MetricsFile:        v.GetString(KeyMetricsFile),
		LogLevel:           v.GetString(KeyLogLevel),
	}
	cfg.setDefaults()

	if err := cfg.ResolveEndpoint(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Region == "" {
		c.Region = querysvc.DefaultRegion
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.LogPageSize <= 0 {
		c.LogPageSize = defaultLogPageSize
	}
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ResolveEndpoint sets Endpoint from Region when no explicit endpoint is
// configured.
func (c *Config) ResolveEndpoint() error {
	if c.Endpoint != "" {
		return nil
	}
	endpoint, err := querysvc.Endpoint(c.Region)
	if err != nil {
		return err
	}
	c.Endpoint = endpoint
	c.endpointFromRegion = true
	return nil
}

// SetRegion switches the region and, unless an endpoint was configured
// explicitly, the endpoint that follows from it.
func (c *Config) SetRegion(region string) error {
	endpoint, err := querysvc.Endpoint(region)
	if err != nil {
		return err
	}
	c.Region = strings.ToLower(strings.TrimSpace(region))
	if c.Endpoint == "" || c.endpointFromRegion {
		c.Endpoint = endpoint
		c.endpointFromRegion = true
	}
	return nil
}

// persisted is the form written to disk: an endpoint derived from the
// region is left out so a later region change still selects the endpoint.
func (c Config) persisted() Config {
	if c.endpointFromRegion {
		c.Endpoint = ""
	}
	return c
}

// Validate checks a loaded configuration before the engine starts
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("api-key is required (flag --api-key, env LOGGING_HOSTS_API_KEY or config file)")
	}
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if !strings.HasPrefix(c.Endpoint, "https://") && !strings.HasPrefix(c.Endpoint, "http://") {
		return fmt.Errorf("endpoint %q must be an http(s) URL", c.Endpoint)
	}
	if c.LogPageSize > maxLogPageSize {
		return fmt.Errorf("log-page-size must be <= %d, got %d", maxLogPageSize, c.LogPageSize)
	}
	if c.CABundle != "" {
		if _, err := os.Stat(c.CABundle); err != nil {
			return fmt.Errorf("ca-bundle %q is invalid: %w", c.CABundle, err)
		}
	}
	switch strings.ToLower(c.Output) {
	case "table", "json", "yaml", "yml", "csv":
	default:
		return fmt.Errorf("output must be one of [table, json, yaml, csv], got %q", c.Output)
	}
	return nil
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		keep := 4
		if len(c.APIKey) <= keep {
			keep = 0
		}
		c.APIKey = strings.Repeat("*", 8) + c.APIKey[len(c.APIKey)-keep:]
	}
	return c
}

// Default returns the configuration written by "config init"
func Default() Config {
	c := Config{}
	c.setDefaults()
	_ = c.ResolveEndpoint()
	return c
}

// Marshal renders c as YAML
func Marshal(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes c to path, creating the directory if needed. The file
// may contain the API key so it is only readable by the owner.
func WriteFile(path string, c Config) error {
	data, err := Marshal(c.persisted())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "logging-hosts", "config.yaml")
}
