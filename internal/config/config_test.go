package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "us", cfg.Region)
	assert.Equal(t, "https://api.newrelic.com/graphql", cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5000, cfg.LogPageSize)
	assert.Equal(t, "table", cfg.Output)
	assert.Error(t, cfg.Validate(), "api key is still missing")
}

func TestLoadRegionAndOverride(t *testing.T) {
	v := viper.New()
	v.Set(KeyRegion, " EU ")
	v.Set(KeyAPIKey, "NRAK-123")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://api.eu.newrelic.com/graphql", cfg.Endpoint)
	require.NoError(t, cfg.Validate())

	v.Set(KeyEndpoint, "http://127.0.0.1:9999/graphql")
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/graphql", cfg.Endpoint)
}

func TestLoadUnknownRegion(t *testing.T) {
	v := viper.New()
	v.Set(KeyRegion, "mars")
	_, err := Load(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.APIKey = "key"
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"bad endpoint":   func(c *Config) { c.Endpoint = "ftp://x" },
		"page too large": func(c *Config) { c.LogPageSize = 10000 },
		"bad output":     func(c *Config) { c.Output = "xml" },
		"missing bundle": func(c *Config) { c.CABundle = filepath.Join(t.TempDir(), "none.pem") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestRedacted(t *testing.T) {
	c := Config{APIKey: "NRAK-ABCDEFGH1234"}
	assert.Equal(t, "********1234", c.Redacted().APIKey)
	assert.Equal(t, "NRAK-ABCDEFGH1234", c.APIKey)
	assert.Equal(t, "********", Config{APIKey: "abc"}.Redacted().APIKey)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.APIKey = "secret"
	want.Region = "eu"
	want.Endpoint = ""
	want.Timeout = 45 * time.Second
	want.Workers = 8
	require.NoError(t, WriteFile(path, want))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.APIKey)
	assert.Equal(t, "https://api.eu.newrelic.com/graphql", got.Endpoint)
	assert.Equal(t, 45*time.Second, got.Timeout)
	assert.Equal(t, 8, got.Workers)
}

func TestWrittenConfigFollowsLaterRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	v := viper.New()
	v.Set(KeyAPIKey, "secret")
	initial, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "https://api.newrelic.com/graphql", initial.Endpoint)
	require.NoError(t, WriteFile(path, initial))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "endpoint:")

	v = viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	v.Set(KeyRegion, "eu")

	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "eu", got.Region)
	assert.Equal(t, "https://api.eu.newrelic.com/graphql", got.Endpoint)
}

func TestWrittenConfigKeepsExplicitEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	v := viper.New()
	v.Set(KeyEndpoint, "https://proxy.internal/graphql")
	initial, err := Load(v)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, initial))

	v = viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	v.Set(KeyRegion, "eu")

	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.internal/graphql", got.Endpoint)
}

func TestSetRegion(t *testing.T) {
	c := Default()
	require.NoError(t, c.SetRegion("EU"))
	assert.Equal(t, "eu", c.Region)
	assert.Equal(t, "https://api.eu.newrelic.com/graphql", c.Endpoint)

	explicit := Config{Endpoint: "http://127.0.0.1:9999/graphql"}
	require.NoError(t, explicit.SetRegion("eu"))
	assert.Equal(t, "http://127.0.0.1:9999/graphql", explicit.Endpoint)

	assert.Error(t, c.SetRegion("mars"))
}
