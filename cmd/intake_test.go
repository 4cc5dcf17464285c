package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StacySimmons/logging-hosts/internal/config"
)

func testPrompter(secret, input string) prompter {
	return prompter{
		in:  bufio.NewReader(strings.NewReader(input)),
		out: &bytes.Buffer{},
		readSecret: func() ([]byte, error) {
			return []byte(secret), nil
		},
	}
}

func TestPrompterFillsKeyAndRegion(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, testPrompter(" NRAK-123 ", "EU\n").fill(&cfg, false, false))

	assert.Equal(t, "NRAK-123", cfg.APIKey)
	assert.Equal(t, "eu", cfg.Region)
	assert.Equal(t, "https://api.eu.newrelic.com/graphql", cfg.Endpoint)
}

func TestPrompterDefaultRegion(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, testPrompter("key", "\n").fill(&cfg, false, false))
	assert.Equal(t, "us", cfg.Region)
	assert.Equal(t, "https://api.newrelic.com/graphql", cfg.Endpoint)
}

func TestPrompterKeepsExplicitRegion(t *testing.T) {
	cfg := config.Default()
	cfg.Region = "eu"
	cfg.Endpoint = "https://api.eu.newrelic.com/graphql"

	require.NoError(t, testPrompter("key", "us\n").fill(&cfg, true, false))
	assert.Equal(t, "eu", cfg.Region)
	assert.Equal(t, "https://api.eu.newrelic.com/graphql", cfg.Endpoint)
}

func TestPrompterRejectsEmptyKey(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, testPrompter("   ", "").fill(&cfg, false, false))
}

func TestPrompterRejectsUnknownRegion(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, testPrompter("key", "mars\n").fill(&cfg, false, false))
}

func TestPrompterReadError(t *testing.T) {
	cfg := config.Default()
	p := testPrompter("", "")
	p.readSecret = func() ([]byte, error) { return nil, errors.New("not a terminal") }
	assert.Error(t, p.fill(&cfg, false, false))
}
