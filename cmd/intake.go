package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/StacySimmons/logging-hosts/internal/config"
	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// prompter asks the operator for missing settings.
type prompter struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func() ([]byte, error)
}

// runIntake prompts for the API key, and the region unless one was given,
// when no key is configured and stdin is a terminal. Without a terminal
// the config is left alone and Validate reports the missing key.
func runIntake(cfg *config.Config, regionSet, endpointSet bool) error {
	if cfg.APIKey != "" || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	p := prompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stderr,
		readSecret: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
	return p.fill(cfg, regionSet, endpointSet)
}

func (p prompter) fill(cfg *config.Config, regionSet, endpointSet bool) error {
	fmt.Fprint(p.out, "API key: ")
	key, err := p.readSecret()
	fmt.Fprintln(p.out) // newline after hidden input
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	cfg.APIKey = strings.TrimSpace(string(key))
	if cfg.APIKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	if regionSet || endpointSet {
		return nil
	}

	fmt.Fprintf(p.out, "Region [%s] (default: %s): ", strings.Join(querysvc.Regions(), "/"), querysvc.DefaultRegion)
	region, _ := p.in.ReadString('\n')
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		region = querysvc.DefaultRegion
	}
	return cfg.SetRegion(region)
}
