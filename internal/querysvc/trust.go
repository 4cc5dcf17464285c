package querysvc

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TrustGuidance is printed when a query fails certificate verification.
const TrustGuidance = `The query service certificate could not be verified. This usually means
traffic passes through a proxy that presents a self-signed or internal
certificate.

Options:
  --ca-bundle <file>       Trust the PEM bundle of your proxy's CA in addition
                           to the system roots (recommended).
  --insecure-skip-verify   Disable certificate verification entirely.
                           CAUTION: this removes protection against traffic
                           interception, including theft of your API key.`

// TLSOptions selects how the server certificate is verified.
type TLSOptions struct {
	CABundle           string
	InsecureSkipVerify bool
}

// TLSConfig builds a tls.Config for opts. It returns nil when the defaults
// apply.
func TLSConfig(opts TLSOptions) (*tls.Config, error) {
	if opts.CABundle == "" && !opts.InsecureSkipVerify {
		return nil, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if opts.CABundle != "" {
		pem, err := os.ReadFile(opts.CABundle)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle %q: %w", opts.CABundle, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("CA bundle contains no PEM certificates")
		}
		cfg.RootCAs = pool
	}

	if opts.InsecureSkipVerify {
		cfg.InsecureSkipVerify = true
	}

	return cfg, nil
}
