package querysvc

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed query.
type Kind int

const (
	// KindTransient covers network errors, timeouts, malformed bodies,
	// HTTP error statuses and responses that only carry an errors field.
	KindTransient Kind = iota + 1
	// KindFatalTrust means the TLS peer could not be trusted, usually an
	// intercepting proxy presenting a self-signed certificate.
	KindFatalTrust
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindFatalTrust:
		return "fatal_trust"
	default:
		return "unknown"
	}
}

var (
	// ErrTransient matches any transient Failure via errors.Is.
	ErrTransient = &Failure{Kind: KindTransient}

	// ErrFatalTrust matches any fatal trust Failure via errors.Is.
	ErrFatalTrust = &Failure{Kind: KindFatalTrust}
)

// Failure is returned by Execute when a query produced no usable data.
type Failure struct {
	Kind     Kind
	Op       string
	Attempts int
	Err      error
}

// Error returns the error message.
func (e *Failure) Error() string {
	msg := fmt.Sprintf("%s query failure", e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempt(s)", msg, e.Attempts)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is checks if the error matches target.
func (e *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Unwrap returns the underlying error.
func (e *Failure) Unwrap() error {
	return e.Err
}

// IsFatalTrust checks if an error is a certificate trust failure.
func IsFatalTrust(err error) bool {
	return errors.Is(err, ErrFatalTrust)
}

// IsTransient checks if an error is a transient failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// GraphQLError is a single entry of a response's errors field.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ResponseErrors is returned when the service answered with an errors field
// and no data.
type ResponseErrors []GraphQLError

func (e ResponseErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		msgs = append(msgs, ge.Message)
	}
	return "service returned errors: " + strings.Join(msgs, "; ")
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// trustMarkers are substrings seen in certificate verification errors that
// arrive without a typed x509 error in the chain.
var trustMarkers = []string{
	"self-signed certificate",
	"self signed certificate",
	"certificate signed by unknown authority",
	"unable to get local issuer certificate",
	"certificate is not trusted",
}

// Classify decides whether err is a fatal trust failure or a transient one.
func Classify(err error) Kind {
	if err == nil {
		return 0
	}
	var (
		unknownAuthority x509.UnknownAuthorityError
		invalidCert      x509.CertificateInvalidError
		hostnameErr      x509.HostnameError
		verifyErr        *tls.CertificateVerificationError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownAuthority),
		errors.As(err, &invalidCert),
		errors.As(err, &hostnameErr):
		return KindFatalTrust
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range trustMarkers {
		if strings.Contains(msg, marker) {
			return KindFatalTrust
		}
	}
	return KindTransient
}
