package collector

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultTimeout bounds connect, read and write when the spec doesn't set
// its own timeout.
const DefaultTimeout = 10 * time.Second

// ConnectionSpec describes the one Redis instance a Collect call talks to.
// It is immutable per invocation; the host agent owns where the values come
// from (its config file, discovery, ...).
type ConnectionSpec struct {
	Host string `validate:"required"`
	Port int    `validate:"min=1,max=65535"`
	DB   int    `validate:"min=0,max=15"`

	// User is only set for ACL-style AUTH (Redis 6+); Password alone does
	// legacy AUTH.
	User     string
	Password string

	Timeout time.Duration `validate:"min=0"`

	UseTLS              bool
	ClientCertFile      string
	ClientKeyFile       string
	CaCertFile          string
	SkipTLSVerification bool
}

var validate = validator.New()

// Validate enforces the same constraints the original plugin's config
// validator did.
func (s ConnectionSpec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid connection spec: %w", err)
	}
	if (s.ClientCertFile != "") != (s.ClientKeyFile != "") {
		return fmt.Errorf("invalid connection spec: TLS client key file and cert file should both be present")
	}
	return nil
}

func (s ConnectionSpec) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s ConnectionSpec) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}
