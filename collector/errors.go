package collector

import (
	"errors"
	"net"
	"strings"
)

// ErrorKind classifies a fatal collection failure.
type ErrorKind int

const (
	// ConnectionError - the instance was unreachable or timed out.
	ConnectionError ErrorKind = iota
	// AuthError - the credential was rejected (or required but missing).
	AuthError
	// ProtocolError - the reply could not be read in the expected format.
	ProtocolError
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionError:
		return "connection error"
	case AuthError:
		return "auth error"
	case ProtocolError:
		return "protocol error"
	}
	return "unknown error"
}

// CollectError is the failure indicator of one collection call. Per-key
// coercion failures are not CollectErrors; they end up in Result.Skipped.
type CollectError struct {
	Kind ErrorKind
	Err  error
}

func (e *CollectError) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *CollectError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a CollectError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CollectError
	return errors.As(err, &ce) && ce.Kind == kind
}

// classifyCmdErr decides the error kind for a failed command on an already
// established connection.
func classifyCmdErr(err error) ErrorKind {
	var ne net.Error
	if errors.As(err, &ne) {
		return ConnectionError
	}
	if isAuthReply(err) {
		return AuthError
	}
	return ProtocolError
}

// isAuthReply matches the server replies Redis sends for credential
// problems, across the versions the plugin supports.
func isAuthReply(err error) bool {
	msg := err.Error()
	for _, frag := range []string{
		"NOAUTH",
		"WRONGPASS",
		"invalid password",
		"Client sent AUTH",
	} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
