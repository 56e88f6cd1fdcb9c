package cascade

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// Probe makes a short connect attempt to addr and reports whether a capture
// server is accepting connections there. The diagnostic string folds the
// well-known transport failures into stable messages; anything else is
// reported as a generic socket error. Both the live client's error paths and
// serverctl's status check go through here.
func Probe(addr string, timeout time.Duration) (up bool, diag string) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err == nil {
		_ = conn.Close()
		return true, "connection established"
	}
	return false, probeDiag(addr, err)
}

func probeDiag(addr string, err error) string {
	var ne net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Sprintf("connection refused, check whether the capture server is listening on %s", addr)
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return fmt.Sprintf("no route to host, check whether %s exists and can be reached", addr)
	case errors.Is(err, syscall.ETIMEDOUT), errors.As(err, &ne) && ne.Timeout():
		return fmt.Sprintf("connection timeout, check whether %s is open", addr)
	default:
		return fmt.Sprintf("cannot connect to %s: socket error %v", addr, err)
	}
}

// mapDialError translates a failed data-connection dial into the typed
// connect errors.
func mapDialError(err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	case errors.As(err, &ne) && ne.Timeout():
		return fmt.Errorf("%w: %v", ErrConnectTimeout, err)
	default:
		return fmt.Errorf("connect to capture server: %w", err)
	}
}
