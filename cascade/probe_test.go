package cascade

import (
	"errors"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestProbeUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	up, diag := Probe(ln.Addr().String(), time.Second)
	if !up {
		t.Fatalf("probe down: %s", diag)
	}
}

func TestProbeRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	up, diag := Probe(addr, time.Second)
	if up {
		t.Fatalf("probe reports a closed port as up")
	}
	if !strings.Contains(diag, "connection refused") {
		t.Errorf("diagnostic %q does not mention the refusal", diag)
	}
}

func TestMapDialError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ErrConnectionRefused},
		{"host unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, ErrUnreachable},
		{"network unreachable", &net.OpError{Op: "dial", Err: syscall.ENETUNREACH}, ErrUnreachable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapDialError(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
