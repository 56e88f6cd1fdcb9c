package serverctl

import (
	"strings"
	"testing"
	"time"
)

func TestStartCommand(t *testing.T) {
	cmd, err := startCommand("tcp", 18888)
	if err != nil {
		t.Fatalf("startCommand failed: %v", err)
	}
	want := `/mnt/ssd/ReadFileArmv3 -t server -trans tcp -host "0.0.0.0" -port 18888 &`
	if cmd != want {
		t.Fatalf("got %q, want %q", cmd, want)
	}
}

func TestStartCommandRejects(t *testing.T) {
	cases := []struct {
		name      string
		transport string
		port      int
	}{
		{"udp transport", "udp", 18888},
		{"unknown transport", "serial", 18888},
		{"zero port", "tcp", 0},
		{"port too large", "tcp", 70000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := startCommand(tc.transport, tc.port); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestStopCommand(t *testing.T) {
	cmd := stopCommand(18888)
	if !strings.Contains(cmd, "kill") || !strings.Contains(cmd, ":18888") {
		t.Fatalf("stop command %q does not target the listener", cmd)
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New(Config{Host: "10.0.0.2"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.cfg.User != "root" || c.cfg.Port != 22 || c.cfg.Timeout != 5*time.Second {
		t.Fatalf("defaults not applied: %+v", c.cfg)
	}
}

func TestNewRequiresHost(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for missing host")
	}
}
