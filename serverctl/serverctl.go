// Package serverctl starts and stops the capture server process on the TDA2
// board over SSH. It controls lifecycle only; frame data always flows over
// the separate stream handled by cascade.LiveClient.
package serverctl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/thinszx/radartools/cascade"
)

// serverBinary is the capture server executable shipped on the board's SSD.
const serverBinary = "/mnt/ssd/ReadFileArmv3"

// Config describes the SSH endpoint of the board.
type Config struct {
	Host     string
	Port     int // ssh port, 0 means 22
	User     string
	Password string
	KeyPath  string
	Timeout  time.Duration
}

// Controller holds one lazily-dialed SSH connection to the board.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	client *ssh.Client
}

// New validates the configuration and prepares a controller. The SSH
// connection is not opened until the first command.
func New(cfg Config) (*Controller, error) {
	if cfg.Host == "" {
		return nil, errors.New("ssh host is required")
	}
	if cfg.User == "" {
		cfg.User = "root"
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Controller{cfg: cfg}, nil
}

// Close shuts down the SSH connection if one is open.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *Controller) dial(ctx context.Context) (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	auth := []ssh.AuthMethod{}
	if c.cfg.Password != "" {
		auth = append(auth, ssh.Password(c.cfg.Password))
	}
	if c.cfg.KeyPath != "" {
		key, err := os.ReadFile(c.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if len(auth) == 0 {
		// The board images ship with a blank root password.
		auth = append(auth, ssh.Password(""))
	}

	config := &ssh.ClientConfig{
		User:            c.cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.Timeout,
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial ssh: %w", err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		return nil, fmt.Errorf("create ssh client: %w", err)
	}

	c.client = ssh.NewClient(clientConn, chans, reqs)
	return c.client, nil
}

// Run executes one command on the board and returns its combined output.
func (c *Controller) Run(ctx context.Context, cmd string) (string, error) {
	client, err := c.dial(ctx)
	if err != nil {
		return "", err
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("create ssh session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(cmd)
	if err != nil {
		return string(out), fmt.Errorf("run %q: %w", cmd, err)
	}
	return string(out), nil
}

// Start launches the capture server in the background and gives it a moment
// to come up. Only the tcp transport is supported.
func (c *Controller) Start(ctx context.Context, transport string, port int, wait time.Duration) error {
	cmd, err := startCommand(transport, port)
	if err != nil {
		return err
	}
	if _, err := c.Run(ctx, cmd); err != nil {
		return err
	}
	if wait > 0 {
		time.Sleep(wait)
	}
	return nil
}

// Stop kills the capture server listening on port, if any.
func (c *Controller) Stop(ctx context.Context, port int, wait time.Duration) error {
	if up, _ := c.Status(port); !up {
		return nil
	}
	if _, err := c.Run(ctx, stopCommand(port)); err != nil {
		return err
	}
	if wait > 0 {
		time.Sleep(wait)
	}
	return nil
}

// Status probes the capture server's data port directly.
func (c *Controller) Status(port int) (bool, string) {
	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(port))
	return cascade.Probe(addr, c.cfg.Timeout)
}

// startCommand builds the server launch command line; the server binds all
// interfaces and runs until killed.
func startCommand(transport string, port int) (string, error) {
	switch strings.ToLower(transport) {
	case "tcp":
	case "udp":
		return "", errors.New("udp transport is not supported by the capture server build")
	default:
		return "", fmt.Errorf("unknown transport %q", transport)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	return fmt.Sprintf(`%s -t server -trans tcp -host "0.0.0.0" -port %d &`, serverBinary, port), nil
}

// stopCommand kills whatever process owns the listener on port.
func stopCommand(port int) string {
	return fmt.Sprintf(`kill $(netstat -nlp | grep :%d | awk '{print $7}' | cut -d'/' -f1)`, port)
}
