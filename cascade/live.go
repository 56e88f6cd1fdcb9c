package cascade

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// Live protocol constants. The capture server (ReadFileArmv3 in server mode)
// speaks a minimal request/response protocol over one TCP stream: a
// comma-separated ASCII configuration record answered by a single ack byte,
// then one query byte per frame answered by a fixed-length binary response.
const (
	liveAckByte   = 'y'
	liveQueryByte = 'n'

	// liveHeaderSize bytes of opaque prefix lead every frame response.
	liveHeaderSize = 32

	// Fixed handshake fields: the server starts at frame 1 and the buffer
	// hint matches the reference client.
	liveInitialFrame = 1
	liveBufferHint   = 1000

	defaultLivePort       = 18888
	defaultConnectTimeout = 5 * time.Second
	defaultQueryTimeout   = 2 * time.Second
)

// LiveConfig carries the parameters for one live acquisition. TXEnabled and
// RXEnabled are the per-chip channel counts enabled for this capture; they
// play the role the tx/rx layout counts play on the offline path.
type LiveConfig struct {
	Host      string
	Port      int    // 0 means the default capture server port
	ServerDir string // capture directory on the server, sent in the handshake

	SamplesPerChirp int
	LoopsPerFrame   int
	TXEnabled       int
	RXEnabled       int
	Devices         int // 0 means the full 4-chip cascade

	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

func (cfg LiveConfig) withDefaults() LiveConfig {
	if cfg.Port == 0 {
		cfg.Port = defaultLivePort
	}
	if cfg.Devices == 0 {
		cfg.Devices = 4
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	return cfg
}

func (cfg LiveConfig) validate() error {
	if cfg.Host == "" {
		return errors.New("host is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.SamplesPerChirp <= 0 || cfg.LoopsPerFrame <= 0 ||
		cfg.TXEnabled <= 0 || cfg.RXEnabled <= 0 {
		return errors.New("samples, loops, tx and rx must all be positive")
	}
	if cfg.RXEnabled != 4 {
		return fmt.Errorf("channel remap requires 4 rx channels per chip, got %d", cfg.RXEnabled)
	}
	if cfg.Devices != len(Roles) {
		return fmt.Errorf("cascade layout requires %d devices, got %d", len(Roles), cfg.Devices)
	}
	return nil
}

// LiveClient streams frames from a running capture server and applies the
// same decode/remap transform as the offline Reader. It owns exactly one
// connection, held on the struct and dialed lazily on first use; Reconnect
// tears it down and re-handshakes explicitly. The protocol is strictly
// request/response, so a LiveClient must not be shared between goroutines.
// The client never retries on its own.
type LiveClient struct {
	cfg      LiveConfig
	addr     string
	expected int // header plus full frame payload, in bytes

	conn net.Conn
}

// NewLiveClient validates the configuration and probes the server once,
// failing fast with the probe diagnostic when it is not reachable. No data
// connection is opened yet.
func NewLiveClient(cfg LiveConfig) (*LiveClient, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("live config: %w", err)
	}

	c := &LiveClient{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	// One loop carries TXEnabled*Devices chirps; every chip's RXEnabled
	// channels hear all of them as 2-byte I and Q words.
	payload := cfg.SamplesPerChirp * c.txVirtual() * cfg.LoopsPerFrame *
		cfg.RXEnabled * 2 * 2 * cfg.Devices
	c.expected = liveHeaderSize + payload

	if up, diag := Probe(c.addr, cfg.ConnectTimeout); !up {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, diag)
	}
	return c, nil
}

// txVirtual is the number of chirps transmitted in one loop across the
// whole cascade.
func (c *LiveClient) txVirtual() int { return c.cfg.TXEnabled * c.cfg.Devices }

// ExpectedFrameBytes reports the exact on-wire size of one frame response.
func (c *LiveClient) ExpectedFrameBytes() int { return c.expected }

// setConn injects a connection, bypassing dial and handshake. Test hook.
func (c *LiveClient) setConn(conn net.Conn) { c.conn = conn }

// Close tears down the connection if one is open.
func (c *LiveClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Reconnect drops any open connection and performs a fresh dial and
// handshake. Call it after changing the acquisition configuration; the
// client never reconnects on its own.
func (c *LiveClient) Reconnect() error {
	_ = c.Close()
	return c.ensureConn()
}

// ensureConn dials and handshakes on first use.
func (c *LiveClient) ensureConn() error {
	if c.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", c.addr, c.cfg.ConnectTimeout)
	if err != nil {
		return mapDialError(err)
	}
	// Room for a few frames in the kernel buffers keeps the server from
	// stalling between queries. Non-TCP conns (tests) skip this.
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetReadBuffer(c.expected * 3)
		_ = tcp.SetWriteBuffer(c.expected)
	}
	c.conn = conn

	if err := c.handshake(); err != nil {
		_ = c.Close()
		return err
	}
	return nil
}

// handshake sends the configuration record and checks the single ack byte.
func (c *LiveClient) handshake() error {
	msg := fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d",
		c.cfg.ServerDir, liveInitialFrame, c.cfg.SamplesPerChirp,
		c.txVirtual(), c.cfg.LoopsPerFrame, c.cfg.RXEnabled, liveBufferHint)

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.ConnectTimeout))
	if _, err := c.conn.Write([]byte(msg)); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ConnectTimeout))
	var ack [1]byte
	if _, err := io.ReadFull(c.conn, ack[:]); err != nil {
		return fmt.Errorf("read handshake ack: %w", err)
	}
	if ack[0] != liveAckByte {
		return fmt.Errorf("%w: ack byte %q", ErrHandshakeRejected, ack[0])
	}
	return nil
}

// NextFrame requests one frame and blocks until it is fully received,
// decoded and remapped, or until the query timeout decides otherwise:
//
//   - peer closed the stream, server still reachable -> ErrNoData
//   - timeout with nothing buffered, server reachable -> ErrNoData
//   - timeout with a partial frame, server reachable -> ErrTruncatedFrame
//     (client and server disagree about the frame size)
//   - server unreachable -> ErrConnectionLost with the probe diagnostic
//
// ErrNoData is a clean end-of-stream signal, not a failure. On
// ErrTruncatedFrame and ErrConnectionLost the connection is torn down.
func (c *LiveClient) NextFrame() (*Cube, error) {
	if err := c.ensureConn(); err != nil {
		return nil, err
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.QueryTimeout))
	if _, err := c.conn.Write([]byte{liveQueryByte}); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w: send query: %v", ErrConnectionLost, err)
	}

	buf := make([]byte, 0, c.expected)
	chunk := make([]byte, c.expected)
	for len(buf) < c.expected {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.QueryTimeout))
		n, err := c.conn.Read(chunk[:c.expected-len(buf)])
		buf = append(buf, chunk[:n]...)
		if err == nil {
			continue
		}

		if errors.Is(err, io.EOF) {
			if up, diag := Probe(c.addr, c.cfg.QueryTimeout); !up {
				_ = c.Close()
				return nil, fmt.Errorf("%w: %s", ErrConnectionLost, diag)
			}
			return nil, ErrNoData
		}

		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			up, diag := Probe(c.addr, c.cfg.QueryTimeout)
			switch {
			case up && len(buf) == 0:
				return nil, ErrNoData
			case up:
				_ = c.Close()
				return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedFrame, len(buf), c.expected)
			default:
				_ = c.Close()
				return nil, fmt.Errorf("%w: %s", ErrConnectionLost, diag)
			}
		}

		_ = c.Close()
		return nil, fmt.Errorf("%w: read frame: %v", ErrConnectionLost, err)
	}

	return c.decodeFrame(buf)
}

// decodeFrame strips the opaque header, pairs the I/Q stream, splits it into
// the four per-device segments and assembles the cube exactly like the
// offline path.
func (c *LiveClient) decodeFrame(raw []byte) (*Cube, error) {
	samples, err := decodeIQ(raw[liveHeaderSize:])
	if err != nil {
		return nil, err
	}
	if len(samples)%c.cfg.Devices != 0 {
		return nil, fmt.Errorf("%w: %d samples across %d devices", ErrDeviceMismatch, len(samples), c.cfg.Devices)
	}

	per := len(samples) / c.cfg.Devices
	var blocks [4][]complex64
	for i := range blocks {
		blocks[i] = samples[i*per : (i+1)*per]
	}
	return assemble(blocks, c.cfg.SamplesPerChirp, c.cfg.LoopsPerFrame, c.cfg.RXEnabled, c.txVirtual())
}
