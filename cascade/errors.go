package cascade

import "errors"

// Discovery failures.
var (
	ErrMissingFiles  = errors.New("no recording files found")
	ErrCountMismatch = errors.New("data/index file count mismatch")
)

// Capture index failures.
var (
	ErrIndexNotFound = errors.New("capture index file not found")
	ErrInvalidIndex  = errors.New("capture index file truncated")
)

// Frame decode failures.
var (
	ErrFrameOutOfRange = errors.New("frame index out of range")
	ErrShortRead       = errors.New("short read from device data file")
	ErrDeviceMismatch  = errors.New("device sample blocks differ in length")
)

// Live connection failures.
var (
	ErrConnectTimeout    = errors.New("timeout connecting to capture server")
	ErrConnectionRefused = errors.New("capture server refused connection")
	ErrUnreachable       = errors.New("capture server unreachable")
	ErrHandshakeRejected = errors.New("capture server rejected handshake")
	ErrTruncatedFrame    = errors.New("frame truncated mid-stream")
	ErrConnectionLost    = errors.New("connection to capture server lost")
)

// ErrNoData reports a clean end of stream on the live path: the server is
// still reachable but has no frame to deliver. Callers should treat it the
// way they treat io.EOF, not as a failure.
var ErrNoData = errors.New("no frame data available")
