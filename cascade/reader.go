package cascade

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/thinszx/radartools/config"
)

// Reader decodes recorded cascade captures from a work directory holding the
// per-device file pairs written by the TDA2 capture card:
//
//	master_XXXX_data.bin  master_XXXX_idx.bin
//	slave1_XXXX_data.bin  slave1_XXXX_idx.bin
//	...
//
// The recording sets and the index cache are plain snapshot state on the
// struct; SetWorkdir rebuilds the former and drops the latter. Reader is not
// safe for concurrent use.
type Reader struct {
	workdir    string
	params     config.Params
	recordings map[string]RecordingSet

	// cached holds the most recently parsed capture index. Exactly one
	// entry; any request for a different capture id replaces it.
	cached *CaptureIndex
}

// NewReader validates params and discovers the recordings of all four device
// roles under workdir. A missing or mismatched role is fatal.
func NewReader(workdir string, params config.Params) (*Reader, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("capture params: %w", err)
	}
	r := &Reader{params: params}
	if err := r.SetWorkdir(workdir); err != nil {
		return nil, err
	}
	return r, nil
}

// SetWorkdir points the reader at a different capture directory. Discovery
// is re-run from scratch for every role and the index cache is invalidated.
func (r *Reader) SetWorkdir(workdir string) error {
	recordings := make(map[string]RecordingSet, len(Roles))
	for _, role := range Roles {
		rs, err := Discover(workdir, role)
		if err != nil {
			return err
		}
		recordings[role] = rs
	}
	r.workdir = workdir
	r.recordings = recordings
	r.cached = nil
	return nil
}

// Recordings returns the discovered recording set for a device role.
func (r *Reader) Recordings(role string) (RecordingSet, bool) {
	rs, ok := r.recordings[role]
	return rs, ok
}

// CaptureInfo returns the parsed master index for a capture id, reading the
// file only when the id differs from the previous request.
func (r *Reader) CaptureInfo(captureID int) (*CaptureIndex, error) {
	if r.cached != nil && r.cached.CaptureID == captureID {
		return r.cached, nil
	}
	idx, err := ParseIndex(r.workdir, captureID)
	if err != nil {
		return nil, err
	}
	r.cached = idx
	return idx, nil
}

// ReadFrame decodes one frame of one capture into the unified radar cube.
// The frame is located by byte offset in all four device data files, read as
// interleaved little-endian int16 I/Q, reshaped per device and remapped into
// the 16-channel cascade layout.
func (r *Reader) ReadFrame(captureID, frameIdx int) (*Cube, error) {
	info, err := r.CaptureInfo(captureID)
	if err != nil {
		return nil, err
	}
	if frameIdx < 0 || frameIdx >= int(info.FrameCount) {
		return nil, fmt.Errorf("%w: frame %d of capture %d, valid range 0-%d",
			ErrFrameOutOfRange, frameIdx, captureID, int(info.FrameCount)-1)
	}

	p := r.params
	// Count of 16-bit words per frame per device: I/Q pairs for every
	// (sample, loop, rx, chirp) cell, where one loop carries tx*devices
	// chirps and every chip's rx channels hear all of them.
	items := 2 * p.SamplesPerChirp * p.LoopsPerFrame * p.RX * p.TX * p.Devices
	offset := int64(frameIdx) * int64(items) * 2

	var blocks [4][]complex64
	for i, role := range Roles {
		raw, err := readAt(dataPath(r.workdir, role, captureID), offset, items*2)
		if err != nil {
			return nil, fmt.Errorf("%s frame %d: %w", role, frameIdx, err)
		}
		if blocks[i], err = decodeIQ(raw); err != nil {
			return nil, fmt.Errorf("%s frame %d: %w", role, frameIdx, err)
		}
	}

	return assemble(blocks, p.SamplesPerChirp, p.LoopsPerFrame, p.RX, p.TX*p.Devices)
}

// readAt reads exactly n bytes from path starting at offset. Fewer available
// bytes than requested is ErrShortRead.
func readAt(path string, offset int64, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	got, err := f.ReadAt(buf, offset)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: want %d bytes at offset %d, got %d", ErrShortRead, n, offset, got)
		}
		return nil, err
	}
	return buf, nil
}
