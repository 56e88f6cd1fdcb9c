package cascade

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Capture index file layout, little-endian throughout. The header is the
// recorder's Info struct, each record its BuffIdx struct (packed, no
// padding). The master index file is authoritative for the whole cascade.
const (
	indexHeaderSize = 24 // tag, version, flags, numIdx (u32) + dataFileSize (u64)
	indexRecordSize = 48 // tag, version (u16), flags (u32), width, height (u16),
	//                      meta[4] (u32), size (u32), timestamp (u64), offset (u64)
	recordTimestampOff = 32
)

// CaptureIndex holds the decoded contents of one master_XXXX_idx.bin file.
type CaptureIndex struct {
	CaptureID  int
	FrameCount uint32
	DataBytes  uint64 // total bytes written into the matching data file

	// Timestamps holds one entry per frame. The file stores relative
	// nanoseconds; they are converted to absolute times by adding them to
	// the wall clock at parse time, exactly as the recorder's own tooling
	// does. There is no recording epoch in the file, so these drift with
	// parse time rather than tracking true capture time.
	Timestamps []time.Time
}

// indexPath returns the master index file path for a capture id.
func indexPath(workdir string, captureID int) string {
	return filepath.Join(workdir, fmt.Sprintf("%s_%04d_idx.bin", RoleMaster, captureID))
}

// dataPath returns a device's data file path for a capture id.
func dataPath(workdir, role string, captureID int) string {
	return filepath.Join(workdir, fmt.Sprintf("%s_%04d_data.bin", role, captureID))
}

// ParseIndex decodes the master index file for one capture: the fixed
// 24-byte header followed by FrameCount fixed-size per-frame records.
// A missing file is ErrIndexNotFound; a file shorter than the declared
// frame count requires is ErrInvalidIndex.
func ParseIndex(workdir string, captureID int) (*CaptureIndex, error) {
	if captureID < 0 {
		return nil, fmt.Errorf("invalid capture id %d", captureID)
	}

	path := indexPath(workdir, captureID)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("read capture index: %w", err)
	}
	if len(raw) < indexHeaderSize {
		return nil, fmt.Errorf("%w: %s has %d bytes, header needs %d",
			ErrInvalidIndex, path, len(raw), indexHeaderSize)
	}

	frameCount := binary.LittleEndian.Uint32(raw[12:16])
	dataBytes := binary.LittleEndian.Uint64(raw[16:24])

	need := indexHeaderSize + int(frameCount)*indexRecordSize
	if len(raw) < need {
		return nil, fmt.Errorf("%w: %s has %d bytes, %d frames need %d",
			ErrInvalidIndex, path, len(raw), frameCount, need)
	}

	now := time.Now()
	timestamps := make([]time.Time, frameCount)
	for i := range timestamps {
		rec := indexHeaderSize + i*indexRecordSize
		ns := binary.LittleEndian.Uint64(raw[rec+recordTimestampOff : rec+recordTimestampOff+8])
		timestamps[i] = now.Add(time.Duration(ns))
	}

	return &CaptureIndex{
		CaptureID:  captureID,
		FrameCount: frameCount,
		DataBytes:  dataBytes,
		Timestamps: timestamps,
	}, nil
}
