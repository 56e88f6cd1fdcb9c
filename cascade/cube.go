// Package cascade ingests raw ADC captures from a 4-chip cascaded mmWave
// front-end (one master + three slaves sharing a synchronized capture) and
// reassembles them into the canonical radar cube consumed by downstream
// virtual-array and beamforming stages. Two acquisition paths exist: Reader
// decodes recorded *_data.bin/*_idx.bin file pairs, LiveClient streams the
// same logical data from a remote capture server. Both produce bit-identical
// cube layouts.
package cascade

import (
	"encoding/binary"
	"fmt"
)

// Device roles of the four cascaded chips, in capture order.
const (
	RoleMaster = "master"
	RoleSlave1 = "slave1"
	RoleSlave2 = "slave2"
	RoleSlave3 = "slave3"
)

// Roles lists the device roles in capture order (device 1 through 4).
var Roles = [4]string{RoleMaster, RoleSlave1, RoleSlave2, RoleSlave3}

// deviceChannelBase maps a device index (0=master .. 3=slave3) to the first
// physical RX channel its four antennas occupy in the unified cube. The order
// is fixed by the wiring of the 4-chip EVM (TI_Cascade_RX_ID):
// slave3 -> 0-3, master -> 4-7, slave2 -> 8-11, slave1 -> 12-15.
var deviceChannelBase = [4]int{4, 12, 8, 0}

// Cube is the unified complex sample tensor for one frame, indexed by
// (fast-time sample, loop, physical RX channel, virtual TX index). Channels
// follow the cascade remap convention above; the TX axis is ordered by
// device-interleaved chirp sequence within one loop.
type Cube struct {
	Samples  int // ADC samples per chirp
	Loops    int // TX cycles per frame
	Channels int // physical RX channels (RX per chip x chips)
	TxCount  int // virtual TX antennas (TX per chip x chips)

	// Data holds the samples with the TX index fastest, then channel,
	// then loop, then sample.
	Data []complex64
}

// NewCube allocates a zero-valued cube with the given axis lengths.
func NewCube(samples, loops, channels, txCount int) *Cube {
	return &Cube{
		Samples:  samples,
		Loops:    loops,
		Channels: channels,
		TxCount:  txCount,
		Data:     make([]complex64, samples*loops*channels*txCount),
	}
}

// Dims returns the axis lengths in (sample, loop, channel, tx) order.
func (c *Cube) Dims() (samples, loops, channels, txCount int) {
	return c.Samples, c.Loops, c.Channels, c.TxCount
}

func (c *Cube) index(sample, loop, channel, tx int) int {
	return ((sample*c.Loops+loop)*c.Channels+channel)*c.TxCount + tx
}

// At returns the sample at (sample, loop, channel, tx).
func (c *Cube) At(sample, loop, channel, tx int) complex64 {
	return c.Data[c.index(sample, loop, channel, tx)]
}

// Channel returns a copy of every sample on one physical RX channel,
// ordered by (sample, loop, tx). Handy for per-channel diagnostics.
func (c *Cube) Channel(channel int) []complex64 {
	out := make([]complex64, 0, c.Samples*c.Loops*c.TxCount)
	for s := 0; s < c.Samples; s++ {
		for l := 0; l < c.Loops; l++ {
			base := ((s*c.Loops+l)*c.Channels + channel) * c.TxCount
			out = append(out, c.Data[base:base+c.TxCount]...)
		}
	}
	return out
}

// Chirp returns a copy of the fast-time samples of one chirp: the full
// sample axis at a fixed (loop, channel, tx). This is the input to a range
// FFT.
func (c *Cube) Chirp(loop, channel, tx int) []complex64 {
	out := make([]complex64, c.Samples)
	for s := 0; s < c.Samples; s++ {
		out[s] = c.Data[c.index(s, loop, channel, tx)]
	}
	return out
}

// decodeIQ pairs a raw little-endian int16 stream into complex samples:
// even-indexed values are the real (I) part, odd-indexed the imaginary (Q).
func decodeIQ(raw []byte) ([]complex64, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("decodeIQ: %d bytes is not a whole number of IQ pairs", len(raw))
	}
	out := make([]complex64, len(raw)/4)
	for n := range out {
		off := n * 4
		i := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
		q := int16(binary.LittleEndian.Uint16(raw[off+2 : off+4]))
		out[n] = complex(float32(i), float32(q))
	}
	return out, nil
}

// placeDevice writes one device's flat sample block into the cube slice
// starting at baseChannel. The block is interpreted in column-major order
// over (rx, sample, tx, loop), first axis fastest, matching the hardware
// interleaving. Combined with the direct write below this performs the
// (sample, loop, rx, tx) permutation without an intermediate sub-cube.
func (c *Cube) placeDevice(block []complex64, rx, baseChannel int) error {
	want := rx * c.Samples * c.TxCount * c.Loops
	if len(block) != want {
		return fmt.Errorf("%w: got %d samples, want %d", ErrDeviceMismatch, len(block), want)
	}
	for k, v := range block {
		r := k % rx
		rest := k / rx
		s := rest % c.Samples
		rest /= c.Samples
		t := rest % c.TxCount
		l := rest / c.TxCount
		c.Data[c.index(s, l, baseChannel+r, t)] = v
	}
	return nil
}

// assemble builds the unified cube from the four per-device sample blocks,
// given in capture order (master, slave1, slave2, slave3).
func assemble(blocks [4][]complex64, samples, loops, rx, txCount int) (*Cube, error) {
	for i := 1; i < len(blocks); i++ {
		if len(blocks[i]) != len(blocks[0]) {
			return nil, fmt.Errorf("%w: %s has %d samples, %s has %d",
				ErrDeviceMismatch, Roles[i], len(blocks[i]), Roles[0], len(blocks[0]))
		}
	}
	cube := NewCube(samples, loops, rx*len(blocks), txCount)
	for i, block := range blocks {
		if err := cube.placeDevice(block, rx, deviceChannelBase[i]); err != nil {
			return nil, fmt.Errorf("place %s: %w", Roles[i], err)
		}
	}
	return cube, nil
}
