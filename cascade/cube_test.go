package cascade

import (
	"encoding/binary"
	"errors"
	"testing"
)

func int16LE(vals ...int16) []byte {
	buf := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}
	return buf
}

func TestDecodeIQ(t *testing.T) {
	samples, err := decodeIQ(int16LE(1, -2, 32767, -32768))
	if err != nil {
		t.Fatalf("decodeIQ failed: %v", err)
	}
	want := []complex64{complex(1, -2), complex(32767, -32768)}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestDecodeIQPartialPair(t *testing.T) {
	if _, err := decodeIQ(make([]byte, 6)); err == nil {
		t.Fatalf("expected error on partial IQ pair")
	}
}

func TestPlaceDeviceColumnMajor(t *testing.T) {
	// rx=2, samples=3, tx=2, loops=1: flat index k decomposes as
	// r = k%2, s = (k/2)%3, tx = k/6.
	cube := NewCube(3, 1, 2, 2)
	block := make([]complex64, 12)
	for k := range block {
		block[k] = complex(float32(k), 0)
	}
	if err := cube.placeDevice(block, 2, 0); err != nil {
		t.Fatalf("placeDevice failed: %v", err)
	}
	for k := range block {
		r, s, tx := k%2, (k/2)%3, k/6
		if got := cube.At(s, 0, r, tx); got != block[k] {
			t.Errorf("At(%d,0,%d,%d): got %v, want %v", s, r, tx, got, block[k])
		}
	}
}

func TestPlaceDeviceSizeMismatch(t *testing.T) {
	cube := NewCube(3, 1, 2, 2)
	if err := cube.placeDevice(make([]complex64, 5), 2, 0); !errors.Is(err, ErrDeviceMismatch) {
		t.Fatalf("got %v, want ErrDeviceMismatch", err)
	}
}

func TestChannelCopy(t *testing.T) {
	cube := NewCube(3, 1, 2, 2)
	block := make([]complex64, 12)
	for k := range block {
		block[k] = complex(float32(k), 0)
	}
	if err := cube.placeDevice(block, 2, 0); err != nil {
		t.Fatalf("placeDevice failed: %v", err)
	}

	got := cube.Channel(0)
	want := []complex64{0, 6, 2, 8, 4, 10} // (sample, tx) order for r=0
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("channel sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestChirpCopy(t *testing.T) {
	cube := NewCube(3, 1, 2, 2)
	block := make([]complex64, 12)
	for k := range block {
		block[k] = complex(float32(k), 0)
	}
	if err := cube.placeDevice(block, 2, 0); err != nil {
		t.Fatalf("placeDevice failed: %v", err)
	}

	got := cube.Chirp(0, 0, 1)
	want := []complex64{6, 8, 10} // fast-time axis for r=0, tx=1
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chirp sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAssembleChannelRemap(t *testing.T) {
	// Constant fill per device: master=1, slave1=2, slave2=3, slave3=4.
	var blocks [4][]complex64
	for i := range blocks {
		blocks[i] = make([]complex64, 16) // samples=1, loops=1, rx=4, tx=4
		for k := range blocks[i] {
			blocks[i][k] = complex(float32(i+1), 0)
		}
	}
	cube, err := assemble(blocks, 1, 1, 4, 4)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	wantByChannel := [16]float32{
		4, 4, 4, 4, // slave3
		1, 1, 1, 1, // master
		3, 3, 3, 3, // slave2
		2, 2, 2, 2, // slave1
	}
	for ch := 0; ch < 16; ch++ {
		for tx := 0; tx < 4; tx++ {
			if got := real(cube.At(0, 0, ch, tx)); got != wantByChannel[ch] {
				t.Errorf("channel %d tx %d: got %v, want %v", ch, tx, got, wantByChannel[ch])
			}
		}
	}
}

func TestAssembleUnequalBlocks(t *testing.T) {
	var blocks [4][]complex64
	for i := range blocks {
		blocks[i] = make([]complex64, 16)
	}
	blocks[2] = make([]complex64, 12)
	if _, err := assemble(blocks, 1, 1, 4, 4); !errors.Is(err, ErrDeviceMismatch) {
		t.Fatalf("got %v, want ErrDeviceMismatch", err)
	}
}
