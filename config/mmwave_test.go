package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const mmwaveFixture = `{
  "mmWaveDevices": [
    {
      "rfConfig": {
        "rlProfiles": [
          {
            "rlProfileCfg_t": {
              "startFreqConst_GHz": 77.0,
              "freqSlopeConst_MHz_usec": 38.479,
              "digOutSampleRate": 8000,
              "idleTimeConst_usec": 5.0,
              "rampEndTime_usec": 40.0,
              "numAdcSamples": 256
            }
          }
        ],
        "rlFrameCfg_t": { "numLoops": 16 },
        "rlChanCfg_t": { "txChannelEn": "0x7", "rxChannelEn": "0xF", "cascading": 1 }
      }
    },
    {}, {}, {}
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.mmwave.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func near(got, want float64) bool {
	return math.Abs(got-want) <= 1e-9*math.Max(math.Abs(want), 1)
}

func TestLoadMMWaveJSON(t *testing.T) {
	p, err := LoadMMWaveJSON(writeFixture(t, mmwaveFixture))
	if err != nil {
		t.Fatalf("LoadMMWaveJSON failed: %v", err)
	}

	if p.TX != 3 || p.RX != 4 || p.Devices != 4 {
		t.Errorf("layout tx=%d rx=%d devices=%d, want 3/4/4", p.TX, p.RX, p.Devices)
	}
	if p.SamplesPerChirp != 256 || p.LoopsPerFrame != 16 {
		t.Errorf("samples=%d loops=%d, want 256/16", p.SamplesPerChirp, p.LoopsPerFrame)
	}
	if !near(p.StartFreqHz, 77e9) {
		t.Errorf("start freq %v Hz, want 77 GHz", p.StartFreqHz)
	}
	if !near(p.FreqSlopeHzs, 3.8479e13) {
		t.Errorf("slope %v Hz/s, want 3.8479e13", p.FreqSlopeHzs)
	}
	if !near(p.SampleRateHz, 8e6) {
		t.Errorf("sample rate %v Hz, want 8 MHz", p.SampleRateHz)
	}
	if !near(p.IdleTimeSec, 5e-6) || !near(p.RampEndSec, 40e-6) {
		t.Errorf("idle %v ramp %v, want 5us/40us", p.IdleTimeSec, p.RampEndSec)
	}
	if !p.Cascade {
		t.Errorf("cascading flag not picked up")
	}
}

func TestLoadMMWaveJSONMissingFile(t *testing.T) {
	if _, err := LoadMMWaveJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadMMWaveJSONNoDevices(t *testing.T) {
	path := writeFixture(t, `{"mmWaveDevices": []}`)
	if _, err := LoadMMWaveJSON(path); err == nil {
		t.Fatalf("expected error for empty device list")
	}
}

func TestChannelCount(t *testing.T) {
	cases := []struct {
		mask    string
		want    int
		wantErr bool
	}{
		{"0xF", 4, false},
		{"0x7", 3, false},
		{"0x1", 1, false},
		{"f", 4, false},
		{"0x0", 0, true},
		{"", 0, true},
		{"0xzz", 0, true},
	}
	for _, tc := range cases {
		got, err := channelCount(tc.mask)
		if tc.wantErr {
			if err == nil {
				t.Errorf("mask %q: expected error", tc.mask)
			}
			continue
		}
		if err != nil {
			t.Errorf("mask %q: unexpected error %v", tc.mask, err)
			continue
		}
		if got != tc.want {
			t.Errorf("mask %q: got %d channels, want %d", tc.mask, got, tc.want)
		}
	}
}
