package config

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"os"
	"strconv"
	"strings"
)

// mmwaveFile mirrors the slice of the TI mmWave Studio JSON that the capture
// parameters live in. Everything else in the file is ignored.
type mmwaveFile struct {
	MMWaveDevices []struct {
		RFConfig struct {
			Profiles []struct {
				Cfg struct {
					StartFreqGHz   float64 `json:"startFreqConst_GHz"`
					SlopeMHzUsec   float64 `json:"freqSlopeConst_MHz_usec"`
					SampleRateKsps float64 `json:"digOutSampleRate"`
					IdleTimeUsec   float64 `json:"idleTimeConst_usec"`
					RampEndUsec    float64 `json:"rampEndTime_usec"`
					NumAdcSamples  float64 `json:"numAdcSamples"`
				} `json:"rlProfileCfg_t"`
			} `json:"rlProfiles"`
			FrameCfg struct {
				NumLoops float64 `json:"numLoops"`
			} `json:"rlFrameCfg_t"`
			ChanCfg struct {
				TxChannelEn string  `json:"txChannelEn"`
				RxChannelEn string  `json:"rxChannelEn"`
				Cascading   float64 `json:"cascading"`
			} `json:"rlChanCfg_t"`
		} `json:"rfConfig"`
	} `json:"mmWaveDevices"`
}

// LoadMMWaveJSON reads capture parameters from a *.mmwave.json file. The
// first device's first chirp profile is authoritative, the device count is
// the length of the device list.
func LoadMMWaveJSON(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read mmwave config: %w", err)
	}

	var file mmwaveFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return Params{}, fmt.Errorf("parse mmwave config %s: %w", path, err)
	}
	if len(file.MMWaveDevices) == 0 {
		return Params{}, fmt.Errorf("mmwave config %s lists no devices", path)
	}
	rf := file.MMWaveDevices[0].RFConfig
	if len(rf.Profiles) == 0 {
		return Params{}, fmt.Errorf("mmwave config %s lists no chirp profiles", path)
	}

	tx, err := channelCount(rf.ChanCfg.TxChannelEn)
	if err != nil {
		return Params{}, fmt.Errorf("txChannelEn: %w", err)
	}
	rx, err := channelCount(rf.ChanCfg.RxChannelEn)
	if err != nil {
		return Params{}, fmt.Errorf("rxChannelEn: %w", err)
	}

	cfg := rf.Profiles[0].Cfg
	p := Params{
		TX:              tx,
		RX:              rx,
		Devices:         len(file.MMWaveDevices),
		SamplesPerChirp: int(cfg.NumAdcSamples),
		LoopsPerFrame:   int(rf.FrameCfg.NumLoops),
		StartFreqHz:     cfg.StartFreqGHz * 1e9,
		FreqSlopeHzs:    cfg.SlopeMHzUsec * 1e12, // MHz/us -> Hz/s
		SampleRateHz:    cfg.SampleRateKsps * 1e3,
		IdleTimeSec:     cfg.IdleTimeUsec * 1e-6,
		RampEndSec:      cfg.RampEndUsec * 1e-6,
		Cascade:         rf.ChanCfg.Cascading != 0,
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("mmwave config %s: %w", path, err)
	}
	return p, nil
}

// channelCount converts a hex enable mask like "0xF" into the number of
// enabled channels. Masks are contiguous from bit 0 on this hardware, so
// the count is the position of the highest set bit.
func channelCount(mask string) (int, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mask)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid channel mask %q: %w", mask, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("channel mask %q enables no channels", mask)
	}
	return bits.Len64(v), nil
}
