// Package config holds the capture parameter record shared by the offline
// and live acquisition paths, plus a loader for the TI *.mmwave.json files
// written alongside cascade captures. Parameters are plain validated fields;
// nothing is looked up at runtime.
package config

import (
	"errors"
	"fmt"
)

const speedOfLight = 3e8

// cascadeDevices is the chip count of the 4-chip cascade EVM.
const cascadeDevices = 4

// Params describes one capture. Counts are per chip unless noted.
type Params struct {
	// Layout parameters.
	TX              int // transmit antennas enabled per chip
	RX              int // receive antennas enabled per chip
	Devices         int // cascaded chips sharing the capture
	SamplesPerChirp int // ADC samples per chirp
	LoopsPerFrame   int // TX cycles per frame

	// Chirp parameters, SI units.
	StartFreqHz   float64
	FreqSlopeHzs  float64 // chirp slope in Hz per second
	SampleRateHz  float64
	IdleTimeSec   float64
	RampEndSec    float64

	Cascade bool
}

// Default returns the stock AWR2243 cascade capture configuration used by
// the reference lua capture script.
func Default() Params {
	return Params{
		TX:              3,
		RX:              4,
		Devices:         cascadeDevices,
		SamplesPerChirp: 256,
		LoopsPerFrame:   1,
		StartFreqHz:     79.0000000119209e9,
		FreqSlopeHzs:    3.8479000091552734e13,
		SampleRateHz:    8e6,
		IdleTimeSec:     5e-6,
		RampEndSec:      40e-6,
		Cascade:         true,
	}
}

// Validate is the single construction-time check; a Params that passes it
// is usable by every consumer without further inspection.
func (p Params) Validate() error {
	if p.TX <= 0 || p.RX <= 0 {
		return errors.New("tx and rx channel counts must be positive")
	}
	if p.RX != 4 {
		return fmt.Errorf("channel remap requires 4 rx channels per chip, got %d", p.RX)
	}
	if p.SamplesPerChirp <= 0 {
		return errors.New("samples per chirp must be positive")
	}
	if p.LoopsPerFrame <= 0 {
		return errors.New("loops per frame must be positive")
	}
	if p.Devices != cascadeDevices {
		return fmt.Errorf("cascade layout requires %d devices, got %d", cascadeDevices, p.Devices)
	}
	return nil
}

// ChirpsPerLoop is the number of chirps transmitted in one loop across the
// whole cascade.
func (p Params) ChirpsPerLoop() int { return p.TX * p.Devices }

// ChirpsPerFrame is the total chirp count of one frame.
func (p Params) ChirpsPerFrame() int { return p.ChirpsPerLoop() * p.LoopsPerFrame }

// RangeResolution returns the range bin size in meters.
func (p Params) RangeResolution() float64 {
	return speedOfLight * p.SampleRateHz / (2 * p.FreqSlopeHzs * float64(p.SamplesPerChirp))
}

// DopplerResolution returns the velocity bin size in meters per second.
func (p Params) DopplerResolution() float64 {
	chirpTime := p.IdleTimeSec + p.RampEndSec
	return speedOfLight / (2 * p.StartFreqHz * chirpTime * float64(p.ChirpsPerFrame()))
}
