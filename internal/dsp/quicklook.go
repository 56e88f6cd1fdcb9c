// Package dsp holds the small signal helpers behind cascade-dump's
// quick-look output: windowing, spectrum magnitude, and per-channel power.
// Range/velocity/angle estimation happens downstream, not here.
package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// adcScale is full scale for the 16-bit cascade ADC words.
const adcScale = 32768.0

// Hamming returns a Hamming window of length n.
func Hamming(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	win := make([]float64, n)
	for i := range win {
		win[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return win
}

// ApplyWindow multiplies complex samples with a window of the same length.
func ApplyWindow(samples []complex64, window []float64) []complex128 {
	if len(samples) != len(window) {
		return []complex128{}
	}
	out := make([]complex128, len(samples))
	for i, v := range samples {
		out[i] = complex(float64(real(v))*window[i], float64(imag(v))*window[i])
	}
	return out
}

// FFTShift rotates an FFT output so that DC sits in the middle.
func FFTShift(data []complex128) []complex128 {
	n := len(data)
	if n == 0 {
		return []complex128{}
	}
	half := n / 2
	return append(data[half:], data[:half]...)
}

// SpectrumDBFS windows the samples, runs a complex FFT normalized by the
// window sum, and returns the shifted magnitude spectrum in dBFS.
func SpectrumDBFS(samples []complex64) []float64 {
	if len(samples) == 0 {
		return []float64{}
	}
	win := Hamming(len(samples))
	windowed := ApplyWindow(samples, win)
	fft := fourier.NewCmplxFFT(len(samples)).Coefficients(nil, windowed)
	sumWin := 0.0
	for _, v := range win {
		sumWin += v
	}
	for i := range fft {
		fft[i] /= complex(sumWin, 0)
	}
	shifted := FFTShift(fft)
	dbfs := make([]float64, len(shifted))
	for i, v := range shifted {
		mag := cmplx.Abs(v)
		if mag == 0 {
			dbfs[i] = math.Inf(-1)
			continue
		}
		dbfs[i] = 20 * math.Log10(mag/adcScale)
	}
	return dbfs
}

// RMSDBFS returns the RMS power of the samples relative to ADC full scale.
func RMSDBFS(samples []complex64) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	sum := 0.0
	for _, v := range samples {
		re := float64(real(v))
		im := float64(imag(v))
		sum += re*re + im*im
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/adcScale)
}
