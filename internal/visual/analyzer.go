// Package visual renders the live audio spectrum of a recording.
package visual

import (
	"math"
	"math/cmplx"

	"github.com/jwulff/memo/internal/capture"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFTSize is the transform length; it yields FFTSize/2 frequency bins.
	FFTSize = 256
	Bins    = FFTSize / 2

	smoothing = 0.8
	minDB     = -100.0
	maxDB     = -30.0
)

// Analyzer turns the newest PCM window of a tap into byte-scaled frequency
// magnitudes, smoothed across calls.
type Analyzer struct {
	fft      *fourier.FFT
	window   []float64
	smoothed []float64
	samples  []float32
	seq      []float64
	coeff    []complex128
}

// NewAnalyzer returns an analyzer with a Blackman window.
func NewAnalyzer() *Analyzer {
	w := make([]float64, FFTSize)
	for n := range w {
		x := 2 * math.Pi * float64(n) / FFTSize
		w[n] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
	return &Analyzer{
		fft:      fourier.NewFFT(FFTSize),
		window:   w,
		smoothed: make([]float64, Bins),
		samples:  make([]float32, FFTSize),
		seq:      make([]float64, FFTSize),
		coeff:    make([]complex128, FFTSize/2+1),
	}
}

// ByteFrequencyData fills dst (at most Bins long) from the tap. Missing
// samples are treated as silence.
func (a *Analyzer) ByteFrequencyData(tap capture.Tap, dst []uint8) {
	n := 0
	if tap != nil {
		n = tap.Latest(a.samples)
	}
	// Right-align so the newest samples sit at the end of the window.
	off := FFTSize - n
	for i := range a.seq {
		v := 0.0
		if i >= off {
			v = float64(a.samples[i-off])
		}
		a.seq[i] = v * a.window[i]
	}
	a.coeff = a.fft.Coefficients(a.coeff, a.seq)

	for k := 0; k < Bins && k < len(dst); k++ {
		mag := cmplx.Abs(a.coeff[k]) / FFTSize
		a.smoothed[k] = smoothing*a.smoothed[k] + (1-smoothing)*mag
		dst[k] = toByte(a.smoothed[k])
	}
}

func toByte(mag float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := math.Floor(255 / (maxDB - minDB) * (db - minDB))
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
