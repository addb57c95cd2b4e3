package filter

import (
	"math"
	"math/cmplx"
)

// ButterworthQ gives a maximally flat second-order response.
const ButterworthQ = 1 / math.Sqrt2

// Coefficients are normalized biquad coefficients (a0 = 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// clampFreq keeps a corner frequency strictly inside (0, Nyquist) so the
// RBJ formulas stay stable at the sweep extremes.
func clampFreq(freq, sampleRate float64) float64 {
	nyq := sampleRate / 2
	return math.Min(math.Max(freq, 1), nyq*0.99)
}

func rbjCommon(freq, q, sampleRate float64) (cosW, alpha float64) {
	w0 := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	return math.Cos(w0), math.Sin(w0) / (2 * q)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	return Coefficients{B0: b0 / a0, B1: b1 / a0, B2: b2 / a0, A1: a1 / a0, A2: a2 / a0}
}

// LowPass returns RBJ low-pass coefficients.
func LowPass(freq, q, sampleRate float64) Coefficients {
	cosW, alpha := rbjCommon(freq, q, sampleRate)
	b1 := 1 - cosW
	return normalize(b1/2, b1, b1/2, 1+alpha, -2*cosW, 1-alpha)
}

// HighPass returns RBJ high-pass coefficients.
func HighPass(freq, q, sampleRate float64) Coefficients {
	cosW, alpha := rbjCommon(freq, q, sampleRate)
	b0 := (1 + cosW) / 2
	return normalize(b0, -(1 + cosW), b0, 1+alpha, -2*cosW, 1-alpha)
}

// HighShelf returns RBJ high-shelf coefficients with gainDB above freq.
func HighShelf(freq, gainDB, q, sampleRate float64) Coefficients {
	cosW, alpha := rbjCommon(freq, q, sampleRate)
	a := math.Pow(10, gainDB/40)
	sq := 2 * math.Sqrt(a) * alpha

	return normalize(
		a*((a+1)+(a-1)*cosW+sq),
		-2*a*((a-1)+(a+1)*cosW),
		a*((a+1)+(a-1)*cosW-sq),
		(a+1)-(a-1)*cosW+sq,
		2*((a-1)-(a+1)*cosW),
		(a+1)-(a-1)*cosW-sq,
	)
}

// Magnitude returns |H| at freq Hz.
func (c Coefficients) Magnitude(freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return cmplx.Abs(num / den)
}

// Biquad is a second-order IIR section in transposed direct form II.
type Biquad struct {
	c      Coefficients
	z1, z2 float64
}

// NewBiquad creates a filter with zeroed state.
func NewBiquad(c Coefficients) *Biquad {
	return &Biquad{c: c}
}

// SetCoefficients swaps coefficients and keeps the state, which lets a
// sweep glide without resetting.
func (b *Biquad) SetCoefficients(c Coefficients) {
	b.c = c
}

// Coefficients returns the current coefficients.
func (b *Biquad) Coefficients() Coefficients {
	return b.c
}

// Tick filters one sample.
func (b *Biquad) Tick(x float64) float64 {
	y := b.c.B0*x + b.z1
	b.z1 = b.c.B1*x - b.c.A1*y + b.z2
	b.z2 = b.c.B2*x - b.c.A2*y
	return y
}

// Process filters buf in place.
func (b *Biquad) Process(buf []float64) {
	for i, x := range buf {
		buf[i] = b.Tick(x)
	}
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.z1, b.z2 = 0, 0
}

// Cascade runs biquads in series.
type Cascade []*Biquad

// Process filters buf in place through every section.
func (c Cascade) Process(buf []float64) {
	for _, b := range c {
		b.Process(buf)
	}
}

// Reset clears every section.
func (c Cascade) Reset() {
	for _, b := range c {
		b.Reset()
	}
}
