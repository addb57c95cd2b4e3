package pipeline

// DelayLine is a power-of-two circular buffer read at fractional delays.
// It is the memory behind the chorus and flanger stages.
//
// DelayLine is not safe for concurrent use.
type DelayLine struct {
	data     []float64
	mask     int
	writePos int
}

// NewDelayLine creates a delay line able to hold at least maxDelay samples
// plus the interpolation neighbourhood.
func NewDelayLine(maxDelay int) *DelayLine {
	capacity := 1
	for capacity < maxDelay+hermiteTaps {
		capacity <<= 1
	}

	return &DelayLine{
		data: make([]float64, capacity),
		mask: capacity - 1,
	}
}

// Write pushes one sample.
func (d *DelayLine) Write(sample float64) {
	d.data[d.writePos] = sample
	d.writePos = (d.writePos + 1) & d.mask
}

// At returns the sample written delay samples ago (delay 1 is the most
// recent write).
func (d *DelayLine) At(delay int) float64 {
	return d.data[(d.writePos-delay)&d.mask]
}

// Read returns the signal delay samples in the past using 4-point Hermite
// interpolation. delay is clamped to [1, capacity-3].
func (d *DelayLine) Read(delay float64) float64 {
	maxDelay := float64(len(d.data) - hermiteTaps + 1)
	if delay < 1 {
		delay = 1
	} else if delay > maxDelay {
		delay = maxDelay
	}

	whole := int(delay)
	frac := delay - float64(whole)

	xm1 := d.At(whole - 1)
	if whole-1 < 1 {
		xm1 = d.At(1)
	}
	x0 := d.At(whole)
	x1 := d.At(whole + 1)
	x2 := d.At(whole + 2)

	return hermite4(frac, xm1, x0, x1, x2)
}

// Reset zeroes the buffer.
func (d *DelayLine) Reset() {
	clear(d.data)
	d.writePos = 0
}

// hermite4 interpolates between x0 and x1 at t in [0, 1).
func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
