package filter

import "math"

// Hann returns a Hann window of length n. A periodic window sums to a
// constant at 50% overlap and is the one to use for STFT and overlap-add;
// the symmetric form has equal end points.
func Hann(n int, periodic bool) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{1}
	}

	denom := float64(n - 1)
	if periodic {
		denom = float64(n)
	}

	w := make([]float64, n)
	for i := range n {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom)
	}
	return w
}
