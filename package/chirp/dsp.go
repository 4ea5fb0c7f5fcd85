package chirp

import (
	"math"
	"math/cmplx"

	"github.com/xthexder/go-jack"
)

// sineTone renders one tone segment. The ends get a raised cosine ramp so
// adjacent tones join without a click.
func sineTone(freq float64, length int, rate int, fade int) []jack.AudioSample {
	out := make([]jack.AudioSample, length)
	if fade > length/2 {
		fade = length / 2
	}
	for i := 0; i < length; i++ {
		s := Amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		if i < fade {
			s *= 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(fade)))
		} else if i >= length-fade {
			s *= 0.5 * (1 - math.Cos(math.Pi*float64(length-1-i)/float64(fade)))
		}
		out[i] = jack.AudioSample(s)
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fft is a recursive radix-2 transform. Input length must be a power of two.
func fft(input []complex128) []complex128 {
	n := len(input)
	if n == 1 {
		return input
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = input[2*i]
		odd[i] = input[2*i+1]
	}

	evenFFT := fft(even)
	oddFFT := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		angle := -2 * math.Pi * float64(k) / float64(n)
		factor := cmplx.Rect(1, angle)
		result[k] = evenFFT[k] + factor*oddFFT[k]
		result[k+n/2] = evenFFT[k] - factor*oddFFT[k]
	}
	return result
}

// dominantFrequency runs a Hann windowed FFT over the segment and returns
// the strongest frequency. The peak must beat the mean bin magnitude by
// minPeakRatio or the segment counts as noise and ErrNoTone comes back.
func dominantFrequency(samples []jack.AudioSample, rate int, minPeakRatio float64) (float64, error) {
	if len(samples) < 2 {
		return 0, ErrNoTone
	}
	size := nextPow2(len(samples))
	input := make([]complex128, size)
	for i, s := range samples {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(samples)-1)))
		input[i] = complex(float64(s)*window, 0)
	}

	output := fft(input)

	var total float64
	maxMagnitude := 0.0
	maxIndex := 0
	for i := 1; i < size/2; i++ {
		magnitude := cmplx.Abs(output[i])
		total += magnitude
		if magnitude > maxMagnitude {
			maxMagnitude = magnitude
			maxIndex = i
		}
	}
	if maxIndex == 0 || maxMagnitude == 0 {
		return 0, ErrNoTone
	}
	mean := total / float64(size/2-1)
	if maxMagnitude < minPeakRatio*mean {
		return 0, ErrNoTone
	}

	freq := float64(maxIndex) * float64(rate) / float64(size)
	if maxIndex > 1 && maxIndex < size/2-1 {
		// Parabolic interpolation between the peak and its neighbours
		// sharpens the estimate well below one bin width.
		alpha := cmplx.Abs(output[maxIndex-1])
		beta := maxMagnitude
		gamma := cmplx.Abs(output[maxIndex+1])
		den := alpha - 2*beta + gamma
		if den != 0 {
			correction := 0.5 * (alpha - gamma) / den
			freq = (float64(maxIndex) + correction) * float64(rate) / float64(size)
		}
	}
	return freq, nil
}
