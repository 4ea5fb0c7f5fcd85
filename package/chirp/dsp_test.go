package chirp

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/xthexder/go-jack"
)

func TestDominantFrequencyPureTone(t *testing.T) {
	cfg := DefaultConfig()

	for _, freq := range []float64{cfg.Band.FrontdoorLow, cfg.Band.Tone(0), cfg.Band.Tone(0x68), cfg.Band.Tone(0xff)} {
		samples := sineTone(freq, cfg.symbolSamples(), cfg.SampleRate, 0)
		got, err := dominantFrequency(samples, cfg.SampleRate, cfg.MinPeakRatio)
		if err != nil {
			t.Fatalf("dominantFrequency(%.0f): %v", freq, err)
		}
		if math.Abs(got-freq) > cfg.Band.FreqStep/2 {
			t.Errorf("dominantFrequency(%.0f) = %.1f", freq, got)
		}
	}
}

func TestDominantFrequencySilence(t *testing.T) {
	samples := make([]jack.AudioSample, 4096)
	if _, err := dominantFrequency(samples, FS, PeakRatio); !errors.Is(err, ErrNoTone) {
		t.Errorf("silence returned %v; want ErrNoTone", err)
	}
}

func TestDominantFrequencyNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	samples := make([]jack.AudioSample, 4096)
	for i := range samples {
		samples[i] = jack.AudioSample((rng.Float64() - 0.5) * 0.1)
	}
	if _, err := dominantFrequency(samples, FS, PeakRatio); !errors.Is(err, ErrNoTone) {
		t.Errorf("white noise returned %v; want ErrNoTone", err)
	}
}

func TestSineToneFades(t *testing.T) {
	cfg := DefaultConfig()
	fade := int(FadeSeconds * float64(cfg.SampleRate))
	samples := sineTone(cfg.Band.Tone(0x41), cfg.symbolSamples(), cfg.SampleRate, fade)

	if len(samples) != cfg.symbolSamples() {
		t.Fatalf("length = %d; want %d", len(samples), cfg.symbolSamples())
	}
	if samples[0] != 0 {
		t.Errorf("first sample = %f; want a faded-in 0", samples[0])
	}
	if last := samples[len(samples)-1]; math.Abs(float64(last)) > 1e-6 {
		t.Errorf("last sample = %f; want a faded-out 0", last)
	}
	for i, s := range samples {
		if math.Abs(float64(s)) > Amplitude {
			t.Fatalf("sample %d = %f exceeds the fixed amplitude", i, s)
		}
	}
}
