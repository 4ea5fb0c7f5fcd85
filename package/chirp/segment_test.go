package chirp

import (
	"testing"

	"github.com/xthexder/go-jack"
)

func collectSegments(cfg Config, samples []jack.AudioSample) []Segment {
	scanner := NewSegmentScanner(cfg, samples)
	var segs []Segment
	for {
		seg, ok := scanner.Next()
		if !ok {
			return segs
		}
		segs = append(segs, seg)
	}
}

func TestScannerSilence(t *testing.T) {
	cfg := DefaultConfig()
	silence := make([]jack.AudioSample, cfg.SampleRate) // one second
	if segs := collectSegments(cfg, silence); len(segs) != 0 {
		t.Fatalf("silence produced %d segments", len(segs))
	}
}

func TestScannerSingleTone(t *testing.T) {
	cfg := DefaultConfig()
	symLen := cfg.symbolSamples()
	buffer := make([]jack.AudioSample, 0, 3*symLen)
	buffer = append(buffer, make([]jack.AudioSample, symLen)...)
	buffer = append(buffer, sineTone(cfg.Band.Tone(0x10), symLen, cfg.SampleRate, 0)...)
	buffer = append(buffer, make([]jack.AudioSample, symLen)...)

	segs := collectSegments(cfg, buffer)
	if len(segs) != 1 {
		t.Fatalf("one tone produced %d segments", len(segs))
	}
	seg := segs[0]
	if seg.Start < symLen-symLen/8 || seg.Start > symLen+symLen/8 {
		t.Errorf("segment start %d not near tone start %d", seg.Start, symLen)
	}
	if seg.Length < symLen/2 || seg.Length > symLen+symLen/4 {
		t.Errorf("segment length %d not near one symbol (%d)", seg.Length, symLen)
	}
}

func TestScannerNoiseSpikeDropped(t *testing.T) {
	cfg := DefaultConfig()
	symLen := cfg.symbolSamples()
	buffer := make([]jack.AudioSample, 0, 2*symLen)
	buffer = append(buffer, make([]jack.AudioSample, symLen/2)...)
	// a click far shorter than any symbol
	buffer = append(buffer, sineTone(cfg.Band.Tone(0x10), symLen/16, cfg.SampleRate, 0)...)
	buffer = append(buffer, make([]jack.AudioSample, symLen)...)

	if segs := collectSegments(cfg, buffer); len(segs) != 0 {
		t.Fatalf("noise spike produced %d segments", len(segs))
	}
}

func TestScannerFrameWindows(t *testing.T) {
	cfg := DefaultConfig()
	tx, err := NewTransmitter(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte("hello")
	rendered, err := tx.Render(payload)
	if err != nil {
		t.Fatal(err)
	}
	buffer := make([]jack.AudioSample, 0, len(rendered)+cfg.SampleRate)
	buffer = append(buffer, make([]jack.AudioSample, cfg.SampleRate/2)...)
	buffer = append(buffer, rendered...)
	buffer = append(buffer, make([]jack.AudioSample, cfg.SampleRate/2)...)

	segs := collectSegments(cfg, buffer)
	want := 2 + frameSymbols(cfg, len(payload))
	if len(segs) != want {
		t.Fatalf("frame produced %d windows; want %d", len(segs), want)
	}
	if segs[0].Length != cfg.frontdoorSamples() {
		t.Errorf("first window length %d; want frontdoor %d", segs[0].Length, cfg.frontdoorSamples())
	}
	if segs[2].Length != cfg.symbolSamples() {
		t.Errorf("third window length %d; want symbol %d", segs[2].Length, cfg.symbolSamples())
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].Start < segs[i-1].Start {
			t.Fatal("windows out of time order")
		}
	}
}
