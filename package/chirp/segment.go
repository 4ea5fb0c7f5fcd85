package chirp

import "github.com/xthexder/go-jack"

// Segment is one candidate symbol window inside a capture buffer. It owns
// nothing beyond its sample range.
type Segment struct {
	Start  int
	Length int
}

func (s Segment) End() int {
	return s.Start + s.Length
}

// SegmentScanner walks a captured buffer once, in time order, yielding
// symbol sized windows wherever the signal envelope sits above the noise
// floor. A fresh scanner on a fresh buffer restarts the scan.
type SegmentScanner struct {
	cfg     Config
	samples []jack.AudioSample
	pos     int
	power   float64

	region   Segment
	inRegion bool
	emitted  int
	consumed int
}

func NewSegmentScanner(cfg Config, samples []jack.AudioSample) *SegmentScanner {
	return &SegmentScanner{cfg: cfg, samples: samples}
}

// Next returns the next candidate window. The first two windows of every
// signal region are frontdoor sized, the rest symbol sized, matching the
// frame timing. Trailing slivers shorter than half a symbol are dropped.
func (s *SegmentScanner) Next() (Segment, bool) {
	symLen := s.cfg.symbolSamples()
	fdLen := s.cfg.frontdoorSamples()
	for {
		if !s.inRegion {
			region, ok := s.nextRegion()
			if !ok {
				return Segment{}, false
			}
			if region.Length < symLen/2 {
				continue // noise spike
			}
			s.region = region
			s.inRegion = true
			s.emitted = 0
			s.consumed = 0
		}

		want := symLen
		if s.emitted < 2 {
			want = fdLen
		}
		remaining := s.region.Length - s.consumed
		if remaining < symLen/2 {
			s.inRegion = false
			continue
		}
		if want > remaining {
			want = remaining
		}
		seg := Segment{Start: s.region.Start + s.consumed, Length: want}
		s.consumed += want
		s.emitted++
		return seg, true
	}
}

// nextRegion advances the envelope tracker to the next contiguous run of
// samples above the noise floor. The envelope is the same exponential
// moving power the live receive path uses. A region only closes after the
// envelope stays below the floor for a quarter symbol, so the short fades
// between adjacent tones cannot split one chirp into many regions.
func (s *SegmentScanner) nextRegion() (Segment, bool) {
	hold := s.cfg.symbolSamples() / 4
	start := -1
	below := 0
	for ; s.pos < len(s.samples); s.pos++ {
		v := float64(s.samples[s.pos])
		s.power = s.power*(1-1.0/64) + v*v/64
		if s.power >= s.cfg.NoiseFloor {
			if start < 0 {
				start = s.pos
			}
			below = 0
		} else if start >= 0 {
			below++
			if below > hold {
				end := s.pos - below
				s.pos++
				return Segment{Start: start, Length: end - start + 1}, true
			}
		}
	}
	if start >= 0 {
		return Segment{Start: start, Length: len(s.samples) - start - below}, true
	}
	return Segment{}, false
}
