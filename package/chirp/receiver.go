package chirp

import (
	"github.com/xthexder/go-jack"
)

// Tone is one extracted frequency with its position in the capture.
type Tone struct {
	Freq  float64
	Start int
	End   int
}

// SyncState is the frame synchronizer state.
type SyncState int

const (
	Searching  SyncState = iota // waiting for the first frontdoor tone
	Locked                      // first frontdoor tone heard
	Collecting                  // frontdoor pair heard, gathering symbols
)

// Synchronizer turns a stream of extracted tones into frame symbol blocks.
// It locks onto the frontdoor pair, collects until the frame length the
// header announces is reached, and resets to Searching after every frame,
// complete or not, so one capture can carry several chirps. Hosts that
// decode a rolling capture in slices keep one Synchronizer across calls.
type Synchronizer struct {
	cfg     Config
	state   SyncState
	block   []byte
	expect  int
	lastEnd int
}

func NewSynchronizer(cfg Config) *Synchronizer {
	return &Synchronizer{cfg: cfg}
}

func (s *Synchronizer) State() SyncState {
	return s.state
}

// Reset drops any partial frame and returns to Searching.
func (s *Synchronizer) Reset() {
	s.state = Searching
	s.block = nil
	s.expect = 0
}

// Push feeds one tone through the state machine. When a full frame block
// has been collected it is returned and the machine resets. ErrSyncLost
// comes back when a gap past the timeout interrupts a partial frame; the
// machine has already reset and the same tone was re-considered as a new
// frame start.
func (s *Synchronizer) Push(tone Tone) ([]byte, error) {
	var lost error
	if s.state != Searching {
		gap := int(s.cfg.SyncGapTimeout * float64(s.cfg.SampleRate))
		if tone.Start-s.lastEnd > gap {
			if s.state == Collecting {
				lost = ErrSyncLost
			}
			s.Reset()
		}
	}
	s.lastEnd = tone.End

	band := s.cfg.Band
	switch s.state {
	case Searching:
		if matchesTone(tone.Freq, band.FrontdoorLow, s.cfg.FreqTolerance) {
			s.state = Locked
		}
	case Locked:
		switch {
		case matchesTone(tone.Freq, band.FrontdoorHigh, s.cfg.FreqTolerance):
			s.state = Collecting
			s.block = make([]byte, 0, frameSymbols(s.cfg, MaxPayload))
			s.expect = 0
		case matchesTone(tone.Freq, band.FrontdoorLow, s.cfg.FreqTolerance):
			// still hearing the first frontdoor tone
		default:
			s.Reset()
		}
	case Collecting:
		sym, _ := nearestSymbol(band, tone.Freq)
		if len(s.block) == 0 {
			length := int(sym)
			if length == 0 || length > MaxPayload {
				s.Reset()
				return nil, ErrSyncLost
			}
			s.expect = frameSymbols(s.cfg, length)
		}
		s.block = append(s.block, sym)
		if len(s.block) == s.expect {
			block := s.block
			s.Reset()
			return block, lost
		}
	}
	return nil, lost
}

// Receiver recovers payloads from captured audio, either from a whole
// buffer via Decode or from a live sample channel via Start.
type Receiver struct {
	cfg            Config
	field          *Field
	inputChannel   chan jack.AudioSample
	payloadChannel chan []byte
}

// NewReceiver validates the configuration once. The channels may be nil
// when only the buffer API is used.
func NewReceiver(cfg Config, inputChannel chan jack.AudioSample, payloadChannel chan []byte) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Receiver{
		cfg:            cfg,
		field:          NewField(),
		inputChannel:   inputChannel,
		payloadChannel: payloadChannel,
	}, nil
}

// Decode scans a captured buffer and returns the first payload found.
// Segments without a clear tone are dropped; anything worse surfaces as a
// typed error: ErrSyncLost when no complete frame was seen, or the frame
// level failure (ErrUncorrectable, ErrMalformed) when one was collected
// but could not be repaired. A partial payload is never returned.
func (r *Receiver) Decode(samples []jack.AudioSample) ([]byte, error) {
	scanner := NewSegmentScanner(r.cfg, samples)
	sync := NewSynchronizer(r.cfg)
	lastErr := ErrSyncLost
	for {
		seg, ok := scanner.Next()
		if !ok {
			return nil, lastErr
		}
		freq, err := dominantFrequency(samples[seg.Start:seg.End()], r.cfg.SampleRate, r.cfg.MinPeakRatio)
		if err != nil {
			continue // noisy segment, drop it
		}
		block, _ := sync.Push(Tone{Freq: freq, Start: seg.Start, End: seg.End()})
		if block == nil {
			continue
		}
		payload, _, err := parseFrame(r.cfg, r.field, block)
		if err != nil {
			lastErr = err
			continue
		}
		return payload, nil
	}
}

// DecodeAll returns every payload recovered from the capture, in order.
// Frames that fail correction are skipped.
func (r *Receiver) DecodeAll(samples []jack.AudioSample) [][]byte {
	scanner := NewSegmentScanner(r.cfg, samples)
	sync := NewSynchronizer(r.cfg)
	var payloads [][]byte
	for {
		seg, ok := scanner.Next()
		if !ok {
			return payloads
		}
		freq, err := dominantFrequency(samples[seg.Start:seg.End()], r.cfg.SampleRate, r.cfg.MinPeakRatio)
		if err != nil {
			continue
		}
		block, _ := sync.Push(Tone{Freq: freq, Start: seg.Start, End: seg.End()})
		if block == nil {
			continue
		}
		if payload, _, err := parseFrame(r.cfg, r.field, block); err == nil {
			payloads = append(payloads, payload)
		}
	}
}

// Start consumes the input channel, cutting the live stream into signal
// regions and decoding each one as it closes. Recovered payloads go to
// the payload channel. The loop ends when the input channel closes.
func (r *Receiver) Start() {
	hold := r.cfg.symbolSamples() / 4
	minRegion := r.cfg.symbolSamples() / 2
	var power float64
	var region []jack.AudioSample
	below := 0

	flush := func() {
		if len(region) >= minRegion {
			if payload, err := r.Decode(region); err == nil {
				r.payloadChannel <- payload
			}
		}
		region = nil
		below = 0
	}

	for sample := range r.inputChannel {
		v := float64(sample)
		power = power*(1-1.0/64) + v*v/64
		if power >= r.cfg.NoiseFloor {
			region = append(region, sample)
			below = 0
			continue
		}
		if region != nil {
			region = append(region, sample)
			below++
			if below > hold {
				flush()
			}
		}
	}
	flush()
}
