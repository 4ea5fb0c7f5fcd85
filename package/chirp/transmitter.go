package chirp

import (
	"sync"

	"github.com/xthexder/go-jack"
)

type Transmitter struct {
	cfg           Config
	field         *Field
	outputChannel chan jack.AudioSample
	channelLock   sync.Mutex
}

// NewTransmitter validates the configuration once and builds the shared
// field tables. The output channel may be nil when only Render is used.
func NewTransmitter(cfg Config, outputChannel chan jack.AudioSample) (*Transmitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Transmitter{
		cfg:           cfg,
		field:         NewField(),
		outputChannel: outputChannel,
	}, nil
}

// Render encodes a payload into a flat sample buffer: two frontdoor tones
// followed by one tone per frame symbol.
func (t *Transmitter) Render(payload []byte) ([]jack.AudioSample, error) {
	block, err := buildFrame(t.cfg, t.field, payload)
	if err != nil {
		return nil, err
	}

	rate := t.cfg.SampleRate
	fade := int(FadeSeconds * float64(rate))
	fdLen := t.cfg.frontdoorSamples()
	symLen := t.cfg.symbolSamples()

	samples := make([]jack.AudioSample, 0, 2*fdLen+len(block)*symLen)
	samples = append(samples, sineTone(t.cfg.Band.FrontdoorLow, fdLen, rate, fade)...)
	samples = append(samples, sineTone(t.cfg.Band.FrontdoorHigh, fdLen, rate, fade)...)
	for _, sym := range block {
		samples = append(samples, sineTone(t.cfg.Band.Tone(sym), symLen, rate, fade)...)
	}
	return samples, nil
}

// Send renders a payload and pushes the samples into the output channel.
// The lock keeps concurrent senders from interleaving their tones.
func (t *Transmitter) Send(payload []byte) error {
	samples, err := t.Render(payload)
	if err != nil {
		return err
	}
	t.channelLock.Lock()
	defer t.channelLock.Unlock()
	for _, sample := range samples {
		t.outputChannel <- sample
	}
	return nil
}
