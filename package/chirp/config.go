package chirp

// Protocol constants
const (
	FS               = 44100 // sample frequency
	SymbolSeconds    = 0.08  // payload/parity tone duration
	FrontdoorSeconds = 0.12  // frontdoor tone duration, longer for robust detection
	AlphabetSize     = 256   // one tone per byte value
	MaxPayload       = 32    // max payload bytes per frame
	MinParity        = 8     // parity symbols for a 1 byte payload
	MaxParity        = 32    // parity symbols for a MaxPayload payload
	HeaderSymbols    = 1     // length symbol ahead of the payload
	ChecksumSymbols  = 1     // CRC8 symbol behind the payload
	Amplitude        = 0.25  // quarter of full scale, below clipping
	FadeSeconds      = 0.002 // raised cosine ramp at segment boundaries
	PowerSignal      = 0.005 // default envelope power above this means signal
	PeakRatio        = 8.0   // dominant bin must beat the mean magnitude by this
)

// Band maps byte values to tone frequencies. The frontdoor pair sits below
// BaseFreq so no payload byte can ever collide with it.
type Band struct {
	Name          string
	BaseFreq      float64 // frequency of byte value 0
	FreqStep      float64 // spacing between adjacent byte values
	FrontdoorLow  float64 // first frontdoor tone
	FrontdoorHigh float64 // second frontdoor tone
}

var (
	// Audible is the classic chirp band, 1.5 kHz to 13 kHz.
	Audible = Band{
		Name:          "audible",
		BaseFreq:      1500,
		FreqStep:      45,
		FrontdoorLow:  1500 - 6*45,
		FrontdoorHigh: 1500 - 3*45,
	}

	// Ultrasonic sits at the top of hearing, 15 kHz up. The step is
	// tighter so the whole alphabet stays under the Nyquist limit.
	Ultrasonic = Band{
		Name:          "ultrasonic",
		BaseFreq:      15000,
		FreqStep:      25,
		FrontdoorLow:  15000 - 6*25,
		FrontdoorHigh: 15000 - 3*25,
	}
)

// Tone returns the frequency for a byte value.
func (b Band) Tone(v byte) float64 {
	return b.BaseFreq + float64(v)*b.FreqStep
}

// TopFreq is the highest payload frequency of the band.
func (b Band) TopFreq() float64 {
	return b.BaseFreq + float64(AlphabetSize-1)*b.FreqStep
}

// Config is the host-supplied tuning surface. DefaultConfig gives the
// values the standard protocol uses.
type Config struct {
	SampleRate        int
	SymbolDuration    float64 // seconds per payload/parity tone
	FrontdoorDuration float64 // seconds per frontdoor tone
	Band              Band
	ParityCount       int     // parity symbols per frame, 0 scales with payload length
	NoiseFloor        float64 // envelope power gate for the segmenter
	FreqTolerance     float64 // max deviation when matching frontdoor tones
	SyncGapTimeout    float64 // seconds of gap before an incomplete frame is dropped
	MinPeakRatio      float64 // dominant bin threshold for the tone extractor
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        FS,
		SymbolDuration:    SymbolSeconds,
		FrontdoorDuration: FrontdoorSeconds,
		Band:              Audible,
		ParityCount:       0,
		NoiseFloor:        PowerSignal,
		FreqTolerance:     Audible.FreqStep / 2,
		SyncGapTimeout:    2 * SymbolSeconds,
		MinPeakRatio:      PeakRatio,
	}
}

// Validate checks the configuration invariants once, up front. Anything
// wrong here is fatal; nothing is re-checked at runtime.
func (c Config) Validate() error {
	if c.SampleRate <= 0 || c.SymbolDuration <= 0 || c.FrontdoorDuration <= 0 {
		return ErrConfig
	}
	if c.Band.FreqStep <= 0 || c.Band.BaseFreq <= 0 {
		return ErrConfig
	}
	// The whole alphabet and the frontdoor pair must sit under Nyquist.
	if c.Band.TopFreq() >= float64(c.SampleRate)/2 {
		return ErrConfig
	}
	if c.Band.FrontdoorLow <= 0 || c.Band.FrontdoorLow >= c.Band.FrontdoorHigh {
		return ErrConfig
	}
	if c.Band.FrontdoorHigh > c.Band.BaseFreq-c.Band.FreqStep {
		return ErrConfig
	}
	// Spectral resolution of one symbol window is 1/duration. The tone
	// spacing needs a 2x safety margin over that or neighbouring symbols
	// blur together.
	if c.Band.FreqStep*c.SymbolDuration < 2 {
		return ErrConfig
	}
	if c.FreqTolerance <= 0 || c.FreqTolerance > c.Band.FreqStep/2 {
		return ErrConfig
	}
	if c.ParityCount < 0 || c.ParityCount > MaxParity {
		return ErrConfig
	}
	if c.ParityCount == 1 {
		return ErrConfig // a single parity symbol corrects nothing
	}
	if c.NoiseFloor <= 0 || c.SyncGapTimeout <= 0 || c.MinPeakRatio <= 1 {
		return ErrConfig
	}
	return nil
}

// parityFor returns the parity symbol count for a payload of n bytes.
// With ParityCount unset it scales from MinParity to MaxParity the way the
// standard protocol does, roughly 10%+ of the block being correctable.
func (c Config) parityFor(n int) int {
	if c.ParityCount != 0 {
		return c.ParityCount
	}
	if n < 1 {
		n = 1
	}
	span := float64(MaxParity - MinParity)
	norm := float64(n-1) / float64(MaxPayload-1)
	return MinParity + int(norm*span)
}

// symbolSamples is the length of one payload tone in samples.
func (c Config) symbolSamples() int {
	return int(float64(c.SampleRate) * c.SymbolDuration)
}

// frontdoorSamples is the length of one frontdoor tone in samples.
func (c Config) frontdoorSamples() int {
	return int(float64(c.SampleRate) * c.FrontdoorDuration)
}
