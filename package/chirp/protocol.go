package chirp

import (
	"math"

	"github.com/sigurn/crc8"
)

// Frame layout on air:
//
//	frontdoor low | frontdoor high | length | payload ... | crc8 | parity ...
//
// The frontdoor pair uses reserved frequencies below the payload band, so
// it can never be produced by payload data. Everything from the length
// symbol onward is one Reed-Solomon block; the CRC8 sits inside it and is
// checked after correction as a guard against a mis-corrected block.

var crcTable = crc8.MakeTable(crc8.CRC8_MAXIM)

// buildFrame assembles the symbol block that follows the frontdoor pair.
func buildFrame(cfg Config, f *Field, payload []byte) ([]byte, error) {
	if len(payload) == 0 || len(payload) > MaxPayload {
		return nil, ErrMalformed
	}
	block := make([]byte, 0, HeaderSymbols+len(payload)+ChecksumSymbols)
	block = append(block, byte(len(payload)))
	block = append(block, payload...)
	block = append(block, crc8.Checksum(block, crcTable))

	codec, err := NewCodec(f, cfg.parityFor(len(payload)))
	if err != nil {
		return nil, err
	}
	return codec.Encode(block)
}

// frameSymbols returns how many symbols follow the frontdoor pair for a
// payload of n bytes.
func frameSymbols(cfg Config, n int) int {
	return HeaderSymbols + n + ChecksumSymbols + cfg.parityFor(n)
}

// parseFrame validates and corrects a collected symbol block and returns
// the payload plus the number of symbols the codec repaired.
func parseFrame(cfg Config, f *Field, block []byte) ([]byte, int, error) {
	if len(block) < HeaderSymbols+1+ChecksumSymbols+2 {
		return nil, 0, ErrMalformed
	}
	length := int(block[0])
	if length == 0 || length > MaxPayload || len(block) != frameSymbols(cfg, length) {
		return nil, 0, ErrMalformed
	}

	codec, err := NewCodec(f, cfg.parityFor(length))
	if err != nil {
		return nil, 0, err
	}
	msg, corrected, err := codec.Decode(block)
	if err != nil {
		return nil, 0, err
	}
	if int(msg[0]) != length {
		// The correction rewrote the length symbol; the block we
		// collected cannot be the frame that was sent.
		return nil, 0, ErrMalformed
	}
	if crc8.Checksum(msg[:HeaderSymbols+length], crcTable) != msg[HeaderSymbols+length] {
		return nil, 0, ErrMalformed
	}
	payload := make([]byte, length)
	copy(payload, msg[HeaderSymbols:HeaderSymbols+length])
	return payload, corrected, nil
}

// nearestSymbol maps a measured frequency to the closest byte value and
// reports how far off it was.
func nearestSymbol(b Band, freq float64) (byte, float64) {
	idx := math.Round((freq - b.BaseFreq) / b.FreqStep)
	if idx < 0 {
		idx = 0
	}
	if idx > AlphabetSize-1 {
		idx = AlphabetSize - 1
	}
	return byte(idx), math.Abs(freq - b.Tone(byte(idx)))
}

// matchesTone reports whether a measured frequency hits a target within
// the configured tolerance.
func matchesTone(freq, target, tolerance float64) bool {
	return math.Abs(freq-target) <= tolerance
}
