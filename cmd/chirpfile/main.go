// Offline host. With a payload flag it renders the chirp and plays it on
// the default output device, optionally saving it to a wav file first.
// With a wav file argument instead it decodes the capture and prints every
// payload found.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/xthexder/go-jack"

	"acoustic_chirp/package/chirp"
)

func main() {
	asciiArg := flag.String("s", "", "send an ascii string payload")
	hexArg := flag.String("x", "", "send a hex string payload")
	bytesArg := flag.String("b", "", "send comma separated byte values")
	wavArg := flag.String("w", "", "write the rendered chirp to this wav file")
	bandArg := flag.String("band", "audible", "tone band: audible or ultrasonic")
	muteArg := flag.Bool("mute", false, "skip speaker playback")
	flag.Parse()

	cfg := chirp.DefaultConfig()
	switch *bandArg {
	case "audible":
	case "ultrasonic":
		cfg.Band = chirp.Ultrasonic
		cfg.FreqTolerance = chirp.Ultrasonic.FreqStep / 2
	default:
		fatal(fmt.Errorf("unknown band %q", *bandArg))
	}

	payload, err := parsePayload(*asciiArg, *hexArg, *bytesArg)
	if err != nil {
		fatal(err)
	}

	if payload == nil {
		if flag.NArg() != 1 {
			fatal(errors.New("nothing to do: give a payload flag or a wav file to decode"))
		}
		if err := decodeFile(cfg, flag.Arg(0)); err != nil {
			fatal(err)
		}
		return
	}

	tx, err := chirp.NewTransmitter(cfg, nil)
	if err != nil {
		fatal(err)
	}
	samples, err := tx.Render(payload)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("chirping payload: %s\n", hex.EncodeToString(payload))

	if *wavArg != "" {
		if err := writeWav(*wavArg, cfg.SampleRate, samples); err != nil {
			fatal(err)
		}
		fmt.Printf("saved %s\n", *wavArg)
	}
	if !*muteArg {
		if err := play(cfg.SampleRate, samples); err != nil {
			fatal(err)
		}
	}
}

func decodeFile(cfg chirp.Config, path string) error {
	rate, samples, err := readWav(path)
	if err != nil {
		return err
	}
	cfg.SampleRate = rate
	rx, err := chirp.NewReceiver(cfg, nil, nil)
	if err != nil {
		return err
	}
	payloads := rx.DecodeAll(samples)
	if len(payloads) == 0 {
		return errors.New("no chirp found in capture")
	}
	for _, payload := range payloads {
		fmt.Printf("%s (%s)\n", hex.EncodeToString(payload), printable(payload))
	}
	return nil
}

// sampleReader feeds rendered samples to oto as little endian float32.
type sampleReader struct {
	samples []jack.AudioSample
	offset  int
}

func (r *sampleReader) Read(buf []byte) (int, error) {
	if r.offset >= len(r.samples) {
		return 0, io.EOF
	}
	n := 0
	for ; n+4 <= len(buf) && r.offset < len(r.samples); n += 4 {
		binary.LittleEndian.PutUint32(buf[n:], math.Float32bits(float32(r.samples[r.offset])))
		r.offset++
	}
	return n, nil
}

func play(rate int, samples []jack.AudioSample) error {
	opts := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return err
	}
	<-ready

	player := ctx.NewPlayer(&sampleReader{samples: samples})
	player.Play()
	for player.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}
	return player.Close()
}

// writeWav saves the samples as 16 bit PCM mono.
func writeWav(path string, rate int, samples []jack.AudioSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dataLen := uint32(len(samples) * 2)
	header := struct {
		RIFF      [4]byte
		FileSize  uint32
		WAVE      [4]byte
		Fmt       [4]byte
		FmtSize   uint32
		Format    uint16
		Channels  uint16
		Rate      uint32
		ByteRate  uint32
		BlockSize uint16
		Bits      uint16
		Data      [4]byte
		DataSize  uint32
	}{
		RIFF:      [4]byte{'R', 'I', 'F', 'F'},
		FileSize:  36 + dataLen,
		WAVE:      [4]byte{'W', 'A', 'V', 'E'},
		Fmt:       [4]byte{'f', 'm', 't', ' '},
		FmtSize:   16,
		Format:    1, // PCM
		Channels:  1,
		Rate:      uint32(rate),
		ByteRate:  uint32(rate * 2),
		BlockSize: 2,
		Bits:      16,
		Data:      [4]byte{'d', 'a', 't', 'a'},
		DataSize:  dataLen,
	}
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return err
	}
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		v := float64(s)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		pcm[i] = int16(v * 32767)
	}
	return binary.Write(f, binary.LittleEndian, pcm)
}

// readWav loads a 16 bit PCM mono wav file.
func readWav(path string) (int, []jack.AudioSample, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	if len(raw) < 44 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return 0, nil, fmt.Errorf("%s: not a wav file", path)
	}

	var rate int
	var channels, bits int
	// Walk the chunks; fmt must come before data.
	for pos := 12; pos+8 <= len(raw); {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(raw) {
			return 0, nil, fmt.Errorf("%s: truncated %q chunk", path, id)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return 0, nil, fmt.Errorf("%s: short fmt chunk", path)
			}
			channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			rate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
		case "data":
			if channels != 1 || bits != 16 {
				return 0, nil, fmt.Errorf("%s: want 16 bit mono, got %d bit %d channel", path, bits, channels)
			}
			samples := make([]jack.AudioSample, size/2)
			for i := range samples {
				v := int16(binary.LittleEndian.Uint16(raw[body+2*i : body+2*i+2]))
				samples[i] = jack.AudioSample(float64(v) / 32768)
			}
			return rate, samples, nil
		}
		pos = body + size + size%2
	}
	return 0, nil, fmt.Errorf("%s: no data chunk", path)
}

// parsePayload resolves the three payload flags; at most one may be set.
func parsePayload(ascii, hexStr, byteList string) ([]byte, error) {
	set := 0
	for _, s := range []string{ascii, hexStr, byteList} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("only one of -s, -x, -b may be given")
	}
	switch {
	case ascii != "":
		return []byte(ascii), nil
	case hexStr != "":
		payload, err := hex.DecodeString(hexStr)
		if err != nil {
			return nil, fmt.Errorf("bad hex payload: %w", err)
		}
		return payload, nil
	case byteList != "":
		parts := strings.Split(byteList, ",")
		payload := make([]byte, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(part), 0, 8)
			if err != nil {
				return nil, fmt.Errorf("bad byte value %q: %w", part, err)
			}
			payload[i] = byte(v)
		}
		return payload, nil
	}
	return nil, nil
}

func printable(payload []byte) string {
	out := make([]byte, len(payload))
	for i, b := range payload {
		if b >= 0x20 && b < 0x7f {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
