// Duplex JACK host. Without a payload flag it listens on the capture port
// and prints every payload it decodes; with -s, -x or -b it chirps the
// payload out of the playback port and exits.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xthexder/go-jack"

	"acoustic_chirp/package/chirp"
)

func main() {
	asciiArg := flag.String("s", "", "send an ascii string payload")
	hexArg := flag.String("x", "", "send a hex string payload")
	bytesArg := flag.String("b", "", "send comma separated byte values")
	bandArg := flag.String("band", "audible", "tone band: audible or ultrasonic")
	flag.Parse()

	cfg := chirp.DefaultConfig()
	switch *bandArg {
	case "audible":
	case "ultrasonic":
		cfg.Band = chirp.Ultrasonic
		cfg.FreqTolerance = chirp.Ultrasonic.FreqStep / 2
	default:
		fmt.Fprintf(os.Stderr, "unknown band %q\n", *bandArg)
		os.Exit(1)
	}

	payload, err := parsePayload(*asciiArg, *hexArg, *bytesArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client, _ := jack.ClientOpen("chirp", jack.NoStartServer)
	if client == nil {
		fmt.Fprintln(os.Stderr, "could not connect to jack server")
		os.Exit(1)
	}
	defer client.Close()

	inPort := client.PortRegister("input", jack.DEFAULT_AUDIO_TYPE, jack.PortIsInput, 0)
	outPort := client.PortRegister("output", jack.DEFAULT_AUDIO_TYPE, jack.PortIsOutput, 0)
	systemInPort := client.GetPortByName("system:capture_1")
	systemOutPort := client.GetPortByName("system:playback_1")

	inputChannel := make(chan jack.AudioSample, 4096)
	outputChannel := make(chan jack.AudioSample, cfg.SampleRate*16)

	process := func(nframes uint32) int {
		outBuffer := outPort.GetBuffer(nframes)
		for i := range outBuffer {
			select {
			case sample := <-outputChannel:
				outBuffer[i] = sample
			default:
				outBuffer[i] = 0.0
			}
		}
		for _, sample := range inPort.GetBuffer(nframes) {
			select {
			case inputChannel <- sample:
			default: // receiver fell behind, drop the sample
			}
		}
		return 0
	}

	if code := client.SetProcessCallback(process); code != 0 {
		fmt.Fprintln(os.Stderr, "failed to set process callback")
		os.Exit(1)
	}
	if code := client.Activate(); code != 0 {
		fmt.Fprintln(os.Stderr, "failed to activate client")
		os.Exit(1)
	}
	client.ConnectPorts(systemInPort, inPort)
	client.ConnectPorts(outPort, systemOutPort)

	if payload != nil {
		tx, err := chirp.NewTransmitter(cfg, outputChannel)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := tx.Send(payload); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("chirping payload: %s\n", hex.EncodeToString(payload))
		// Let the process callback drain the rendered samples.
		for len(outputChannel) > 0 {
			time.Sleep(100 * time.Millisecond)
		}
		time.Sleep(500 * time.Millisecond)
		return
	}

	payloadChannel := make(chan []byte, 16)
	rx, err := chirp.NewReceiver(cfg, inputChannel, payloadChannel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	go rx.Start()

	fmt.Println("listening, ctrl-c to quit")
	for payload := range payloadChannel {
		fmt.Printf("%s (%s)\n", hex.EncodeToString(payload), printable(payload))
	}
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
		return nil, fmt.Errorf("only one of -s, -x, -b may be given")
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
