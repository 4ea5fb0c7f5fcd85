package chirp

import "errors"

var (
	// ErrConfig means the protocol parameters cannot work together.
	// Detected when a Transmitter or Receiver is built, never at runtime.
	ErrConfig = errors.New("invalid chirp configuration")

	// ErrDivideByZero is a programming error in field arithmetic.
	ErrDivideByZero = errors.New("galois field division by zero")

	// ErrBlockTooLong means message plus parity exceeds the 255 symbol
	// block limit of GF(256).
	ErrBlockTooLong = errors.New("reed-solomon block longer than 255 symbols")

	// ErrUncorrectable means the received block had more symbol errors
	// than the parity can repair.
	ErrUncorrectable = errors.New("reed-solomon block is uncorrectable")

	// ErrNoTone means a segment had no clear dominant frequency.
	// The synchronizer drops such segments.
	ErrNoTone = errors.New("no dominant tone in segment")

	// ErrSyncLost means no frontdoor pair was found, or a frame stayed
	// incomplete past the gap timeout.
	ErrSyncLost = errors.New("frontdoor sync lost")

	// ErrMalformed means a collected frame failed validation before or
	// after error correction.
	ErrMalformed = errors.New("malformed frame")
)
