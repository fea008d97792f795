/*
DESCRIPTION
  errors.go provides the sentinel errors returned by the bits package's
  reader and writer.

AUTHORS
  Derived for the dovi RPU codec from the bit-reading idiom in
  github.com/ausocean/av/codec/h264/h264dec/bits.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides a bit-level reader and writer over an in-memory
// byte buffer, with support for fixed-width unsigned reads and the
// unsigned/signed exp-Golomb codes used throughout the RPU bitstream.
package bits

import "errors"

var (
	// ErrEndOfStream is returned when a read would consume more bits than
	// remain in the underlying buffer.
	ErrEndOfStream = errors.New("bits: end of stream")

	// ErrInvalidCode is returned when an exp-Golomb code's leading-zero
	// prefix exceeds 32 bits, which no conforming RPU ever emits.
	ErrInvalidCode = errors.New("bits: invalid exp-golomb code")

	// ErrBitWidth is returned when a caller requests a fixed-width read or
	// write outside (0, 64] bits.
	ErrBitWidth = errors.New("bits: bit width out of range")

	// ErrNotByteAligned is returned by AsBytes when the writer has pending
	// bits that have not been aligned to a byte boundary.
	ErrNotByteAligned = errors.New("bits: writer is not byte aligned")
)
