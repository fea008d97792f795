/*
DESCRIPTION
  extmeta.go declares the closed, tagged union of VDR-DM extension metadata
  blocks (Levels 1-11, 254, 255, and Reserved), the per-level block shapes,
  and the sizing/sort-key contract every block implements.

AUTHORS
  Derived for the dovi RPU codec from the tagged-union Property shape in
  github.com/ausocean/av/protocol/rtmp/amf/amf.go, split into one small
  struct per variant rather than one omnibus struct, per the corpus's own
  "prefer small structs per level" design note.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package extmeta implements the VDR-DM extension metadata block codec: one
// small struct per block level, each able to parse, write, validate, and
// report its own size and sort key.
package extmeta

import "github.com/pkg/errors"

var (
	// ErrUnknownExtensionBlock is returned by WriteBlock when given a Block
	// implementation it has no writer for. ParseBlock never returns it:
	// levels without a dedicated parser parse as Reserved.
	ErrUnknownExtensionBlock = errors.New("extmeta: unknown extension block level")

	// ErrUnalignedZeroBitNotZero is returned when a required padding bit
	// between a block's semantic payload and its declared length is not zero.
	ErrUnalignedZeroBitNotZero = errors.New("extmeta: alignment padding bit is not zero")
)

// BadBlockLength is returned when a length-variable block (Level 8, 9, 10)
// carries a length outside its allowed set.
type BadBlockLength struct {
	Level    uint8
	Expected []uint64
	Got      uint64
}

func (e *BadBlockLength) Error() string {
	return errors.Errorf("extmeta: level %d: bad block length %d, expected one of %v", e.Level, e.Got, e.Expected).Error()
}

// Block is implemented by every extension metadata block variant, including
// Reserved.
type Block interface {
	// Level returns the block's level tag.
	Level() uint8

	// BytesSize returns the block's declared payload size in bytes
	// (ext_block_length).
	BytesSize() uint64

	// RequiredBits returns the number of bits the block's semantic fields
	// occupy; BytesSize()*8 - RequiredBits() is the alignment padding every
	// block must consume before the next one.
	RequiredBits() uint64

	// SortKey returns the (level, secondary) key used to order blocks
	// within a DM container on write.
	SortKey() (uint8, uint16)
}

// BitsSize returns b.BytesSize()*8, the full on-wire size of b including
// alignment padding.
func BitsSize(b Block) uint64 {
	return b.BytesSize() * 8
}
