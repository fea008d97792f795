/*
DESCRIPTION
  dispatch.go implements the shared block-parsing loop used by both DM
  containers: read ext_block_length/ext_block_level, dispatch to the
  level-specific parser, then consume the alignment padding bits that
  separate a block's semantic payload from its declared byte length.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package extmeta

import "github.com/doviproc/dovi/bits"

// ParseBlock reads one extension metadata block: ext_block_length (ue),
// ext_block_level (8 bits), the level-specific payload, and the zero
// alignment padding up to length*8 bits. Levels without a dedicated parser
// parse as Reserved, preserving raw bits. ParseBlock does not check a
// container's allowed levels; callers enforce that when adding the block.
func ParseBlock(r *bits.Reader) (Block, error) {
	length, err := r.ReadUE()
	if err != nil {
		return nil, err
	}
	lv, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	level := uint8(lv)

	var block Block
	switch level {
	case 1:
		block, err = ParseLevel1(r)
	case 2:
		block, err = ParseLevel2(r)
	case 3:
		block, err = ParseLevel3(r)
	case 4:
		block, err = ParseLevel4(r)
	case 5:
		block, err = ParseLevel5(r)
	case 6:
		block, err = ParseLevel6(r)
	case 8:
		block, err = ParseLevel8(r, length)
	case 9:
		block, err = ParseLevel9(r, length)
	case 10:
		block, err = ParseLevel10(r, length)
	case 11:
		block, err = ParseLevel11(r)
	case 254:
		block, err = ParseLevel254(r)
	case 255:
		block, err = ParseLevel255(r)
	default:
		block, err = ParseReserved(r, level, length)
	}
	if err != nil {
		return nil, err
	}

	padBits := length*8 - block.RequiredBits()
	for i := uint64(0); i < padBits; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if bit {
			return nil, ErrUnalignedZeroBitNotZero
		}
	}
	return block, nil
}

// WriteBlock writes ext_block_length, ext_block_level, the block's payload,
// and the zero alignment padding up to BytesSize()*8 bits.
func WriteBlock(w *bits.Writer, b Block) error {
	if err := w.WriteUE(b.BytesSize()); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(b.Level()), 8); err != nil {
		return err
	}
	switch v := b.(type) {
	case *Level1:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level2:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level3:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level4:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level5:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level6:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level8:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level9:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level10:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level11:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level254:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Level255:
		if err := v.Write(w); err != nil {
			return err
		}
	case *Reserved:
		if err := v.Write(w); err != nil {
			return err
		}
	default:
		return ErrUnknownExtensionBlock
	}

	padBits := b.BytesSize()*8 - b.RequiredBits()
	for i := uint64(0); i < padBits; i++ {
		if err := w.WriteBits(0, 1); err != nil {
			return err
		}
	}
	return nil
}
