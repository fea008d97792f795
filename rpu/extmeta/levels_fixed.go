/*
DESCRIPTION
  levels_fixed.go implements the fixed-size extension metadata blocks:
  Levels 1, 2, 3, 4, 5, 6, 11, 254, 255, and the Reserved catch-all that
  preserves an unknown level's raw bits verbatim.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package extmeta

import "github.com/doviproc/dovi/bits"

// Level1 carries per-frame min/max/avg PQ statistics.
type Level1 struct {
	MinPQ uint16
	MaxPQ uint16
	AvgPQ uint16
}

func (b *Level1) Level() uint8          { return 1 }
func (b *Level1) BytesSize() uint64     { return 5 }
func (b *Level1) RequiredBits() uint64  { return 36 }
func (b *Level1) SortKey() (uint8, uint16) { return 1, 0 }

func ParseLevel1(r *bits.Reader) (*Level1, error) {
	b := &Level1{}
	var err error
	if b.MinPQ, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.MaxPQ, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.AvgPQ, err = read16(r, 12); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Level1) Write(w *bits.Writer) error {
	if err := w.WriteBits(uint64(b.MinPQ), 12); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(b.MaxPQ), 12); err != nil {
		return err
	}
	return w.WriteBits(uint64(b.AvgPQ), 12)
}

// Level2 carries a trim pass for one target display's max PQ.
type Level2 struct {
	TargetMaxPQ   uint16
	TrimSlope     uint16
	TrimOffset    uint16
	TrimPower     uint16
	TrimChromaWeight uint16
	TrimSaturationGain uint16
	MSWeight      int16 // signed 13-bit
}

func (b *Level2) Level() uint8          { return 2 }
func (b *Level2) BytesSize() uint64     { return 11 }
func (b *Level2) RequiredBits() uint64  { return 85 }
func (b *Level2) SortKey() (uint8, uint16) { return 2, b.TargetMaxPQ }

func ParseLevel2(r *bits.Reader) (*Level2, error) {
	b := &Level2{}
	var err error
	if b.TargetMaxPQ, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.TrimSlope, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.TrimOffset, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.TrimPower, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.TrimChromaWeight, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.TrimSaturationGain, err = read16(r, 12); err != nil {
		return nil, err
	}
	v, err := r.ReadBits(13)
	if err != nil {
		return nil, err
	}
	b.MSWeight = signExtend(v, 13)
	return b, nil
}

func (b *Level2) Write(w *bits.Writer) error {
	for _, v := range []uint16{b.TargetMaxPQ, b.TrimSlope, b.TrimOffset, b.TrimPower, b.TrimChromaWeight, b.TrimSaturationGain} {
		if err := w.WriteBits(uint64(v), 12); err != nil {
			return err
		}
	}
	return w.WriteBits(uint64(uint16(b.MSWeight))&0x1fff, 13)
}

// Level3 carries min/max/avg PQ offsets relative to Level1.
type Level3 struct {
	MinPQOffset uint16
	MaxPQOffset uint16
	AvgPQOffset uint16
}

func (b *Level3) Level() uint8          { return 3 }
func (b *Level3) BytesSize() uint64     { return 2 }
func (b *Level3) RequiredBits() uint64  { return 36 }
func (b *Level3) SortKey() (uint8, uint16) { return 3, 0 }

func ParseLevel3(r *bits.Reader) (*Level3, error) {
	b := &Level3{}
	var err error
	if b.MinPQOffset, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.MaxPQOffset, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.AvgPQOffset, err = read16(r, 12); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Level3) Write(w *bits.Writer) error {
	for _, v := range []uint16{b.MinPQOffset, b.MaxPQOffset, b.AvgPQOffset} {
		if err := w.WriteBits(uint64(v), 12); err != nil {
			return err
		}
	}
	return nil
}

// Level4 carries an anchor PQ/power pair.
type Level4 struct {
	AnchorPQ    uint16
	AnchorPower uint16
}

func (b *Level4) Level() uint8          { return 4 }
func (b *Level4) BytesSize() uint64     { return 3 }
func (b *Level4) RequiredBits() uint64  { return 24 }
func (b *Level4) SortKey() (uint8, uint16) { return 4, 0 }

func ParseLevel4(r *bits.Reader) (*Level4, error) {
	b := &Level4{}
	var err error
	if b.AnchorPQ, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.AnchorPower, err = read16(r, 12); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Level4) Write(w *bits.Writer) error {
	if err := w.WriteBits(uint64(b.AnchorPQ), 12); err != nil {
		return err
	}
	return w.WriteBits(uint64(b.AnchorPower), 12)
}

// Level5 carries active-area crop offsets.
type Level5 struct {
	ActiveAreaLeftOffset   uint16
	ActiveAreaRightOffset  uint16
	ActiveAreaTopOffset    uint16
	ActiveAreaBottomOffset uint16
}

func (b *Level5) Level() uint8          { return 5 }
func (b *Level5) BytesSize() uint64     { return 7 }
func (b *Level5) RequiredBits() uint64  { return 52 }
func (b *Level5) SortKey() (uint8, uint16) { return 5, 0 }

// FromOffsets builds a Level5 block from the four crop offsets.
func FromOffsets(left, right, top, bottom uint16) *Level5 {
	return &Level5{
		ActiveAreaLeftOffset:   left,
		ActiveAreaRightOffset:  right,
		ActiveAreaTopOffset:    top,
		ActiveAreaBottomOffset: bottom,
	}
}

func ParseLevel5(r *bits.Reader) (*Level5, error) {
	b := &Level5{}
	var err error
	if b.ActiveAreaLeftOffset, err = read16(r, 13); err != nil {
		return nil, err
	}
	if b.ActiveAreaRightOffset, err = read16(r, 13); err != nil {
		return nil, err
	}
	if b.ActiveAreaTopOffset, err = read16(r, 13); err != nil {
		return nil, err
	}
	if b.ActiveAreaBottomOffset, err = read16(r, 13); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Level5) Write(w *bits.Writer) error {
	for _, v := range []uint16{b.ActiveAreaLeftOffset, b.ActiveAreaRightOffset, b.ActiveAreaTopOffset, b.ActiveAreaBottomOffset} {
		if err := w.WriteBits(uint64(v), 13); err != nil {
			return err
		}
	}
	return nil
}

// Level6 carries the ST2086/HDR10 mastering-display fallback.
type Level6 struct {
	MaxDisplayMasteringLuminance uint16
	MinDisplayMasteringLuminance uint16
	MaxContentLightLevel         uint16
	MaxFrameAverageLightLevel    uint16
}

func (b *Level6) Level() uint8          { return 6 }
func (b *Level6) BytesSize() uint64     { return 8 }
func (b *Level6) RequiredBits() uint64  { return 64 }
func (b *Level6) SortKey() (uint8, uint16) { return 6, 0 }

func ParseLevel6(r *bits.Reader) (*Level6, error) {
	b := &Level6{}
	var err error
	if b.MaxDisplayMasteringLuminance, err = read16(r, 16); err != nil {
		return nil, err
	}
	if b.MinDisplayMasteringLuminance, err = read16(r, 16); err != nil {
		return nil, err
	}
	if b.MaxContentLightLevel, err = read16(r, 16); err != nil {
		return nil, err
	}
	if b.MaxFrameAverageLightLevel, err = read16(r, 16); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Level6) Write(w *bits.Writer) error {
	for _, v := range []uint16{b.MaxDisplayMasteringLuminance, b.MinDisplayMasteringLuminance, b.MaxContentLightLevel, b.MaxFrameAverageLightLevel} {
		if err := w.WriteBits(uint64(v), 16); err != nil {
			return err
		}
	}
	return nil
}

// DefaultLevel6 matches the generator's fallback default (spec.md §6):
// 1000/1 nits mastering luminance, no CLL/FALL.
func DefaultLevel6() *Level6 {
	return &Level6{MaxDisplayMasteringLuminance: 1000, MinDisplayMasteringLuminance: 1}
}

// Level11 carries content type, whitepoint, and reference-mode flags.
type Level11 struct {
	ContentType       uint8 // upper 4 bits
	Whitepoint        uint8
	ReferenceModeFlag bool
}

func (b *Level11) Level() uint8          { return 11 }
func (b *Level11) BytesSize() uint64     { return 1 }
func (b *Level11) RequiredBits() uint64  { return 8 }
func (b *Level11) SortKey() (uint8, uint16) { return 11, 0 }

func ParseLevel11(r *bits.Reader) (*Level11, error) {
	b := &Level11{}
	v, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	b.ContentType = uint8(v)
	v, err = r.ReadBits(3)
	if err != nil {
		return nil, err
	}
	b.Whitepoint = uint8(v)
	b.ReferenceModeFlag, err = r.ReadBool()
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Level11) Write(w *bits.Writer) error {
	if err := w.WriteBits(uint64(b.ContentType), 4); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(b.Whitepoint), 3); err != nil {
		return err
	}
	return w.WriteBool(b.ReferenceModeFlag)
}

// DefaultReferenceCinema is the generator's default: reference-mode
// cinema content, D65 whitepoint.
func DefaultReferenceCinema() *Level11 {
	return &Level11{ContentType: 1, Whitepoint: 0, ReferenceModeFlag: true}
}

// Level254 carries the display-management mode and algorithm version.
type Level254 struct {
	DMMode         uint8
	DMVersionIndex uint8
}

func (b *Level254) Level() uint8          { return 254 }
func (b *Level254) BytesSize() uint64     { return 5 }
func (b *Level254) RequiredBits() uint64  { return 40 }
func (b *Level254) SortKey() (uint8, uint16) { return 254, 0 }

// NewLevel254V402 is the canonical "CM v4.0.2" display-management block.
func NewLevel254V402() *Level254 { return &Level254{DMMode: 0, DMVersionIndex: 2} }

func ParseLevel254(r *bits.Reader) (*Level254, error) {
	b := &Level254{}
	v, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b.DMMode = uint8(v)
	v, err = r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b.DMVersionIndex = uint8(v)
	// The remaining 24 bits of the 40-bit required payload are reserved and
	// always zero in the observed corpus. RequiredBits covers them, so the
	// caller's padding step consumes none; they are read and discarded here.
	if _, err := r.ReadBits(24); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Level254) Write(w *bits.Writer) error {
	if err := w.WriteBits(uint64(b.DMMode), 8); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(b.DMVersionIndex), 8); err != nil {
		return err
	}
	return w.WriteBits(0, 24)
}

// Level255 is a reserved-filled scratch block with no assigned semantics.
type Level255 struct {
	Raw uint16
}

func (b *Level255) Level() uint8          { return 255 }
func (b *Level255) BytesSize() uint64     { return 2 }
func (b *Level255) RequiredBits() uint64  { return 16 }
func (b *Level255) SortKey() (uint8, uint16) { return 255, 0 }

func ParseLevel255(r *bits.Reader) (*Level255, error) {
	v, err := r.ReadBits(16)
	if err != nil {
		return nil, err
	}
	return &Level255{Raw: uint16(v)}, nil
}

func (b *Level255) Write(w *bits.Writer) error {
	return w.WriteBits(uint64(b.Raw), 16)
}

// Reserved preserves an unhandled level's raw payload bits verbatim, so
// round-trip is lossless even for levels this codec does not interpret
// (including the documented-unimplemented v4.0 levels 15 and 16).
type Reserved struct {
	Lvl  uint8
	Len  uint64 // bytes_size, as declared by ext_block_length.
	Bits []byte // required_bits worth of raw payload, MSB-first packed.
}

func (b *Reserved) Level() uint8          { return b.Lvl }
func (b *Reserved) BytesSize() uint64     { return b.Len }
func (b *Reserved) RequiredBits() uint64  { return b.Len * 8 }
func (b *Reserved) SortKey() (uint8, uint16) { return b.Lvl, 0 }

func ParseReserved(r *bits.Reader, level uint8, length uint64) (*Reserved, error) {
	raw := make([]byte, length)
	for i := range raw {
		v, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		raw[i] = byte(v)
	}
	return &Reserved{Lvl: level, Len: length, Bits: raw}, nil
}

func (b *Reserved) Write(w *bits.Writer) error {
	for _, v := range b.Bits {
		if err := w.WriteBits(uint64(v), 8); err != nil {
			return err
		}
	}
	return nil
}

func read16(r *bits.Reader, n int) (uint16, error) {
	v, err := r.ReadBits(n)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// signExtend interprets the low n bits of v as a two's-complement signed
// integer of width n.
func signExtend(v uint64, n int) int16 {
	signBit := uint64(1) << uint(n-1)
	if v&signBit != 0 {
		return int16(v) - int16(1<<uint(n))
	}
	return int16(v)
}
