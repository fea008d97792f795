/*
DESCRIPTION
  levels_variable.go implements the length-variable extension metadata
  blocks: Level 8 (per-display trims), Level 9 (source primaries), and
  Level 10 (per-display target PQ/primaries). Each carries a `length`
  field selecting how much of its payload is actually serialized; the
  remainder defaults to zero on parse.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package extmeta

import (
	"github.com/doviproc/dovi/bits"
	"github.com/pkg/errors"
)

var level8Lengths = []uint64{10, 12, 13, 19, 25}
var level9Lengths = []uint64{1, 17}
var level10Lengths = []uint64{5, 21}

// Level8 carries a per-target-display trim pass, length-variable.
type Level8 struct {
	Length uint64

	TargetDisplayIndex uint8
	TrimSlope          uint16
	TrimOffset         uint16
	TrimPower          uint16
	TrimChromaWeight   uint16
	TrimSaturationGain uint16
	MSWeight           int16

	// length >= 12
	TargetMidContrast uint16

	// length >= 13
	ClipTrim uint16

	// length >= 19
	SaturationVector [6]uint8

	// length >= 25
	HueVector [6]uint8
}

func (b *Level8) Level() uint8 { return 8 }
func (b *Level8) BytesSize() uint64 { return b.Length }
func (b *Level8) SortKey() (uint8, uint16) { return 8, uint16(b.TargetDisplayIndex) }

func (b *Level8) RequiredBits() uint64 {
	switch {
	case b.Length >= 25:
		return 200
	case b.Length >= 19:
		return 152
	case b.Length >= 13:
		return 104
	case b.Length >= 12:
		return 96
	default:
		return 80
	}
}

func validLevel8Length(length uint64) bool {
	for _, l := range level8Lengths {
		if l == length {
			return true
		}
	}
	return false
}

func ParseLevel8(r *bits.Reader, length uint64) (*Level8, error) {
	if !validLevel8Length(length) {
		return nil, &BadBlockLength{Level: 8, Expected: level8Lengths, Got: length}
	}
	b := &Level8{Length: length}
	v, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b.TargetDisplayIndex = uint8(v)
	for _, dst := range []*uint16{&b.TrimSlope, &b.TrimOffset, &b.TrimPower, &b.TrimChromaWeight, &b.TrimSaturationGain} {
		*dst, err = read16(r, 12)
		if err != nil {
			return nil, err
		}
	}
	v, err = r.ReadBits(12)
	if err != nil {
		return nil, err
	}
	b.MSWeight = signExtend(v, 12)

	if length >= 12 {
		if b.TargetMidContrast, err = read16(r, 12); err != nil {
			return nil, err
		}
	}
	if length >= 13 {
		if b.ClipTrim, err = read16(r, 12); err != nil {
			return nil, err
		}
	}
	if length >= 19 {
		for i := range b.SaturationVector {
			v, err := r.ReadBits(8)
			if err != nil {
				return nil, err
			}
			b.SaturationVector[i] = uint8(v)
		}
	}
	if length >= 25 {
		for i := range b.HueVector {
			v, err := r.ReadBits(8)
			if err != nil {
				return nil, err
			}
			b.HueVector[i] = uint8(v)
		}
	}
	return b, nil
}

func (b *Level8) Write(w *bits.Writer) error {
	if !validLevel8Length(b.Length) {
		return &BadBlockLength{Level: 8, Expected: level8Lengths, Got: b.Length}
	}
	if err := w.WriteBits(uint64(b.TargetDisplayIndex), 8); err != nil {
		return err
	}
	for _, v := range []uint16{b.TrimSlope, b.TrimOffset, b.TrimPower, b.TrimChromaWeight, b.TrimSaturationGain} {
		if err := w.WriteBits(uint64(v), 12); err != nil {
			return err
		}
	}
	if err := w.WriteBits(uint64(uint16(b.MSWeight))&0x0fff, 12); err != nil {
		return err
	}
	if b.Length >= 12 {
		if err := w.WriteBits(uint64(b.TargetMidContrast), 12); err != nil {
			return err
		}
	}
	if b.Length >= 13 {
		if err := w.WriteBits(uint64(b.ClipTrim), 12); err != nil {
			return err
		}
	}
	if b.Length >= 19 {
		for _, v := range b.SaturationVector {
			if err := w.WriteBits(uint64(v), 8); err != nil {
				return err
			}
		}
	}
	if b.Length >= 25 {
		for _, v := range b.HueVector {
			if err := w.WriteBits(uint64(v), 8); err != nil {
				return err
			}
		}
	}
	return nil
}

// Level9 carries the source color primaries, length-variable.
type Level9 struct {
	Length              uint64
	SourcePrimaryIndex  uint8

	// Present only when Length > 1 (custom primaries).
	SourcePrimaryRedX   uint16
	SourcePrimaryRedY   uint16
	SourcePrimaryGreenX uint16
	SourcePrimaryGreenY uint16
	SourcePrimaryBlueX  uint16
	SourcePrimaryBlueY  uint16
	SourcePrimaryWhiteX uint16
	SourcePrimaryWhiteY uint16
}

func (b *Level9) Level() uint8 { return 9 }
func (b *Level9) BytesSize() uint64 { return b.Length }
func (b *Level9) SortKey() (uint8, uint16) { return 9, uint16(b.SourcePrimaryIndex) }

func (b *Level9) RequiredBits() uint64 {
	if b.Length > 1 {
		return 136
	}
	return 8
}

// DefaultLevel9 is the generator's DCI-P3 D65 default: length 1, index 0.
func DefaultLevel9() *Level9 { return &Level9{Length: 1, SourcePrimaryIndex: 0} }

func validLevel9Length(length uint64) bool {
	for _, l := range level9Lengths {
		if l == length {
			return true
		}
	}
	return false
}

func ParseLevel9(r *bits.Reader, length uint64) (*Level9, error) {
	if !validLevel9Length(length) {
		return nil, &BadBlockLength{Level: 9, Expected: level9Lengths, Got: length}
	}
	b := &Level9{Length: length}
	v, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b.SourcePrimaryIndex = uint8(v)
	if length > 1 {
		for _, dst := range []*uint16{
			&b.SourcePrimaryRedX, &b.SourcePrimaryRedY,
			&b.SourcePrimaryGreenX, &b.SourcePrimaryGreenY,
			&b.SourcePrimaryBlueX, &b.SourcePrimaryBlueY,
			&b.SourcePrimaryWhiteX, &b.SourcePrimaryWhiteY,
		} {
			*dst, err = read16(r, 16)
			if err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func (b *Level9) Write(w *bits.Writer) error {
	if !validLevel9Length(b.Length) {
		return &BadBlockLength{Level: 9, Expected: level9Lengths, Got: b.Length}
	}
	if err := w.WriteBits(uint64(b.SourcePrimaryIndex), 8); err != nil {
		return err
	}
	if b.Length > 1 {
		for _, v := range []uint16{
			b.SourcePrimaryRedX, b.SourcePrimaryRedY,
			b.SourcePrimaryGreenX, b.SourcePrimaryGreenY,
			b.SourcePrimaryBlueX, b.SourcePrimaryBlueY,
			b.SourcePrimaryWhiteX, b.SourcePrimaryWhiteY,
		} {
			if err := w.WriteBits(uint64(v), 16); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate checks the source/custom-primary consistency rule: a custom
// primary set requires the sentinel index 255, and a named index requires
// no custom primary set.
func (b *Level9) Validate() error {
	if b.Length > 1 {
		if b.SourcePrimaryIndex != 255 {
			return errors.Errorf("extmeta: level 9: custom primaries require index 255, got %d", b.SourcePrimaryIndex)
		}
		return nil
	}
	if b.SourcePrimaryIndex == 255 {
		return errors.New("extmeta: level 9: index 255 requires custom primaries (length 17)")
	}
	return nil
}

// Level10 carries a per-target-display mastering PQ range and primary
// index, length-variable.
type Level10 struct {
	Length             uint64
	TargetDisplayIndex uint8
	TargetMaxPQ        uint16
	TargetMinPQ        uint16
	TargetPrimaryIndex uint8

	// Present only when Length > 5 (custom primaries).
	TargetPrimaryRedX   uint16
	TargetPrimaryRedY   uint16
	TargetPrimaryGreenX uint16
	TargetPrimaryGreenY uint16
	TargetPrimaryBlueX  uint16
	TargetPrimaryBlueY  uint16
	TargetPrimaryWhiteX uint16
	TargetPrimaryWhiteY uint16
}

func (b *Level10) Level() uint8 { return 10 }
func (b *Level10) BytesSize() uint64 { return b.Length }
func (b *Level10) SortKey() (uint8, uint16) { return 10, uint16(b.TargetDisplayIndex) }

func (b *Level10) RequiredBits() uint64 {
	if b.Length > 5 {
		return 168
	}
	return 40
}

func validLevel10Length(length uint64) bool {
	for _, l := range level10Lengths {
		if l == length {
			return true
		}
	}
	return false
}

func ParseLevel10(r *bits.Reader, length uint64) (*Level10, error) {
	if !validLevel10Length(length) {
		return nil, &BadBlockLength{Level: 10, Expected: level10Lengths, Got: length}
	}
	b := &Level10{Length: length}
	v, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b.TargetDisplayIndex = uint8(v)
	if b.TargetMaxPQ, err = read16(r, 12); err != nil {
		return nil, err
	}
	if b.TargetMinPQ, err = read16(r, 12); err != nil {
		return nil, err
	}
	v, err = r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b.TargetPrimaryIndex = uint8(v)
	if length > 5 {
		for _, dst := range []*uint16{
			&b.TargetPrimaryRedX, &b.TargetPrimaryRedY,
			&b.TargetPrimaryGreenX, &b.TargetPrimaryGreenY,
			&b.TargetPrimaryBlueX, &b.TargetPrimaryBlueY,
			&b.TargetPrimaryWhiteX, &b.TargetPrimaryWhiteY,
		} {
			*dst, err = read16(r, 16)
			if err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func (b *Level10) Write(w *bits.Writer) error {
	if !validLevel10Length(b.Length) {
		return &BadBlockLength{Level: 10, Expected: level10Lengths, Got: b.Length}
	}
	if err := w.WriteBits(uint64(b.TargetDisplayIndex), 8); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(b.TargetMaxPQ), 12); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(b.TargetMinPQ), 12); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(b.TargetPrimaryIndex), 8); err != nil {
		return err
	}
	if b.Length > 5 {
		for _, v := range []uint16{
			b.TargetPrimaryRedX, b.TargetPrimaryRedY,
			b.TargetPrimaryGreenX, b.TargetPrimaryGreenY,
			b.TargetPrimaryBlueX, b.TargetPrimaryBlueY,
			b.TargetPrimaryWhiteX, b.TargetPrimaryWhiteY,
		} {
			if err := w.WriteBits(uint64(v), 16); err != nil {
				return err
			}
		}
	}
	return nil
}
