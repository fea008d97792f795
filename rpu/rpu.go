/*
DESCRIPTION
  rpu.go implements the top-level DoviRpu orchestration: validated-and-
  trimmed leading-signature recognition, CRC-32 verification, header/
  mapping/DM-payload assembly, and the mirrored write path including HEVC
  unspec62 NAL unit framing.

AUTHORS
  Derived for the dovi RPU codec from the top-level Reader orchestration
  shape in github.com/ausocean/av/codec/h264/h264dec/read.go, which drives
  a sequence of sub-unit parsers (SPS/PPS/slice) off one bitstream the way
  DoviRpu drives header/mapping/DM off one RPU payload.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import (
	"github.com/doviproc/dovi/bits"
	"github.com/doviproc/dovi/nalu"
)

// finalByte is the mandatory byte following the CRC-32 at the end of every
// RPU payload.
const finalByte = 0x80

// DoviRpu is a fully parsed Dolby Vision RPU: header, optional per-component
// reshaping mapping, optional display-management metadata, and enough
// bookkeeping (remaining bits, trailing zero bytes, original size) to
// round-trip byte-for-byte when unmodified.
type DoviRpu struct {
	Profile Profile
	ELType  *ELType

	Header    *Header
	Mapping   *Mapping
	VdrDmData *VdrDmData

	// Remaining holds any bits between the end of the parsed payload and the
	// trailing CRC-32, preserved so an unmodified RPU round-trips exactly.
	Remaining []bool

	RpuDataCrc32 uint32
	Modified     bool

	trailingZeroes      int
	originalPayloadSize int
}

// leadingSignatures lists the recognised 5-byte prefixes accepted by
// validatedTrimmedData, most specific first, each paired with how many
// leading bytes to drop before the canonical rpu_nal_prefix (25) byte.
var leadingSignatures = []struct {
	match []int // -1 is a wildcard byte
	drop  int
}{
	{[]int{0, 0, 0, 1, 25}, 4},
	{[]int{0, 0, 1, 25, 8}, 3},
	{[]int{0, 1, 25, 8, 9}, 2},
	{[]int{0x7C, 1, 25, 8, 9}, 2},
	{[]int{1, 25, 8, 9, -1}, 1},
	{[]int{25, 8, 9, -1, -1}, 0},
}

// validatedTrimmedData checks data is long enough and its first five bytes
// match one of the recognised leading signatures, returning data with the
// signature's non-payload prefix dropped.
func validatedTrimmedData(data []byte) ([]byte, error) {
	if len(data) < 25 {
		return nil, ErrTruncatedPayload
	}
	head := data[:5]
	for _, sig := range leadingSignatures {
		if matchesSignature(head, sig.match) {
			return data[sig.drop:], nil
		}
	}
	return nil, ErrInvalidStartBytes
}

func matchesSignature(head []byte, sig []int) bool {
	for i, want := range sig {
		if want == -1 {
			continue
		}
		if int(head[i]) != want {
			return false
		}
	}
	return true
}

// ParseRPU parses a standalone RPU payload, e.g. as extracted from a
// container without HEVC NAL framing.
func ParseRPU(data []byte) (*DoviRpu, error) {
	trimmed, err := validatedTrimmedData(data)
	if err != nil {
		return nil, err
	}
	return parseTrimmed(trimmed)
}

// ParseUnspec62Nalu parses an RPU carried in an HEVC unspec62 NAL unit: the
// same leading-signature check, followed by start-code emulation
// prevention byte removal.
func ParseUnspec62Nalu(data []byte) (*DoviRpu, error) {
	trimmed, err := validatedTrimmedData(data)
	if err != nil {
		return nil, err
	}
	return parseTrimmed(nalu.Strip(trimmed))
}

// ParseListOfUnspec62Nalus parses every buffer, silently dropping any that
// fail to parse, matching DoviRpu::parse_list_of_unspec62_nalus() in
// source.
func ParseListOfUnspec62Nalus(bufs [][]byte) []*DoviRpu {
	out := make([]*DoviRpu, 0, len(bufs))
	for _, b := range bufs {
		if d, err := ParseUnspec62Nalu(b); err == nil {
			out = append(out, d)
		}
	}
	return out
}

func parseTrimmed(data []byte) (*DoviRpu, error) {
	trailingZeroes := 0
	for i := len(data) - 1; i >= 0 && data[i] == 0; i-- {
		trailingZeroes++
	}

	rpuEnd := len(data) - trailingZeroes
	if rpuEnd < 6 {
		return nil, ErrTruncatedPayload
	}
	lastByte := data[rpuEnd-1]
	crc32Start := rpuEnd - 5

	receivedCrc32 := crc32IEEE(data[1:crc32Start])

	if lastByte != finalByte {
		return nil, ErrInvalidStopByte
	}

	d, err := readRpuData(data, trailingZeroes)
	if err != nil {
		return nil, err
	}

	if receivedCrc32 != d.RpuDataCrc32 {
		return nil, ErrCrcMismatch
	}
	return d, nil
}

func readRpuData(buf []byte, trailingZeroes int) (*DoviRpu, error) {
	r := bits.NewReader(buf)
	finalLengthBits := 32 + 8 + trailingZeroes*8

	header, err := ParseHeader(r)
	if err != nil {
		return nil, err
	}

	profile := header.DoviProfile()
	if err := header.Validate(profile); err != nil {
		return nil, err
	}

	var mapping *Mapping
	if !header.UsePrevVdrRpuFlag {
		mapping, err = ParseMapping(r, header)
		if err != nil {
			return nil, err
		}
	}

	var elType *ELType
	if mapping != nil && mapping.Nlq != nil {
		e := mapping.Nlq.ELType()
		elType = &e
	}

	var dm *VdrDmData
	if header.VdrDmMetadataPresentFlag {
		dm, err = ParseVdrDmDataPayload(r, header, finalLengthBits)
		if err != nil {
			return nil, err
		}
	}

	for !r.IsByteAligned() {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if bit {
			return nil, ErrUnalignedZeroBitNotZero
		}
	}

	var remaining []bool
	for r.AvailableBits() != finalLengthBits {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		remaining = append(remaining, bit)
	}

	crc32, err := r.ReadBits(32)
	if err != nil {
		return nil, err
	}
	lastByte, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	if lastByte != finalByte {
		return nil, ErrInvalidStopByte
	}

	d := &DoviRpu{
		Profile:             profile,
		ELType:              elType,
		Header:              header,
		Mapping:             mapping,
		VdrDmData:           dm,
		Remaining:           remaining,
		RpuDataCrc32:        uint32(crc32),
		trailingZeroes:      trailingZeroes,
		originalPayloadSize: len(buf),
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate runs the header, mapping, and VDR-DM invariants.
func (d *DoviRpu) Validate() error {
	if err := d.Header.Validate(d.Profile); err != nil {
		return err
	}
	if d.Mapping != nil {
		if err := d.Mapping.Validate(d.Profile); err != nil {
			return err
		}
	}
	if d.VdrDmData != nil {
		if err := d.VdrDmData.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Write serializes d back to a standalone RPU payload, recomputing the
// CRC-32 and checking it against the stored value unless d.Modified.
func (d *DoviRpu) Write() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	w := bits.NewWriter()
	if err := d.Header.Write(w); err != nil {
		return nil, err
	}

	if d.Header.RpuType == 2 {
		if !d.Header.UsePrevVdrRpuFlag && d.Mapping != nil {
			if err := d.Mapping.Write(w, d.Header); err != nil {
				return nil, err
			}
		}
		if d.Header.VdrDmMetadataPresentFlag && d.VdrDmData != nil {
			if err := d.VdrDmData.Write(w, d.Header); err != nil {
				return nil, err
			}
		}
	}

	for _, bit := range d.Remaining {
		if err := w.WriteBool(bit); err != nil {
			return nil, err
		}
	}

	if err := w.AlignToByteWithZeros(); err != nil {
		return nil, err
	}

	partial, err := w.AsBytes()
	if err != nil {
		return nil, err
	}

	computed := crc32IEEE(partial[1:])
	if !d.Modified && computed != d.RpuDataCrc32 {
		return nil, ErrCrcMismatch
	}

	if err := w.WriteBits(uint64(computed), 32); err != nil {
		return nil, err
	}
	if err := w.WriteBits(finalByte, 8); err != nil {
		return nil, err
	}
	for i := 0; i < d.trailingZeroes; i++ {
		if err := w.WriteBits(0, 8); err != nil {
			return nil, err
		}
	}

	d.RpuDataCrc32 = computed
	return w.AsBytes()
}

// WriteHevcUnspec62Nalu serializes d and re-wraps it as an HEVC unspec62
// NAL unit: start-code emulation prevention bytes re-inserted, then the
// 0x7C 0x01 NAL unit header prepended.
func (d *DoviRpu) WriteHevcUnspec62Nalu() ([]byte, error) {
	out, err := d.Write()
	if err != nil {
		return nil, err
	}
	escaped := nalu.Insert(out)
	result := make([]byte, 0, len(escaped)+2)
	result = append(result, 0x7C, 0x01)
	result = append(result, escaped...)
	return result, nil
}

// GetEnhancementLayerType returns the MEL/FEL classification, if any.
func (d *DoviRpu) GetEnhancementLayerType() *ELType {
	return d.ELType
}
