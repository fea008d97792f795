/*
DESCRIPTION
  dm.go implements the VDR-DM payload: the static color-conversion/EOTF/
  source-PQ fields, the compressed-DM carve-out, and the optional CM v2.9
  / CM v4.0 container presence detection.

AUTHORS
  Derived for the dovi RPU codec from the same fieldReader sticky-error
  idiom as header.go and mapping.go, applied to the VDR-DM static fields
  described in spec section 4.7, grounded against
  original_source/dolby_vision/src/rpu/vdr_dm_data.rs for field order and
  the compressed-DM / v4.0-presence-watermark logic.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import (
	"sort"

	"github.com/doviproc/dovi/bits"
	"github.com/doviproc/dovi/rpu/extmeta"
)

// VdrDmData is the VDR display-management payload: static color/EOTF/
// source fields plus the two optional versioned extension-block
// containers.
type VdrDmData struct {
	// Compressed is true when the header's reserved_zero_3bits == 1: only
	// the three IDs below are carried on the wire and the remaining static
	// fields must be inherited from the most recent full DM payload.
	Compressed bool

	AffectedDmMetadataId uint64
	CurrentDmMetadataId  uint64
	SceneRefreshFlag     uint64

	YccToRgbCoef   [9]int16
	YccToRgbOffset [3]uint32
	RgbToLmsCoef   [9]int16

	SignalEotf          uint16
	SignalEotfParam0    uint16
	SignalEotfParam1    uint16
	SignalEotfParam2    uint32
	SignalBitDepth      uint8
	SignalColorSpace    uint8
	SignalChromaFormat  uint8
	SignalFullRangeFlag uint8

	SourceMinPQ    uint16
	SourceMaxPQ    uint16
	SourceDiagonal uint16

	CmV29 *CmV29
	CmV40 *CmV40
}

// ParseVdrDmDataPayload reads the VDR-DM payload: static fields (or just
// the compressed IDs), then an optional CM v2.9 container, then an
// optional CM v4.0 container gated on at least 16 more bits being
// available above finalLengthBits.
func ParseVdrDmDataPayload(r *bits.Reader, h *Header, finalLengthBits int) (*VdrDmData, error) {
	d := &VdrDmData{Compressed: h.ReservedZero3Bits == 1}
	fr := newFieldReader(r)

	d.AffectedDmMetadataId = fr.readUe()
	d.CurrentDmMetadataId = fr.readUe()
	d.SceneRefreshFlag = fr.readUe()

	if !d.Compressed {
		for i := range d.YccToRgbCoef {
			d.YccToRgbCoef[i] = readSigned16(fr)
		}
		for i := range d.YccToRgbOffset {
			d.YccToRgbOffset[i] = uint32(fr.readBits(32))
		}
		for i := range d.RgbToLmsCoef {
			d.RgbToLmsCoef[i] = readSigned16(fr)
		}
		d.SignalEotf = uint16(fr.readBits(16))
		d.SignalEotfParam0 = uint16(fr.readBits(16))
		d.SignalEotfParam1 = uint16(fr.readBits(16))
		d.SignalEotfParam2 = uint32(fr.readBits(32))
		d.SignalBitDepth = uint8(fr.readBits(5))
		d.SignalColorSpace = uint8(fr.readBits(2))
		d.SignalChromaFormat = uint8(fr.readBits(2))
		d.SignalFullRangeFlag = uint8(fr.readBits(2))
		d.SourceMinPQ = uint16(fr.readBits(12))
		d.SourceMaxPQ = uint16(fr.readBits(12))
		d.SourceDiagonal = uint16(fr.readBits(10))
	}

	if err := fr.err(); err != nil {
		return nil, err
	}

	numBlocks, err := r.ReadUE()
	if err != nil {
		return nil, err
	}
	if numBlocks > 0 {
		v29 := &CmV29{}
		if err := parseNBlocksInto(r, v29, numBlocks); err != nil {
			return nil, err
		}
		d.CmV29 = v29
	}

	if r.AvailableBits() >= finalLengthBits+16 {
		numBlocks, err := r.ReadUE()
		if err != nil {
			return nil, err
		}
		if numBlocks > 0 {
			v40 := &CmV40{}
			if err := parseNBlocksInto(r, v40, numBlocks); err != nil {
				return nil, err
			}
			d.CmV40 = v40
		}
	}

	return d, nil
}

// blockAdder is implemented by *CmV29 and *CmV40 for the shared
// count-driven parse loop below.
type blockAdder interface {
	AddBlock(extmeta.Block) error
}

// parseNBlocksInto byte-aligns r, then reads exactly n blocks into c.
func parseNBlocksInto(r *bits.Reader, c blockAdder, n uint64) error {
	for !r.IsByteAligned() {
		bit, err := r.ReadBool()
		if err != nil {
			return err
		}
		if bit {
			return ErrUnalignedZeroBitNotZero
		}
	}
	for i := uint64(0); i < n; i++ {
		block, err := extmeta.ParseBlock(r)
		if err != nil {
			return err
		}
		if err := c.AddBlock(block); err != nil {
			return err
		}
	}
	return nil
}

// Write serializes d's static fields (or just the compressed IDs) followed
// by the optional CM v2.9 / CM v4.0 containers.
func (d *VdrDmData) Write(w *bits.Writer, h *Header) error {
	fw := newFieldWriter(w)

	fw.writeUe(d.AffectedDmMetadataId)
	fw.writeUe(d.CurrentDmMetadataId)
	fw.writeUe(d.SceneRefreshFlag)

	if !d.Compressed {
		for _, v := range d.YccToRgbCoef {
			writeSigned16(fw, v)
		}
		for _, v := range d.YccToRgbOffset {
			fw.writeBits(uint64(v), 32)
		}
		for _, v := range d.RgbToLmsCoef {
			writeSigned16(fw, v)
		}
		fw.writeBits(uint64(d.SignalEotf), 16)
		fw.writeBits(uint64(d.SignalEotfParam0), 16)
		fw.writeBits(uint64(d.SignalEotfParam1), 16)
		fw.writeBits(uint64(d.SignalEotfParam2), 32)
		fw.writeBits(uint64(d.SignalBitDepth), 5)
		fw.writeBits(uint64(d.SignalColorSpace), 2)
		fw.writeBits(uint64(d.SignalChromaFormat), 2)
		fw.writeBits(uint64(d.SignalFullRangeFlag), 2)
		fw.writeBits(uint64(d.SourceMinPQ), 12)
		fw.writeBits(uint64(d.SourceMaxPQ), 12)
		fw.writeBits(uint64(d.SourceDiagonal), 10)
	}

	if err := fw.err(); err != nil {
		return err
	}

	if d.CmV29 != nil {
		if err := w.WriteUE(uint64(d.CmV29.NumExtBlocks())); err != nil {
			return err
		}
		if err := writeBlockContainerBody(w, d.CmV29.Blocks); err != nil {
			return err
		}
	} else {
		if err := w.WriteUE(0); err != nil {
			return err
		}
	}

	if d.CmV40 != nil {
		if err := w.WriteUE(uint64(d.CmV40.NumExtBlocks())); err != nil {
			return err
		}
		if err := writeBlockContainerBody(w, d.CmV40.Blocks); err != nil {
			return err
		}
	}

	return nil
}

// writeBlockContainerBody emits blocks in stable-sorted SortKey() order
// within the DM section, re-sorting defensively even though AddBlock already
// keeps each container's Blocks slice sorted.
func writeBlockContainerBody(w *bits.Writer, blocks []extmeta.Block) error {
	sorted := append([]extmeta.Block(nil), blocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		levelI, secondaryI := sorted[i].SortKey()
		levelJ, secondaryJ := sorted[j].SortKey()
		if levelI != levelJ {
			return levelI < levelJ
		}
		return secondaryI < secondaryJ
	})
	if err := w.AlignToByteWithZeros(); err != nil {
		return err
	}
	for _, b := range sorted {
		if err := extmeta.WriteBlock(w, b); err != nil {
			return err
		}
	}
	return nil
}

// Level6 returns the container's Level 6 HDR10-fallback block, checking
// v2.9 first (the version it is allowed in).
func (d *VdrDmData) Level6() *extmeta.Level6 {
	if d.CmV29 == nil {
		return nil
	}
	if b := d.CmV29.GetBlock(6); b != nil {
		return b.(*extmeta.Level6)
	}
	return nil
}

// SetSceneCut sets or clears SceneRefreshFlag, matching
// VdrDmData::set_scene_cut() in source.
func (d *VdrDmData) SetSceneCut(cut bool) {
	if cut {
		d.SceneRefreshFlag = 1
	} else {
		d.SceneRefreshFlag = 0
	}
}

// ReplaceMetadataBlock dispatches to the appropriate container's
// ReplaceBlock based on the block's level, matching
// VdrDmData::replace_metadata_block() in source.
func (d *VdrDmData) ReplaceMetadataBlock(block extmeta.Block) error {
	level := block.Level()
	if cmV29AllowedLevels[level] {
		if d.CmV29 == nil {
			d.CmV29 = &CmV29{}
		}
		return d.CmV29.ReplaceBlock(block)
	}
	if cmV40AllowedLevels[level] {
		if d.CmV40 == nil {
			d.CmV40 = &CmV40{}
		}
		return d.CmV40.ReplaceBlock(block)
	}
	return &BlockLevelNotAllowedInVersion{Level: level, Version: "any"}
}

// Validate runs the cross-field invariants from spec §3/§9 for the VDR-DM
// payload and delegates to whichever containers are present.
func (d *VdrDmData) Validate() error {
	if d.AffectedDmMetadataId > 15 {
		return &InvalidProfileField{Field: "affected_dm_metadata_id", Expected: "<=15", Got: d.AffectedDmMetadataId}
	}
	if !d.Compressed {
		if d.SignalBitDepth < 8 || d.SignalBitDepth > 16 {
			return &InvalidProfileField{Field: "signal_bit_depth", Expected: "8..16", Got: d.SignalBitDepth}
		}
		if d.SignalEotfParam0 == 0 && d.SignalEotfParam1 == 0 && d.SignalEotfParam2 == 0 && d.SignalEotf != 65535 {
			return &InvalidProfileField{Field: "signal_eotf", Expected: uint16(65535), Got: d.SignalEotf}
		}
	}
	if d.CmV29 != nil {
		if err := d.CmV29.Validate(); err != nil {
			return err
		}
	}
	if d.CmV40 != nil {
		if err := d.CmV40.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetP81Coeffs installs the canonical P8.1 color-conversion constants,
// matching VdrDmData::set_p81_coeffs() in source.
func (d *VdrDmData) SetP81Coeffs() {
	d.YccToRgbCoef = [9]int16{9574, 0, 13802, 9574, -1540, -5348, 9574, 17610, 0}
	d.YccToRgbOffset = [3]uint32{16777216, 134217728, 134217728}
	d.RgbToLmsCoef = [9]int16{7222, 8771, 390, 2654, 12430, 1300, 0, 422, 15962}
}

func readSigned16(fr *fieldReader) int16 {
	v := fr.readBits(16)
	return int16(uint16(v))
}

func writeSigned16(fw *fieldWriter, v int16) {
	fw.writeBits(uint64(uint16(v)), 16)
}
