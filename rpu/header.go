/*
DESCRIPTION
  header.go implements the RPU header codec: field parsing/writing in
  payload order, profile derivation, and cross-field validation.

AUTHORS
  Derived for the dovi RPU codec from the component/array-shaped,
  flag-gated field parsing idiom in
  github.com/ausocean/av/codec/h264/h264dec/sps.go, using the
  fieldReader/fieldWriter sticky-error helpers in this package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "github.com/doviproc/dovi/bits"

// Profile is the derived Dolby Vision profile number.
type Profile int

const (
	ProfileUnknown Profile = 0
	Profile4       Profile = 4
	Profile5       Profile = 5
	Profile7       Profile = 7
	Profile8       Profile = 8
)

// Header holds the RPU header fields, parsed in the exact bitstream order
// described in the payload layout.
type Header struct {
	RpuNalPrefix uint8
	RpuType      uint8
	RpuFormat    uint16
	VdrRpuProfile uint8
	VdrRpuLevel   uint8

	VdrSeqInfoPresentFlag bool

	// Present only when VdrSeqInfoPresentFlag.
	ChromaResamplingExplicitFilterFlag bool
	CoefficientDataType                uint8
	CoefficientLog2Denom               uint64 // present only when CoefficientDataType == 0
	VdrRpuNormalizedIdc                uint8
	BlVideoFullRangeFlag                bool

	// Present only when VdrSeqInfoPresentFlag && rpu_format&0x700==0.
	BlBitDepthMinus8                uint64
	ElBitDepthMinus8                uint64
	VdrBitDepthMinus8               uint64
	SpatialResamplingFilterFlag     bool
	ReservedZero3Bits               uint8
	ElSpatialResamplingFilterFlag   bool
	DisableResidualFlag             bool

	VdrDmMetadataPresentFlag bool
	UsePrevVdrRpuFlag        bool
	PrevVdrRpuId             uint64 // present only when UsePrevVdrRpuFlag

	// Present only when !UsePrevVdrRpuFlag.
	VdrRpuId               uint64
	MappingColorSpace      uint64
	MappingChromaFormatIdc uint64
	NumPivotsMinus2        [3]uint64
	PredPivotValue         [3][]uint16

	// NLQ pivot gating fields, present only when the NLQ section applies
	// (rpu_format&0x700==0 && !DisableResidualFlag).
	NlqMethodIdc       *uint8
	NlqNumPivotsMinus2 *uint64
	NlqPredPivotValue  []uint16 // exactly two entries when present

	NumXPartitionsMinus1 uint64
	NumYPartitionsMinus1 uint64
}

// hasShortFormat reports whether the header's short-form fields (bit
// depths, EL resampling/residual flags) are present, per rpu_format&0x700==0.
func (h *Header) hasShortFormat() bool {
	return h.RpuFormat&0x700 == 0
}

// hasNLQGate reports whether the bitstream carries the NLQ gating fields
// (nlq_method_idc and nlq_pred_pivot_value) in the header.
func (h *Header) hasNLQGate() bool {
	return h.hasShortFormat() && !h.DisableResidualFlag
}

// ParseHeader reads a Header from r, in payload order.
func ParseHeader(r *bits.Reader) (*Header, error) {
	fr := newFieldReader(r)
	h := &Header{}

	h.RpuNalPrefix = uint8(fr.readBits(8))
	h.RpuType = uint8(fr.readBits(6))
	h.RpuFormat = uint16(fr.readBits(11))
	h.VdrRpuProfile = uint8(fr.readBits(4))
	h.VdrRpuLevel = uint8(fr.readBits(4))
	h.VdrSeqInfoPresentFlag = fr.readBool()

	if h.VdrSeqInfoPresentFlag {
		h.ChromaResamplingExplicitFilterFlag = fr.readBool()
		h.CoefficientDataType = uint8(fr.readBits(2))
		if h.CoefficientDataType == 0 {
			h.CoefficientLog2Denom = fr.readUe()
		}
		h.VdrRpuNormalizedIdc = uint8(fr.readBits(2))
		h.BlVideoFullRangeFlag = fr.readBool()

		if h.hasShortFormat() {
			h.BlBitDepthMinus8 = fr.readUe()
			h.ElBitDepthMinus8 = fr.readUe()
			h.VdrBitDepthMinus8 = fr.readUe()
			h.SpatialResamplingFilterFlag = fr.readBool()
			h.ReservedZero3Bits = uint8(fr.readBits(3))
			h.ElSpatialResamplingFilterFlag = fr.readBool()
			h.DisableResidualFlag = fr.readBool()
		}
	}

	h.VdrDmMetadataPresentFlag = fr.readBool()
	h.UsePrevVdrRpuFlag = fr.readBool()

	if h.UsePrevVdrRpuFlag {
		h.PrevVdrRpuId = fr.readUe()
		if err := fr.err(); err != nil {
			return nil, err
		}
		return h, nil
	}

	h.VdrRpuId = fr.readUe()
	h.MappingColorSpace = fr.readUe()
	h.MappingChromaFormatIdc = fr.readUe()

	pivotWidth := int(h.BlBitDepthMinus8) + 8
	for c := 0; c < 3; c++ {
		h.NumPivotsMinus2[c] = fr.readUe()
		n := h.NumPivotsMinus2[c] + 2
		vals := make([]uint16, n)
		for i := range vals {
			vals[i] = uint16(fr.readBits(pivotWidth))
		}
		h.PredPivotValue[c] = vals
	}

	if h.hasNLQGate() {
		idc := uint8(fr.readBits(3))
		h.NlqMethodIdc = &idc
		zero := uint64(0)
		h.NlqNumPivotsMinus2 = &zero
		h.NlqPredPivotValue = []uint16{
			uint16(fr.readBits(pivotWidth)),
			uint16(fr.readBits(pivotWidth)),
		}
	}

	h.NumXPartitionsMinus1 = fr.readUe()
	h.NumYPartitionsMinus1 = fr.readUe()

	if err := fr.err(); err != nil {
		return nil, err
	}
	return h, nil
}

// Write serializes h in payload order, mirroring ParseHeader.
func (h *Header) Write(w *bits.Writer) error {
	fw := newFieldWriter(w)

	fw.writeBits(uint64(h.RpuNalPrefix), 8)
	fw.writeBits(uint64(h.RpuType), 6)
	fw.writeBits(uint64(h.RpuFormat), 11)
	fw.writeBits(uint64(h.VdrRpuProfile), 4)
	fw.writeBits(uint64(h.VdrRpuLevel), 4)
	fw.writeBool(h.VdrSeqInfoPresentFlag)

	if h.VdrSeqInfoPresentFlag {
		fw.writeBool(h.ChromaResamplingExplicitFilterFlag)
		fw.writeBits(uint64(h.CoefficientDataType), 2)
		if h.CoefficientDataType == 0 {
			fw.writeUe(h.CoefficientLog2Denom)
		}
		fw.writeBits(uint64(h.VdrRpuNormalizedIdc), 2)
		fw.writeBool(h.BlVideoFullRangeFlag)

		if h.hasShortFormat() {
			fw.writeUe(h.BlBitDepthMinus8)
			fw.writeUe(h.ElBitDepthMinus8)
			fw.writeUe(h.VdrBitDepthMinus8)
			fw.writeBool(h.SpatialResamplingFilterFlag)
			fw.writeBits(uint64(h.ReservedZero3Bits), 3)
			fw.writeBool(h.ElSpatialResamplingFilterFlag)
			fw.writeBool(h.DisableResidualFlag)
		}
	}

	fw.writeBool(h.VdrDmMetadataPresentFlag)
	fw.writeBool(h.UsePrevVdrRpuFlag)

	if h.UsePrevVdrRpuFlag {
		fw.writeUe(h.PrevVdrRpuId)
		return fw.err()
	}

	fw.writeUe(h.VdrRpuId)
	fw.writeUe(h.MappingColorSpace)
	fw.writeUe(h.MappingChromaFormatIdc)

	pivotWidth := int(h.BlBitDepthMinus8) + 8
	for c := 0; c < 3; c++ {
		fw.writeUe(h.NumPivotsMinus2[c])
		for _, v := range h.PredPivotValue[c] {
			fw.writeBits(uint64(v), pivotWidth)
		}
	}

	if h.hasNLQGate() {
		fw.writeBits(uint64(*h.NlqMethodIdc), 3)
		for _, v := range h.NlqPredPivotValue {
			fw.writeBits(uint64(v), pivotWidth)
		}
	}

	fw.writeUe(h.NumXPartitionsMinus1)
	fw.writeUe(h.NumYPartitionsMinus1)

	return fw.err()
}

// DoviProfile implements the get_dovi_profile() decision tree (spec §4.4).
func (h *Header) DoviProfile() Profile {
	switch {
	case h.VdrRpuProfile == 0 && h.BlVideoFullRangeFlag:
		return Profile5
	case h.VdrRpuProfile == 1 && h.ElSpatialResamplingFilterFlag && !h.DisableResidualFlag:
		if h.VdrBitDepthMinus8 == 4 {
			return Profile7
		}
		return Profile4
	case h.VdrRpuProfile == 1 && (!h.ElSpatialResamplingFilterFlag || h.DisableResidualFlag):
		return Profile8
	default:
		return ProfileUnknown
	}
}

// Validate runs the cross-field invariants from spec §3 for the given
// derived profile.
func (h *Header) Validate(profile Profile) error {
	if h.RpuNalPrefix != 25 {
		return &InvalidProfileField{Field: "rpu_nal_prefix", Expected: uint8(25), Got: h.RpuNalPrefix}
	}
	if h.BlBitDepthMinus8 != 2 {
		return &InvalidProfileField{Field: "bl_bit_depth_minus8", Expected: uint64(2), Got: h.BlBitDepthMinus8}
	}
	if h.ElBitDepthMinus8 != 2 {
		return &InvalidProfileField{Field: "el_bit_depth_minus8", Expected: uint64(2), Got: h.ElBitDepthMinus8}
	}
	if h.VdrBitDepthMinus8 > 6 {
		return &InvalidProfileField{Field: "vdr_bit_depth_minus_8", Expected: "<=6", Got: h.VdrBitDepthMinus8}
	}
	if h.MappingColorSpace != 0 {
		return &InvalidProfileField{Field: "mapping_color_space", Expected: uint64(0), Got: h.MappingColorSpace}
	}
	if h.MappingChromaFormatIdc != 0 {
		return &InvalidProfileField{Field: "mapping_chroma_format_idc", Expected: uint64(0), Got: h.MappingChromaFormatIdc}
	}
	if h.CoefficientLog2Denom > 23 {
		return &InvalidProfileField{Field: "coefficient_log2_denom", Expected: "<=23", Got: h.CoefficientLog2Denom}
	}

	switch profile {
	case Profile5:
		if h.VdrRpuProfile != 0 {
			return &InvalidProfileField{Field: "vdr_rpu_profile", Expected: uint8(0), Got: h.VdrRpuProfile}
		}
		if !h.BlVideoFullRangeFlag {
			return &InvalidProfileField{Field: "bl_video_full_range_flag", Expected: true, Got: false}
		}
		if h.NlqMethodIdc != nil {
			return &InvalidProfileField{Field: "nlq_method_idc", Expected: nil, Got: *h.NlqMethodIdc}
		}
	case Profile7:
		if h.VdrRpuProfile != 1 {
			return &InvalidProfileField{Field: "vdr_rpu_profile", Expected: uint8(1), Got: h.VdrRpuProfile}
		}
		if h.NlqMethodIdc == nil {
			return &InvalidProfileField{Field: "nlq_method_idc", Expected: "present", Got: nil}
		}
		if len(h.NlqPredPivotValue) == 2 {
			if int(h.NlqPredPivotValue[0])+int(h.NlqPredPivotValue[1]) != 1023 {
				return ErrNlqPivotSumInvalid
			}
		}
	case Profile8:
		if h.VdrRpuProfile != 1 {
			return &InvalidProfileField{Field: "vdr_rpu_profile", Expected: uint8(1), Got: h.VdrRpuProfile}
		}
		if h.NlqMethodIdc != nil {
			return &InvalidProfileField{Field: "nlq_method_idc", Expected: nil, Got: *h.NlqMethodIdc}
		}
	}
	return nil
}

// P5Default returns the canonical profile-5 header defaults, matching the
// original's RpuDataHeader::p5_default().
func P5Default() *Header {
	h := P8Default()
	h.VdrRpuProfile = 0
	h.BlVideoFullRangeFlag = true
	return h
}

// P8Default returns the canonical profile-8 header defaults used by the
// generator and by the To84 conversion, matching the original's
// RpuDataHeader::p8_default().
func P8Default() *Header {
	return &Header{
		RpuNalPrefix:                        25,
		RpuType:                             2,
		RpuFormat:                           18,
		VdrRpuProfile:                       1,
		VdrRpuLevel:                         0,
		VdrSeqInfoPresentFlag:               true,
		ChromaResamplingExplicitFilterFlag:  false,
		CoefficientDataType:                 0,
		CoefficientLog2Denom:                23,
		VdrRpuNormalizedIdc:                 1,
		BlVideoFullRangeFlag:                false,
		BlBitDepthMinus8:                    2,
		ElBitDepthMinus8:                    2,
		VdrBitDepthMinus8:                   4,
		SpatialResamplingFilterFlag:         false,
		ReservedZero3Bits:                   0,
		ElSpatialResamplingFilterFlag:       false,
		DisableResidualFlag:                 true,
		VdrDmMetadataPresentFlag:            true,
		UsePrevVdrRpuFlag:                   false,
		PrevVdrRpuId:                        0,
		VdrRpuId:                            0,
		MappingColorSpace:                   0,
		MappingChromaFormatIdc:              0,
		NumPivotsMinus2:                     [3]uint64{0, 0, 0},
		PredPivotValue: [3][]uint16{
			{0, 1023}, {0, 1023}, {0, 1023},
		},
		NumXPartitionsMinus1: 0,
		NumYPartitionsMinus1: 0,
	}
}
