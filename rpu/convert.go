/*
DESCRIPTION
  convert.go implements the profile conversion modes: lossless (no
  mutation), to-MEL, to-8.1 (with and without mapping curve preservation),
  to-8.4 (the iPhone-style static polynomial/MMR template), and the
  profile-5-specific path to 8.1.

AUTHORS
  Derived for the dovi RPU codec from original_source/dolby_vision/src/
  rpu/dovi_rpu.rs's convert_with_mode()/convert_to_mel()/convert_to_p81()/
  p5_to_p81()/convert_to_p84() and profiles/profile84.rs's predefined
  polynomial/MMR template, adapted to this package's mode-dispatch idiom
  used across editor.go and batch.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "gonum.org/v1/gonum/mat"

// ConversionMode selects a DoviRpu.Convert target.
type ConversionMode int

const (
	// Lossless leaves the RPU untouched and does not set Modified.
	Lossless ConversionMode = iota
	// ToMel forces the profile 7/8 enhancement layer to the MEL pattern.
	ToMel
	// To81 converts profile 7/8 to 8.1, discarding the reshaping mapping
	// (reset to identity) and any profile-5-only header state.
	To81
	// To81MappingPreserved converts profile 7/8 to 8.1 like To81, but keeps
	// the existing per-component reshaping curves instead of resetting them
	// to identity.
	To81MappingPreserved
	// To84 replaces the header and mapping with the canonical profile 8.4
	// (iPhone-style) polynomial/MMR template.
	To84
	// P5ToP81 converts profile 5 specifically to profile 8.1.
	P5ToP81
)

func (m ConversionMode) String() string {
	switch m {
	case Lossless:
		return "lossless"
	case ToMel:
		return "to_mel"
	case To81:
		return "to_81"
	case To81MappingPreserved:
		return "to_81_mapping_preserved"
	case To84:
		return "to_84"
	case P5ToP81:
		return "p5_to_81"
	default:
		return "unknown"
	}
}

// Convert mutates d in place per mode, setting d.Modified for every mode
// except Lossless, and refreshes d.Profile/d.ELType from the result.
func (d *DoviRpu) Convert(mode ConversionMode) error {
	if mode != Lossless {
		d.Modified = true
	}

	switch mode {
	case Lossless:
		// no mutation; Profile/ELType are refreshed below.
	case ToMel:
		if d.Profile != Profile7 && d.Profile != Profile8 {
			return &ConversionNotApplicable{FromProfile: int(d.Profile), Mode: mode.String()}
		}
		if err := d.convertToMel(); err != nil {
			return err
		}
	case To81:
		switch d.Profile {
		case Profile7, Profile8:
			d.convertToP81(true)
		case Profile5:
			if err := d.p5ToP81(); err != nil {
				return err
			}
		default:
			return &ConversionNotApplicable{FromProfile: int(d.Profile), Mode: mode.String()}
		}
	case To81MappingPreserved:
		switch d.Profile {
		case Profile7, Profile8:
			d.convertToP81(false)
		default:
			return &ConversionNotApplicable{FromProfile: int(d.Profile), Mode: mode.String()}
		}
	case To84:
		d.convertToP84()
	case P5ToP81:
		if d.Profile != Profile5 {
			return &ConversionNotApplicable{FromProfile: int(d.Profile), Mode: mode.String()}
		}
		if err := d.p5ToP81(); err != nil {
			return err
		}
	}

	d.Profile = d.Header.DoviProfile()
	if d.Mapping != nil && d.Mapping.Nlq != nil {
		e := d.Mapping.Nlq.ELType()
		d.ELType = &e
	} else {
		d.ELType = nil
	}
	return nil
}

func (d *DoviRpu) convertToMel() error {
	d.Header.ElSpatialResamplingFilterFlag = true
	d.Header.DisableResidualFlag = false

	if d.Mapping == nil {
		return nil
	}
	idc := uint8(nlqMethodLinearDeadzone)
	d.Header.NlqMethodIdc = &idc
	zero := uint64(0)
	d.Header.NlqNumPivotsMinus2 = &zero
	d.Header.NlqPredPivotValue = []uint16{0, 1023}

	if d.Mapping.Nlq != nil {
		d.Mapping.Nlq.ConvertToMEL()
	} else if d.Profile == Profile8 {
		d.Mapping.Nlq = MELDefault()
	} else {
		return ErrNotProfile7Or8
	}
	return nil
}

// convertToP81 switches the header to the 8.1 short form and, when
// resetMapping is true, discards the reshaping curves and NLQ state in
// favor of the identity mapping (matching convert_to_p81() in source);
// when false, only the header/NLQ fields are cleared and the existing
// curves are kept (the mapping-preserved variant).
func (d *DoviRpu) convertToP81(resetMapping bool) {
	d.Modified = true

	d.Header.ElSpatialResamplingFilterFlag = false
	d.Header.DisableResidualFlag = true

	if d.Mapping != nil {
		d.Header.NlqMethodIdc = nil
		d.Header.NlqNumPivotsMinus2 = nil
		d.Header.NlqPredPivotValue = nil
		d.Mapping.Nlq = nil

		if resetMapping {
			d.RemoveMapping()
		}
	}

	if d.VdrDmData != nil {
		d.VdrDmData.SetP81Coeffs()
	}
}

// RemoveMapping resets every component curve to a flat two-pivot identity
// segment and clears the header's partition counts, matching
// DoviRpu::remove_mapping() in source.
func (d *DoviRpu) RemoveMapping() {
	d.Modified = true
	if d.Mapping == nil {
		return
	}
	d.Header.NumXPartitionsMinus1 = 0
	d.Header.NumYPartitionsMinus1 = 0
	for c := 0; c < 3; c++ {
		d.Header.NumPivotsMinus2[c] = 0
		d.Header.PredPivotValue[c] = []uint16{0, 1023}
	}
	*d.Mapping = *IdentityMapping()
}

func (d *DoviRpu) p5ToP81() error {
	if d.Profile != Profile5 {
		return ErrNotProfile5
	}
	d.Modified = true

	d.convertToP81(true)

	d.Header.VdrRpuProfile = 1
	d.Header.BlVideoFullRangeFlag = false

	if d.VdrDmData != nil {
		d.VdrDmData.SetP81Coeffs()
	}
	return nil
}

func (d *DoviRpu) convertToP84() {
	d.convertToP81(true)
	d.Header = P8Default()
	d.Header.NumPivotsMinus2[0] = 7
	d.Header.PredPivotValue[0] = append([]uint16(nil), profile84LumaPivots...)
	d.Mapping = Profile84Mapping()
}

// profile84LumaPivots are the 9 luma pivot values (num_pivots_minus2 == 7)
// for the canonical profile 8.4 template.
var profile84LumaPivots = []uint16{63, 69, 230, 256, 256, 37, 16, 8, 7}

// Profile84Mapping returns the canonical profile 8.4 (iPhone-style) luma
// polynomial / chroma MMR reshaping curves, matching
// Profile84::rpu_data_mapping() in source.
func Profile84Mapping() *Mapping {
	lumaPolyOrder := []uint64{1, 1, 1, 1, 1, 1, 1, 1}
	lumaPolyCoefInt := [][]int64{
		{-1, 1, -3}, {-1, 1, -2}, {0, 0, -1}, {0, 0, 0},
		{0, -2, 1}, {6, -14, 8}, {13, -30, 16}, {28, -62, 34},
	}
	lumaPolyCoef := [][]uint64{
		{7978928, 8332855, 4889184}, {8269552, 5186604, 3909327},
		{1317527, 5338528, 7440486}, {2119979, 2065496, 2288524},
		{7982780, 5409990, 1585336}, {3460436, 3197328, 615464},
		{3921968, 6820672, 5546752}, {1947392, 1244640, 6094272},
	}
	lumaSegs := make([]*Segment, len(lumaPolyOrder))
	for i := range lumaSegs {
		lumaSegs[i] = &Segment{
			MappingIdc:      mappingIdcPolynomial,
			PolyOrderMinus1: lumaPolyOrder[i],
			PolyCoefInt:     append([]int64(nil), lumaPolyCoefInt[i]...),
			PolyCoef:        append([]uint64(nil), lumaPolyCoef[i]...),
		}
	}

	chroma1 := mmrSegment(1, 1150183,
		[][]int64{
			{-1, -2, -5, 2, 5, 9, -12},
			{-1, -1, 3, -1, -5, -12, 18},
			{-1, 0, -2, 0, 2, 7, -19},
		},
		[][]uint64{
			{87355, 6228986, 642500, 1023296, 6569512, 5128216, 4317296},
			{8299905, 5819931, 2324124, 7273546, 1562484, 3679480, 6357360},
			{8172981, 3261951, 5970055, 927142, 3525840, 5110348, 6236848},
		})

	chroma2 := mmrSegment(-2, 6266112,
		[][]int64{
			{4, 0, 5, -2, -8, -1, 1},
			{-4, -1, -6, 1, 12, 0, -4},
			{1, 0, 2, -1, -8, -1, 4},
		},
		[][]uint64{
			{193104, 5369128, 2553116, 8009648, 2772020, 3122453, 2961581},
			{6769788, 2565605, 7864496, 4777288, 649616, 7036536, 1666406},
			{406265, 2901521, 2680224, 146340, 1008052, 4366810, 5080852},
		})

	return &Mapping{
		Curves: [3]ComponentCurve{
			{Segments: lumaSegs},
			{Segments: []*Segment{chroma1}},
			{Segments: []*Segment{chroma2}},
		},
	}
}

// mmrSegment builds an MMR segment with mmr_order_minus1 == 2 from its
// constant and its 3x7 integer/fractional coefficient rows.
func mmrSegment(constantInt int64, constant uint64, coefInt [][]int64, coef [][]uint64) *Segment {
	rows := len(coefInt)
	intM := mat.NewDense(rows, 7, nil)
	fracM := mat.NewDense(rows, 7, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < 7; j++ {
			intM.Set(i, j, float64(coefInt[i][j]))
			fracM.Set(i, j, float64(coef[i][j]))
		}
	}
	return &Segment{
		MappingIdc:     mappingIdcMMR,
		MmrOrderMinus1: 2,
		MmrConstantInt: constantInt,
		MmrConstant:    constant,
		MmrCoefInt:     intM,
		MmrCoef:        fracM,
	}
}
