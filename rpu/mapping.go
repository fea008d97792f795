/*
DESCRIPTION
  mapping.go implements the per-component reshaping-curve codec: the
  polynomial/MMR pivot segments described in spec section 4.5, using the
  same fieldReader/fieldWriter sticky-error helpers as header.go. MMR
  coefficient matrices are gonum *mat.Dense values (SPEC_FULL §3.2) rather
  than [][]float64, since the shape really is a matrix even though nothing
  in this module ever multiplies it against pixel data.

AUTHORS
  Derived for the dovi RPU codec from the same fieldReader sticky-error
  idiom as header.go, applied to the jagged, flag-gated coefficient arrays
  this section parses.

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
	"gonum.org/v1/gonum/mat"
)

const (
	mappingIdcPolynomial = 0
	mappingIdcMMR        = 1

	nlqMethodLinearDeadzone = 0
)

// ELType distinguishes the profile 7 enhancement-layer sub-variant.
type ELType int

const (
	ELTypeFEL ELType = iota
	ELTypeMEL
)

// Segment holds one pivot segment's mapping_idc-selected payload: either a
// polynomial or an MMR curve, never both.
type Segment struct {
	MappingIdc                   uint64
	MappingParamPredFlag         bool
	DiffPredPartIdxMappingMinus1 uint64

	// Polynomial branch (MappingIdc == 0).
	PolyOrderMinus1          uint64
	LinearInterpFlag         bool
	PredLinearInterpValueInt int64
	PredLinearInterpValue    uint64
	PolyCoefInt              []int64
	PolyCoef                 []uint64

	// MMR branch (MappingIdc == 1).
	MmrOrderMinus1  uint8
	MmrConstantInt  int64
	MmrConstant     uint64
	MmrCoefInt      *mat.Dense // (order) x 7
	MmrCoef         *mat.Dense // (order) x 7
}

// ComponentCurve is one of the three (Y, Cb, Cr) reshaping curves.
type ComponentCurve struct {
	Segments []*Segment
}

// Mapping holds the three component curves plus the optional NLQ section.
type Mapping struct {
	Curves [3]ComponentCurve
	Nlq    *NLQ // present only for profile 7
}

// coefficientWidth returns W, the coefficient fractional-part bit width,
// per spec §4.5.
func coefficientWidth(h *Header) int {
	if h.CoefficientDataType == 0 {
		return int(h.CoefficientLog2Denom)
	}
	return 32
}

// ParseMapping reads the three component curves, in order, given the
// already-parsed header (for pivot counts and coefficient width).
func ParseMapping(r *bits.Reader, h *Header) (*Mapping, error) {
	fr := newFieldReader(r)
	w := coefficientWidth(h)
	m := &Mapping{}

	for c := 0; c < 3; c++ {
		nSegments := int(h.NumPivotsMinus2[c]) + 1
		var prevIdc uint64
		counter := 0
		segs := make([]*Segment, nSegments)
		for p := 0; p < nSegments; p++ {
			s := &Segment{}
			s.MappingIdc = fr.readUe()

			if p == 0 {
				counter = 0
			} else if s.MappingIdc != prevIdc {
				counter++
			} else {
				counter = 0
			}
			prevIdc = s.MappingIdc

			if counter > 0 {
				s.MappingParamPredFlag = fr.readBool()
			}

			if !s.MappingParamPredFlag {
				switch s.MappingIdc {
				case mappingIdcPolynomial:
					parsePolynomialSegment(fr, s, w, h.CoefficientDataType, p == nSegments-1)
				case mappingIdcMMR:
					parseMMRSegment(fr, s, w, h.CoefficientDataType)
				}
			} else if counter > 1 {
				s.DiffPredPartIdxMappingMinus1 = fr.readUe()
			}

			segs[p] = s
		}
		m.Curves[c].Segments = segs
	}

	if h.hasNLQGate() {
		nlq, err := parseNLQ(fr, h, w)
		if err != nil {
			return nil, err
		}
		m.Nlq = nlq
	}

	if err := fr.err(); err != nil {
		return nil, err
	}
	return m, nil
}

func parsePolynomialSegment(fr *fieldReader, s *Segment, w int, coefficientDataType uint8, isLastSegment bool) {
	s.PolyOrderMinus1 = fr.readUe()
	if s.PolyOrderMinus1 == 0 {
		s.LinearInterpFlag = fr.readBool()
	}
	if s.PolyOrderMinus1 == 0 && s.LinearInterpFlag {
		nPairs := 1
		if isLastSegment {
			nPairs = 2
		}
		ints := make([]int64, 0, nPairs)
		fracs := make([]uint64, 0, nPairs)
		for i := 0; i < nPairs; i++ {
			if coefficientDataType == 0 {
				ints = append(ints, fr.readSe())
			}
			fracs = append(fracs, fr.readBits(w))
		}
		if len(ints) > 0 {
			s.PredLinearInterpValueInt = ints[0]
		}
		s.PredLinearInterpValue = fracs[0]
		s.PolyCoefInt = ints
		s.PolyCoef = fracs
		return
	}

	n := int(s.PolyOrderMinus1) + 2
	s.PolyCoefInt = make([]int64, n)
	s.PolyCoef = make([]uint64, n)
	for i := 0; i < n; i++ {
		if coefficientDataType == 0 {
			s.PolyCoefInt[i] = fr.readSe()
		}
		s.PolyCoef[i] = fr.readBits(w)
	}
}

func parseMMRSegment(fr *fieldReader, s *Segment, w int, coefficientDataType uint8) {
	s.MmrOrderMinus1 = uint8(fr.readBits(2))
	if coefficientDataType == 0 {
		s.MmrConstantInt = fr.readSe()
	}
	s.MmrConstant = fr.readBits(w)

	order := int(s.MmrOrderMinus1) + 1
	intM := mat.NewDense(order, 7, nil)
	fracM := mat.NewDense(order, 7, nil)
	for i := 0; i < order; i++ {
		for j := 0; j < 7; j++ {
			if coefficientDataType == 0 {
				intM.Set(i, j, float64(fr.readSe()))
			}
			fracM.Set(i, j, float64(fr.readBits(w)))
		}
	}
	s.MmrCoefInt = intM
	s.MmrCoef = fracM
}

// Write serializes m's three component curves and optional NLQ section.
func (m *Mapping) Write(w *bits.Writer, h *Header) error {
	fw := newFieldWriter(w)
	width := coefficientWidth(h)

	for c := 0; c < 3; c++ {
		segs := m.Curves[c].Segments
		var prevIdc uint64
		counter := 0
		for p, s := range segs {
			fw.writeUe(s.MappingIdc)

			if p == 0 {
				counter = 0
			} else if s.MappingIdc != prevIdc {
				counter++
			} else {
				counter = 0
			}
			prevIdc = s.MappingIdc

			if counter > 0 {
				fw.writeBool(s.MappingParamPredFlag)
			}

			if !s.MappingParamPredFlag {
				switch s.MappingIdc {
				case mappingIdcPolynomial:
					writePolynomialSegment(fw, s, width, h.CoefficientDataType)
				case mappingIdcMMR:
					writeMMRSegment(fw, s, width, h.CoefficientDataType)
				}
			} else if counter > 1 {
				fw.writeUe(s.DiffPredPartIdxMappingMinus1)
			}
		}
	}

	if m.Nlq != nil {
		m.Nlq.write(fw, h, width)
	}

	return fw.err()
}

func writePolynomialSegment(fw *fieldWriter, s *Segment, w int, coefficientDataType uint8) {
	fw.writeUe(s.PolyOrderMinus1)
	if s.PolyOrderMinus1 == 0 {
		fw.writeBool(s.LinearInterpFlag)
	}
	if s.PolyOrderMinus1 == 0 && s.LinearInterpFlag {
		for i := range s.PolyCoef {
			if coefficientDataType == 0 && i < len(s.PolyCoefInt) {
				fw.writeSe(s.PolyCoefInt[i])
			}
			fw.writeBits(s.PolyCoef[i], w)
		}
		return
	}
	for i := range s.PolyCoef {
		if coefficientDataType == 0 {
			fw.writeSe(s.PolyCoefInt[i])
		}
		fw.writeBits(s.PolyCoef[i], w)
	}
}

func writeMMRSegment(fw *fieldWriter, s *Segment, w int, coefficientDataType uint8) {
	fw.writeBits(uint64(s.MmrOrderMinus1), 2)
	if coefficientDataType == 0 {
		fw.writeSe(s.MmrConstantInt)
	}
	fw.writeBits(s.MmrConstant, w)

	rows, cols := s.MmrCoefInt.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if coefficientDataType == 0 {
				fw.writeSe(int64(s.MmrCoefInt.At(i, j)))
			}
			fw.writeBits(uint64(s.MmrCoef.At(i, j)), w)
		}
	}
	_ = cols
}

// Validate runs the cross-field invariants that apply regardless of
// profile: every MMR segment's order must fit the 2-bit mmr_order_minus1
// field's intended range.
func (m *Mapping) Validate(profile Profile) error {
	for c := 0; c < 3; c++ {
		for _, s := range m.Curves[c].Segments {
			if s.MappingIdc == mappingIdcMMR && s.MmrOrderMinus1 > 2 {
				return ErrMmrOrderOutOfRange
			}
		}
	}
	return nil
}

// IdentityMapping returns the P8.1 reset-to-identity mapping: a single
// pivot per component, polynomial [0,1] (order 0, coefficients int 0/1,
// fractional 0/1), matching RpuDataMapping::p8_default() in source.
func IdentityMapping() *Mapping {
	m := &Mapping{}
	for c := 0; c < 3; c++ {
		m.Curves[c].Segments = []*Segment{{
			MappingIdc:  mappingIdcPolynomial,
			PolyCoefInt: []int64{0, 1},
			PolyCoef:    []uint64{0, 1},
		}}
	}
	return m
}
