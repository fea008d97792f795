/*
DESCRIPTION
  nlq.go implements the per-component non-linear quantizer (NLQ) codec,
  profile 7 only: inverse-mapping parameters for the enhancement-layer
  residual, plus the MEL/FEL classification and MEL conversion helpers.

  original_source/dolby_vision/src/rpu/rpu_data_nlq.rs's write() method
  writes linear_deadzone_slope_int twice (once for slope, again where
  threshold_int belongs) instead of writing slope then threshold; its own
  parse() reads them correctly as two distinct fields. This port implements
  the symmetric, correct behavior matching parse(), not the apparent
  write-side typo.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

// NLQ holds the per-component (Y, Cb, Cr) non-linear quantizer parameters.
type NLQ struct {
	NlqOffset [3]uint16

	VdrInMaxInt [3]uint64 // present only when CoefficientDataType == 0
	VdrInMax    [3]uint64

	// Present only when NlqMethodIdc == LinearDeadzone.
	LinearDeadzoneSlopeInt     [3]uint64
	LinearDeadzoneSlope        [3]uint64
	LinearDeadzoneThresholdInt [3]uint64
	LinearDeadzoneThreshold    [3]uint64
}

func parseNLQ(fr *fieldReader, h *Header, w int) (*NLQ, error) {
	n := &NLQ{}
	elWidth := int(h.ElBitDepthMinus8) + 8
	isLinearDeadzone := h.NlqMethodIdc != nil && *h.NlqMethodIdc == nlqMethodLinearDeadzone

	for c := 0; c < 3; c++ {
		n.NlqOffset[c] = uint16(fr.readBits(elWidth))
		if h.CoefficientDataType == 0 {
			n.VdrInMaxInt[c] = fr.readUe()
		}
		n.VdrInMax[c] = fr.readBits(w)

		if isLinearDeadzone {
			n.LinearDeadzoneSlopeInt[c] = fr.readUe()
			n.LinearDeadzoneSlope[c] = fr.readBits(w)
			n.LinearDeadzoneThresholdInt[c] = fr.readUe()
			n.LinearDeadzoneThreshold[c] = fr.readBits(w)
		}
	}

	if err := fr.err(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *NLQ) write(fw *fieldWriter, h *Header, w int) {
	elWidth := int(h.ElBitDepthMinus8) + 8
	isLinearDeadzone := h.NlqMethodIdc != nil && *h.NlqMethodIdc == nlqMethodLinearDeadzone

	for c := 0; c < 3; c++ {
		fw.writeBits(uint64(n.NlqOffset[c]), elWidth)
		if h.CoefficientDataType == 0 {
			fw.writeUe(n.VdrInMaxInt[c])
		}
		fw.writeBits(n.VdrInMax[c], w)

		if isLinearDeadzone {
			fw.writeUe(n.LinearDeadzoneSlopeInt[c])
			fw.writeBits(n.LinearDeadzoneSlope[c], w)
			fw.writeUe(n.LinearDeadzoneThresholdInt[c])
			fw.writeBits(n.LinearDeadzoneThreshold[c], w)
		}
	}
}

// IsMEL reports whether n matches the all-zero/one pattern that defines the
// Minimal Enhancement Layer sub-variant (spec §4.4): every offset and
// linear-deadzone field zero, and every vdr_in_max_int equal to one.
func (n *NLQ) IsMEL() bool {
	for c := 0; c < 3; c++ {
		if n.NlqOffset[c] != 0 {
			return false
		}
		if n.VdrInMaxInt[c] != 1 {
			return false
		}
		if n.VdrInMax[c] != 0 {
			return false
		}
		if n.LinearDeadzoneSlopeInt[c] != 0 || n.LinearDeadzoneSlope[c] != 0 {
			return false
		}
		if n.LinearDeadzoneThresholdInt[c] != 0 || n.LinearDeadzoneThreshold[c] != 0 {
			return false
		}
	}
	return true
}

// ELType reports the enhancement-layer sub-variant implied by n.
func (n *NLQ) ELType() ELType {
	if n.IsMEL() {
		return ELTypeMEL
	}
	return ELTypeFEL
}

// MELDefault returns the canonical MEL NLQ pattern: zero offsets, unit
// vdr_in_max_int, zero everything else, matching
// RpuDataNlq::mel_default() in source.
func MELDefault() *NLQ {
	n := &NLQ{}
	for c := 0; c < 3; c++ {
		n.VdrInMaxInt[c] = 1
	}
	return n
}

// ConvertToMEL mutates n in place into the canonical MEL pattern.
func (n *NLQ) ConvertToMEL() {
	*n = *MELDefault()
}
