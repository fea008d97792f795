package rpu

import (
	"reflect"
	"testing"
)

func profile7RpuForConvert(t *testing.T) *DoviRpu {
	t.Helper()
	h := P8Default()
	h.ElSpatialResamplingFilterFlag = true
	h.DisableResidualFlag = false
	h.VdrBitDepthMinus8 = 4
	idc := uint8(nlqMethodLinearDeadzone)
	h.NlqMethodIdc = &idc
	h.NlqPredPivotValue = []uint16{512, 511}

	m := IdentityMapping()
	m.Nlq = &NLQ{NlqOffset: [3]uint16{1, 2, 3}, VdrInMax: [3]uint64{10, 10, 10}}

	dm := &VdrDmData{SignalEotf: 65535, SignalBitDepth: 12, SignalFullRangeFlag: 1}
	dm.SetP81Coeffs()

	return &DoviRpu{Profile: Profile7, Header: h, Mapping: m, VdrDmData: dm}
}

func TestConvertLosslessIsNoop(t *testing.T) {
	d := profile7RpuForConvert(t)
	before := *d.Header
	if err := d.Convert(Lossless); err != nil {
		t.Fatal(err)
	}
	if d.Modified {
		t.Error("Lossless conversion should not set Modified")
	}
	if !reflect.DeepEqual(*d.Header, before) {
		t.Error("Lossless conversion should not mutate the header")
	}
}

func TestConvertToMelFromProfile7(t *testing.T) {
	d := profile7RpuForConvert(t)
	if err := d.Convert(ToMel); err != nil {
		t.Fatal(err)
	}
	if !d.Modified {
		t.Error("ToMel should set Modified")
	}
	if d.Mapping.Nlq == nil || !d.Mapping.Nlq.IsMEL() {
		t.Errorf("NLQ after ToMel = %+v, want the MEL pattern", d.Mapping.Nlq)
	}
	if d.ELType == nil || *d.ELType != ELTypeMEL {
		t.Errorf("ELType after ToMel = %v, want ELTypeMEL", d.ELType)
	}
}

func TestConvertToMelRejectsProfile5(t *testing.T) {
	d := profile7RpuForConvert(t)
	d.Profile = Profile5
	err := d.Convert(ToMel)
	if _, ok := err.(*ConversionNotApplicable); !ok {
		t.Errorf("ToMel from Profile5 = %v, want *ConversionNotApplicable", err)
	}
}

func TestConvertTo81DiscardsMapping(t *testing.T) {
	d := profile7RpuForConvert(t)
	if err := d.Convert(To81); err != nil {
		t.Fatal(err)
	}
	if d.Profile != Profile8 {
		t.Errorf("Profile after To81 = %v, want Profile8", d.Profile)
	}
	if d.Mapping.Nlq != nil {
		t.Error("To81 should clear the NLQ section")
	}
	if len(d.Mapping.Curves[0].Segments) != 1 {
		t.Errorf("To81 should reset to a single identity segment, got %d", len(d.Mapping.Curves[0].Segments))
	}
	if d.Header.NlqMethodIdc != nil {
		t.Error("To81 should clear nlq_method_idc")
	}
}

func TestConvertTo81MappingPreservedKeepsCurves(t *testing.T) {
	d := profile7RpuForConvert(t)
	d.Mapping.Curves[0].Segments = append(d.Mapping.Curves[0].Segments, &Segment{MappingIdc: mappingIdcPolynomial, PolyCoefInt: []int64{0, 1, 2}, PolyCoef: []uint64{0, 1, 2}})
	nSegsBefore := len(d.Mapping.Curves[0].Segments)

	if err := d.Convert(To81MappingPreserved); err != nil {
		t.Fatal(err)
	}
	if len(d.Mapping.Curves[0].Segments) != nSegsBefore {
		t.Errorf("To81MappingPreserved should keep curve segments, got %d want %d",
			len(d.Mapping.Curves[0].Segments), nSegsBefore)
	}
	if d.Mapping.Nlq != nil {
		t.Error("To81MappingPreserved should still clear the NLQ section")
	}
}

func TestConvertP5ToP81(t *testing.T) {
	h := P5Default()
	dm := &VdrDmData{SignalEotf: 65535, SignalBitDepth: 12, SignalFullRangeFlag: 1}
	d := &DoviRpu{Profile: Profile5, Header: h, Mapping: IdentityMapping(), VdrDmData: dm}

	if err := d.Convert(P5ToP81); err != nil {
		t.Fatal(err)
	}
	if d.Header.VdrRpuProfile != 1 {
		t.Errorf("vdr_rpu_profile after P5ToP81 = %d, want 1", d.Header.VdrRpuProfile)
	}
	if d.Header.BlVideoFullRangeFlag {
		t.Error("bl_video_full_range_flag should be cleared after P5ToP81")
	}
	if d.Profile != Profile8 {
		t.Errorf("Profile after P5ToP81 = %v, want Profile8", d.Profile)
	}
}

func TestConvertP5ToP81RejectsNonProfile5(t *testing.T) {
	d := profile7RpuForConvert(t)
	err := d.Convert(P5ToP81)
	if _, ok := err.(*ConversionNotApplicable); !ok {
		t.Errorf("P5ToP81 from Profile7 = %v, want *ConversionNotApplicable", err)
	}
}

func TestConvertTo84InstallsIPhoneTemplate(t *testing.T) {
	d := profile7RpuForConvert(t)
	if err := d.Convert(To84); err != nil {
		t.Fatal(err)
	}
	if d.Header.NumPivotsMinus2[0] != 7 {
		t.Errorf("NumPivotsMinus2[0] after To84 = %d, want 7", d.Header.NumPivotsMinus2[0])
	}
	if len(d.Mapping.Curves[0].Segments) != 8 {
		t.Errorf("luma segment count after To84 = %d, want 8", len(d.Mapping.Curves[0].Segments))
	}
	if d.Mapping.Curves[1].Segments[0].MappingIdc != mappingIdcMMR {
		t.Error("Cb curve after To84 should be an MMR segment")
	}
}

func TestConversionModeString(t *testing.T) {
	cases := map[ConversionMode]string{
		Lossless:              "lossless",
		ToMel:                 "to_mel",
		To81:                  "to_81",
		To81MappingPreserved:  "to_81_mapping_preserved",
		To84:                  "to_84",
		P5ToP81:               "p5_to_81",
	}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", mode, got, want)
		}
	}
}
