package rpu

import (
	"reflect"
	"testing"

	"github.com/doviproc/dovi/bits"
)

func TestNLQRoundTripLinearDeadzone(t *testing.T) {
	h := P8Default()
	idc := uint8(nlqMethodLinearDeadzone)
	h.NlqMethodIdc = &idc

	want := &NLQ{
		NlqOffset:                  [3]uint16{1, 2, 3},
		VdrInMaxInt:                [3]uint64{1, 1, 1},
		VdrInMax:                   [3]uint64{100, 200, 300},
		LinearDeadzoneSlopeInt:     [3]uint64{1, 1, 1},
		LinearDeadzoneSlope:        [3]uint64{10, 20, 30},
		LinearDeadzoneThresholdInt: [3]uint64{1, 1, 1},
		LinearDeadzoneThreshold:    [3]uint64{5, 6, 7},
	}

	w := bits.NewWriter()
	fw := newFieldWriter(w)
	want.write(fw, h, coefficientWidth(h))
	if err := fw.err(); err != nil {
		t.Fatal(err)
	}
	if err := w.AlignToByteWithZeros(); err != nil {
		t.Fatal(err)
	}
	buf, err := w.AsBytes()
	if err != nil {
		t.Fatal(err)
	}

	fr := newFieldReader(bits.NewReader(buf))
	got, err := parseNLQ(fr, h, coefficientWidth(h))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip NLQ = %+v, want %+v", got, want)
	}
}

func TestNLQIsMEL(t *testing.T) {
	if !MELDefault().IsMEL() {
		t.Error("MELDefault() should report IsMEL() == true")
	}
	n := MELDefault()
	n.NlqOffset[1] = 1
	if n.IsMEL() {
		t.Error("a nonzero offset should disqualify IsMEL()")
	}
}

func TestNLQELType(t *testing.T) {
	if MELDefault().ELType() != ELTypeMEL {
		t.Error("MELDefault() should classify as ELTypeMEL")
	}
	fel := &NLQ{VdrInMaxInt: [3]uint64{2, 2, 2}}
	if fel.ELType() != ELTypeFEL {
		t.Error("a non-MEL pattern should classify as ELTypeFEL")
	}
}

func TestNLQConvertToMEL(t *testing.T) {
	n := &NLQ{NlqOffset: [3]uint16{9, 9, 9}, VdrInMax: [3]uint64{1, 2, 3}}
	n.ConvertToMEL()
	if !n.IsMEL() {
		t.Errorf("ConvertToMEL() left n = %+v, expected the MEL pattern", n)
	}
}
