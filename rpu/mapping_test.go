package rpu

import (
	"reflect"
	"testing"

	"github.com/doviproc/dovi/bits"
	"gonum.org/v1/gonum/mat"
)

func zeroDense(rows, cols int) *mat.Dense { return mat.NewDense(rows, cols, nil) }

func filledDense(rows, cols int, v float64) *mat.Dense {
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, v)
		}
	}
	return d
}

func TestMappingRoundTripIdentity(t *testing.T) {
	h := P8Default()
	want := IdentityMapping()

	w := bits.NewWriter()
	if err := want.Write(w, h); err != nil {
		t.Fatal(err)
	}
	if err := w.AlignToByteWithZeros(); err != nil {
		t.Fatal(err)
	}
	buf, err := w.AsBytes()
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseMapping(bits.NewReader(buf), h)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mapping = %+v, want %+v", got, want)
	}
}

func TestMappingRoundTripMMR(t *testing.T) {
	h := P8Default()
	h.NumPivotsMinus2[0] = 7
	m := Profile84Mapping()

	w := bits.NewWriter()
	if err := m.Write(w, h); err != nil {
		t.Fatal(err)
	}
	if err := w.AlignToByteWithZeros(); err != nil {
		t.Fatal(err)
	}
	buf, err := w.AsBytes()
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseMapping(bits.NewReader(buf), h)
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Curves[1].Segments) != 1 || got.Curves[1].Segments[0].MappingIdc != mappingIdcMMR {
		t.Fatalf("expected a single MMR segment on Cb, got %+v", got.Curves[1].Segments)
	}
	wantRows, wantCols := m.Curves[1].Segments[0].MmrCoefInt.Dims()
	gotRows, gotCols := got.Curves[1].Segments[0].MmrCoefInt.Dims()
	if wantRows != gotRows || wantCols != gotCols {
		t.Fatalf("MMR matrix dims = (%d,%d), want (%d,%d)", gotRows, gotCols, wantRows, wantCols)
	}
	for i := 0; i < wantRows; i++ {
		for j := 0; j < wantCols; j++ {
			if m.Curves[1].Segments[0].MmrCoefInt.At(i, j) != got.Curves[1].Segments[0].MmrCoefInt.At(i, j) {
				t.Errorf("MmrCoefInt[%d][%d] = %v, want %v", i, j,
					got.Curves[1].Segments[0].MmrCoefInt.At(i, j), m.Curves[1].Segments[0].MmrCoefInt.At(i, j))
			}
		}
	}
}

func TestMappingRoundTripCoefficientDataType1OmitsIntegerParts(t *testing.T) {
	h := P8Default()
	h.CoefficientDataType = 1
	h.NumPivotsMinus2[0] = 0

	m := &Mapping{}
	m.Curves[0].Segments = []*Segment{{
		MappingIdc:  mappingIdcPolynomial,
		PolyCoefInt: []int64{0, 0},
		PolyCoef:    []uint64{11, 22},
	}}
	m.Curves[1].Segments = []*Segment{{
		MappingIdc:     mappingIdcMMR,
		MmrOrderMinus1: 0,
		MmrConstantInt: 0,
		MmrConstant:    5,
		MmrCoefInt:     zeroDense(1, 7),
		MmrCoef:        filledDense(1, 7, 3),
	}}
	m.Curves[2].Segments = []*Segment{{
		MappingIdc:  mappingIdcPolynomial,
		PolyCoefInt: []int64{0, 0},
		PolyCoef:    []uint64{0, 0},
	}}

	w := bits.NewWriter()
	if err := m.Write(w, h); err != nil {
		t.Fatal(err)
	}
	if err := w.AlignToByteWithZeros(); err != nil {
		t.Fatal(err)
	}
	buf, err := w.AsBytes()
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseMapping(bits.NewReader(buf), h)
	if err != nil {
		t.Fatal(err)
	}

	lumaSeg := got.Curves[0].Segments[0]
	if lumaSeg.PolyCoefInt[0] != 0 || lumaSeg.PolyCoefInt[1] != 0 {
		t.Errorf("coefficient_data_type==1 must never read a signed integer part, got PolyCoefInt=%v", lumaSeg.PolyCoefInt)
	}
	if lumaSeg.PolyCoef[0] != 11 || lumaSeg.PolyCoef[1] != 22 {
		t.Errorf("fractional part = %v, want [11 22]", lumaSeg.PolyCoef)
	}

	cbSeg := got.Curves[1].Segments[0]
	if cbSeg.MmrConstantInt != 0 {
		t.Errorf("coefficient_data_type==1 must never read mmr_constant_int, got %d", cbSeg.MmrConstantInt)
	}
	if cbSeg.MmrConstant != 5 {
		t.Errorf("mmr_constant = %d, want 5", cbSeg.MmrConstant)
	}
	if v := cbSeg.MmrCoef.At(0, 0); v != 3 {
		t.Errorf("mmr_coef[0][0] = %v, want 3", v)
	}
	if v := cbSeg.MmrCoefInt.At(0, 0); v != 0 {
		t.Errorf("coefficient_data_type==1 must never read mmr_coef_int, got %v", v)
	}
}

func TestMappingValidateRejectsOutOfRangeMmrOrder(t *testing.T) {
	m := &Mapping{}
	m.Curves[0].Segments = []*Segment{{MappingIdc: mappingIdcMMR, MmrOrderMinus1: 3}}
	if err := m.Validate(Profile8); err != ErrMmrOrderOutOfRange {
		t.Errorf("Validate() = %v, want ErrMmrOrderOutOfRange", err)
	}
}

func TestMappingValidateAcceptsIdentity(t *testing.T) {
	if err := IdentityMapping().Validate(Profile8); err != nil {
		t.Errorf("identity mapping should validate, got %v", err)
	}
}
