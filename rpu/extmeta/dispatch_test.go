package extmeta

import (
	"reflect"
	"testing"

	"github.com/doviproc/dovi/bits"
)

func TestLevel1RoundTrip(t *testing.T) {
	want := &Level1{MinPQ: 7, MaxPQ: 3079, AvgPQ: 1500}
	w := bits.NewWriter()
	if err := WriteBlock(w, want); err != nil {
		t.Fatal(err)
	}
	if err := w.AlignToByteWithZeros(); err != nil {
		t.Fatal(err)
	}
	buf, err := w.AsBytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseBlock(bits.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip Level1 = %+v, want %+v", got, want)
	}
}

func TestLevel9VariableLength(t *testing.T) {
	for _, want := range []*Level9{
		DefaultLevel9(),
		{Length: 17, SourcePrimaryIndex: 255, SourcePrimaryRedX: 100, SourcePrimaryWhiteY: 200},
	} {
		w := bits.NewWriter()
		if err := WriteBlock(w, want); err != nil {
			t.Fatalf("WriteBlock(%+v): %v", want, err)
		}
		if err := w.AlignToByteWithZeros(); err != nil {
			t.Fatal(err)
		}
		buf, err := w.AsBytes()
		if err != nil {
			t.Fatal(err)
		}
		got, err := ParseBlock(bits.NewReader(buf))
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if !reflect.DeepEqual(got, Block(want)) {
			t.Errorf("round trip Level9 = %+v, want %+v", got, want)
		}
	}
}

func TestLevel8BadLength(t *testing.T) {
	b := &Level8{Length: 11}
	w := bits.NewWriter()
	if err := WriteBlock(w, b); err == nil {
		t.Fatal("expected BadBlockLength error for length 11")
	}
}

func TestLevel9Validate(t *testing.T) {
	if err := (&Level9{Length: 1, SourcePrimaryIndex: 255}).Validate(); err == nil {
		t.Error("index 255 with length 1 should fail validation")
	}
	if err := (&Level9{Length: 17, SourcePrimaryIndex: 0}).Validate(); err == nil {
		t.Error("custom primaries with index != 255 should fail validation")
	}
	if err := (&Level9{Length: 1, SourcePrimaryIndex: 0}).Validate(); err != nil {
		t.Errorf("named primary index should validate: %v", err)
	}
}

func TestSortKeys(t *testing.T) {
	l2 := &Level2{TargetMaxPQ: 4095}
	if lv, sec := l2.SortKey(); lv != 2 || sec != 4095 {
		t.Errorf("Level2.SortKey() = (%d,%d), want (2,4095)", lv, sec)
	}
	l8 := &Level8{Length: 10, TargetDisplayIndex: 3}
	if lv, sec := l8.SortKey(); lv != 8 || sec != 3 {
		t.Errorf("Level8.SortKey() = (%d,%d), want (8,3)", lv, sec)
	}
}
