package rpu

import (
	"testing"

	"github.com/doviproc/dovi/rpu/extmeta"
)

func TestParseAllIndexAlignedResultsAndErrors(t *testing.T) {
	dm := &VdrDmData{SignalEotf: 65535, SignalBitDepth: 12, SignalFullRangeFlag: 1}
	dm.SetP81Coeffs()
	dm.CmV29 = &CmV29{}
	if err := dm.CmV29.AddBlock(&extmeta.Level6{}); err != nil {
		t.Fatal(err)
	}
	good := &DoviRpu{Profile: Profile8, Header: P8Default(), Mapping: IdentityMapping(), VdrDmData: dm, Modified: true}
	goodNalu, err := good.WriteHevcUnspec62Nalu()
	if err != nil {
		t.Fatal(err)
	}

	bufs := [][]byte{goodNalu, {0xFF, 0xFF, 0xFF}, goodNalu}
	results, errs := ParseAll(bufs)

	if len(results) != 3 || len(errs) != 3 {
		t.Fatalf("expected 3 index-aligned results/errors, got %d/%d", len(results), len(errs))
	}
	if errs[0] != nil || results[0] == nil {
		t.Errorf("bufs[0] should parse cleanly, got result=%v err=%v", results[0], errs[0])
	}
	if errs[1] == nil || results[1] != nil {
		t.Errorf("bufs[1] should fail to parse, got result=%v err=%v", results[1], errs[1])
	}
	if errs[2] != nil || results[2] == nil {
		t.Errorf("bufs[2] should parse cleanly, got result=%v err=%v", results[2], errs[2])
	}
}

func TestParseAllEmptyInput(t *testing.T) {
	results, errs := ParseAll(nil)
	if len(results) != 0 || len(errs) != 0 {
		t.Errorf("ParseAll(nil) = %v, %v, want empty slices", results, errs)
	}
}
