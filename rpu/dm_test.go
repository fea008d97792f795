package rpu

import (
	"reflect"
	"testing"

	"github.com/doviproc/dovi/bits"
	"github.com/doviproc/dovi/rpu/extmeta"
)

func newTestHeaderForDM() *Header {
	h := P8Default()
	h.ReservedZero3Bits = 0
	return h
}

func TestVdrDmDataRoundTripUncompressedNoContainers(t *testing.T) {
	h := newTestHeaderForDM()
	want := &VdrDmData{
		SignalEotf:          65535,
		SignalBitDepth:      12,
		SignalColorSpace:    0,
		SignalChromaFormat:  0,
		SignalFullRangeFlag: 1,
		SourceMinPQ:         0,
		SourceMaxPQ:         4095,
		SourceDiagonal:      42,
	}
	want.SetP81Coeffs()

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

	got, err := ParseVdrDmDataPayload(bits.NewReader(buf), h, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip VdrDmData = %+v, want %+v", got, want)
	}
}

func TestVdrDmDataRoundTripWithCmV29Container(t *testing.T) {
	h := newTestHeaderForDM()
	want := &VdrDmData{SignalEotf: 65535, SignalBitDepth: 12, SignalFullRangeFlag: 1}
	want.CmV29 = &CmV29{}
	if err := want.CmV29.AddBlock(&extmeta.Level6{MaxDisplayMasteringLuminance: 1000, MinDisplayMasteringLuminance: 1}); err != nil {
		t.Fatal(err)
	}

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

	got, err := ParseVdrDmDataPayload(bits.NewReader(buf), h, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.CmV29 == nil || got.CmV29.NumExtBlocks() != 1 {
		t.Fatalf("got.CmV29 = %+v, want one block", got.CmV29)
	}
	l6 := got.CmV29.GetBlock(6).(*extmeta.Level6)
	if l6.MaxDisplayMasteringLuminance != 1000 || l6.MinDisplayMasteringLuminance != 1 {
		t.Errorf("round tripped Level6 = %+v", l6)
	}
}

func TestVdrDmDataCompressedCarveOut(t *testing.T) {
	h := newTestHeaderForDM()
	h.ReservedZero3Bits = 1
	want := &VdrDmData{
		Compressed:           true,
		AffectedDmMetadataId: 2,
		CurrentDmMetadataId:  2,
		SceneRefreshFlag:     1,
	}

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

	got, err := ParseVdrDmDataPayload(bits.NewReader(buf), h, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Compressed {
		t.Fatal("expected Compressed == true")
	}
	if got.SignalBitDepth != 0 || got.SourceMaxPQ != 0 {
		t.Errorf("compressed payload should leave static fields zero, got %+v", got)
	}
	if got.AffectedDmMetadataId != 2 || got.CurrentDmMetadataId != 2 || got.SceneRefreshFlag != 1 {
		t.Errorf("compressed IDs round tripped wrong: %+v", got)
	}
}

func TestVdrDmDataSetSceneCut(t *testing.T) {
	d := &VdrDmData{}
	d.SetSceneCut(true)
	if d.SceneRefreshFlag != 1 {
		t.Errorf("SetSceneCut(true) left SceneRefreshFlag = %d, want 1", d.SceneRefreshFlag)
	}
	d.SetSceneCut(false)
	if d.SceneRefreshFlag != 0 {
		t.Errorf("SetSceneCut(false) left SceneRefreshFlag = %d, want 0", d.SceneRefreshFlag)
	}
}

func TestVdrDmDataReplaceMetadataBlockLazilyCreatesContainers(t *testing.T) {
	d := &VdrDmData{}
	if err := d.ReplaceMetadataBlock(&extmeta.Level6{}); err != nil {
		t.Fatal(err)
	}
	if d.CmV29 == nil || d.CmV29.NumExtBlocks() != 1 {
		t.Fatalf("expected a lazily created CmV29 container, got %+v", d.CmV29)
	}

	if err := d.ReplaceMetadataBlock(extmeta.DefaultLevel9()); err != nil {
		t.Fatal(err)
	}
	if d.CmV40 == nil || d.CmV40.NumExtBlocks() != 1 {
		t.Fatalf("expected a lazily created CmV40 container, got %+v", d.CmV40)
	}
}

func TestVdrDmDataReplaceMetadataBlockRejectsUnknownLevel(t *testing.T) {
	d := &VdrDmData{}
	err := d.ReplaceMetadataBlock(&extmeta.Reserved{Lvl: 200})
	if _, ok := err.(*BlockLevelNotAllowedInVersion); !ok {
		t.Errorf("ReplaceMetadataBlock(level 200) = %v, want *BlockLevelNotAllowedInVersion", err)
	}
}

func TestVdrDmDataValidateRejectsBadSignalEotf(t *testing.T) {
	d := &VdrDmData{SignalBitDepth: 12, SignalEotf: 100}
	if err := d.Validate(); err == nil {
		t.Error("a nonzero eotf params-free signal_eotf != 65535 should fail validation")
	}
}

func TestVdrDmDataLevel6(t *testing.T) {
	d := &VdrDmData{CmV29: &CmV29{}}
	if d.Level6() != nil {
		t.Error("Level6() on an empty container should be nil")
	}
	want := &extmeta.Level6{MaxDisplayMasteringLuminance: 4000}
	if err := d.CmV29.AddBlock(want); err != nil {
		t.Fatal(err)
	}
	if d.Level6() != want {
		t.Errorf("Level6() = %v, want %v", d.Level6(), want)
	}
}
