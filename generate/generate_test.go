package generate

import (
	"testing"

	"github.com/doviproc/dovi/rpu/extmeta"
)

func TestGenerateRejectsShotDurationMismatch(t *testing.T) {
	cfg := &GenerateConfig{
		Length: 10,
		Shots:  []VideoShot{{Duration: 5}},
	}
	_, err := Generate(cfg)
	if err == nil {
		t.Error("expected an error when shot durations don't sum to Length")
	}
}

func TestGenerateProducesOneFramePerShotDuration(t *testing.T) {
	cfg := &GenerateConfig{
		Length: 5,
		Shots: []VideoShot{
			{ID: "a", Duration: 2},
			{ID: "b", Duration: 3},
		},
	}
	frames, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 5 {
		t.Fatalf("len(frames) = %d, want 5", len(frames))
	}
	for i, f := range frames {
		if f.VdrDmData == nil {
			t.Fatalf("frame %d has no VdrDmData", i)
		}
	}
}

func TestGenerateSetsSceneCutOnlyOnFirstFrameOfEachShot(t *testing.T) {
	cfg := &GenerateConfig{
		Length: 4,
		Shots: []VideoShot{
			{Duration: 2},
			{Duration: 2},
		},
	}
	frames, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{1, 0, 1, 0}
	for i, f := range frames {
		if f.VdrDmData.SceneRefreshFlag != want[i] {
			t.Errorf("frame %d SceneRefreshFlag = %d, want %d", i, f.VdrDmData.SceneRefreshFlag, want[i])
		}
	}
}

func TestGenerateAppliesShotAndFrameEditMetadataBlocks(t *testing.T) {
	shotLevel5 := extmeta.FromOffsets(1, 1, 1, 1)
	editLevel5 := extmeta.FromOffsets(9, 9, 9, 9)

	cfg := &GenerateConfig{
		Length: 3,
		Shots: []VideoShot{{
			Duration:       3,
			MetadataBlocks: []extmeta.Block{shotLevel5},
			FrameEdits: []ShotFrameEdit{{
				EditOffset:     1,
				MetadataBlocks: []extmeta.Block{editLevel5},
			}},
		}},
	}
	frames, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i, f := range frames {
		got := f.VdrDmData.CmV29.GetBlock(5).(*extmeta.Level5)
		if i == 1 {
			if got.ActiveAreaLeftOffset != 9 {
				t.Errorf("frame 1 should carry the frame-edit override, got %+v", got)
			}
			continue
		}
		if got.ActiveAreaLeftOffset != 1 {
			t.Errorf("frame %d should carry the shot-level block, got %+v", i, got)
		}
	}
}

func TestGenerateDefaultsCmV40Container(t *testing.T) {
	cfg := &GenerateConfig{Length: 1, Shots: []VideoShot{{Duration: 1}}}
	frames, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if frames[0].VdrDmData.CmV40 == nil {
		t.Fatal("expected a default CM v4.0 container when CmVersion is unset")
	}
	if frames[0].VdrDmData.CmV40.GetBlock(254) == nil {
		t.Error("expected the default CM v4.0 container to carry a Level254 block")
	}
}

func TestGenerateHonorsCmV29Only(t *testing.T) {
	cfg := &GenerateConfig{CmVersion: CmV29, Length: 1, Shots: []VideoShot{{Duration: 1}}}
	frames, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if frames[0].VdrDmData.CmV40 != nil {
		t.Error("CmVersion=CmV29 should not create a CM v4.0 container")
	}
}

func TestLoadConfigAndEncodeRoundTripScalarFields(t *testing.T) {
	cfg := &GenerateConfig{
		CmVersion: CmV40,
		Length:    3,
		Shots: []VideoShot{
			{ID: "shot-1", Start: 0, Duration: 3},
		},
	}
	data, err := Encode(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.CmVersion != CmV40 || got.Length != 3 || len(got.Shots) != 1 || got.Shots[0].ID != "shot-1" {
		t.Errorf("round tripped config = %+v", got)
	}
}
