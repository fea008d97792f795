/*
DESCRIPTION
  generate.go implements Generate: builds one profile 8.1 RPU template from
  a GenerateConfig's static metadata, then stamps out one clone per frame
  across every shot, applying the shot's metadata, a scene-cut flag on the
  shot's first frame, and any per-frame edit's metadata on top.

AUTHORS
  Derived for the dovi RPU codec from original_source/dolby_vision/src/
  rpu/generate.rs's GenerateConfig::generate_rpu_list() and vdr_dm_data.rs's
  VdrDmData::from_generate_config()/set_static_metadata().

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package generate

import (
	"github.com/doviproc/dovi/rpu"
	"github.com/doviproc/dovi/rpu/extmeta"
)

// levelBlockList names the levels set_static_metadata reserves for the
// Level5/Level6 fallback path; default_metadata_blocks entries at these
// levels are ignored.
var levelBlockList = map[uint8]bool{5: true, 6: true}

// Generate builds the full list of RPUs described by cfg: one profile 8.1
// template carrying the static display-management metadata, cloned once
// per frame across every shot.
func Generate(cfg *GenerateConfig) ([]*rpu.DoviRpu, error) {
	shotsLength := 0
	for _, s := range cfg.Shots {
		shotsLength += s.Duration
	}
	if cfg.Length != shotsLength {
		return nil, rpu.ErrShotDurationsMismatch
	}

	template, err := buildTemplate(cfg)
	if err != nil {
		return nil, err
	}

	list := make([]*rpu.DoviRpu, 0, cfg.Length)
	for _, shot := range cfg.Shots {
		for i := 0; i < shot.Duration; i++ {
			frame := cloneDoviRpu(template)
			frame.VdrDmData.SetSceneCut(i == 0)

			for _, block := range shot.MetadataBlocks {
				if err := frame.VdrDmData.ReplaceMetadataBlock(block); err != nil {
					return nil, err
				}
			}

			for _, edit := range shot.FrameEdits {
				if edit.EditOffset != i {
					continue
				}
				for _, block := range edit.MetadataBlocks {
					if err := frame.VdrDmData.ReplaceMetadataBlock(block); err != nil {
						return nil, err
					}
				}
			}

			list = append(list, frame)
		}
	}
	return list, nil
}

// buildTemplate assembles the profile 8.1 base RPU shared by every
// generated frame: identity mapping, default header, and the static
// display-management metadata (source PQ, Level5/6, Level9/11 when the CM
// v4.0 container is carried, plus any allowed default_metadata_blocks, plus
// the CM v2.9/v4.0 containers).
func buildTemplate(cfg *GenerateConfig) (*rpu.DoviRpu, error) {
	h := rpu.P8Default()
	m := rpu.IdentityMapping()

	dm := &rpu.VdrDmData{
		SignalEotf:          65535,
		SignalBitDepth:      12,
		SignalFullRangeFlag: 1,
		SourceDiagonal:      42,
		SourceMinPQ:         0,
		SourceMaxPQ:         4095,
	}
	if cfg.SourceMinPQ != nil {
		dm.SourceMinPQ = *cfg.SourceMinPQ
	}
	if cfg.SourceMaxPQ != nil {
		dm.SourceMaxPQ = *cfg.SourceMaxPQ
	}

	dm.CmV29 = &rpu.CmV29{}
	if cfg.CmVersion == CmV40 || cfg.CmVersion == "" {
		dm.CmV40 = rpu.NewWithL254V402()
	}

	level5 := cfg.Level5
	if level5 == nil {
		level5 = &extmeta.Level5{}
	}
	if err := dm.ReplaceMetadataBlock(level5); err != nil {
		return nil, err
	}

	level6 := cfg.Level6
	if level6 == nil {
		level6 = extmeta.DefaultLevel6()
	}
	if err := dm.ReplaceMetadataBlock(level6); err != nil {
		return nil, err
	}

	if dm.CmV40 != nil {
		if err := dm.ReplaceMetadataBlock(extmeta.DefaultLevel9()); err != nil {
			return nil, err
		}
		if err := dm.ReplaceMetadataBlock(extmeta.DefaultReferenceCinema()); err != nil {
			return nil, err
		}
	}

	for _, block := range cfg.DefaultMetadataBlocks {
		if levelBlockList[block.Level()] {
			continue
		}
		if err := dm.ReplaceMetadataBlock(block); err != nil {
			return nil, err
		}
	}

	return &rpu.DoviRpu{
		Profile:   rpu.Profile8,
		Header:    h,
		Mapping:   m,
		VdrDmData: dm,
		Modified:  true,
	}, nil
}

// cloneDoviRpu returns a copy of src deep enough that mutating the clone's
// VdrDmData container (via ReplaceMetadataBlock/SetSceneCut) never affects
// src or any other clone: every block in the DM containers is replaced
// wholesale rather than mutated in place, so a shared slice of block
// pointers between clones is safe as long as the slice backing array
// itself is copied.
func cloneDoviRpu(src *rpu.DoviRpu) *rpu.DoviRpu {
	h := *src.Header

	var m *rpu.Mapping
	if src.Mapping != nil {
		mc := *src.Mapping
		for c := 0; c < 3; c++ {
			mc.Curves[c].Segments = append([]*rpu.Segment(nil), src.Mapping.Curves[c].Segments...)
		}
		m = &mc
	}

	var dm *rpu.VdrDmData
	if src.VdrDmData != nil {
		dc := *src.VdrDmData
		if src.VdrDmData.CmV29 != nil {
			v := *src.VdrDmData.CmV29
			v.Blocks = append([]extmeta.Block(nil), src.VdrDmData.CmV29.Blocks...)
			dc.CmV29 = &v
		}
		if src.VdrDmData.CmV40 != nil {
			v := *src.VdrDmData.CmV40
			v.Blocks = append([]extmeta.Block(nil), src.VdrDmData.CmV40.Blocks...)
			dc.CmV40 = &v
		}
		dm = &dc
	}

	return &rpu.DoviRpu{
		Profile:   src.Profile,
		ELType:    src.ELType,
		Header:    &h,
		Mapping:   m,
		VdrDmData: dm,
		Modified:  true,
	}
}
