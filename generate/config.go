/*
DESCRIPTION
  config.go declares the declarative generator's JSON-facing configuration:
  a target RPU count, mastering-display defaults, a list of shots each
  carrying its own metadata blocks, and per-frame edits within a shot.

AUTHORS
  Derived for the dovi RPU codec from original_source/dolby_vision/src/
  rpu/generate.rs's GenerateConfig/VideoShot/ShotFrameEdit, using
  json-iterator (the corpus's own JSON library, see DESIGN.md) for the
  scalar/shot-shape fields.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package generate implements the declarative shot/frame-edit RPU
// generator: a JSON config describes a sequence of shots, each carrying
// display-management metadata, and Generate turns that into a concrete,
// fully-populated list of profile 8.1 RPUs.
package generate

import (
	"github.com/doviproc/dovi/rpu/extmeta"
	jsoniter "github.com/json-iterator/go"
)

// CmVersion selects which DM container(s) the generated RPUs carry.
type CmVersion string

const (
	CmV29 CmVersion = "v29"
	CmV40 CmVersion = "v40"
)

// GenerateConfig is the top-level generator configuration.
type GenerateConfig struct {
	// CmVersion defaults to v40 when empty.
	CmVersion CmVersion `json:"cm_version,omitempty"`

	// Length is the total number of RPU frames to generate; must equal the
	// sum of every shot's Duration.
	Length int `json:"length"`

	SourceMinPQ *uint16 `json:"source_min_pq,omitempty"`
	SourceMaxPQ *uint16 `json:"source_max_pq,omitempty"`

	Level5 *extmeta.Level5 `json:"-"`
	Level6 *extmeta.Level6 `json:"-"`

	// DefaultMetadataBlocks apply to every generated RPU, overridden by a
	// shot's or frame edit's own blocks of the same level. Levels 5 and 6
	// are never taken from this list (spec §4.13's fallback path owns
	// them); see LEVEL_BLOCK_LIST in set_static_metadata() in source.
	//
	// extmeta.Block is a closed interface with no JSON discriminator tag
	// in this codec, so this field -- like Level5/Level6/Shots' per-block
	// lists below -- isn't populated by LoadConfig; callers attach blocks
	// programmatically after loading the scalar config. See DESIGN.md.
	DefaultMetadataBlocks []extmeta.Block `json:"-"`

	Shots []VideoShot `json:"shots"`
}

// VideoShot is a contiguous run of frames sharing the same base metadata.
type VideoShot struct {
	ID       string `json:"id,omitempty"`
	Start    int    `json:"start"`
	Duration int    `json:"duration"`

	MetadataBlocks []extmeta.Block `json:"-"`
	FrameEdits     []ShotFrameEdit `json:"frame_edits,omitempty"`
}

// ShotFrameEdit overrides metadata for a single frame within a shot.
type ShotFrameEdit struct {
	EditOffset int `json:"edit_offset"`

	MetadataBlocks []extmeta.Block `json:"-"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadConfig decodes the scalar/shot-shape fields of a generator config
// from JSON. Metadata block lists (Level5, Level6, DefaultMetadataBlocks,
// and every shot/frame-edit's MetadataBlocks) are not populated by this
// call; attach them afterward.
func LoadConfig(data []byte) (*GenerateConfig, error) {
	cfg := &GenerateConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode marshals cfg's scalar/shot-shape fields back to JSON.
func Encode(cfg *GenerateConfig) ([]byte, error) {
	return json.Marshal(cfg)
}
