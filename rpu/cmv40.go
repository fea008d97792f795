/*
DESCRIPTION
  cmv40.go implements the CM v4.0 extension metadata block container:
  allowed levels {3,8,9,10,11,15,254} and their multiplicity caps. Levels
  15 and 16 have no defined field layout anywhere in source (spec §9 open
  question) and parse as Reserved blocks. Level 15 is allowed here and
  round-trips; level 16 is outside the allowed set, so AddBlock rejects it.

AUTHORS
  Derived for the dovi RPU codec from the same table-driven descriptor
  container idiom in github.com/ausocean/av/container/mts/psi/psi.go used
  by cmv29.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "github.com/doviproc/dovi/rpu/extmeta"

// CmV40 is the CM v4.0 extension metadata block container.
type CmV40 struct {
	Blocks []extmeta.Block
}

var cmV40AllowedLevels = map[uint8]bool{3: true, 8: true, 9: true, 10: true, 11: true, 15: true, 254: true}

// cmv40Max holds the multiplicity cap per level. L10's cap is 4, matching
// v4.0 container validation, per the Open Question decision recorded in
// DESIGN.md (the corpus has another call path using 8; 4 is authoritative
// here).
var cmv40Max = map[uint8]int{3: 1, 8: 5, 9: 1, 10: 4, 11: 1, 15: 1, 254: 1}

func (*CmV40) AllowedLevels(level uint8) bool { return cmV40AllowedLevels[level] }

func (*CmV40) Version() string { return "CM v4.0" }

func (c *CmV40) AddBlock(block extmeta.Block) error {
	level := block.Level()
	if !c.AllowedLevels(level) {
		return &BlockLevelNotAllowedInVersion{Level: level, Version: c.Version()}
	}
	if err := c.checkMultiplicity(level); err != nil {
		return err
	}
	c.Blocks = append(c.Blocks, block)
	sortBlocksBySortKey(c.Blocks)
	return nil
}

func (c *CmV40) checkMultiplicity(level uint8) error {
	max := cmv40Max[level]
	count := 0
	for _, b := range c.Blocks {
		if b.Level() == level {
			count++
		}
	}
	if count >= max {
		return &BlockMultiplicityExceeded{Level: level, Max: max}
	}
	return nil
}

func (c *CmV40) RemoveLevel(level uint8) {
	out := c.Blocks[:0]
	for _, b := range c.Blocks {
		if b.Level() != level {
			out = append(out, b)
		}
	}
	c.Blocks = out
}

func (c *CmV40) ReplaceLevel(level uint8, block extmeta.Block) error {
	c.RemoveLevel(level)
	return c.AddBlock(block)
}

// ReplaceBlock replaces the matching instance for multi-instance levels
// (L8/L10, distinguished by target_display_index) or the singleton for
// single-instance levels.
func (c *CmV40) ReplaceBlock(block extmeta.Block) error {
	_, secondary := block.SortKey()
	multiInstance := block.Level() == 8 || block.Level() == 10
	for i, b := range c.Blocks {
		if b.Level() != block.Level() {
			continue
		}
		if !multiInstance {
			c.Blocks[i] = block
			return nil
		}
		_, bSecondary := b.SortKey()
		if bSecondary == secondary {
			c.Blocks[i] = block
			return nil
		}
	}
	return c.AddBlock(block)
}

func (c *CmV40) GetBlock(level uint8) extmeta.Block {
	for _, b := range c.Blocks {
		if b.Level() == level {
			return b
		}
	}
	return nil
}

func (c *CmV40) LevelBlocksIter(level uint8) []extmeta.Block {
	var out []extmeta.Block
	for _, b := range c.Blocks {
		if b.Level() == level {
			out = append(out, b)
		}
	}
	return out
}

func (c *CmV40) NumExtBlocks() int { return len(c.Blocks) }

// Validate enforces the v4.0 multiplicity caps, including the mandatory
// single Level 254 block.
func (c *CmV40) Validate() error {
	counts := map[uint8]int{}
	for _, b := range c.Blocks {
		level := b.Level()
		if !c.AllowedLevels(level) {
			return &BlockLevelNotAllowedInVersion{Level: level, Version: c.Version()}
		}
		counts[level]++
	}
	for level, max := range cmv40Max {
		if counts[level] > max {
			return &BlockMultiplicityExceeded{Level: level, Max: max}
		}
	}
	if counts[254] != 1 {
		return &BlockMultiplicityExceeded{Level: 254, Max: 1}
	}
	return nil
}

// NewWithL254V402 returns a CmV40 container seeded with the canonical
// "CM v4.0.2" Level 254 block, matching new_with_l254_402() in source.
func NewWithL254V402() *CmV40 {
	return &CmV40{Blocks: []extmeta.Block{extmeta.NewLevel254V402()}}
}
