/*
DESCRIPTION
  cmv29.go implements the CM v2.9 extension metadata block container:
  allowed levels {1,2,4,5,6,255} and their multiplicity caps.

AUTHORS
  Derived for the dovi RPU codec from the table-driven, length-prefixed
  descriptor container idiom in
  github.com/ausocean/av/container/mts/psi/psi.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import (
	"sort"

	"github.com/doviproc/dovi/rpu/extmeta"
)

// sortBlocksBySortKey stable-sorts blocks by SortKey(), matching
// update_extension_block_info() in source, called after every mutation so
// containers always write blocks in sorted order within a DM section.
func sortBlocksBySortKey(blocks []extmeta.Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		levelI, secondaryI := blocks[i].SortKey()
		levelJ, secondaryJ := blocks[j].SortKey()
		if levelI != levelJ {
			return levelI < levelJ
		}
		return secondaryI < secondaryJ
	})
}

// CmV29 is the CM v2.9 extension metadata block container.
type CmV29 struct {
	Blocks []extmeta.Block
}

var cmV29AllowedLevels = map[uint8]bool{1: true, 2: true, 4: true, 5: true, 6: true, 255: true}

// AllowedLevels reports whether level belongs to the v2.9 partition.
func (*CmV29) AllowedLevels(level uint8) bool { return cmV29AllowedLevels[level] }

// Version names this container for BlockLevelNotAllowedInVersion errors.
func (*CmV29) Version() string { return "CM v2.9" }

// AddBlock appends block after validating its level against the v2.9
// partition and the container's multiplicity caps.
func (c *CmV29) AddBlock(block extmeta.Block) error {
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

func (c *CmV29) checkMultiplicity(level uint8) error {
	max := map[uint8]int{1: 1, 2: 8, 4: 1, 5: 1, 6: 1, 255: 1}[level]
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

// RemoveLevel deletes every block of the named level.
func (c *CmV29) RemoveLevel(level uint8) {
	out := c.Blocks[:0]
	for _, b := range c.Blocks {
		if b.Level() != level {
			out = append(out, b)
		}
	}
	c.Blocks = out
}

// ReplaceLevel removes every existing block of the named level and adds
// block in their place.
func (c *CmV29) ReplaceLevel(level uint8, block extmeta.Block) error {
	c.RemoveLevel(level)
	return c.AddBlock(block)
}

// ReplaceBlock replaces the matching instance for multi-instance levels
// (L2, distinguished by target_max_pq) or the singleton for single-instance
// levels.
func (c *CmV29) ReplaceBlock(block extmeta.Block) error {
	_, secondary := block.SortKey()
	for i, b := range c.Blocks {
		if b.Level() != block.Level() {
			continue
		}
		if block.Level() != 2 {
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

// GetBlock returns the first block of the named level, if any.
func (c *CmV29) GetBlock(level uint8) extmeta.Block {
	for _, b := range c.Blocks {
		if b.Level() == level {
			return b
		}
	}
	return nil
}

// LevelBlocksIter returns every block of the named level.
func (c *CmV29) LevelBlocksIter(level uint8) []extmeta.Block {
	var out []extmeta.Block
	for _, b := range c.Blocks {
		if b.Level() == level {
			out = append(out, b)
		}
	}
	return out
}

// NumExtBlocks returns the block count, as would be serialized in
// num_ext_blocks.
func (c *CmV29) NumExtBlocks() int { return len(c.Blocks) }

// Validate enforces the v2.9 multiplicity caps over the current block set.
func (c *CmV29) Validate() error {
	counts := map[uint8]int{}
	for _, b := range c.Blocks {
		level := b.Level()
		if !c.AllowedLevels(level) {
			return &BlockLevelNotAllowedInVersion{Level: level, Version: c.Version()}
		}
		counts[level]++
	}
	max := map[uint8]int{1: 1, 2: 8, 4: 1, 5: 1, 6: 1, 255: 1}
	for level, count := range counts {
		if count > max[level] {
			return &BlockMultiplicityExceeded{Level: level, Max: max[level]}
		}
	}
	return nil
}
