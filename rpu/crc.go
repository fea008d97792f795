/*
DESCRIPTION
  crc.go computes the RPU payload's IEEE 802.3 CRC-32, over bytes
  [1, payload_end-5) of the framed buffer.

  container/mts/psi/crc.go in the teacher hand-rolls a CRC-32 *variant*
  table for MPEG-TS descriptors (non-reflected input/output, big-endian,
  no final XOR) — a different polynomial arrangement than the reflected
  IEEE 802.3 form this payload requires "as produced by standard
  libraries". Since Go's standard hash/crc32.ChecksumIEEE already is that
  exact table, there is nothing for a hand-rolled or third-party CRC
  package to add here; see DESIGN.md for the fuller justification.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "hash/crc32"

// crc32IEEE returns the IEEE 802.3 CRC-32 of b.
func crc32IEEE(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
