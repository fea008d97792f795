/*
DESCRIPTION
  escape.go implements HEVC start-code emulation prevention for RPU NAL
  units: stripping the emulation prevention three-byte (0x03) before
  parsing, and re-inserting it before writing.

AUTHORS
  Derived for the dovi RPU codec from the forward byte-scan idiom in
  ausocean-av's codec/codecutil/bytescanner.go, reworked as two tight
  loops over an in-memory buffer rather than an io.Reader.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package nalu implements HEVC NAL-unit helpers used by the RPU codec:
// start-code emulation prevention byte stripping/insertion. Leading-signature
// recognition and the NAL unit header are handled in package rpu.
package nalu

// Strip removes every emulation prevention three-byte (0x03) that follows
// two consecutive zero bytes and precedes a byte in [0x00, 0x03], returning
// a new slice. b is not modified.
func Strip(b []byte) []byte {
	out := make([]byte, 0, len(b))
	zeros := 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		if zeros >= 2 && c == 0x03 && i+1 < len(b) && b[i+1] <= 0x03 {
			zeros = 0
			continue
		}
		out = append(out, c)
		if c == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}

// Insert splices an emulation prevention three-byte (0x03) before any byte
// in [0x00, 0x03] that follows two consecutive zero bytes, returning a new
// slice. b is not modified.
func Insert(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(b)/2+1)
	zeros := 0
	for _, c := range b {
		if zeros >= 2 && c <= 0x03 {
			out = append(out, 0x03)
			zeros = 0
		}
		out = append(out, c)
		if c == 0x00 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
