/*
DESCRIPTION
  reader.go provides Reader, a bit-level reader over an in-memory byte
  buffer, used to parse the RPU bitstream described in the Dolby Vision
  Reference Processing Unit payload layout.

AUTHORS
  Derived for the dovi RPU codec from the accumulator-register read loop in
  github.com/ausocean/av/codec/h264/h264dec/bits/bitreader.go and the free
  readUe/readSe helpers in github.com/ausocean/av/codec/h264/h264dec/parse.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bits

// maxExpGolombZeros is the largest leading-zero run a conforming RPU ever
// emits for an exp-Golomb code (spec section 9, "Exp-Golomb bounds").
const maxExpGolombZeros = 32

// Reader reads bits, MSB-first, from a fixed in-memory byte buffer.
type Reader struct {
	buf []byte
	pos int // absolute bit position from the start of buf.
}

// NewReader returns a Reader over buf, starting at the first bit.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current absolute bit position.
func (r *Reader) Pos() int { return r.pos }

// AvailableBits returns the number of unread bits remaining in the buffer.
func (r *Reader) AvailableBits() int {
	return len(r.buf)*8 - r.pos
}

// IsByteAligned reports whether the reader sits at a byte boundary.
func (r *Reader) IsByteAligned() bool {
	return r.pos%8 == 0
}

// ReadBits reads n unsigned bits, 0 < n <= 64, MSB-first, returning them in
// the least-significant bits of the result.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n <= 0 || n > 64 {
		return 0, ErrBitWidth
	}
	if n > r.AvailableBits() {
		return 0, ErrEndOfStream
	}

	var v uint64
	remaining := n
	pos := r.pos
	for remaining > 0 {
		byteIdx := pos / 8
		bitOff := pos % 8
		avail := 8 - bitOff
		take := avail
		if take > remaining {
			take = remaining
		}
		b := r.buf[byteIdx]
		shift := avail - take
		mask := byte((1 << uint(take)) - 1)
		bits := (b >> uint(shift)) & mask
		v = (v << uint(take)) | uint64(bits)
		pos += take
		remaining -= take
	}
	r.pos = pos
	return v, nil
}

// ReadBool reads a single bit and returns it as a bool.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadBits(1)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadUE reads an unsigned exp-Golomb (ue(v)) coded integer: count leading
// zero bits k (k <= 32), read the 1 separator bit, read k more suffix bits,
// and return (1<<k)-1+suffix.
func (r *Reader) ReadUE() (uint64, error) {
	k := 0
	for {
		b, err := r.ReadBits(1)
		if err != nil {
			return 0, err
		}
		if b == 1 {
			break
		}
		k++
		if k > maxExpGolombZeros {
			return 0, ErrInvalidCode
		}
	}
	if k == 0 {
		return 0, nil
	}
	suffix, err := r.ReadBits(k)
	if err != nil {
		return 0, err
	}
	return (uint64(1)<<uint(k) - 1) + suffix, nil
}

// ReadSE reads a signed exp-Golomb (se(v)) coded integer, derived from the
// unsigned code as ue odd -> (ue+1)/2, ue even -> -(ue/2).
func (r *Reader) ReadSE() (int64, error) {
	ue, err := r.ReadUE()
	if err != nil {
		return 0, err
	}
	if ue%2 == 1 {
		return int64((ue + 1) / 2), nil
	}
	return -int64(ue / 2), nil
}

