/*
DESCRIPTION
  fieldreader.go provides fieldReader, a sticky-error wrapper around
  bits.Reader used throughout the header, mapping, NLQ, and DM codecs so a
  long run of field reads can be written without an if-err-return after
  every single call.

AUTHORS
  Derived for the dovi RPU codec from the fieldReader pattern in
  github.com/ausocean/av/codec/h264/h264dec/parse.go, implemented with a
  pointer receiver so the sticky error actually propagates across calls.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "github.com/doviproc/dovi/bits"

// fieldReader wraps a bits.Reader with a sticky error: once a read fails,
// every subsequent read on the same fieldReader is a no-op that returns the
// zero value, so callers can chain many field reads and check err() once.
type fieldReader struct {
	e  error
	br *bits.Reader
}

func newFieldReader(br *bits.Reader) *fieldReader {
	return &fieldReader{br: br}
}

func (r *fieldReader) readBits(n int) uint64 {
	if r.e != nil {
		return 0
	}
	var v uint64
	v, r.e = r.br.ReadBits(n)
	return v
}

func (r *fieldReader) readBool() bool {
	if r.e != nil {
		return false
	}
	var b bool
	b, r.e = r.br.ReadBool()
	return b
}

func (r *fieldReader) readUe() uint64 {
	if r.e != nil {
		return 0
	}
	var v uint64
	v, r.e = r.br.ReadUE()
	return v
}

func (r *fieldReader) readSe() int64 {
	if r.e != nil {
		return 0
	}
	var v int64
	v, r.e = r.br.ReadSE()
	return v
}

// err returns the sticky error, if any.
func (r *fieldReader) err() error {
	return r.e
}

// fieldWriter is the write-side mirror of fieldReader.
type fieldWriter struct {
	e  error
	bw *bits.Writer
}

func newFieldWriter(bw *bits.Writer) *fieldWriter {
	return &fieldWriter{bw: bw}
}

func (w *fieldWriter) writeBits(v uint64, n int) {
	if w.e != nil {
		return
	}
	w.e = w.bw.WriteBits(v, n)
}

func (w *fieldWriter) writeBool(b bool) {
	if w.e != nil {
		return
	}
	w.e = w.bw.WriteBool(b)
}

func (w *fieldWriter) writeUe(v uint64) {
	if w.e != nil {
		return
	}
	w.e = w.bw.WriteUE(v)
}

func (w *fieldWriter) writeSe(v int64) {
	if w.e != nil {
		return
	}
	w.e = w.bw.WriteSE(v)
}

func (w *fieldWriter) err() error {
	return w.e
}
