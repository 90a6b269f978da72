// Copyright (c) 2021 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire implements the little-endian, word-aligned binary codec
// shared by the report file (§6.3) and the notes file (§6.4). Both
// formats use the same string encoding: a length-in-words prefix
// followed by the payload and NUL padding to the next word boundary, so
// a reader can skip entries without a schema.
package wire

import (
	"bufio"
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"
)

const wordSize = 4

// Writer appends little-endian 32-bit words and length-prefixed strings
// to an underlying io.Writer. It is used both for the mmap-backed report
// file (runtime package) and the notes sidecar (pass package).
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered by any Write call.
func (w *Writer) Err() error {
	return w.err
}

// WriteWord writes one little-endian 32-bit word.
func (w *Writer) WriteWord(v uint32) {
	if w.err != nil {
		return
	}
	var buf [wordSize]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, w.err = w.w.Write(buf[:])
}

// WriteString writes s using the length-prefixed, NUL-padded encoding
// of §6.3: one length_words word = floor(len/4)+1, then len bytes of
// payload, then 4-(len mod 4) NUL bytes.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	lengthWords := uint32(len(s)/wordSize) + 1
	w.WriteWord(lengthWords)
	if w.err != nil {
		return
	}
	if _, w.err = io.WriteString(w.w, s); w.err != nil {
		return
	}
	pad := wordSize - len(s)%wordSize
	var zeros [wordSize]byte
	_, w.err = w.w.Write(zeros[:pad])
}

// Reader reads the inverse of Writer's encoding from an underlying
// io.Reader, used by tests to round-trip what the runtime/pass emit
// (an offline analyzer doing the same is out of scope, per §1).
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadWord reads one little-endian 32-bit word.
func (r *Reader) ReadWord() (uint32, error) {
	var buf [wordSize]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadString reads a length-prefixed, NUL-padded string.
func (r *Reader) ReadString() (string, error) {
	lengthWords, err := r.ReadWord()
	if err != nil {
		return "", xerrors.Errorf("wire: read string length: %w", err)
	}
	if lengthWords == 0 {
		return "", xerrors.New("wire: zero-length length_words word")
	}
	buf := make([]byte, lengthWords*wordSize)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", xerrors.Errorf("wire: read string payload: %w", err)
	}
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[:end]), nil
}
