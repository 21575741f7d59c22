// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package script implements the framing around internal/huffman used for
// the engine's Shift-JIS script files: a little-endian uncompressed-length
// prefix, the bit-packed tree and code stream, and trailing pad bits to
// byte-align.
package script

import (
	"bytes"

	"github.com/aosvn/aoskit/internal/bitio"
	"github.com/aosvn/aoskit/internal/huffman"
)

// Encode compresses data (treated as opaque bytes; the engine happens to
// store Shift-JIS text in them) into the script wire format.
func Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	if err := w.WriteUint32(uint32(len(data))); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		// Nothing to build a tree from; an empty script file is just its
		// four-byte length prefix.
		return buf.Bytes(), nil
	}
	if err := huffman.Encode(w, data); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode, returning output byte-identical to the original
// input. It never reads past the logical length implied by the prefix.
func Decode(data []byte) ([]byte, error) {
	r := bitio.NewReader(bytes.NewReader(data))
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	return huffman.Decode(r, int(n))
}
