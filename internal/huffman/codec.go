// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import (
	"errors"

	"github.com/aosvn/aoskit/internal/bitio"
)

// ErrEmptyInput is returned by Encode when data has zero length: there is
// no symbol to build a tree from, and the script codec framing (a length
// prefix, not an empty-tree marker) has no representation for it.
var ErrEmptyInput = errors.New("huffman: cannot encode zero-length input")

// Encode writes data's Huffman tree followed by its bit-packed code stream
// to w, using bitio's big-endian bit packing. It does not write the
// uncompressed-length prefix the script codec frames around this; that is
// script.Encode's responsibility, so Encode and Decode here operate purely
// on the tree-plus-body portion of the stream.
func Encode(w *bitio.Writer, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}

	freq := make(map[byte]uint32)
	for _, b := range data {
		freq[b]++
	}
	root := Build(freq)
	codes := Codes(root)

	if err := SerializeTree(w, root); err != nil {
		return err
	}
	if root.Leaf {
		// Single-symbol input: the tree alone determines every byte, so
		// no code bits are written per occurrence.
		return nil
	}
	for _, b := range data {
		if err := w.WriteBits(codes[b]); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a tree and bit-packed code stream previously written by
// Encode, and returns n decoded bytes. n must come from the caller (the
// script codec's uncompressed-length prefix); Huffman streams carry no
// terminator of their own.
func Decode(r *bitio.Reader, n int) ([]byte, error) {
	tree, err := DeserializeTree(r)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	if tree.RootID < firstInternalID {
		// Single-leaf tree: every decoded byte is the same value, no code
		// bits were written for it.
		for i := range out {
			out[i] = byte(tree.RootID)
		}
		return out, nil
	}

	for i := range out {
		id := tree.RootID
		for id >= firstInternalID {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, err
			}
			if bit {
				id = tree.bit1[id]
			} else {
				id = tree.bit0[id]
			}
		}
		out[i] = byte(id)
	}
	return out, nil
}
