// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import "github.com/aosvn/aoskit/internal/bitio"

// SerializeTree writes root as a pre-order bit-packed prefix: an internal
// node writes bit 1 then recurses left, right; a leaf writes bit 0 then
// its byte value as 8 bits, most-significant-bit-first. A single-leaf
// tree (root.Leaf true) serializes as the one-bit-plus-byte leaf form,
// which doubles as this package's encoding for the degenerate case.
func SerializeTree(w *bitio.Writer, root *Node) error {
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n.Leaf {
			if err := w.WriteBit(false); err != nil {
				return err
			}
			return w.WriteByte(n.Value)
		}
		if err := w.WriteBit(true); err != nil {
			return err
		}
		if err := walk(n.Left); err != nil {
			return err
		}
		return walk(n.Right)
	}
	return walk(root)
}

// arraySize matches the reference decoder's defensive cap: 511 entries,
// internal-node ids starting at 256. A compressed stream built by this
// package can never have more than 255 internal nodes (256 leaves at
// most, one fewer internal node than leaves), so a correct stream never
// drives an id past 510; the guard below exists only for malformed input.
const firstInternalID = 256
const arraySize = 511

// DecodeTree is the flat-array representation used for decoding: bit0[id]
// and bit1[id] hold either a byte value (<256, a leaf) or another
// internal-node id (>=256), indexed by internal-node id starting at 256.
type DecodeTree struct {
	bit0, bit1 [arraySize]int
	RootID     int // <256 if the whole tree is a single leaf
}

// DeserializeTree rebuilds a DecodeTree from the bit-packed prefix written
// by SerializeTree.
func DeserializeTree(r *bitio.Reader) (*DecodeTree, error) {
	t := &DecodeTree{}
	nextID := firstInternalID

	var read func() (int, error)
	read = func() (int, error) {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if !bit {
			b, err := r.ReadByte()
			if err != nil {
				return 0, err
			}
			return int(b), nil
		}

		id := nextID
		nextID++
		if id >= arraySize {
			// Malformed/oversized stream only: a well-formed tree never
			// claims more than 255 internal ids (at most 256 leaves), so
			// id never reaches this guard in practice.
			return 0, nil
		}

		left, err := read()
		if err != nil {
			return 0, err
		}
		t.bit0[id] = left

		right, err := read()
		if err != nil {
			return 0, err
		}
		t.bit1[id] = right

		return id, nil
	}

	root, err := read()
	if err != nil {
		return nil, err
	}
	t.RootID = root
	return t, nil
}
