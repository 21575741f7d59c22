// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package sjis wraps golang.org/x/text's Shift-JIS transcoder for the
// fixed-width name fields the archive header and entry records carry on
// disk.
package sjis

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// EncodedLen returns the number of Shift-JIS bytes s encodes to, without
// padding or truncation. Used to validate a candidate file name against a
// fixed-width field in its encoded byte length rather than its character
// count.
func EncodedLen(s string) (int, error) {
	b, err := Encode(s)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// Encode transcodes s (UTF-8, as Go strings always are) to Shift-JIS bytes.
func Encode(s string) ([]byte, error) {
	b, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("sjis: encode %q: %w", s, err)
	}
	return b, nil
}

// PutField writes s into dst as Shift-JIS, null-padding any remainder up
// to dst's full width. It returns an error if s's Shift-JIS encoding
// exceeds len(dst), rather than truncating it.
func PutField(dst []byte, s string) error {
	for i := range dst {
		dst[i] = 0
	}
	enc, err := Encode(s)
	if err != nil {
		return err
	}
	if len(enc) > len(dst) {
		return fmt.Errorf("sjis: %q encodes to %d bytes, exceeds %d-byte field", s, len(enc), len(dst))
	}
	copy(dst, enc)
	return nil
}

// Field decodes a fixed-width, null-padded (and possibly null-free if the
// field is exactly full) Shift-JIS name field into a Go string.
func Field(src []byte) (string, error) {
	trimmed := bytes.TrimRight(src, "\x00")
	b, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), trimmed)
	if err != nil {
		return "", fmt.Errorf("sjis: decode field: %w", err)
	}
	return string(b), nil
}
