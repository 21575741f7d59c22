// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package aos implements the archive container used by the engine: a
// fixed 273-byte header, a fixed-width entry index, and a concatenated
// data region. It dispatches entries by file extension: to internal/script
// and internal/abm on the unpack path, and to internal/script only on the
// pack path (.abm files are packed unchanged).
package aos

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/aosvn/aoskit/internal/sjis"
)

const (
	headerSize      = 273
	archiveNameSize = 261
	entrySize       = 40
	fileNameSize    = 32
)

// ErrTruncated is returned whenever the archive is shorter than its
// header, index, or a declared entry's data demands.
var ErrTruncated = errors.New("aos: truncated archive")

// Header is the archive's fixed 273-byte preamble.
type Header struct {
	Signature   uint32
	DataOffset  uint32
	IndexSize   uint32
	ArchiveName string
}

func readHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, ErrTruncated
	}
	name, err := sjis.Field(data[12 : 12+archiveNameSize])
	if err != nil {
		return Header{}, err
	}
	return Header{
		Signature:   binary.LittleEndian.Uint32(data[0:4]),
		DataOffset:  binary.LittleEndian.Uint32(data[4:8]),
		IndexSize:   binary.LittleEndian.Uint32(data[8:12]),
		ArchiveName: name,
	}, nil
}

func writeHeader(h Header) ([]byte, error) {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Signature)
	binary.LittleEndian.PutUint32(buf[4:8], h.DataOffset)
	binary.LittleEndian.PutUint32(buf[8:12], h.IndexSize)
	if err := sjis.PutField(buf[12:12+archiveNameSize], h.ArchiveName); err != nil {
		return nil, err
	}
	return buf, nil
}

// Entry is one fixed 40-byte record of the archive's entry index.
type Entry struct {
	Name   string
	Offset uint32 // relative to the header's DataOffset
	Size   uint32
}

func readEntry(data []byte) (Entry, error) {
	name, err := sjis.Field(data[0:32])
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Name:   name,
		Offset: binary.LittleEndian.Uint32(data[32:36]),
		Size:   binary.LittleEndian.Uint32(data[36:40]),
	}, nil
}

func writeEntry(e Entry) ([]byte, error) {
	buf := make([]byte, entrySize)
	if err := sjis.PutField(buf[0:32], e.Name); err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[32:36], e.Offset)
	binary.LittleEndian.PutUint32(buf[36:40], e.Size)
	return buf, nil
}

// Archive is a parsed archive: its header, its entry index, and the
// underlying reader entry payloads are pulled from on demand. Parse reads
// only the header and index up front; it never buffers the data region.
type Archive struct {
	Header  Header
	Entries []Entry
	r       io.ReaderAt
	size    int64
}

// Parse reads an archive's header and entry index from r, which spans
// size bytes. It does not read or copy entry payload bytes; use
// EntryBytes for that, which pulls each entry's bytes from r lazily.
func Parse(r io.ReaderAt, size int64) (*Archive, error) {
	headerBuf := make([]byte, headerSize)
	if _, err := r.ReadAt(headerBuf, 0); err != nil {
		return nil, truncatedOr(err)
	}
	h, err := readHeader(headerBuf)
	if err != nil {
		return nil, err
	}

	entryCount := int(h.IndexSize / entrySize)
	if int64(headerSize)+int64(h.IndexSize) > size {
		return nil, ErrTruncated
	}
	indexBuf := make([]byte, h.IndexSize)
	if h.IndexSize > 0 {
		if _, err := r.ReadAt(indexBuf, headerSize); err != nil {
			return nil, truncatedOr(err)
		}
	}

	entries := make([]Entry, entryCount)
	for i := 0; i < entryCount; i++ {
		off := i * entrySize
		e, err := readEntry(indexBuf[off : off+entrySize])
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	return &Archive{Header: h, Entries: entries, r: r, size: size}, nil
}

// EntryBytes reads e's slice of the data region from the archive's
// underlying reader. e must be one of a's own Entries (or have equal
// Offset/Size semantics).
func (a *Archive) EntryBytes(e Entry) ([]byte, error) {
	start := int64(a.Header.DataOffset) + int64(e.Offset)
	end := start + int64(e.Size)
	if start < 0 || end > a.size || start > end {
		return nil, ErrTruncated
	}
	buf := make([]byte, e.Size)
	if e.Size == 0 {
		return buf, nil
	}
	if _, err := a.r.ReadAt(buf, start); err != nil {
		return nil, truncatedOr(err)
	}
	return buf, nil
}

func truncatedOr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
