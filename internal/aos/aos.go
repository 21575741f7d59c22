// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package aos

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aosvn/aoskit/internal/abm"
	"github.com/aosvn/aoskit/internal/animjson"
	"github.com/aosvn/aoskit/internal/bmpio"
	"github.com/aosvn/aoskit/internal/decodecache"
	"github.com/aosvn/aoskit/internal/iopool"
	"github.com/aosvn/aoskit/internal/script"
	"github.com/aosvn/aoskit/internal/sjis"
)

// OutputFile is one file Extract would write below the output directory
// named after the archive's stem (that join is the caller's job: Extract
// only returns names relative to it, not absolute paths).
type OutputFile struct {
	Name string
	Data []byte
}

// ExtractOptions controls Extract's behavior beyond the fixed per-
// extension dispatch spec.md fixes.
type ExtractOptions struct {
	// NoDecode suppresses inner script/ABM decoding: every entry is
	// returned unchanged under its original name. Paired with Pack's
	// NoEncode, this round-trips an archive byte-for-byte.
	NoDecode bool

	// Match, if non-empty, is a set of doublestar glob patterns matched
	// against each entry's name; only matching entries participate. An
	// empty/nil Match selects every entry, in index order.
	Match []string

	// Cache, if non-nil, memoizes decoded .scr payloads by content hash.
	// Disabling it (leaving it nil) never changes output.
	Cache *decodecache.Cache

	// Workers bounds concurrent per-entry decoding. 0 defaults to
	// runtime.GOMAXPROCS(0). Output order always matches entry order
	// regardless of this setting.
	Workers int
}

// Extract decodes every selected entry of the archive readable through r,
// which spans size bytes. Entry payloads are pulled from r lazily, one
// at a time per worker, rather than buffered up front.
func Extract(r io.ReaderAt, size int64, opts ExtractOptions) ([]OutputFile, error) {
	archive, err := Parse(r, size)
	if err != nil {
		return nil, err
	}

	selected := archive.Entries
	if len(opts.Match) > 0 {
		selected = filterEntries(archive.Entries, opts.Match)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	groups, err := iopool.Run(len(selected), workers, func(i int) ([]OutputFile, error) {
		raw, err := archive.EntryBytes(selected[i])
		if err != nil {
			return nil, fmt.Errorf("aos: entry %q: %w", selected[i].Name, err)
		}
		return decodeEntry(selected[i].Name, raw, opts)
	})
	if err != nil {
		return nil, err
	}

	var out []OutputFile
	for _, g := range groups {
		out = append(out, g...)
	}
	return out, nil
}

func decodeEntry(name string, raw []byte, opts ExtractOptions) ([]OutputFile, error) {
	if opts.NoDecode {
		return []OutputFile{{Name: name, Data: raw}}, nil
	}

	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	switch ext {
	case ".scr":
		return decodeScriptEntry(name, stem, raw, opts.Cache)
	case ".abm":
		return decodeABMEntry(name, stem, raw), nil
	case ".msk":
		return []OutputFile{{Name: stem + ".bmp", Data: raw}}, nil
	default:
		return []OutputFile{{Name: name, Data: raw}}, nil
	}
}

func decodeScriptEntry(name, stem string, raw []byte, cache *decodecache.Cache) ([]OutputFile, error) {
	var key decodecache.Key
	if cache != nil {
		key = decodecache.KeyOf(raw)
		if cached, ok := cache.Get(key); ok {
			return []OutputFile{{Name: stem + ".txt", Data: cached}}, nil
		}
	}

	decoded, err := script.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("aos: script decode %q: %w", name, err)
	}

	if cache != nil {
		cache.Put(key, decoded)
	}
	return []OutputFile{{Name: stem + ".txt", Data: decoded}}, nil
}

// decodeABMEntry never returns an error: per the archive extraction
// robustness policy, any ABM decode or re-encode failure falls back to
// writing the entry unchanged under its original name.
func decodeABMEntry(name, stem string, raw []byte) []OutputFile {
	unchanged := []OutputFile{{Name: name, Data: raw}}

	img, err := abm.Decode(raw, stem)
	if err != nil {
		slog.Warn("abm decode failed, writing unchanged", "entry", name, "err", err)
		return unchanged
	}

	switch img.Kind {
	case abm.Single:
		bmp, err := bmpio.Encode(img.Width, img.Height, img.BitCount, img.Pixels)
		if err != nil {
			slog.Warn("bmp encode failed, writing unchanged", "entry", name, "err", err)
			return unchanged
		}
		return []OutputFile{{Name: stem + ".bmp", Data: bmp}}

	case abm.MultiFrame:
		out := make([]OutputFile, 0, len(img.Frames)+1)
		for _, f := range img.Frames {
			bmp, err := bmpio.Encode(img.Width, img.Height, 32, f.Pixels)
			if err != nil {
				slog.Warn("bmp encode failed, writing unchanged", "entry", name, "err", err)
				return unchanged
			}
			out = append(out, OutputFile{Name: f.Name + ".bmp", Data: bmp})
		}
		sidecar, err := animjson.Marshal(img)
		if err != nil {
			slog.Warn("animation sidecar encode failed, writing unchanged", "entry", name, "err", err)
			return unchanged
		}
		out = append(out, OutputFile{Name: stem + ".json", Data: sidecar})
		return out

	default: // NotImplemented, Unknown
		return unchanged
	}
}

// InputFile is one already-enumerated file Pack writes into the archive.
// Enumeration order is preserved exactly: Pack never sorts.
type InputFile struct {
	Name string
	Data []byte
}

// PackOptions controls Pack's behavior beyond the fixed encode-by-
// extension dispatch spec.md fixes.
type PackOptions struct {
	// NoEncode suppresses inner script encoding: every file is written
	// through unchanged under its original name.
	NoEncode bool

	// Match, if non-empty, is a set of doublestar glob patterns matched
	// against each input file's name; only matching files participate.
	Match []string
}

// Pack builds an archive from files, named after archiveStem
// ("<archiveStem>.aos" becomes the header's ArchiveName). Name validation
// happens before anything is written: if any selected file's name exceeds
// the 32-byte Shift-JIS field, Pack returns an error and produces no
// output at all.
func Pack(files []InputFile, archiveStem string, opts PackOptions) ([]byte, error) {
	selected := files
	if len(opts.Match) > 0 {
		selected = filterInputFiles(files, opts.Match)
	}

	archiveName := archiveStem + ".aos"
	if err := validateFieldLen(archiveName, archiveNameSize); err != nil {
		return nil, err
	}

	// Encode and validate every name up front: a name that's too long
	// fails the whole operation with no files written, per spec.
	names := make([]string, len(selected))
	encoded := make([][]byte, len(selected))
	for i, f := range selected {
		name, data, err := encodeForPack(f, opts.NoEncode)
		if err != nil {
			return nil, err
		}
		if err := validateFieldLen(name, fileNameSize); err != nil {
			return nil, err
		}
		names[i], encoded[i] = name, data
	}

	entries := make([]Entry, len(selected))
	var dataRegion bytes.Buffer
	for i := range selected {
		entries[i] = Entry{Name: names[i], Offset: uint32(dataRegion.Len()), Size: uint32(len(encoded[i]))}
		dataRegion.Write(encoded[i])
	}

	indexSize := uint32(len(entries) * entrySize)
	header := Header{
		Signature:   0,
		DataOffset:  headerSize + indexSize,
		IndexSize:   indexSize,
		ArchiveName: archiveName,
	}

	headerBytes, err := writeHeader(header)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(headerBytes)
	for _, e := range entries {
		b, err := writeEntry(e)
		if err != nil {
			return nil, err
		}
		out.Write(b)
	}
	out.Write(dataRegion.Bytes())
	return out.Bytes(), nil
}

func encodeForPack(f InputFile, noEncode bool) (name string, data []byte, err error) {
	if noEncode {
		return f.Name, f.Data, nil
	}
	if strings.ToLower(filepath.Ext(f.Name)) == ".txt" {
		enc, err := script.Encode(f.Data)
		if err != nil {
			return "", nil, fmt.Errorf("aos: script encode %q: %w", f.Name, err)
		}
		return strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".scr", enc, nil
	}
	return f.Name, f.Data, nil
}

func validateFieldLen(name string, limit int) error {
	n, err := sjis.EncodedLen(name)
	if err != nil {
		return err
	}
	if n > limit {
		return fmt.Errorf("aos: %q encodes to %d Shift-JIS bytes, exceeds %d-byte field", name, n, limit)
	}
	return nil
}

func filterEntries(entries []Entry, patterns []string) []Entry {
	var out []Entry
	for _, e := range entries {
		if matchesAny(patterns, e.Name) {
			out = append(out, e)
		}
	}
	return out
}

func filterInputFiles(files []InputFile, patterns []string) []InputFile {
	var out []InputFile
	for _, f := range files {
		if matchesAny(patterns, f.Name) {
			out = append(out, f)
		}
	}
	return out
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
