// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command aos is the thin front-end over the archive, script, and ABM
// codecs in internal/: argument parsing, filesystem enumeration, and path
// handling, none of which is part of the core this toolkit reimplements.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aosvn/aoskit/internal/aos"
	"github.com/aosvn/aoskit/internal/decodecache"
)

const usage = `usage: aos <command> <input> [--nodecode | --noencode] <output>

commands:
  help     show this message
  extract  unpack an archive into a directory of decoded assets
  decode   unpack an archive into a directory of raw (undecoded) assets
  repack   pack a directory back into an archive
  encode   pack a directory into an archive without encoding scripts
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" {
		fmt.Fprint(os.Stdout, usage)
		return nil
	}

	command := args[0]
	rest := args[1:]

	var noDecode, noEncode bool
	var positional []string
	for _, a := range rest {
		switch a {
		case "--nodecode":
			noDecode = true
		case "--noencode":
			noEncode = true
		default:
			positional = append(positional, a)
		}
	}
	if len(positional) != 2 {
		return fmt.Errorf("aos: expected <input> and <output>, got %d argument(s)", len(positional))
	}
	input, output := positional[0], positional[1]

	switch command {
	case "extract":
		return runExtract(input, output, noDecode)
	case "decode":
		return runExtract(input, output, true)
	case "repack":
		return runRepack(input, output, noEncode)
	case "encode":
		return runRepack(input, output, true)
	default:
		return fmt.Errorf("aos: unknown command %q", command)
	}
}

func runExtract(input, outputRoot string, noDecode bool) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outDir := filepath.Join(outputRoot, stem)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	cache, err := decodecache.Open(256, "")
	if err != nil {
		slog.Warn("decode cache unavailable, continuing without it", "err", err)
		cache = nil
	}
	defer cache.Close()

	files, err := aos.Extract(f, info.Size(), aos.ExtractOptions{NoDecode: noDecode, Cache: cache})
	if err != nil {
		return err
	}

	for _, f := range files {
		dst := filepath.Join(outDir, f.Name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, f.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func runRepack(inputDir, output string, noEncode bool) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return err
	}

	var files []aos.InputFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := readWholeFile(filepath.Join(inputDir, e.Name()))
		if err != nil {
			return err
		}
		files = append(files, aos.InputFile{Name: e.Name(), Data: data})
	}

	stem := filepath.Base(filepath.Clean(inputDir))
	archiveBytes, err := aos.Pack(files, stem, aos.PackOptions{NoEncode: noEncode})
	if err != nil {
		return err
	}
	return os.WriteFile(output, archiveBytes, 0o644)
}

func readWholeFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
