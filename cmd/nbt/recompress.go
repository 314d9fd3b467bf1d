package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/blockberries/nbt/pkg/compress"
)

func cmdRecompress(stdout io.Writer, args []string) error {
	fs, verbose := newFlagSet("recompress", `Usage: nbt recompress --to <type> [options] <in> <out>

Decode an NBT file to check it, then write it with another compression.`)
	to := fs.StringP("to", "t", "", "Output compression: none, gzip, zlib, lz4, zstd (required)")
	compression := fs.StringP("compression", "c", "auto", "Input compression: auto, none, gzip, zlib, lz4, zstd")

	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(*verbose)

	if fs.NArg() != 2 || *to == "" {
		fs.Usage()
		return fmt.Errorf("recompress takes --to and exactly two files")
	}
	target, err := compress.ParseType(*to)
	if err != nil {
		return err
	}

	doc, err := loadDocument(fs.Arg(0), *compression)
	if err != nil {
		return err
	}
	out, err := compress.Compress(doc.Payload, target)
	if err != nil {
		return err
	}
	log.Debug("recompressed",
		zap.Stringer("from", doc.Compression),
		zap.Stringer("to", target),
		zap.Int("before", doc.StoredSize),
		zap.Int("after", len(out)))
	return writeFile(fs.Arg(1), out, stdout)
}
