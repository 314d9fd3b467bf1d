package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

func cmdInfo(stdout io.Writer, args []string) error {
	fs, verbose := newFlagSet("info", `Usage: nbt info [options] <file>...

Print a summary of each NBT file.`)
	compression := fs.StringP("compression", "c", "auto", "Input compression: auto, none, gzip, zlib, lz4, zstd")

	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(*verbose)

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no input files")
	}

	var failed int
	for i, path := range fs.Args() {
		doc, err := loadDocument(path, *compression)
		if err != nil {
			fmt.Fprintf(stdout, "%s: %v\n", path, err)
			failed++
			continue
		}
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		printInfo(stdout, doc)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fs.NArg())
	}
	return nil
}

func printInfo(w io.Writer, doc *document) {
	fmt.Fprintf(w, "%-12s %s\n", "file:", doc.Path)
	fmt.Fprintf(w, "%-12s %s\n", "root name:", strconv.Quote(doc.Name))
	fmt.Fprintf(w, "%-12s %s\n", "compression:", doc.Compression)
	fmt.Fprintf(w, "%-12s %d bytes\n", "stored:", doc.StoredSize)
	fmt.Fprintf(w, "%-12s %d bytes\n", "payload:", len(doc.Payload))
	fmt.Fprintf(w, "%-12s %d\n", "fields:", doc.Root.Len())
	fmt.Fprintf(w, "%-12s %016x\n", "xxhash64:", xxhash.Sum64(doc.Payload))
}
