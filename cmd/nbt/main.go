// Command nbt inspects and converts NBT files.
//
// Usage:
//
//	nbt dump [options] <file>
//	nbt info [options] <file>...
//	nbt recompress --to <type> [options] <in> <out>
//	nbt version
//
// Dump Command:
//
//	Print the decoded tree.
//
//	Options:
//	  -f, --format string        Output format: text, json, yaml, cbor (default "text")
//	  -c, --compression string   Input compression: auto, none, gzip, zlib, lz4, zstd (default "auto")
//
// Info Command:
//
//	Print the root name, compression, sizes, field count and the xxHash64
//	of the uncompressed payload.
//
// Recompress Command:
//
//	Decode a file to check it, then write it with another compression.
//
// Every command accepts -v, --verbose for debug logging. A file name of
// "-" reads standard input or writes standard output.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/blockberries/nbt/pkg/compress"
	"github.com/blockberries/nbt/pkg/nbt"
)

// log is replaced by a development logger when --verbose is set.
var log = zap.NewNop()

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dump", "d":
		err = cmdDump(os.Stdout, os.Args[2:])
	case "info", "i":
		err = cmdInfo(os.Stdout, os.Args[2:])
	case "recompress", "rc":
		err = cmdRecompress(os.Stdout, os.Args[2:])
	case "version":
		cmdVersion(os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
	_ = log.Sync()

	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `NBT file tool

Usage:
  nbt <command> [options] <files>...

Commands:
  dump          Print a decoded file as text, JSON, YAML or CBOR
  info          Print a summary of each file
  recompress    Rewrite a file with another compression
  version       Print version information
  help          Print this help message

Run 'nbt <command> -h' for command-specific help.`)
}

// newFlagSet returns a flag set carrying the flags every command shares.
func newFlagSet(name, usage string) (*pflag.FlagSet, *bool) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	verbose := fs.BoolP("verbose", "v", false, "Log debug output to stderr")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	return fs, verbose
}

// setupLogging switches to a development logger and hands it to the
// compression filters.
func setupLogging(verbose bool) {
	if !verbose {
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot create logger: %v\n", err)
		return
	}
	log = l
	compress.SetLogger(l)
}

func cmdVersion(w io.Writer) {
	fmt.Fprintf(w, "nbt version %s\n", nbt.VersionInfo())
}
