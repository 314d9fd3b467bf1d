package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/blockberries/nbt/pkg/compress"
	"github.com/blockberries/nbt/pkg/nbt"
)

// document is one decoded input file.
type document struct {
	Path        string
	Name        string
	Root        *nbt.Compound
	Compression compress.Type
	StoredSize  int
	Payload     []byte
}

// readFile reads path, or standard input for "-".
func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeFile writes data to path, or standard output for "-".
func writeFile(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadDocument reads and decodes path. compression is "auto" or a type
// name accepted by compress.ParseType.
func loadDocument(path, compression string) (*document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var t compress.Type
	if compression == "auto" {
		t = compress.Detect(data)
	} else if t, err = compress.ParseType(compression); err != nil {
		return nil, err
	}

	payload, err := compress.Decompress(data, t, nbt.DefaultLimits.MaxMessageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", path, t, err)
	}
	log.Debug("read document",
		zap.String("path", path),
		zap.Stringer("compression", t),
		zap.Int("stored", len(data)),
		zap.Int("payload", len(payload)))

	name, root, err := nbt.DecodeNamed(payload)
	if err != nil {
		log.Debug("decode failed",
			zap.String("path", path),
			zap.Stringer("class", nbt.Classify(err)),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &document{
		Path:        path,
		Name:        name,
		Root:        root,
		Compression: t,
		StoredSize:  len(data),
		Payload:     payload,
	}, nil
}
