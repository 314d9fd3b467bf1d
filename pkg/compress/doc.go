// Package compress provides the stream filters NBT data is commonly
// wrapped in.
//
// NBT files on disk are usually gzip-compressed, network and region-file
// payloads use zlib, and some tools store LZ4 frames or zstd. The filters
// in this package know nothing about NBT framing: they turn a compressed
// stream into the raw byte stream the codec reads, and back.
//
// # Detection
//
// Detect inspects the first bytes of a stream:
//
//	gzip  1f 8b
//	zlib  78 xx (deflate method, header checksum divisible by 31)
//	lz4   04 22 4d 18 (frame format)
//	zstd  28 b5 2f fd
//
// Anything else is reported as None. Uncompressed NBT always starts with
// 0x0a, which none of the signatures match.
//
// # Logging
//
// The package is silent unless SetLogger installs a zap logger; detection
// results are then logged at debug level.
package compress
