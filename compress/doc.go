// Package compress provides compression and decompression codecs for
// catgen's particle-blob output files.
//
// Compression is applied after a particles_NNNNNN.bin body has already
// been assembled, as an optional final pass requested via
// --compress-output: none, zstd, s2 or lz4.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
// **NoOp** (format.CompressionNone) returns data unchanged; used when
// --compress-output is absent or set to "none".
//
// **Zstandard** (format.CompressionZstd) gives the best compression
// ratio at moderate speed; best for archival output that will be
// shipped or stored long-term.
//
// **S2** (format.CompressionS2) balances compression ratio and speed;
// a reasonable default for repeated local regeneration.
//
// **LZ4** (format.CompressionLZ4) favors fast decompression over ratio;
// best when the output is read back frequently (e.g. by a renderer).
//
// # Thread Safety
//
// All codec implementations are safe to share across goroutines.
package compress
