package integrator

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// Encoding is a content-coding the CompressWriter can apply.
type Encoding int

const (
	EncodingIdentity Encoding = iota
	EncodingGzip
	EncodingDeflate
	EncodingBrotli
)

// NegotiateEncoding picks a response content-coding from the request's
// Accept-Encoding header, preferring br over gzip over deflate.
func NegotiateEncoding(acceptEncoding string) Encoding {
	switch {
	case strings.Contains(acceptEncoding, "br"):
		return EncodingBrotli
	case strings.Contains(acceptEncoding, "gzip"):
		return EncodingGzip
	case strings.Contains(acceptEncoding, "deflate"):
		return EncodingDeflate
	default:
		return EncodingIdentity
	}
}

func (e Encoding) String() string {
	switch e {
	case EncodingGzip:
		return "gzip"
	case EncodingDeflate:
		return "deflate"
	case EncodingBrotli:
		return "br"
	default:
		return ""
	}
}

// gzip and flate writers are expensive to allocate, so they are
// pooled the way the teacher pools them, keyed by compression level.
const (
	compressDefaultLevel = 6
	compressMaxLevel     = 9
)

var gzipWriterPools [compressMaxLevel + 1]sync.Pool
var flateWriterPools [compressMaxLevel + 1]sync.Pool

func normalizeLevel(level int) int {
	if level < 0 || level > compressMaxLevel {
		return compressDefaultLevel
	}
	return level
}

func acquireGzipWriter(w io.Writer, level int) *gzip.Writer {
	level = normalizeLevel(level)
	if v := gzipWriterPools[level].Get(); v != nil {
		zw := v.(*gzip.Writer)
		zw.Reset(w)
		return zw
	}
	zw, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		zw, _ = gzip.NewWriterLevel(w, compressDefaultLevel)
	}
	return zw
}

func releaseGzipWriter(zw *gzip.Writer, level int) {
	zw.Close()
	gzipWriterPools[normalizeLevel(level)].Put(zw)
}

func acquireFlateWriter(w io.Writer, level int) *flate.Writer {
	level = normalizeLevel(level)
	if v := flateWriterPools[level].Get(); v != nil {
		zw := v.(*flate.Writer)
		zw.Reset(w)
		return zw
	}
	zw, err := flate.NewWriter(w, level)
	if err != nil {
		zw, _ = flate.NewWriter(w, compressDefaultLevel)
	}
	return zw
}

func releaseFlateWriter(zw *flate.Writer, level int) {
	zw.Close()
	flateWriterPools[normalizeLevel(level)].Put(zw)
}

// CompressWriter wraps an Exchange so writes are transformed through
// a content-coding before being handed to the engine as Data events.
// This is strictly a post-engine transform: h11 never sees anything
// but the already-compressed bytes, and never knows compression
// happened.
type CompressWriter struct {
	ex    *Exchange
	enc   Encoding
	level int
	w     io.WriteCloser
	buf   bytes.Buffer
}

// NewCompressWriter wraps ex so subsequent Write calls are encoded
// with enc at the given compression level before being sent as
// response body Data. The caller must still call WriteHead with a
// Content-Encoding header matching enc (and without Content-Length,
// since the compressed length is not known up front) before writing,
// and must call Close when done to flush the final block and
// terminate the message.
func NewCompressWriter(ex *Exchange, enc Encoding, level int) *CompressWriter {
	cw := &CompressWriter{ex: ex, enc: enc, level: normalizeLevel(level)}
	switch enc {
	case EncodingGzip:
		cw.w = acquireGzipWriter(&cw.buf, cw.level)
	case EncodingDeflate:
		cw.w = acquireFlateWriter(&cw.buf, cw.level)
	case EncodingBrotli:
		cw.w = brotli.NewWriterLevel(&cw.buf, brotliLevel(cw.level))
	default:
		cw.w = nopWriteCloser{&cw.buf}
	}
	return cw
}

// brotliLevel maps the shared 0-9 level scale onto brotli's 0-11
// quality scale.
func brotliLevel(level int) int {
	if level > 9 {
		level = 9
	}
	return (level * 11) / 9
}

func (cw *CompressWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if err != nil {
		return n, err
	}
	if cw.buf.Len() > 0 {
		if _, err := cw.ex.Write(cw.buf.Bytes()); err != nil {
			return n, err
		}
		cw.buf.Reset()
	}
	return n, nil
}

// Close flushes the final compressed block, releases the underlying
// writer back to its pool, and ends the message.
func (cw *CompressWriter) Close() error {
	switch zw := cw.w.(type) {
	case *gzip.Writer:
		releaseGzipWriter(zw, cw.level)
	case *flate.Writer:
		releaseFlateWriter(zw, cw.level)
	default:
		if err := cw.w.Close(); err != nil {
			return err
		}
	}
	if cw.buf.Len() > 0 {
		if _, err := cw.ex.Write(cw.buf.Bytes()); err != nil {
			return err
		}
		cw.buf.Reset()
	}
	return cw.ex.End(nil)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
