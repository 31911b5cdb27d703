package h11

import "github.com/valyala/bytebufferpool"

var ingestPool bytebufferpool.Pool

// ingestBuffer holds bytes read from the transport that have not yet
// been fully consumed into Events. Parsed header/body slices alias
// into buf directly, and the spec requires those slices to remain
// valid even after the consumed prefix they used to share storage
// with is reclaimed (see compact). Go's garbage collector keeps any
// backing array alive as long as a slice still points into it, so
// compact never overwrites bytes in place; it only ever copies the
// unread tail into a fresh array and lets old, still-aliased arrays
// be collected once nothing references them anymore.
type ingestBuffer struct {
	bb  *bytebufferpool.ByteBuffer
	off int // read offset: bytes before this have been consumed
}

func newIngestBuffer() *ingestBuffer {
	return &ingestBuffer{bb: ingestPool.Get()}
}

// release returns the underlying buffer to the pool. The caller must
// not touch bytes returned from unread() afterwards.
func (b *ingestBuffer) release() {
	ingestPool.Put(b.bb)
	b.bb = nil
}

// unread returns the slice of bytes available to parse.
func (b *ingestBuffer) unread() []byte {
	return b.bb.B[b.off:]
}

// advance marks n bytes as consumed.
func (b *ingestBuffer) advance(n int) {
	b.off += n
}

// append grows the buffer with newly read transport bytes.
func (b *ingestBuffer) append(p []byte) {
	b.bb.B = append(b.bb.B, p...)
}

// compact drops already-consumed bytes from the front, bounding the
// buffer's growth on a long-lived keep-alive connection. It copies
// the unread tail into a freshly allocated array rather than shifting
// it down in place, because Method/URI/header values and body
// fragments already handed to the caller may still alias the bytes
// before off — overwriting them in place would silently corrupt any
// such slice still in use (e.g. a pipelined request's head retained
// while a later request on the same connection is still arriving).
// The old array is left untouched and is reclaimed by the garbage
// collector once nothing aliases it anymore.
func (b *ingestBuffer) compact() {
	if b.off == 0 {
		return
	}
	unread := b.bb.B[b.off:]
	fresh := make([]byte, len(unread), cap(unread))
	copy(fresh, unread)
	b.bb.B = fresh
	b.off = 0
}

func (b *ingestBuffer) len() int { return len(b.bb.B) - b.off }

var egressPool bytebufferpool.Pool

// egressBuffer accumulates bytes the engine wants written to the
// transport, across possibly several Send* calls, until the caller
// drains it.
type egressBuffer struct {
	bb *bytebufferpool.ByteBuffer
}

func newEgressBuffer() *egressBuffer {
	return &egressBuffer{bb: egressPool.Get()}
}

func (b *egressBuffer) release() {
	egressPool.Put(b.bb)
	b.bb = nil
}

func (b *egressBuffer) append(p []byte) {
	b.bb.B = append(b.bb.B, p...)
}

// bytes returns everything queued so far.
func (b *egressBuffer) bytes() []byte { return b.bb.B }

// reset drops queued bytes after the caller has taken ownership of
// them (by copying, or by writing them out).
func (b *egressBuffer) reset() {
	b.bb.Reset()
}
