package writer

import "sync"

// particleRecordSize is the fixed byte length of one appendParticle
// record, excluding the variable-length UTF-16 name tail: 3 float64
// position fields (24) + 8 float32 fields (32) + a raw uint32 color (4)
// + a float32 size (4) + an int32 hip (4) + an int64 id (8) + the int32
// name-length prefix (4).
const particleRecordSize = 3*8 + 8*4 + 4 + 4 + 4 + 8 + 4

// octantRecordSize is the fixed byte length of one appendOctant record:
// an int64 id (8) + 3 float32 centre fields (12) + 3 float32 size fields
// (12) + 8 int32 child ids (32) + 4 int32 trailer fields (16).
const octantRecordSize = 8 + 3*4 + 3*4 + 8*4 + 4*4

// Buffer pool sizes are derived from the fixed record sizes above so the
// defaults track the actual wire format instead of an arbitrary guess.
const (
	particleBufferDefaultSize  = 256 * particleRecordSize   // a modest octant before growth
	particleBufferMaxThreshold = 4096 * particleRecordSize  // discard outsized buffers after use

	metadataBufferDefaultSize  = 16384 * octantRecordSize  // a modest tree before growth
	metadataBufferMaxThreshold = 131072 * octantRecordSize // discard outsized buffers after use
)

// byteBuffer is a growable byte slice reused across writes to avoid
// re-allocating for every octant/particle record.
type byteBuffer struct {
	b []byte
}

func newByteBuffer(defaultSize int) *byteBuffer {
	return &byteBuffer{b: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *byteBuffer) Bytes() []byte { return bb.b }

// Reset empties the buffer while retaining its allocated memory.
func (bb *byteBuffer) Reset() { bb.b = bb.b[:0] }

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *byteBuffer) MustWrite(data []byte) {
	if len(data) > cap(bb.b)-len(bb.b) {
		bb.grow(len(data))
	}
	bb.b = append(bb.b, data...)
}

// grow ensures the buffer can hold requiredBytes more bytes without a
// further reallocation: small buffers grow by a full default-size step
// to minimize reallocations, larger ones grow by 25% of their current
// capacity to balance memory use against copy cost.
func (bb *byteBuffer) grow(requiredBytes int) {
	growBy := particleBufferDefaultSize
	if cap(bb.b) > 4*particleBufferDefaultSize {
		growBy = cap(bb.b) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.b), len(bb.b)+growBy)
	copy(newBuf, bb.b)
	bb.b = newBuf
}

// byteBufferPool is a sync.Pool of byteBuffers, discarding buffers that
// have grown past maxThreshold instead of returning them for reuse.
type byteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

func newByteBufferPool(defaultSize, maxThreshold int) *byteBufferPool {
	return &byteBufferPool{
		pool: sync.Pool{
			New: func() any { return newByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

func (p *byteBufferPool) Get() *byteBuffer {
	bb, _ := p.pool.Get().(*byteBuffer)

	return bb
}

func (p *byteBufferPool) Put(bb *byteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.b) > p.maxThreshold {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}

var (
	particlePool = newByteBufferPool(particleBufferDefaultSize, particleBufferMaxThreshold)
	metadataPool = newByteBufferPool(metadataBufferDefaultSize, metadataBufferMaxThreshold)
)

// getParticleBuffer retrieves a byteBuffer from the per-octant
// particle-blob pool.
func getParticleBuffer() *byteBuffer { return particlePool.Get() }

// putParticleBuffer returns a byteBuffer to the particle-blob pool.
func putParticleBuffer(bb *byteBuffer) { particlePool.Put(bb) }

// getMetadataBuffer retrieves a byteBuffer from the metadata pool, sized
// for the whole-tree metadata.bin write.
func getMetadataBuffer() *byteBuffer { return metadataPool.Get() }

// putMetadataBuffer returns a byteBuffer to the metadata pool.
func putMetadataBuffer(bb *byteBuffer) { metadataPool.Put(bb) }
