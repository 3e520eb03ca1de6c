package tup

import "sync"

// PackBuffer is a reusable byte buffer for repeated Pack calls, pooled to
// avoid an allocation per message on a hot host<->DSP path. Adapted from
// the teacher's Buffer/bufpool pattern (buffer.go's NewBufferFromPool /
// ReturnToPool), trimmed to what a fixed-format binary codec needs - TUP
// carries no schema on the wire, so there is no schema-trust negotiation
// to port over.
type PackBuffer struct {
	Bytes []byte
}

var packBufferPool = sync.Pool{
	New: func() any { return &PackBuffer{Bytes: make([]byte, 0, 256)} },
}

// NewPackBufferFromPool obtains a reset PackBuffer from the pool. Call
// ReturnToPool when finished with it.
func NewPackBufferFromPool() *PackBuffer {
	b := packBufferPool.Get().(*PackBuffer)
	b.Bytes = b.Bytes[:0]
	return b
}

// ReturnToPool returns b to the pool for reuse.
func (b *PackBuffer) ReturnToPool() {
	packBufferPool.Put(b)
}

// Pack packs actionID's record into b's backing array, growing it to
// len(src)+64 bytes if it is smaller, and returns the packed byte slice (a
// view into b.Bytes, valid until the next call or ReturnToPool). The buffer
// is not grown further: a packed message larger than that fails with
// BufferOverflow.
func (b *PackBuffer) Pack(reg *Registry, actionID uint32, src []byte, flags uint32, destAddr uint32) ([]byte, error) {
	need := len(src) + 64
	if cap(b.Bytes) < need {
		b.Bytes = make([]byte, need)
	} else {
		b.Bytes = b.Bytes[:cap(b.Bytes)]
	}

	n, err := Pack(reg, actionID, src, b.Bytes, flags, destAddr)
	if err != nil {
		return nil, err
	}
	return b.Bytes[:n], nil
}
