package compval

// Value is one live composite value: a flat byte buffer holding the type's
// layout, plus side tables owning the variable-length content (strings and
// variable-array backing buffers) that the buffer's fixed-size slots only
// ever reference by handle. Handle 0 always means "absent" (a null string,
// or a zero-length / never-allocated variable array).
//
// This is the Go-native stand-in for the source engine's owning pointers:
// since the runtime is garbage collected, an owned allocation cannot be
// modeled as a raw pointer embedded in the buffer without pinning and
// aliasing concerns, so it is modeled as a small integer key into a map the
// Value itself owns. Duplicate, Free and Compare all walk the type shape
// exactly as the source does; they simply dereference handles into these
// maps instead of pointers into the heap.
type Value struct {
	buf        []byte
	strings    map[uint64]string
	arrays     map[uint64][]byte
	nextHandle uint64
	alloc      Allocator
}

func newZeroValue(t *TypeDef, alloc Allocator) *Value {
	if alloc == nil {
		alloc = sliceAllocator{}
	}
	return &Value{
		buf:     alloc.Alloc(int(t.Size)),
		strings: make(map[uint64]string),
		arrays:  make(map[uint64][]byte),
		alloc:   alloc,
	}
}

func (v *Value) allocHandle() uint64 {
	v.nextHandle++
	return v.nextHandle
}

func (v *Value) newStringHandle(s string) uint64 {
	h := v.allocHandle()
	v.strings[h] = s
	return h
}

func (v *Value) newArrayHandle(b []byte) uint64 {
	h := v.allocHandle()
	v.arrays[h] = b
	return h
}

// Bytes exposes the value's root buffer for callers that need to hand it to
// an external codec.
func (v *Value) Bytes() []byte { return v.buf }

// Allocator is the abstraction over buffer allocation and release that lets
// the engine run either with plain slice allocation or with a pool, without
// the walker or parser caring which.
type Allocator interface {
	Alloc(n int) []byte
	Free(b []byte)
}

// sliceAllocator is the zero-overhead default: ordinary slice allocation,
// left for the garbage collector to reclaim.
type sliceAllocator struct{}

func (sliceAllocator) Alloc(n int) []byte { return make([]byte, n) }
func (sliceAllocator) Free([]byte)        {}

// PooledAllocator buckets allocations into power-of-two size classes backed
// by a sync.Pool per class, applied here to the engine's scratch and array
// buffers instead of to request-scoped builder objects.
type PooledAllocator struct {
	classes classPoolMap
}

// NewPooledAllocator returns a ready-to-use pooled allocator.
func NewPooledAllocator() *PooledAllocator {
	return &PooledAllocator{}
}

func (p *PooledAllocator) Alloc(n int) []byte {
	cls := sizeClass(n)
	pool := p.classes.poolFor(cls)
	bp := pool.Get().(*[]byte)
	buf := (*bp)[:cls]
	for i := range buf {
		buf[i] = 0
	}
	return buf[:n]
}

func (p *PooledAllocator) Free(b []byte) {
	if b == nil {
		return
	}
	cls := cap(b)
	pool, ok := p.classes.lookup(cls)
	if !ok {
		return
	}
	full := b[:cls]
	pool.Put(&full)
}

func sizeClass(n int) int {
	cls := 64
	for cls < n {
		cls *= 2
	}
	return cls
}
