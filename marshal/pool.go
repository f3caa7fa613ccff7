package marshal

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 1 << 16 // max bytes kept in a pooled buffer
	poolInitCap = 64
)

// scratch buffer pool for encode-then-commit writes
var bufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, poolInitCap)
		return &buf
	},
}

func getBuf(size uint32) []byte {
	bp := bufPool.Get().(*[]byte)
	if uint32(cap(*bp)) < size {
		*bp = make([]byte, size)
		return *bp
	}
	*bp = (*bp)[:size]
	return *bp
}

func putBuf(buf []byte) {
	if cap(buf) > poolMaxCap {
		return // reject oversized
	}
	buf = buf[:0]
	bufPool.Put(&buf)
}
