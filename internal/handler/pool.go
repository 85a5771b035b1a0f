package handler

import (
	"bytes"
	"sync"
)

const (
	responseBufferSize = 1 << 10
	// Buffers grown past this by a large payload (a full wheel catalog, a
	// vault plan) are dropped instead of pinned in the pool
	maxPooledBufferSize = 64 << 10
)

var responseBuffers = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, responseBufferSize))
	},
}

func getBuffer() *bytes.Buffer {
	return responseBuffers.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	responseBuffers.Put(buf)
}
