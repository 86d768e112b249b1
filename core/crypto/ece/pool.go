package ece

import "sync"

// recordPool holds plaintext record buffers. A record never exceeds RecordSize.
var recordPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, RecordSize)
		return &buf
	},
}

func getRecord(size int) []byte {
	buf := *recordPool.Get().(*[]byte)
	if cap(buf) < size {
		buf = make([]byte, 0, size)
	}
	return buf[:0]
}

// putRecord wipes the buffer before pooling it since it held plaintext.
func putRecord(buf []byte) {
	if cap(buf) > RecordSize {
		return
	}
	clear(buf[:cap(buf)])
	buf = buf[:0]
	recordPool.Put(&buf)
}
