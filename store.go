package irdisplay

import (
	"github.com/tphakala/go-irdisplay/internal/buffer"
)

// Store is the buffer storage a Processor reads sources from and writes
// targets to. Channel indices at this interface are 0-based.
type Store = buffer.Store

// Store implementations.
type (
	MemoryStore = buffer.Memory
	WAVStore    = buffer.WAVDir
)

// Storage errors that may be wrapped by Processor errors.
var (
	ErrBufferNotFound = buffer.ErrNotFound
	ErrBufferName     = buffer.ErrInvalidName
	ErrBufferChannel  = buffer.ErrChannel
	ErrBufferTooSmall = buffer.ErrTooSmall
	ErrBufferInvalid  = buffer.ErrInvalid
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return buffer.NewMemory()
}

// NewWAVStore creates a store over the WAV files in dir.
func NewWAVStore(dir string) *WAVStore {
	return buffer.NewWAVDir(dir)
}
