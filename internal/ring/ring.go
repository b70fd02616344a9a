// Package ring implements a fixed-capacity single-producer/single-consumer
// byte channel: the substrate for every TTY input/output pipe and every
// per-process I/O binding in the kernel.
//
// All operations are non-blocking. The decision whether to block a caller
// belongs to the syscall layer, not to this package.
package ring

import "errors"

var (
	ErrFull       = errors.New("ring: full")
	ErrEmpty      = errors.New("ring: empty")
	ErrShortSpace = errors.New("ring: not enough free space")
	ErrShortData  = errors.New("ring: not enough data")
)

// Buffer is a fixed-capacity circular byte buffer. The zero value is not
// usable; call New.
type Buffer struct {
	data []byte
	head int
	tail int
	size int
}

// New returns an empty ring buffer with the given fixed capacity.
func New(capacity int) *Buffer {
	b := &Buffer{data: make([]byte, capacity)}
	b.Init()
	return b
}

// Init resets the buffer to empty.
func (b *Buffer) Init() {
	b.head = -1
	b.tail = -1
	b.size = 0
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Len returns the number of unread bytes currently buffered.
func (b *Buffer) Len() int {
	return b.size
}

// IsEmpty reports whether there are no unread bytes.
func (b *Buffer) IsEmpty() bool {
	return b.size == 0
}

// IsFull reports whether the buffer is at capacity.
func (b *Buffer) IsFull() bool {
	return b.size == len(b.data)
}

// Free returns the number of bytes that can still be written without
// overwriting unread data.
func (b *Buffer) Free() int {
	return len(b.data) - b.size
}

// Write appends a single byte. It fails with ErrFull rather than overwrite
// unread bytes.
func (b *Buffer) Write(c byte) error {
	if b.IsFull() {
		return ErrFull
	}
	if b.size == 0 {
		b.head = 0
		b.tail = 0
	} else {
		b.tail = (b.tail + 1) % len(b.data)
	}
	b.data[b.tail] = c
	b.size++
	return nil
}

// Read consumes and returns the oldest unread byte. It fails with ErrEmpty
// if nothing is buffered.
func (b *Buffer) Read() (byte, error) {
	if b.IsEmpty() {
		return 0, ErrEmpty
	}
	c := b.data[b.head]
	b.head = (b.head + 1) % len(b.data)
	b.size--
	if b.size == 0 {
		b.head = -1
		b.tail = -1
	}
	return c, nil
}

// WriteMem atomically appends src. It fails with ErrShortSpace (writing
// nothing) if src does not entirely fit in the remaining free space.
func (b *Buffer) WriteMem(src []byte) (int, error) {
	if len(src) > b.Free() {
		return 0, ErrShortSpace
	}
	for _, c := range src {
		_ = b.Write(c)
	}
	return len(src), nil
}

// ReadMem atomically consumes up to len(dst) bytes into dst. It fails with
// ErrShortData (consuming nothing) if fewer than len(dst) bytes are
// available.
func (b *Buffer) ReadMem(dst []byte) (int, error) {
	if len(dst) > b.size {
		return 0, ErrShortData
	}
	for i := range dst {
		c, _ := b.Read()
		dst[i] = c
	}
	return len(dst), nil
}

// ReadAvailable drains up to len(dst) bytes, consuming only what is
// actually present and never failing. It is the basis for IO_READ, whose
// contract is "copy at most min(n, buffer-size) bytes".
func (b *Buffer) ReadAvailable(dst []byte) int {
	n := len(dst)
	if n > b.size {
		n = b.size
	}
	for i := 0; i < n; i++ {
		c, _ := b.Read()
		dst[i] = c
	}
	return n
}

// WriteAvailable appends as much of src as fits without overwriting unread
// bytes, never failing. It is the basis for IO_WRITE, whose contract is
// "write exactly n bytes, or fewer if the buffer fills".
func (b *Buffer) WriteAvailable(src []byte) int {
	n := len(src)
	if free := b.Free(); n > free {
		n = free
	}
	for i := 0; i < n; i++ {
		_ = b.Write(src[i])
	}
	return n
}

// Flush discards all unread bytes.
func (b *Buffer) Flush() {
	b.Init()
}
