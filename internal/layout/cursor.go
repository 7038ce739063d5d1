package layout

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor is a bounds-checked little-endian reader/writer over a byte region.
// The first out-of-range access latches an error; subsequent reads return
// zero values and writes are dropped, so record codecs can decode straight
// through and check Err once.
type Cursor struct {
	buf []byte
	off int
	err error
}

// NewCursor returns a cursor over buf positioned at off.
func NewCursor(buf []byte, off int) *Cursor {
	c := &Cursor{buf: buf}
	c.Seek(off)
	return c
}

// Seek moves the cursor to an absolute byte offset.
func (c *Cursor) Seek(off int) *Cursor {
	if off < 0 || off > len(c.buf) {
		c.fail(off, 0)
		return c
	}
	c.off = off
	return c
}

// Skip advances the cursor n bytes.
func (c *Cursor) Skip(n int) *Cursor {
	return c.Seek(c.off + n)
}

// Offset reports the current absolute offset.
func (c *Cursor) Offset() int { return c.off }

// Err returns the first range error, if any.
func (c *Cursor) Err() error { return c.err }

func (c *Cursor) fail(off, n int) {
	if c.err == nil {
		c.err = fmt.Errorf("layout: access [%d:%d) outside region of %d bytes", off, off+n, len(c.buf))
	}
}

func (c *Cursor) span(n int) []byte {
	if c.err != nil {
		return nil
	}
	if c.off+n > len(c.buf) {
		c.fail(c.off, n)
		return nil
	}
	s := c.buf[c.off : c.off+n]
	c.off += n
	return s
}

func (c *Cursor) ReadU8() byte {
	if s := c.span(1); s != nil {
		return s[0]
	}
	return 0
}

func (c *Cursor) WriteU8(v byte) {
	if s := c.span(1); s != nil {
		s[0] = v
	}
}

func (c *Cursor) ReadU32() uint32 {
	if s := c.span(4); s != nil {
		return binary.LittleEndian.Uint32(s)
	}
	return 0
}

func (c *Cursor) WriteU32(v uint32) {
	if s := c.span(4); s != nil {
		binary.LittleEndian.PutUint32(s, v)
	}
}

func (c *Cursor) ReadU64() uint64 {
	if s := c.span(8); s != nil {
		return binary.LittleEndian.Uint64(s)
	}
	return 0
}

func (c *Cursor) WriteU64(v uint64) {
	if s := c.span(8); s != nil {
		binary.LittleEndian.PutUint64(s, v)
	}
}

func (c *Cursor) ReadF32() float32 {
	return math.Float32frombits(c.ReadU32())
}

func (c *Cursor) WriteF32(v float32) {
	c.WriteU32(math.Float32bits(v))
}

// ReadBytes fills dst from the region and advances len(dst) bytes.
func (c *Cursor) ReadBytes(dst []byte) {
	if s := c.span(len(dst)); s != nil {
		copy(dst, s)
	}
}

// WriteBytes copies src into the region and advances len(src) bytes.
func (c *Cursor) WriteBytes(src []byte) {
	if s := c.span(len(src)); s != nil {
		copy(s, src)
	}
}
