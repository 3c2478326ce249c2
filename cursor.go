package omf

import (
	"encoding/binary"

	"github.com/HK47196/go-omf/types"
)

// A Cursor is a bounded reader over a record's content bytes. All reads are
// fail-soft: a short read reports ok=false (or a zero value) instead of
// failing, so decoders can emit a partial payload plus a truncation warning.
// ReadBytes consumes nothing on a short read; the other reads leave the
// position at the end of the data.
type Cursor struct {
	data    []byte
	off     int
	variant types.Variant
}

// NewCursor returns a cursor over data using the given variant's field-size
// rules.
func NewCursor(data []byte, variant types.Variant) *Cursor {
	return &Cursor{data: data, variant: variant}
}

// Pos returns the current position within the content slice.
func (c *Cursor) Pos() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// AtEnd reports whether all bytes have been consumed.
func (c *Cursor) AtEnd() bool { return c.off >= len(c.data) }

// Variant returns the variant the cursor was created with.
func (c *Cursor) Variant() types.Variant { return c.variant }

// ReadByte reads one byte.
func (c *Cursor) ReadByte() (byte, bool) {
	if c.off >= len(c.data) {
		return 0, false
	}
	b := c.data[c.off]
	c.off++
	return b, true
}

// ReadBytes reads n bytes. On a short read it returns nil, false without
// consuming anything.
func (c *Cursor) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, false
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, true
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, bool) {
	if c.off >= len(c.data) {
		return 0, false
	}
	return c.data[c.off], true
}

// Rest returns all unread bytes without consuming them.
func (c *Cursor) Rest() []byte { return c.data[c.off:] }

// Index reads an OMF index field (1 or 2 bytes). If the high bit of the
// first byte is clear it is a 7-bit value; otherwise the low 7 bits combine
// with the next byte as a 15-bit big-endian value. A short read yields 0.
func (c *Cursor) Index() int {
	b1, ok := c.ReadByte()
	if !ok {
		return 0
	}
	if b1&0x80 == 0 {
		return int(b1)
	}
	b2, ok := c.ReadByte()
	if !ok {
		return 0
	}
	return int(b1&0x7F)<<8 | int(b2)
}

// Name reads a length-prefixed string: one length byte then that many ASCII
// bytes. Non-ASCII bytes are replaced with U+FFFD.
func (c *Cursor) Name() string {
	n, ok := c.ReadByte()
	if !ok || n == 0 {
		return ""
	}
	raw, ok := c.ReadBytes(int(n))
	if !ok {
		raw = c.data[c.off:]
		c.off = len(c.data)
	}
	buf := make([]rune, len(raw))
	for i, b := range raw {
		if b < 0x80 {
			buf[i] = rune(b)
		} else {
			buf[i] = '�'
		}
	}
	return string(buf)
}

// Numeric reads a little-endian unsigned value of 1-4 bytes. A 3-byte read
// is padded with a zero high byte. A short read yields 0.
func (c *Cursor) Numeric(size int) uint32 {
	raw, ok := c.ReadBytes(size)
	if !ok {
		c.off = len(c.data)
		return 0
	}
	switch size {
	case 1:
		return uint32(raw[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(raw))
	case 3:
		return uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16
	case 4:
		return binary.LittleEndian.Uint32(raw)
	}
	return 0
}

// VarInt reads a COMDEF/TYPDEF-style variable-length integer: a first byte
// up to 0x80 is the value itself; 0x81, 0x84 and 0x88 prefix 2-, 3- and
// 4-byte little-endian values. Any other first byte is returned as-is.
func (c *Cursor) VarInt() uint32 {
	b, ok := c.ReadByte()
	if !ok {
		return 0
	}
	switch {
	case b <= 0x80:
		return uint32(b)
	case b == 0x81:
		return c.Numeric(2)
	case b == 0x84:
		return c.Numeric(3)
	case b == 0x88:
		return c.Numeric(4)
	}
	return uint32(b)
}

// OffsetFieldSize returns the width of offset/displacement/length fields for
// the cursor's variant.
func (c *Cursor) OffsetFieldSize(is32bit bool) int {
	return c.variant.OffsetFieldSize(is32bit)
}

// LIDATARepeatCountSize returns the width of LIDATA repeat counts for the
// cursor's variant.
func (c *Cursor) LIDATARepeatCountSize(is32bit bool) int {
	return c.variant.LIDATARepeatCountSize(is32bit)
}
