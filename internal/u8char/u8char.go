// Package u8char decodes and validates single UTF-8 characters one byte at a time.
//
// A Char is filled by AddByte until it holds the number of bytes announced by
// its leading byte. Once complete it can be compared with other characters,
// which is how delimiters, escape tokens, strip sets and replacement maps are
// matched against the input stream. Comparison is on the raw byte sequence;
// no Unicode normalization takes place.
package u8char

import (
	"errors"
	"fmt"
)

// MaxSize is the longest byte sequence a Char can hold.
const MaxSize = 4

var (
	// ErrFormat is returned for malformed byte sequences and for operations
	// that need a complete, valid character.
	ErrFormat = errors.New("u8char: UTF-8 format error")

	// ErrIndex is returned by Byte when the index is outside the character.
	ErrIndex = errors.New("u8char: invalid character index")
)

// BOM is the UTF-8 encoded byte order mark (U+FEFF).
var BOM = Char{bytes: [MaxSize]byte{0xEF, 0xBB, 0xBF}, size: 3, count: 3, valid: true}

// Char is one decoded UTF-8 character. The zero value is empty and ready
// for AddByte. Char values are comparable and can be used as map keys.
type Char struct {
	bytes [MaxSize]byte
	size  int // declared length derived from the leading byte
	count int // bytes received so far
	valid bool
}

// New builds a Char from s, which must hold exactly one encoded character.
func New(s string) (Char, error) {
	var c Char
	for i := 0; i < len(s); i++ {
		if err := c.AddByte(s[i]); err != nil {
			return Char{}, err
		}
	}
	if !c.valid {
		return Char{}, ErrFormat
	}
	return c, nil
}

// Decode splits s into characters. It fails on the first malformed or
// truncated sequence.
func Decode(s string) ([]Char, error) {
	chars := make([]Char, 0, len(s))
	var c Char
	for i := 0; i < len(s); i++ {
		if err := c.AddByte(s[i]); err != nil {
			return nil, fmt.Errorf("byte %d: %w", i, err)
		}
		if c.valid {
			chars = append(chars, c)
			c.Clear()
		}
	}
	if c.count > 0 {
		return nil, fmt.Errorf("truncated sequence at end of input: %w", ErrFormat)
	}
	return chars, nil
}

// AddByte appends one raw byte. The first byte fixes the expected length;
// the final byte triggers validation of the whole sequence.
func (c *Char) AddByte(b byte) error {
	if c.size > 0 && c.count >= c.size {
		return ErrFormat
	}
	if c.count == 0 {
		size, err := sizeFromLeadByte(b)
		if err != nil {
			return err
		}
		c.size = size
		c.valid = false
	}
	c.bytes[c.count] = b
	c.count++
	if c.count == c.size {
		c.validate()
		if !c.valid {
			return ErrFormat
		}
	}
	return nil
}

// sizeFromLeadByte counts the leading 1-bits before the first 0-bit within
// the five most significant bits of b.
func sizeFromLeadByte(b byte) (int, error) {
	ones := -1
	for i := 0; i < 5; i++ {
		if b&(1<<(7-i)) == 0 {
			ones = i
			break
		}
	}
	switch ones {
	case -1:
		return 0, ErrFormat
	case 0:
		return 1, nil
	case 1:
		// 10xxxxxx is a continuation byte.
		return 0, ErrFormat
	default:
		return ones, nil
	}
}

func (c *Char) validate() {
	c.valid = false
	for i := 1; i < c.size; i++ {
		if c.bytes[i]&0xC0 != 0x80 {
			return
		}
	}
	for i := c.size; i < MaxSize; i++ {
		if c.bytes[i] != 0 {
			return
		}
	}
	c.valid = true
}

// Size returns the declared byte length, or 0 for an empty Char.
func (c Char) Size() int {
	return c.size
}

// IsValid reports whether c holds a complete, well-formed sequence.
func (c Char) IsValid() bool {
	return c.valid
}

// IsSet reports whether c holds a character at all. It is the check used
// for optional configuration characters.
func (c Char) IsSet() bool {
	return c.size > 0 && c.valid
}

// Pending reports whether some, but not all, bytes of a sequence have been added.
func (c Char) Pending() bool {
	return c.count > 0 && c.count < c.size
}

// Byte returns the byte at index i.
func (c Char) Byte(i int) (byte, error) {
	if i < 0 || i >= c.size || i >= c.count {
		return 0, ErrIndex
	}
	if !c.valid {
		return 0, ErrFormat
	}
	return c.bytes[i], nil
}

// Bytes returns a copy of the encoded sequence.
func (c Char) Bytes() ([]byte, error) {
	if !c.valid {
		return nil, ErrFormat
	}
	out := make([]byte, c.size)
	copy(out, c.bytes[:c.size])
	return out, nil
}

// AppendTo appends the encoded sequence of a valid c to dst.
func (c Char) AppendTo(dst []byte) []byte {
	if !c.valid {
		return dst
	}
	return append(dst, c.bytes[:c.size]...)
}

// String returns the encoded character, or "" when c is not valid.
func (c Char) String() string {
	if !c.valid {
		return ""
	}
	return string(c.bytes[:c.size])
}

// IsDigit reports whether c is an ASCII decimal digit.
func (c Char) IsDigit() bool {
	return c.valid && c.size == 1 && c.bytes[0] >= '0' && c.bytes[0] <= '9'
}

// Clear resets c to the empty state.
func (c *Char) Clear() {
	*c = Char{}
}

// Compare orders characters by byte length first, then byte by byte.
// It returns -1, 0 or +1, or ErrFormat if either side is not valid.
func (c Char) Compare(o Char) (int, error) {
	if !c.valid || !o.valid {
		return 0, ErrFormat
	}
	if c.size != o.size {
		if c.size < o.size {
			return -1, nil
		}
		return 1, nil
	}
	for i := 0; i < c.size; i++ {
		switch {
		case c.bytes[i] < o.bytes[i]:
			return -1, nil
		case c.bytes[i] > o.bytes[i]:
			return 1, nil
		}
	}
	return 0, nil
}

// Equal reports whether c and o hold the same byte sequence.
func (c Char) Equal(o Char) (bool, error) {
	n, err := c.Compare(o)
	return n == 0 && err == nil, err
}

// Less reports whether c orders before o.
func (c Char) Less(o Char) (bool, error) {
	n, err := c.Compare(o)
	return n < 0 && err == nil, err
}

// LessEqual reports whether c orders before or equal to o.
func (c Char) LessEqual(o Char) (bool, error) {
	n, err := c.Compare(o)
	return n <= 0 && err == nil, err
}

// Greater reports whether c orders after o.
func (c Char) Greater(o Char) (bool, error) {
	n, err := c.Compare(o)
	return n > 0 && err == nil, err
}

// GreaterEqual reports whether c orders after or equal to o.
func (c Char) GreaterEqual(o Char) (bool, error) {
	n, err := c.Compare(o)
	return n >= 0 && err == nil, err
}

// Is reports whether c is a set character equal to o. Unlike Equal it never
// fails, which makes it convenient for matching optional configuration.
func (c Char) Is(o Char) bool {
	eq, err := c.Equal(o)
	return err == nil && eq
}
