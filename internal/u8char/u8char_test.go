package u8char

import (
	"bytes"
	"errors"
	"testing"
	"unicode/utf8"
)

func TestAddByte_ASCII(t *testing.T) {
	for b := 0; b < 0x80; b++ {
		var c Char
		if err := c.AddByte(byte(b)); err != nil {
			t.Fatalf("AddByte(%#x) error = %v", b, err)
		}
		if c.Size() != 1 {
			t.Errorf("AddByte(%#x) Size = %d, want 1", b, c.Size())
		}
		if !c.IsValid() {
			t.Errorf("AddByte(%#x) IsValid = false, want true", b)
		}
	}
}

func TestAddByte_MultiByte(t *testing.T) {
	runes := []rune{'é', 'ß', 'Ω', '€', '中', 'ﬀ', '😀', '\U0010FFFF'}

	for _, r := range runes {
		buf := make([]byte, utf8.UTFMax)
		n := utf8.EncodeRune(buf, r)
		buf = buf[:n]

		var c Char
		for i, b := range buf {
			if err := c.AddByte(b); err != nil {
				t.Fatalf("%q: AddByte #%d error = %v", r, i, err)
			}
			last := i == len(buf)-1
			if c.IsValid() != last {
				t.Errorf("%q: after %d bytes IsValid = %v, want %v", r, i+1, c.IsValid(), last)
			}
		}
		if c.Size() != n {
			t.Errorf("%q: Size = %d, want %d", r, c.Size(), n)
		}

		got, err := c.Bytes()
		if err != nil {
			t.Fatalf("%q: Bytes error = %v", r, err)
		}
		if !bytes.Equal(got, buf) {
			t.Errorf("%q: Bytes = %x, want %x", r, got, buf)
		}
		if c.String() != string(r) {
			t.Errorf("%q: String = %q", r, c.String())
		}
	}
}

func TestAddByte_InvalidLeadByte(t *testing.T) {
	tests := []struct {
		name string
		b    byte
	}{
		{"continuation byte", 0x80},
		{"continuation byte high", 0xBF},
		{"five leading ones", 0xF8},
		{"all ones", 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Char
			err := c.AddByte(tt.b)
			if !errors.Is(err, ErrFormat) {
				t.Errorf("AddByte(%#x) error = %v, want ErrFormat", tt.b, err)
			}
			if c.IsSet() {
				t.Error("IsSet = true after rejected lead byte")
			}
		})
	}
}

func TestAddByte_BadContinuation(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"two byte with ascii tail", []byte{0xC3, 0x41}},
		{"two byte with lead tail", []byte{0xC3, 0xC3}},
		{"three byte broken middle", []byte{0xE2, 0x41, 0xAC}},
		{"three byte broken end", []byte{0xE2, 0x82, 0xFF}},
		{"four byte broken end", []byte{0xF0, 0x9F, 0x98, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Char
			var err error
			for _, b := range tt.input {
				if err = c.AddByte(b); err != nil {
					break
				}
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("error = %v, want ErrFormat", err)
			}
			if c.IsValid() {
				t.Error("IsValid = true for malformed sequence")
			}
		})
	}
}

func TestAddByte_Excess(t *testing.T) {
	var c Char
	if err := c.AddByte('a'); err != nil {
		t.Fatalf("AddByte error = %v", err)
	}
	if err := c.AddByte('b'); !errors.Is(err, ErrFormat) {
		t.Errorf("second AddByte error = %v, want ErrFormat", err)
	}

	c.Clear()
	for _, b := range []byte{0xC3, 0xA9} {
		if err := c.AddByte(b); err != nil {
			t.Fatalf("AddByte error = %v", err)
		}
	}
	if err := c.AddByte(0xA9); !errors.Is(err, ErrFormat) {
		t.Errorf("third AddByte error = %v, want ErrFormat", err)
	}
}

func TestPending(t *testing.T) {
	var c Char
	if c.Pending() {
		t.Error("empty Char is pending")
	}
	c.AddByte(0xE2)
	if !c.Pending() {
		t.Error("partial Char is not pending")
	}
	c.AddByte(0x82)
	c.AddByte(0xAC)
	if c.Pending() {
		t.Error("complete Char is pending")
	}
}

func TestClear(t *testing.T) {
	c, err := New("€")
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	c.Clear()
	if c.Size() != 0 || c.IsValid() || c.IsSet() {
		t.Errorf("after Clear: Size=%d IsValid=%v IsSet=%v", c.Size(), c.IsValid(), c.IsSet())
	}
	if err := c.AddByte(';'); err != nil {
		t.Fatalf("AddByte after Clear error = %v", err)
	}
	if c.String() != ";" {
		t.Errorf("String = %q, want %q", c.String(), ";")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{";", false},
		{"\"", false},
		{"ő", false},
		{"😀", false},
		{"", true},
		{";;", true},
		{"ab", true},
		{"\xC3", true},
		{"\x80", true},
	}

	for _, tt := range tests {
		c, err := New(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrFormat) {
				t.Errorf("New(%q) error = %v, want ErrFormat", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q) error = %v", tt.input, err)
			continue
		}
		if c.String() != tt.input {
			t.Errorf("New(%q).String() = %q", tt.input, c.String())
		}
	}
}

func TestDecode(t *testing.T) {
	input := "a;ő€😀"
	chars, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	want := []string{"a", ";", "ő", "€", "😀"}
	if len(chars) != len(want) {
		t.Fatalf("Decode len = %d, want %d", len(chars), len(want))
	}
	var rebuilt []byte
	for i, c := range chars {
		if c.String() != want[i] {
			t.Errorf("chars[%d] = %q, want %q", i, c.String(), want[i])
		}
		rebuilt = c.AppendTo(rebuilt)
	}
	if string(rebuilt) != input {
		t.Errorf("round trip = %q, want %q", rebuilt, input)
	}

	if _, err := Decode("ab\xE2\x82"); !errors.Is(err, ErrFormat) {
		t.Errorf("Decode truncated error = %v, want ErrFormat", err)
	}
	if _, err := Decode("a\xBFb"); !errors.Is(err, ErrFormat) {
		t.Errorf("Decode stray continuation error = %v, want ErrFormat", err)
	}
}

func TestByte(t *testing.T) {
	c, _ := New("€")
	for i, want := range []byte{0xE2, 0x82, 0xAC} {
		got, err := c.Byte(i)
		if err != nil {
			t.Fatalf("Byte(%d) error = %v", i, err)
		}
		if got != want {
			t.Errorf("Byte(%d) = %#x, want %#x", i, got, want)
		}
	}
	if _, err := c.Byte(3); !errors.Is(err, ErrIndex) {
		t.Errorf("Byte(3) error = %v, want ErrIndex", err)
	}
	if _, err := c.Byte(-1); !errors.Is(err, ErrIndex) {
		t.Errorf("Byte(-1) error = %v, want ErrIndex", err)
	}

	var partial Char
	partial.AddByte(0xE2)
	if _, err := partial.Byte(0); !errors.Is(err, ErrFormat) {
		t.Errorf("partial Byte(0) error = %v, want ErrFormat", err)
	}
}

func TestCompare(t *testing.T) {
	mustNew := func(s string) Char {
		c, err := New(s)
		if err != nil {
			t.Fatalf("New(%q) error = %v", s, err)
		}
		return c
	}

	tests := []struct {
		a, b string
		want int
	}{
		{"a", "a", 0},
		{"a", "b", -1},
		{"b", "a", 1},
		{"z", "é", -1}, // shorter sequence orders first
		{"é", "z", 1},
		{"é", "ë", -1},
		{"€", "€", 0},
		{"€", "😀", -1},
	}

	for _, tt := range tests {
		a, b := mustNew(tt.a), mustNew(tt.b)
		got, err := a.Compare(b)
		if err != nil {
			t.Fatalf("Compare(%q, %q) error = %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}

		eq, _ := a.Equal(b)
		lt, _ := a.Less(b)
		le, _ := a.LessEqual(b)
		gt, _ := a.Greater(b)
		ge, _ := a.GreaterEqual(b)
		if eq != (tt.want == 0) || lt != (tt.want < 0) || le != (tt.want <= 0) ||
			gt != (tt.want > 0) || ge != (tt.want >= 0) {
			t.Errorf("%q vs %q: eq=%v lt=%v le=%v gt=%v ge=%v", tt.a, tt.b, eq, lt, le, gt, ge)
		}
	}
}

func TestCompare_Invalid(t *testing.T) {
	valid, _ := New("a")
	var empty Char
	var partial Char
	partial.AddByte(0xC3)

	if _, err := empty.Compare(valid); !errors.Is(err, ErrFormat) {
		t.Errorf("empty.Compare error = %v, want ErrFormat", err)
	}
	if _, err := valid.Compare(partial); !errors.Is(err, ErrFormat) {
		t.Errorf("Compare(partial) error = %v, want ErrFormat", err)
	}
	if _, err := valid.Equal(empty); !errors.Is(err, ErrFormat) {
		t.Errorf("Equal(empty) error = %v, want ErrFormat", err)
	}
	if valid.Is(empty) {
		t.Error("Is(empty) = true")
	}
}

func TestIsSet(t *testing.T) {
	var c Char
	if c.IsSet() {
		t.Error("zero Char IsSet = true")
	}
	c.AddByte(0xC5)
	if c.IsSet() {
		t.Error("partial Char IsSet = true")
	}
	c.AddByte(0x91)
	if !c.IsSet() {
		t.Error("complete Char IsSet = false")
	}
}

func TestBOM(t *testing.T) {
	c, err := New("\uFEFF")
	if err != nil {
		t.Fatalf("New(BOM) error = %v", err)
	}
	if !c.Is(BOM) {
		t.Errorf("decoded BOM %x does not match BOM", c.String())
	}
	if c != BOM {
		t.Error("decoded BOM is not identical to BOM value")
	}
}

func TestIsDigit(t *testing.T) {
	for _, s := range []string{"0", "5", "9"} {
		c, _ := New(s)
		if !c.IsDigit() {
			t.Errorf("%q IsDigit = false", s)
		}
	}
	for _, s := range []string{"a", "/", ":", "٣"} {
		c, _ := New(s)
		if c.IsDigit() {
			t.Errorf("%q IsDigit = true", s)
		}
	}
}
