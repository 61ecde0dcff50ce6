// Package row splits one physical CSV line into cells.
//
// Splitting is escape aware: every occurrence of the escape character toggles
// an escaped state, and delimiters seen while escaped are kept as cell
// content. Empty fields are emitted as the literal "0". The tokenizer also
// classifies the line as a probable header from its digit density.
package row

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/slightcsv/internal/u8char"
)

// EmptyCell is emitted for every empty field.
const EmptyCell = "0"

// HeaderDigitRatio is the largest share of decimal digits a line may contain
// and still be classified as a header.
const HeaderDigitRatio = 0.1

var (
	ErrInput     = errors.New("row: input string is not defined or empty")
	ErrSeparator = errors.New("row: separator is not defined or empty")
	ErrEscape    = errors.New("row: escape character is not defined or empty")
	ErrProcess   = errors.New("row: row not processed")
)

// Tokenizer splits a line into cells. Results are only available after a
// successful Process; changing the input, separator or escape discards them.
type Tokenizer struct {
	input     string
	sep       u8char.Char
	esc       u8char.Char
	processed bool
	cells     []string
	isHeader  bool
}

// New returns an empty Tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// SetInput sets the line to split.
func (t *Tokenizer) SetInput(s string) error {
	if s == "" {
		return ErrInput
	}
	t.input = s
	t.processed = false
	return nil
}

// Input returns the current line.
func (t *Tokenizer) Input() (string, error) {
	if t.input == "" {
		return "", ErrInput
	}
	return t.input, nil
}

// SetSeparator sets the field delimiter.
func (t *Tokenizer) SetSeparator(c u8char.Char) error {
	if !c.IsSet() {
		return ErrSeparator
	}
	t.sep = c
	t.processed = false
	return nil
}

// Separator returns the field delimiter.
func (t *Tokenizer) Separator() (u8char.Char, error) {
	if !t.sep.IsSet() {
		return u8char.Char{}, ErrSeparator
	}
	return t.sep, nil
}

// SetEscape sets the escape character.
func (t *Tokenizer) SetEscape(c u8char.Char) error {
	if !c.IsSet() {
		return ErrEscape
	}
	t.esc = c
	t.processed = false
	return nil
}

// Escape returns the escape character.
func (t *Tokenizer) Escape() (u8char.Char, error) {
	if !t.esc.IsSet() {
		return u8char.Char{}, ErrEscape
	}
	return t.esc, nil
}

// Process splits the input into cells and classifies the line.
func (t *Tokenizer) Process() error {
	if t.input == "" {
		return ErrInput
	}
	if !t.sep.IsSet() {
		return ErrSeparator
	}

	t.processed = false
	t.cells = t.cells[:0]

	var (
		cell     []byte
		c        u8char.Char
		last     u8char.Char
		escaped  bool
		digits   int
		total    int
		checkEsc = t.esc.IsSet()
	)

	for i := 0; i < len(t.input); i++ {
		if err := c.AddByte(t.input[i]); err != nil {
			return fmt.Errorf("row: byte %d: %w", i, err)
		}
		if !c.IsValid() {
			continue
		}

		total++
		if c.IsDigit() {
			digits++
		}
		if checkEsc && c.Is(t.esc) {
			escaped = !escaped
		}
		if !c.Is(t.sep) || escaped {
			cell = c.AppendTo(cell)
		} else if len(cell) > 0 {
			t.cells = append(t.cells, string(cell))
			cell = cell[:0]
		} else {
			t.cells = append(t.cells, EmptyCell)
		}

		last = c
		c.Clear()
	}
	if c.Pending() {
		return fmt.Errorf("row: truncated character at end of line: %w", u8char.ErrFormat)
	}

	if len(cell) > 0 {
		t.cells = append(t.cells, string(cell))
	}
	if last.Is(t.sep) && !escaped {
		t.cells = append(t.cells, EmptyCell)
	}

	t.isHeader = float64(digits)/float64(total) <= HeaderDigitRatio
	t.processed = true
	return nil
}

// CellCount returns the number of cells found by Process.
func (t *Tokenizer) CellCount() (int, error) {
	if !t.processed {
		return 0, ErrProcess
	}
	return len(t.cells), nil
}

// Cells returns a copy of the cells found by Process.
func (t *Tokenizer) Cells() ([]string, error) {
	if !t.processed {
		return nil, ErrProcess
	}
	out := make([]string, len(t.cells))
	copy(out, t.cells)
	return out, nil
}

// IsHeader reports whether the processed line looks like a header.
func (t *Tokenizer) IsHeader() (bool, error) {
	if !t.processed {
		return false, ErrProcess
	}
	return t.isHeader, nil
}

// Clear drops the input and results but keeps separator and escape.
func (t *Tokenizer) Clear() {
	t.input = ""
	t.processed = false
	t.cells = t.cells[:0]
	t.isHeader = false
}

// Reset returns the tokenizer to its initial state.
func (t *Tokenizer) Reset() {
	t.Clear()
	t.sep.Clear()
	t.esc.Clear()
}
