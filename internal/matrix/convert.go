package matrix

// convert.go turns stored text cells into typed values.
//
// Conversion is best effort and never fails: a comma decimal separator is
// accepted, the longest leading numeric prefix is parsed (so "12.5kg" reads
// as 12.5), and anything unparsable becomes the zero value. Callers that need
// to tell "0" apart from garbage should read the cell as a string.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Value is the set of types a cell can be read as.
type Value interface {
	string | int | int64 | float32 | float64
}

// numericPrefix matches the leading decimal number of a cell.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// Convert reads text as T.
func Convert[T Value](text string) T {
	var v any
	switch any(*new(T)).(type) {
	case string:
		v = text
	case int:
		v = int(toInt(text, strconv.IntSize))
	case int64:
		v = toInt(text, 64)
	case float32:
		v = float32(toFloat(text, 32))
	case float64:
		v = toFloat(text, 64)
	}
	return v.(T)
}

func normalizeNumber(text string) string {
	text = strings.TrimSpace(text)
	return strings.ReplaceAll(text, ",", ".")
}

func toFloat(text string, bitSize int) float64 {
	s := numericPrefix.FindString(normalizeNumber(text))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toInt(text string, bitSize int) int64 {
	s := numericPrefix.FindString(normalizeNumber(text))
	if s == "" {
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, bitSize); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	f = math.Trunc(f)
	limit := math.Ldexp(1, bitSize-1)
	if f >= limit || f < -limit {
		return 0
	}
	return int64(f)
}

// CellAs returns the cell at (row, col) converted to T.
func CellAs[T Value](m *Matrix, row, col int) (T, error) {
	cell, err := m.Cell(row, col)
	if err != nil {
		var zero T
		return zero, err
	}
	return Convert[T](cell), nil
}

// ColumnAs returns count cells of a column starting at row start, converted to T.
func ColumnAs[T Value](m *Matrix, col, start, count int) ([]T, error) {
	cells, err := m.ColumnRange(col, start, count)
	if err != nil {
		return nil, err
	}
	return ConvertAll[T](cells), nil
}

// ConvertAll converts every cell to T.
func ConvertAll[T Value](cells []string) []T {
	out := make([]T, len(cells))
	for i, c := range cells {
		out[i] = Convert[T](c)
	}
	return out
}
