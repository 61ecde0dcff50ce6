// Package matrix stores parsed CSV cells in one flat, row-major buffer.
//
// The cell at (row, col) lives at index row*ColumnCount()+col. Cells are
// appended without checking the row shape; a trailing partial row is counted
// as an extra row and makes Validate report false. Every read validates the
// whole matrix first, so ragged data is never handed out.
package matrix

import (
	"errors"
	"slices"
)

var (
	ErrParameter = errors.New("matrix: invalid parameter")
	ErrRow       = errors.New("matrix: invalid row count or index")
	ErrColumn    = errors.New("matrix: invalid column count or index")
	ErrMatrix    = errors.New("matrix: invalid matrix (rows incomplete or column count not set)")
)

// Matrix is a flat row-major cell store. The zero value is empty and usable.
type Matrix struct {
	data        []string
	columnCount int
	headerCount int
	capacity    int
}

// New returns an empty Matrix.
func New() *Matrix {
	return &Matrix{}
}

// SetColumnCount sets the row width. It does not check existing cells.
func (m *Matrix) SetColumnCount(n int) {
	m.columnCount = n
}

// ColumnCount returns the row width.
func (m *Matrix) ColumnCount() int {
	return m.columnCount
}

// SetCapacity reserves room for n cells.
func (m *Matrix) SetCapacity(n int) error {
	if n <= 0 {
		return ErrParameter
	}
	if extra := n - len(m.data); extra > 0 {
		m.data = slices.Grow(m.data, extra)
	}
	m.capacity = n
	return nil
}

// Capacity returns the last capacity hint.
func (m *Matrix) Capacity() int {
	return m.capacity
}

// AddCell appends one cell.
func (m *Matrix) AddCell(cell string) {
	m.data = append(m.data, cell)
}

// AddCells appends cells in order.
func (m *Matrix) AddCells(cells []string) {
	m.data = append(m.data, cells...)
}

// CellCount returns the number of stored cells.
func (m *Matrix) CellCount() int {
	return len(m.data)
}

// RowCount returns the number of rows, counting a trailing partial row.
// It is 0 while the column count is unset.
func (m *Matrix) RowCount() int {
	if m.columnCount <= 0 {
		return 0
	}
	return (len(m.data) + m.columnCount - 1) / m.columnCount
}

// SetHeaderCount records how many leading rows are headers.
func (m *Matrix) SetHeaderCount(n int) {
	m.headerCount = n
}

// HeaderCount returns the number of leading header rows.
func (m *Matrix) HeaderCount() int {
	return m.headerCount
}

// Validate reports whether the matrix has a column count, only complete
// rows, and fewer header rows than rows.
func (m *Matrix) Validate() bool {
	if m.columnCount <= 0 {
		return false
	}
	if m.headerCount >= m.RowCount() {
		return false
	}
	return len(m.data)%m.columnCount == 0
}

// Cell returns the cell at (row, col).
func (m *Matrix) Cell(row, col int) (string, error) {
	if !m.Validate() {
		return "", ErrMatrix
	}
	if col < 0 || col >= m.columnCount {
		return "", ErrColumn
	}
	if row < 0 || row >= m.RowCount() {
		return "", ErrRow
	}
	return m.data[row*m.columnCount+col], nil
}

// Row returns a copy of a whole row.
func (m *Matrix) Row(row int) ([]string, error) {
	return m.RowRange(row, 0, m.columnCount)
}

// RowFrom returns a copy of a row starting at column start.
func (m *Matrix) RowFrom(row, start int) ([]string, error) {
	return m.RowRange(row, start, m.columnCount-start)
}

// RowRange returns count cells of a row starting at column start.
func (m *Matrix) RowRange(row, start, count int) ([]string, error) {
	if !m.Validate() {
		return nil, ErrMatrix
	}
	if row < 0 || row >= m.RowCount() {
		return nil, ErrRow
	}
	if start < 0 || start >= m.columnCount {
		return nil, ErrColumn
	}
	if count < 0 || count > m.columnCount-start {
		return nil, ErrColumn
	}
	offset := row*m.columnCount + start
	return slices.Clone(m.data[offset : offset+count]), nil
}

// Column returns a copy of a whole column.
func (m *Matrix) Column(col int) ([]string, error) {
	return m.ColumnRange(col, 0, m.RowCount())
}

// ColumnFrom returns a copy of a column starting at row start.
func (m *Matrix) ColumnFrom(col, start int) ([]string, error) {
	return m.ColumnRange(col, start, m.RowCount()-start)
}

// ColumnRange returns count cells of a column starting at row start.
func (m *Matrix) ColumnRange(col, start, count int) ([]string, error) {
	if !m.Validate() {
		return nil, ErrMatrix
	}
	rows := m.RowCount()
	if col < 0 || col >= m.columnCount {
		return nil, ErrColumn
	}
	if start < 0 || start >= rows {
		return nil, ErrRow
	}
	if count < 0 || count > rows-start {
		return nil, ErrRow
	}
	out := make([]string, count)
	for i := range out {
		out[i] = m.data[(start+i)*m.columnCount+col]
	}
	return out, nil
}

// Reset discards all cells and counts and releases the buffer.
func (m *Matrix) Reset() {
	*m = Matrix{}
}
