package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/JonMunkholm/slightcsv/internal/matrix"
	"github.com/JonMunkholm/slightcsv/internal/row"
	"github.com/JonMunkholm/slightcsv/internal/u8char"
)

// cancelCheckInterval is how many bytes Load reads between context checks.
const cancelCheckInterval = 64 * 1024

// progressLogInterval is how many bytes Load reads between progress logs.
const progressLogInterval = 16 * 1024 * 1024

var (
	charCR = mustChar("\r")
	charLF = mustChar("\n")
)

func mustChar(s string) u8char.Char {
	c, err := u8char.New(s)
	if err != nil {
		panic(fmt.Sprintf("invalid character %q: %v", s, err))
	}
	return c
}

// LoadStats describes the last successful load.
type LoadStats struct {
	FileSize  int64
	BytesRead int64
	Rows      int
	Columns   int
	Headers   int
	Duration  time.Duration
}

// Parser reads a delimited text file into a row/column store.
//
// A Parser is configured with setters, filled by Load and queried with the
// accessors. It is not safe for concurrent use.
type Parser struct {
	filename string
	sep      u8char.Char
	esc      u8char.Char
	strip    map[u8char.Char]struct{}
	replace  map[u8char.Char]u8char.Char

	tok            *row.Tokenizer
	data           *matrix.Matrix
	fileSize       int64
	formatDetected bool
	stats          LoadStats

	logger *slog.Logger
}

// NewParser returns an unconfigured Parser.
func NewParser() *Parser {
	return &Parser{
		tok:    row.New(),
		data:   matrix.New(),
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for load events.
func (p *Parser) WithLogger(l *slog.Logger) *Parser {
	if l != nil {
		p.logger = l
	}
	return p
}

// SetFilename sets the file to load.
func (p *Parser) SetFilename(name string) error {
	if name == "" {
		return newError(KindFilename, "set filename", nil)
	}
	p.filename = name
	return nil
}

// Filename returns the configured file.
func (p *Parser) Filename() (string, error) {
	if p.filename == "" {
		return "", newError(KindFilename, "get filename", nil)
	}
	return p.filename, nil
}

// SetSeparator sets the field delimiter. s must hold exactly one character.
func (p *Parser) SetSeparator(s string) error {
	c, err := u8char.New(s)
	if err != nil {
		return newError(KindSeparator, "set separator", err)
	}
	p.sep = c
	return nil
}

// Separator returns the field delimiter.
func (p *Parser) Separator() (string, error) {
	if !p.sep.IsSet() {
		return "", newError(KindSeparator, "get separator", nil)
	}
	return p.sep.String(), nil
}

// SetEscape sets the escape character. s must hold exactly one character.
func (p *Parser) SetEscape(s string) error {
	c, err := u8char.New(s)
	if err != nil {
		return newError(KindEscape, "set escape", err)
	}
	p.esc = c
	return nil
}

// Escape returns the escape character.
func (p *Parser) Escape() (string, error) {
	if !p.esc.IsSet() {
		return "", newError(KindEscape, "get escape", nil)
	}
	return p.esc.String(), nil
}

// SetStripChars sets the characters dropped from the input before any other
// processing. Every entry must hold exactly one character.
func (p *Parser) SetStripChars(chars []string) error {
	if len(chars) == 0 {
		return newError(KindStrip, "set strip chars", errors.New("empty set"))
	}
	strip := make(map[u8char.Char]struct{}, len(chars))
	for _, s := range chars {
		c, err := u8char.New(s)
		if err != nil {
			return newError(KindStrip, "set strip chars", fmt.Errorf("%q: %w", s, err))
		}
		strip[c] = struct{}{}
	}
	p.strip = strip
	return nil
}

// StripChars returns the strip set in byte order.
func (p *Parser) StripChars() ([]string, error) {
	if len(p.strip) == 0 {
		return nil, newError(KindStrip, "get strip chars", nil)
	}
	out := make([]string, 0, len(p.strip))
	for c := range p.strip {
		out = append(out, c.String())
	}
	slices.Sort(out)
	return out, nil
}

// SetReplaceChars sets the one-to-one character substitutions applied to
// line content. Keys and values must hold exactly one character each.
func (p *Parser) SetReplaceChars(pairs map[string]string) error {
	if len(pairs) == 0 {
		return newError(KindReplace, "set replace chars", errors.New("empty map"))
	}
	replace := make(map[u8char.Char]u8char.Char, len(pairs))
	for from, to := range pairs {
		f, err := u8char.New(from)
		if err != nil {
			return newError(KindReplace, "set replace chars", fmt.Errorf("%q: %w", from, err))
		}
		t, err := u8char.New(to)
		if err != nil {
			return newError(KindReplace, "set replace chars", fmt.Errorf("%q: %w", to, err))
		}
		replace[f] = t
	}
	p.replace = replace
	return nil
}

// ReplaceChars returns a copy of the replacement map.
func (p *Parser) ReplaceChars() (map[string]string, error) {
	if len(p.replace) == 0 {
		return nil, newError(KindReplace, "get replace chars", nil)
	}
	out := make(map[string]string, len(p.replace))
	for from, to := range p.replace {
		out[from.String()] = to.String()
	}
	return out, nil
}

// Load reads the configured file and returns the number of rows stored.
func (p *Parser) Load() (int, error) {
	return p.LoadContext(context.Background())
}

// LoadContext is Load with cancellation. Loading an already loaded parser
// replaces its data. On any error nothing is retained.
func (p *Parser) LoadContext(ctx context.Context) (int, error) {
	if p.filename == "" {
		return 0, newError(KindFilename, "load", nil)
	}
	if !p.sep.IsSet() {
		return 0, newError(KindSeparator, "load", nil)
	}
	p.discard()

	f, err := os.Open(p.filename)
	if err != nil {
		return 0, newError(KindFilename, "load", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, newError(KindRead, "load", err)
	}
	p.fileSize = info.Size()

	p.tok.Reset()
	p.tok.SetSeparator(p.sep)
	if p.esc.IsSet() {
		p.tok.SetEscape(p.esc)
	}

	logger := p.logger.With("file", p.filename)
	logger.Debug("csv load started", "bytes", p.fileSize)
	start := time.Now()

	br, counter := wrapForLoad(f, p.fileSize)
	if err := p.scan(ctx, br, counter, logger); err != nil {
		p.discard()
		logger.Warn("csv load failed", "error", err, "bytes_read", counter.BytesRead)
		return 0, err
	}

	p.stats = LoadStats{
		FileSize:  p.fileSize,
		BytesRead: counter.BytesRead,
		Rows:      p.data.RowCount(),
		Columns:   p.data.ColumnCount(),
		Headers:   p.data.HeaderCount(),
		Duration:  time.Since(start),
	}
	logger.Info("csv load completed",
		"rows", p.stats.Rows,
		"columns", p.stats.Columns,
		"headers", p.stats.Headers,
		"bytes", p.stats.BytesRead,
		"duration_ms", p.stats.Duration.Milliseconds(),
	)
	return p.stats.Rows, nil
}

// scan runs the byte loop: decode, strip, escape toggle, line break check,
// replace, append.
func (p *Parser) scan(ctx context.Context, r io.ByteReader, counter *CountingReader, logger *slog.Logger) error {
	var (
		c         u8char.Char
		line      []byte
		lineChars int
		escaped   bool
		rowID     int
		offset    int64
		first     = true
		checkEsc  = p.esc.IsSet()
	)

	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return newError(KindRead, "load", err)
		}
		offset++
		if offset%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return newError(KindRead, "load", err)
			}
		}
		if offset%progressLogInterval == 0 {
			logger.Debug("csv load progress", "percent", counter.Progress(), "rows", rowID)
		}

		if err := c.AddByte(b); err != nil {
			return newError(KindEncoding, "load", fmt.Errorf("byte offset %d: %w", offset-1, err))
		}
		if !c.IsValid() {
			continue
		}
		ch := c
		c.Clear()

		if first {
			first = false
			if rowID == 0 && ch.Is(u8char.BOM) {
				continue
			}
		}
		if _, ok := p.strip[ch]; ok {
			continue
		}
		if checkEsc && ch.Is(p.esc) {
			escaped = !escaped
		}
		if escaped || !(ch.Is(charCR) || ch.Is(charLF)) {
			if to, ok := p.replace[ch]; ok {
				ch = to
			}
			line = ch.AppendTo(line)
			lineChars++
			continue
		}

		if len(line) == 0 {
			continue
		}
		if err := p.submit(string(line), lineChars, rowID); err != nil {
			return err
		}
		line = line[:0]
		lineChars = 0
		rowID++
	}

	if c.Pending() {
		return newError(KindEncoding, "load",
			fmt.Errorf("truncated character at end of file: %w", u8char.ErrFormat))
	}
	return p.submit(string(line), lineChars, rowID)
}

// submit tokenizes one line and appends its cells. The first line fixes the
// column count; header rows must form a contiguous prefix.
func (p *Parser) submit(line string, chars, rowID int) error {
	if line == "" {
		return nil
	}

	p.tok.Clear()
	p.tok.SetInput(line)
	if err := p.tok.Process(); err != nil {
		return newError(KindEncoding, "load", fmt.Errorf("row %d: %w", rowID, err))
	}
	cells, _ := p.tok.Cells()
	header, _ := p.tok.IsHeader()

	if !p.formatDetected {
		estimate := min(p.fileSize/int64(chars)*int64(len(cells)), p.fileSize)
		if estimate > 0 {
			p.data.SetCapacity(int(estimate))
		}
		p.data.SetColumnCount(len(cells))
		p.formatDetected = true
	}

	if header {
		headers := p.data.HeaderCount()
		if rowID != headers {
			return newError(KindFormatHeader, "load",
				fmt.Errorf("row %d follows %d header rows and data", rowID, headers))
		}
		p.data.SetHeaderCount(headers + 1)
	}

	if want := p.data.ColumnCount(); len(cells) != want {
		return newError(KindFormatCellCount, "load",
			fmt.Errorf("row %d has %d cells, want %d", rowID, len(cells), want))
	}

	p.data.AddCells(cells)
	return nil
}

// Loaded reports whether data is available.
func (p *Parser) Loaded() bool {
	return p.data.RowCount() > 0 && p.data.ColumnCount() > 0
}

// Stats returns statistics of the last successful load.
func (p *Parser) Stats() LoadStats {
	return p.stats
}

// ColumnCount returns the number of columns.
func (p *Parser) ColumnCount() (int, error) {
	if !p.Loaded() {
		return 0, newError(KindData, "column count", nil)
	}
	return p.data.ColumnCount(), nil
}

// RowCount returns the number of rows, headers included.
func (p *Parser) RowCount() (int, error) {
	if !p.Loaded() {
		return 0, newError(KindData, "row count", nil)
	}
	return p.data.RowCount(), nil
}

// HeaderCount returns the number of leading header rows.
func (p *Parser) HeaderCount() (int, error) {
	if !p.Loaded() {
		return 0, newError(KindData, "header count", nil)
	}
	return p.data.HeaderCount(), nil
}

// SetHeaderCount overrides the detected header count. The value is not
// checked here; a count not below the row count makes every read fail.
func (p *Parser) SetHeaderCount(n int) error {
	if !p.Loaded() {
		return newError(KindData, "set header count", nil)
	}
	if n < 0 {
		return newError(KindIndex, "set header count", fmt.Errorf("negative count %d", n))
	}
	p.data.SetHeaderCount(n)
	return nil
}

// Cell returns the cell at (row, col).
func (p *Parser) Cell(row, col int) (string, error) {
	if !p.Loaded() {
		return "", newError(KindData, "cell", nil)
	}
	v, err := p.data.Cell(row, col)
	if err != nil {
		return "", readError("cell", err)
	}
	return v, nil
}

// Row returns a whole row.
func (p *Parser) Row(row int) ([]string, error) {
	return p.RowRange(row, 0, p.data.ColumnCount())
}

// RowFrom returns a row starting at column start.
func (p *Parser) RowFrom(row, start int) ([]string, error) {
	return p.RowRange(row, start, p.data.ColumnCount()-start)
}

// RowRange returns count cells of a row starting at column start.
func (p *Parser) RowRange(row, start, count int) ([]string, error) {
	if !p.Loaded() {
		return nil, newError(KindData, "row", nil)
	}
	cells, err := p.data.RowRange(row, start, count)
	if err != nil {
		return nil, readError("row", err)
	}
	return cells, nil
}

// Column returns a whole column, header rows included.
func (p *Parser) Column(col int) ([]string, error) {
	return p.ColumnRange(col, 0, p.data.RowCount())
}

// ColumnFrom returns a column starting at row start.
func (p *Parser) ColumnFrom(col, start int) ([]string, error) {
	return p.ColumnRange(col, start, p.data.RowCount()-start)
}

// ColumnRange returns count cells of a column starting at row start.
func (p *Parser) ColumnRange(col, start, count int) ([]string, error) {
	if !p.Loaded() {
		return nil, newError(KindData, "column", nil)
	}
	cells, err := p.data.ColumnRange(col, start, count)
	if err != nil {
		return nil, readError("column", err)
	}
	return cells, nil
}

// readError folds the matrix errors into the parser taxonomy.
func readError(op string, err error) error {
	switch {
	case errors.Is(err, matrix.ErrRow), errors.Is(err, matrix.ErrColumn):
		return newError(KindIndex, op, err)
	default:
		return newError(KindData, op, err)
	}
}

// Unload drops the data but keeps the configuration.
func (p *Parser) Unload() error {
	if !p.Loaded() {
		return newError(KindData, "unload", nil)
	}
	p.discard()
	return nil
}

// Reset returns the parser to its initial, unconfigured state.
func (p *Parser) Reset() {
	p.discard()
	p.tok.Reset()
	p.filename = ""
	p.sep.Clear()
	p.esc.Clear()
	p.strip = nil
	p.replace = nil
}

func (p *Parser) discard() {
	p.data.Reset()
	p.tok.Clear()
	p.fileSize = 0
	p.formatDetected = false
	p.stats = LoadStats{}
}

// CellAs returns the cell at (row, col) converted to T. Unparsable text
// converts to the zero value.
func CellAs[T matrix.Value](p *Parser, row, col int) (T, error) {
	v, err := p.Cell(row, col)
	if err != nil {
		var zero T
		return zero, err
	}
	return matrix.Convert[T](v), nil
}

// RowAs returns count cells of a row starting at column start, converted to T.
func RowAs[T matrix.Value](p *Parser, row, start, count int) ([]T, error) {
	cells, err := p.RowRange(row, start, count)
	if err != nil {
		return nil, err
	}
	return matrix.ConvertAll[T](cells), nil
}

// ColumnAs returns count cells of a column starting at row start, converted to T.
func ColumnAs[T matrix.Value](p *Parser, col, start, count int) ([]T, error) {
	cells, err := p.ColumnRange(col, start, count)
	if err != nil {
		return nil, err
	}
	return matrix.ConvertAll[T](cells), nil
}
