// Package export copies a loaded dataset into a PostgreSQL table.
//
// The target table gets one column per dataset column plus a load_id uuid
// identifying the export. Column names come from the first header row when
// the dataset has one, otherwise they are col_1..col_n. Data rows are
// streamed with COPY inside a single transaction.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrInvalidTable = errors.New("invalid table name")
	ErrInvalidType  = errors.New("invalid column type")
	ErrNoData       = errors.New("dataset has no data rows")
)

// LoadIDColumn is the column holding the export id.
const LoadIDColumn = "load_id"

// maxIdentLen is the PostgreSQL identifier limit in bytes.
const maxIdentLen = 63

// DBTX is the database handle used by Exporter.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Source is a loaded dataset. *core.Parser satisfies it.
type Source interface {
	ColumnCount() (int, error)
	RowCount() (int, error)
	HeaderCount() (int, error)
	Row(row int) ([]string, error)
}

// Options configures one export.
type Options struct {
	Table  string                // target table, required
	Schema string                // optional schema
	Append bool                  // reuse an existing table instead of failing
	Types  map[string]ColumnType // column name -> type, text when absent
}

// Result describes a finished export.
type Result struct {
	Table    string        `json:"table"`
	LoadID   uuid.UUID     `json:"load_id"`
	Columns  []string      `json:"columns"`
	Rows     int64         `json:"rows"`
	Duration time.Duration `json:"duration"`
}

// identRegex limits table and schema names to plain identifiers.
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Exporter writes datasets to PostgreSQL.
type Exporter struct {
	db     DBTX
	logger *slog.Logger
}

// New creates an Exporter using db.
func New(db DBTX) *Exporter {
	return &Exporter{db: db, logger: slog.Default()}
}

// WithLogger sets the logger used for export events.
func (e *Exporter) WithLogger(l *slog.Logger) *Exporter {
	if l != nil {
		e.logger = l
	}
	return e
}

// Export creates the target table and copies every data row of src into it.
func (e *Exporter) Export(ctx context.Context, src Source, opts Options) (Result, error) {
	table, err := tableIdentifier(opts)
	if err != nil {
		return Result{}, err
	}

	rows, err := src.RowCount()
	if err != nil {
		return Result{}, fmt.Errorf("row count: %w", err)
	}
	headers, err := src.HeaderCount()
	if err != nil {
		return Result{}, fmt.Errorf("header count: %w", err)
	}
	if headers >= rows {
		return Result{}, ErrNoData
	}

	columns, err := ColumnNames(src)
	if err != nil {
		return Result{}, err
	}
	types, err := columnTypes(columns, opts.Types)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	loadID := uuid.New()
	logger := e.logger.With("table", table.Sanitize(), "load_id", loadID)

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(table, columns, types, opts.Append)); err != nil {
		return Result{}, fmt.Errorf("create table: %w", err)
	}

	source := newRowSource(src, headers, rows, loadID, types)
	copied, err := tx.CopyFrom(ctx, table, append([]string{LoadIDColumn}, columns...), source)
	if err != nil {
		return Result{}, fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}

	res := Result{
		Table:    table.Sanitize(),
		LoadID:   loadID,
		Columns:  columns,
		Rows:     copied,
		Duration: time.Since(start),
	}
	logger.Info("dataset exported", "rows", copied, "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func tableIdentifier(opts Options) (pgx.Identifier, error) {
	if !identRegex.MatchString(opts.Table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, opts.Table)
	}
	if opts.Schema == "" {
		return pgx.Identifier{opts.Table}, nil
	}
	if !identRegex.MatchString(opts.Schema) {
		return nil, fmt.Errorf("%w: schema %q", ErrInvalidTable, opts.Schema)
	}
	return pgx.Identifier{opts.Schema, opts.Table}, nil
}

// ColumnNames returns the export column names of src: the first header row
// normalized to lower snake case, or col_1..col_n without headers. Names are
// made unique and never collide with LoadIDColumn.
func ColumnNames(src Source) ([]string, error) {
	n, err := src.ColumnCount()
	if err != nil {
		return nil, fmt.Errorf("column count: %w", err)
	}
	headers, err := src.HeaderCount()
	if err != nil {
		return nil, fmt.Errorf("header count: %w", err)
	}

	raw := make([]string, n)
	if headers > 0 {
		if raw, err = src.Row(0); err != nil {
			return nil, fmt.Errorf("header row: %w", err)
		}
	}

	seen := map[string]bool{LoadIDColumn: true}
	names := make([]string, n)
	for i := range names {
		name := toColumnName(raw[i])
		if name == "" {
			name = "col_" + strconv.Itoa(i+1)
		}
		base := name
		for k := 2; seen[name]; k++ {
			name = base + "_" + strconv.Itoa(k)
		}
		seen[name] = true
		names[i] = name
	}
	return names, nil
}

// toColumnName lowercases s and turns every run of characters other than
// letters and digits into a single underscore.
func toColumnName(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if first, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(first) {
		name = "c_" + name
	}
	for len(name) > maxIdentLen {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return name
}

func columnTypes(columns []string, requested map[string]ColumnType) ([]ColumnType, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	types := make([]ColumnType, len(columns))
	for i := range types {
		types[i] = TypeText
	}
	for name, ct := range requested {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidType, name)
		}
		parsed, err := ParseColumnType(string(ct))
		if err != nil {
			return nil, err
		}
		types[i] = parsed
	}
	return types, nil
}

func createTableSQL(table pgx.Identifier, columns []string, types []ColumnType, ifNotExists bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(table.Sanitize())
	b.WriteString(" (")
	b.WriteString(pgx.Identifier{LoadIDColumn}.Sanitize())
	b.WriteString(" uuid NOT NULL")
	for i, c := range columns {
		b.WriteString(", ")
		b.WriteString(pgx.Identifier{c}.Sanitize())
		b.WriteString(" ")
		b.WriteString(string(types[i]))
	}
	b.WriteString(")")
	return b.String()
}

// rowSource streams data rows as a pgx.CopyFromSource.
type rowSource struct {
	src    Source
	next   int
	end    int
	loadID pgtype.UUID
	types  []ColumnType
	values []any
	err    error
}

func newRowSource(src Source, start, end int, loadID uuid.UUID, types []ColumnType) *rowSource {
	return &rowSource{
		src:    src,
		next:   start,
		end:    end,
		loadID: pgtype.UUID{Bytes: loadID, Valid: true},
		types:  types,
		values: make([]any, len(types)+1),
	}
}

func (s *rowSource) Next() bool {
	if s.err != nil || s.next >= s.end {
		return false
	}
	cells, err := s.src.Row(s.next)
	if err != nil {
		s.err = fmt.Errorf("row %d: %w", s.next, err)
		return false
	}
	if len(cells) != len(s.types) {
		s.err = fmt.Errorf("row %d has %d cells, want %d", s.next, len(cells), len(s.types))
		return false
	}
	s.values[0] = s.loadID
	for i, cell := range cells {
		s.values[i+1] = toValue(cell, s.types[i])
	}
	s.next++
	return true
}

func (s *rowSource) Values() ([]any, error) {
	return s.values, nil
}

func (s *rowSource) Err() error {
	return s.err
}

var _ pgx.CopyFromSource = (*rowSource)(nil)
