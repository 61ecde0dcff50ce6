// Package core provides CSV loading and the dataset service.
//
// This package holds all domain logic independent of any transport layer.
// It can be used by web handlers, CLI tools, or tests without modification.
//
// # Parser
//
// A [Parser] streams one file byte by byte. Every byte is decoded into a
// UTF-8 character; configured strip characters are dropped, the escape
// character toggles an escaped state in which separators and line breaks are
// literal, and replacement pairs are applied before the character is added
// to the current line. Complete lines are split by a row tokenizer and
// appended to a flat row-major matrix:
//
//	p := core.NewParser()
//	p.SetFilename("prices.csv")
//	p.SetSeparator(";")
//	p.SetEscape(`"`)
//	if _, err := p.Load(); err != nil {
//	    return err
//	}
//	price, err := core.CellAs[float64](p, 1, 2)
//
// The first line fixes the column count and an initial capacity estimate.
// Leading lines with few digits are counted as header rows; a header-like
// line after data rows fails the load. A failed load keeps nothing.
//
// # Service
//
// [Service] manages named datasets loaded from a data directory. Loads are
// bounded by a [LoadLimiter] and a timeout. Datasets can be reloaded,
// read as typed values, previewed and exported to PostgreSQL.
//
// # Error Handling
//
// Parser errors are [*Error] values carrying a [Kind]; compare them with
// errors.Is against the sentinels such as [ErrFormatCellCount]. Technical
// errors are mapped to user-friendly messages using [MapError]. Each error
// category has a unique code for support reference:
//
//   - CFG001-CFG006: Configuration errors (filename, separator, escape)
//   - CSV001-CSV002: Format errors (cell count, header position)
//   - FILE001-FILE006: File errors (size, encoding, path, empty)
//   - DATA001-DATA002, IDX001: Data access errors
//   - LOAD001-LOAD003: Load errors (busy, cancelled, timeout)
//   - EXP001-EXP004: Export errors
package core
