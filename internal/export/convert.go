package export

// convert.go turns stored text cells into PostgreSQL values for COPY.
//
// Cells never come out of the parser empty: an empty field is stored as "0",
// so text columns always hold a value. Bigint and double columns follow the
// parse-or-zero rules of matrix.Convert. Numeric and boolean columns store
// NULL for text they cannot read.

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/slightcsv/internal/matrix"
	"github.com/jackc/pgx/v5/pgtype"
)

// ColumnType is the PostgreSQL type of an exported column.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeBigint  ColumnType = "bigint"
	TypeDouble  ColumnType = "double precision"
	TypeNumeric ColumnType = "numeric"
	TypeBoolean ColumnType = "boolean"
)

// ParseColumnType accepts the SQL name or a short alias.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "string":
		return TypeText, nil
	case "bigint", "int", "int8", "integer":
		return TypeBigint, nil
	case "double precision", "double", "float8", "float":
		return TypeDouble, nil
	case "numeric", "decimal":
		return TypeNumeric, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// numericRegex validates a cleaned numeric cell.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// toValue converts a cell for a column of type ct.
func toValue(cell string, ct ColumnType) any {
	switch ct {
	case TypeBigint:
		return pgtype.Int8{Int64: matrix.Convert[int64](cell), Valid: true}
	case TypeDouble:
		return pgtype.Float8{Float64: matrix.Convert[float64](cell), Valid: true}
	case TypeNumeric:
		return toPgNumeric(cell)
	case TypeBoolean:
		return toPgBool(cell)
	default:
		return pgtype.Text{String: cell, Valid: true}
	}
}

// toPgNumeric reads a decimal with either '.' or ',' as the separator.
func toPgNumeric(s string) pgtype.Numeric {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// toPgBool accepts true/false, yes/no, t/f, y/n and 1/0.
func toPgBool(s string) pgtype.Bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return pgtype.Bool{Bool: true, Valid: true}
	case "false", "f", "no", "n", "0":
		return pgtype.Bool{Bool: false, Valid: true}
	default:
		return pgtype.Bool{Valid: false}
	}
}
