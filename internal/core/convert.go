package core

// convert.go selects the output type of cell reads made through the Service.
//
// The parser stores text only. Reads through the Service name a ValueType and
// receive string, int, float32 or float64 values. Conversion follows
// matrix.Convert: a comma decimal separator is accepted, a trailing unit is
// ignored and anything unparsable becomes zero.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/slightcsv/internal/matrix"
)

// ErrValueType is returned for an unknown value type name.
var ErrValueType = errors.New("invalid value type")

// ValueType names the type a cell is read as.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeInt    ValueType = "int"
	TypeFloat  ValueType = "float"
	TypeDouble ValueType = "double"
)

// ParseValueType parses a type name. The empty string selects TypeString.
func ParseValueType(s string) (ValueType, error) {
	switch vt := ValueType(strings.ToLower(strings.TrimSpace(s))); vt {
	case "":
		return TypeString, nil
	case TypeString, TypeInt, TypeFloat, TypeDouble:
		return vt, nil
	default:
		return "", fmt.Errorf("%w %q: use string, int, float or double", ErrValueType, s)
	}
}

// convertCell converts one cell to the Go type of vt.
func convertCell(cell string, vt ValueType) any {
	switch vt {
	case TypeInt:
		return matrix.Convert[int](cell)
	case TypeFloat:
		return matrix.Convert[float32](cell)
	case TypeDouble:
		return matrix.Convert[float64](cell)
	default:
		return cell
	}
}

// convertCells converts a slice of cells to a typed slice.
func convertCells(cells []string, vt ValueType) any {
	switch vt {
	case TypeInt:
		return matrix.ConvertAll[int](cells)
	case TypeFloat:
		return matrix.ConvertAll[float32](cells)
	case TypeDouble:
		return matrix.ConvertAll[float64](cells)
	default:
		return cells
	}
}
