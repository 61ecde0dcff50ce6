package core

// errors.go defines the error taxonomy of the parser.
//
// Every failure carries exactly one Kind so callers can tell which setting or
// stage went wrong. Match a kind with errors.Is against the sentinel values
// (errors.Is(err, core.ErrIndex)) or extract it with KindOf.

import (
	"errors"
	"fmt"
)

// Kind classifies a parser error.
type Kind int

const (
	KindUnknown Kind = iota
	KindFilename
	KindSeparator
	KindEscape
	KindStrip
	KindReplace
	KindEncoding
	KindFormatCellCount
	KindFormatHeader
	KindData
	KindIndex
	KindRead
)

var kindText = map[Kind]string{
	KindUnknown:         "unknown error",
	KindFilename:        "filename is not defined, empty or cannot be opened",
	KindSeparator:       "separator is not defined or not a single character",
	KindEscape:          "escape character is not defined or not a single character",
	KindStrip:           "strip characters are not defined or not single characters",
	KindReplace:         "replace characters are not defined or not single characters",
	KindEncoding:        "encoding error: malformed utf-8 sequence",
	KindFormatCellCount: "invalid csv: cell count does not match column count",
	KindFormatHeader:    "invalid csv: header row after data rows",
	KindData:            "no data loaded",
	KindIndex:           "index out of range",
	KindRead:            "read failed",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by Parser.
type Error struct {
	Kind Kind
	Op   string // operation that failed, empty for sentinels
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := "slightcsv: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind when the target is a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrFilename        = &Error{Kind: KindFilename}
	ErrSeparator       = &Error{Kind: KindSeparator}
	ErrEscape          = &Error{Kind: KindEscape}
	ErrStrip           = &Error{Kind: KindStrip}
	ErrReplace         = &Error{Kind: KindReplace}
	ErrEncoding        = &Error{Kind: KindEncoding}
	ErrFormatCellCount = &Error{Kind: KindFormatCellCount}
	ErrFormatHeader    = &Error{Kind: KindFormatHeader}
	ErrData            = &Error{Kind: KindData}
	ErrIndex           = &Error{Kind: KindIndex}
	ErrRead            = &Error{Kind: KindRead}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
