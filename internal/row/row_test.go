package row

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/slightcsv/internal/u8char"
	"github.com/google/go-cmp/cmp"
)

func mustChar(t *testing.T, s string) u8char.Char {
	t.Helper()
	c, err := u8char.New(s)
	if err != nil {
		t.Fatalf("u8char.New(%q) error = %v", s, err)
	}
	return c
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		sep    string
		esc    string
		want   []string
		header bool
	}{
		{
			name:   "simple",
			input:  "this;is;a;test",
			sep:    ";",
			want:   []string{"this", "is", "a", "test"},
			header: true,
		},
		{
			name:   "trailing separator",
			input:  "this;is;a;test;",
			sep:    ";",
			want:   []string{"this", "is", "a", "test", "0"},
			header: true,
		},
		{
			name:   "only separator",
			input:  ";",
			sep:    ";",
			want:   []string{"0", "0"},
			header: true,
		},
		{
			name:   "empty fields in the middle",
			input:  "a;;b",
			sep:    ";",
			want:   []string{"a", "0", "b"},
			header: true,
		},
		{
			name:   "leading separator",
			input:  ";a",
			sep:    ";",
			want:   []string{"0", "a"},
			header: true,
		},
		{
			name:   "escaped separator kept",
			input:  "test,test,\"test,test\"",
			sep:    ",",
			esc:    "\"",
			want:   []string{"test", "test", "\"test,test\""},
			header: true,
		},
		{
			name:   "escape not configured",
			input:  "test,test,\"test,test\"",
			sep:    ",",
			want:   []string{"test", "test", "\"test", "test\""},
			header: true,
		},
		{
			name:   "unterminated escape runs to end of line",
			input:  "a,\"b,c",
			sep:    ",",
			esc:    "\"",
			want:   []string{"a", "\"b,c"},
			header: true,
		},
		{
			name:   "escaped trailing separator",
			input:  "a,\"b,",
			sep:    ",",
			esc:    "\"",
			want:   []string{"a", "\"b,"},
			header: true,
		},
		{
			name:   "numeric data",
			input:  "12;34.5;678",
			sep:    ";",
			want:   []string{"12", "34.5", "678"},
			header: false,
		},
		{
			name:   "multibyte separator",
			input:  "alma§körte§szilva",
			sep:    "§",
			want:   []string{"alma", "körte", "szilva"},
			header: true,
		},
		{
			name:   "multibyte content",
			input:  "árvíztűrő;tükörfúrógép",
			sep:    ";",
			want:   []string{"árvíztűrő", "tükörfúrógép"},
			header: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New()
			if err := tok.SetInput(tt.input); err != nil {
				t.Fatalf("SetInput error = %v", err)
			}
			if err := tok.SetSeparator(mustChar(t, tt.sep)); err != nil {
				t.Fatalf("SetSeparator error = %v", err)
			}
			if tt.esc != "" {
				if err := tok.SetEscape(mustChar(t, tt.esc)); err != nil {
					t.Fatalf("SetEscape error = %v", err)
				}
			}
			if err := tok.Process(); err != nil {
				t.Fatalf("Process error = %v", err)
			}

			cells, err := tok.Cells()
			if err != nil {
				t.Fatalf("Cells error = %v", err)
			}
			if diff := cmp.Diff(tt.want, cells); diff != "" {
				t.Errorf("Cells mismatch (-want +got):\n%s", diff)
			}

			n, err := tok.CellCount()
			if err != nil {
				t.Fatalf("CellCount error = %v", err)
			}
			if n != len(tt.want) {
				t.Errorf("CellCount = %d, want %d", n, len(tt.want))
			}

			header, err := tok.IsHeader()
			if err != nil {
				t.Fatalf("IsHeader error = %v", err)
			}
			if header != tt.header {
				t.Errorf("IsHeader = %v, want %v", header, tt.header)
			}
		})
	}
}

func TestHeaderThreshold(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abcdefghi1", true},  // exactly 10% digits
		{"abcdefgh12", false}, // 20% digits
		{"abcdefghijklmnopqrs1", true},
		{"name;age;city", true},
		{"Bob;42;Paris", false},
		{"0", false},
	}

	for _, tt := range tests {
		tok := New()
		tok.SetInput(tt.input)
		tok.SetSeparator(mustChar(t, ";"))
		if err := tok.Process(); err != nil {
			t.Fatalf("Process(%q) error = %v", tt.input, err)
		}
		got, _ := tok.IsHeader()
		if got != tt.want {
			t.Errorf("IsHeader(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestProcess_Errors(t *testing.T) {
	tok := New()
	if err := tok.Process(); !errors.Is(err, ErrInput) {
		t.Errorf("Process without input error = %v, want ErrInput", err)
	}

	if err := tok.SetInput("a;b"); err != nil {
		t.Fatalf("SetInput error = %v", err)
	}
	if err := tok.Process(); !errors.Is(err, ErrSeparator) {
		t.Errorf("Process without separator error = %v, want ErrSeparator", err)
	}

	tok.SetSeparator(mustChar(t, ";"))
	if err := tok.SetInput("a;\xC3"); err != nil {
		t.Fatalf("SetInput error = %v", err)
	}
	if err := tok.Process(); !errors.Is(err, u8char.ErrFormat) {
		t.Errorf("Process truncated input error = %v, want u8char.ErrFormat", err)
	}
}

func TestSetters(t *testing.T) {
	tok := New()

	if err := tok.SetInput(""); !errors.Is(err, ErrInput) {
		t.Errorf("SetInput(\"\") error = %v, want ErrInput", err)
	}
	if _, err := tok.Input(); !errors.Is(err, ErrInput) {
		t.Errorf("Input error = %v, want ErrInput", err)
	}
	if err := tok.SetSeparator(u8char.Char{}); !errors.Is(err, ErrSeparator) {
		t.Errorf("SetSeparator(empty) error = %v, want ErrSeparator", err)
	}
	if _, err := tok.Separator(); !errors.Is(err, ErrSeparator) {
		t.Errorf("Separator error = %v, want ErrSeparator", err)
	}
	if err := tok.SetEscape(u8char.Char{}); !errors.Is(err, ErrEscape) {
		t.Errorf("SetEscape(empty) error = %v, want ErrEscape", err)
	}
	if _, err := tok.Escape(); !errors.Is(err, ErrEscape) {
		t.Errorf("Escape error = %v, want ErrEscape", err)
	}

	tok.SetInput("x")
	tok.SetSeparator(mustChar(t, ","))
	tok.SetEscape(mustChar(t, "'"))
	if in, _ := tok.Input(); in != "x" {
		t.Errorf("Input = %q, want %q", in, "x")
	}
	if sep, _ := tok.Separator(); sep.String() != "," {
		t.Errorf("Separator = %q, want %q", sep.String(), ",")
	}
	if esc, _ := tok.Escape(); esc.String() != "'" {
		t.Errorf("Escape = %q, want %q", esc.String(), "'")
	}
}

func TestResultsInvalidated(t *testing.T) {
	tok := New()
	tok.SetInput("a;b")
	tok.SetSeparator(mustChar(t, ";"))
	if err := tok.Process(); err != nil {
		t.Fatalf("Process error = %v", err)
	}

	changes := []struct {
		name  string
		apply func()
	}{
		{"input", func() { tok.SetInput("c;d") }},
		{"separator", func() { tok.SetSeparator(mustChar(t, ",")) }},
		{"escape", func() { tok.SetEscape(mustChar(t, "\"")) }},
	}

	for _, ch := range changes {
		if err := tok.Process(); err != nil {
			t.Fatalf("Process error = %v", err)
		}
		ch.apply()
		if _, err := tok.Cells(); !errors.Is(err, ErrProcess) {
			t.Errorf("after changing %s, Cells error = %v, want ErrProcess", ch.name, err)
		}
		if _, err := tok.CellCount(); !errors.Is(err, ErrProcess) {
			t.Errorf("after changing %s, CellCount error = %v, want ErrProcess", ch.name, err)
		}
		if _, err := tok.IsHeader(); !errors.Is(err, ErrProcess) {
			t.Errorf("after changing %s, IsHeader error = %v, want ErrProcess", ch.name, err)
		}
	}
}

func TestClearAndReset(t *testing.T) {
	tok := New()
	tok.SetInput("a;b")
	tok.SetSeparator(mustChar(t, ";"))
	tok.SetEscape(mustChar(t, "\""))
	if err := tok.Process(); err != nil {
		t.Fatalf("Process error = %v", err)
	}

	tok.Clear()
	if _, err := tok.Input(); !errors.Is(err, ErrInput) {
		t.Errorf("after Clear, Input error = %v, want ErrInput", err)
	}
	if _, err := tok.Cells(); !errors.Is(err, ErrProcess) {
		t.Errorf("after Clear, Cells error = %v, want ErrProcess", err)
	}
	if _, err := tok.Separator(); err != nil {
		t.Errorf("after Clear, Separator error = %v", err)
	}
	if _, err := tok.Escape(); err != nil {
		t.Errorf("after Clear, Escape error = %v", err)
	}

	tok.Reset()
	if _, err := tok.Separator(); !errors.Is(err, ErrSeparator) {
		t.Errorf("after Reset, Separator error = %v, want ErrSeparator", err)
	}
	if _, err := tok.Escape(); !errors.Is(err, ErrEscape) {
		t.Errorf("after Reset, Escape error = %v, want ErrEscape", err)
	}
}

func TestCellsReturnsCopy(t *testing.T) {
	tok := New()
	tok.SetInput("a;b")
	tok.SetSeparator(mustChar(t, ";"))
	tok.Process()

	cells, _ := tok.Cells()
	cells[0] = "changed"

	again, _ := tok.Cells()
	if again[0] != "a" {
		t.Errorf("Cells()[0] = %q after caller mutation, want %q", again[0], "a")
	}
}
