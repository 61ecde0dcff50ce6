package matrix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConvert_Float(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{"12,5", 12.5},
		{" 7 ", 7},
		{"-3.25", -3.25},
		{"1e3", 1000},
		{"12.5kg", 12.5},
		{".5", 0.5},
		{"abc", 0},
		{"", 0},
		{"0", 0},
		{"1e999", 0},
	}

	for _, tt := range tests {
		if got := Convert[float64](tt.in); got != tt.want {
			t.Errorf("Convert[float64](%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvert_Float32(t *testing.T) {
	if got := Convert[float32]("2,5"); got != 2.5 {
		t.Errorf("Convert[float32](\"2,5\") = %v, want 2.5", got)
	}
	if got := Convert[float32]("1e50"); got != 0 {
		t.Errorf("Convert[float32](\"1e50\") = %v, want 0", got)
	}
}

func TestConvert_Int(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"42", 42},
		{"-17", -17},
		{"3.9", 3},
		{"3,9", 3},
		{"-3.9", -3},
		{"15 pcs", 15},
		{"x15", 0},
		{"", 0},
		{"99999999999999999999", 0},
	}

	for _, tt := range tests {
		if got := Convert[int](tt.in); got != tt.want {
			t.Errorf("Convert[int](%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvert_String(t *testing.T) {
	if got := Convert[string]("12,5"); got != "12,5" {
		t.Errorf("Convert[string] = %q, want %q", got, "12,5")
	}
}

func TestCellAs(t *testing.T) {
	m := New()
	m.SetColumnCount(2)
	m.AddCells([]string{"name", "price", "apple", "1,25", "pear", "0"})

	price, err := CellAs[float64](m, 1, 1)
	if err != nil {
		t.Fatalf("CellAs error = %v", err)
	}
	if price != 1.25 {
		t.Errorf("CellAs[float64](1, 1) = %v, want 1.25", price)
	}

	header, err := CellAs[float64](m, 0, 1)
	if err != nil {
		t.Fatalf("CellAs error = %v", err)
	}
	if header != 0 {
		t.Errorf("CellAs[float64](0, 1) = %v, want 0", header)
	}

	if _, err := CellAs[int](m, 3, 0); err == nil {
		t.Error("CellAs out of range returned nil error")
	}
}

func TestColumnAs(t *testing.T) {
	m := New()
	m.SetColumnCount(2)
	m.AddCells([]string{"qty", "unit", "1", "kg", "2,5", "kg", "x", "kg"})

	got, err := ColumnAs[float64](m, 0, 1, 3)
	if err != nil {
		t.Fatalf("ColumnAs error = %v", err)
	}
	if diff := cmp.Diff([]float64{1, 2.5, 0}, got); diff != "" {
		t.Errorf("ColumnAs mismatch (-want +got):\n%s", diff)
	}

	if _, err := ColumnAs[int](m, 0, 2, 5); err == nil {
		t.Error("ColumnAs overflow returned nil error")
	}
}
