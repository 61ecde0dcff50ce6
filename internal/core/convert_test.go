package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ----------------------------------------------------------------------------
// ParseValueType Tests
// ----------------------------------------------------------------------------

func TestParseValueType(t *testing.T) {
	tests := []struct {
		input   string
		want    ValueType
		wantErr bool
	}{
		{"", TypeString, false},
		{"string", TypeString, false},
		{"INT", TypeInt, false},
		{" float ", TypeFloat, false},
		{"double", TypeDouble, false},
		{"decimal", "", true},
	}

	for _, tt := range tests {
		got, err := ParseValueType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseValueType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseValueType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// convertCell / convertCells Tests
// ----------------------------------------------------------------------------

func TestConvertCell(t *testing.T) {
	tests := []struct {
		cell string
		vt   ValueType
		want any
	}{
		{"12,5", TypeString, "12,5"},
		{"12,5", TypeInt, 12},
		{"12,5", TypeFloat, float32(12.5)},
		{"12,5", TypeDouble, 12.5},
		{"n/a", TypeDouble, 0.0},
		{"0", TypeInt, 0},
	}

	for _, tt := range tests {
		if got := convertCell(tt.cell, tt.vt); got != tt.want {
			t.Errorf("convertCell(%q, %s) = %v (%T), want %v (%T)", tt.cell, tt.vt, got, got, tt.want, tt.want)
		}
	}
}

func TestConvertCells(t *testing.T) {
	cells := []string{"1", "2.5", "x"}

	if diff := cmp.Diff([]int{1, 2, 0}, convertCells(cells, TypeInt)); diff != "" {
		t.Errorf("int mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{1, 2.5, 0}, convertCells(cells, TypeFloat)); diff != "" {
		t.Errorf("float mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2.5, 0}, convertCells(cells, TypeDouble)); diff != "" {
		t.Errorf("double mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cells, convertCells(cells, TypeString)); diff != "" {
		t.Errorf("string mismatch (-want +got):\n%s", diff)
	}
}
