package core

import (
	"io"
	"strings"
	"testing"
)

func TestCountingReader(t *testing.T) {
	input := "name;qty\napple;3\n"
	reader := NewCountingReader(strings.NewReader(input), int64(len(input)))

	buf := make([]byte, 4)
	if _, err := reader.Read(buf); err != nil {
		t.Fatalf("Read error = %v", err)
	}
	if reader.BytesRead != 4 {
		t.Errorf("BytesRead = %d, want 4", reader.BytesRead)
	}
	if got := reader.Progress(); got != 4*100/len(input) {
		t.Errorf("Progress = %d, want %d", got, 4*100/len(input))
	}

	if _, err := io.ReadAll(reader); err != nil {
		t.Fatalf("ReadAll error = %v", err)
	}
	if reader.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", reader.BytesRead, len(input))
	}
	if got := reader.Progress(); got != 100 {
		t.Errorf("Progress = %d, want 100", got)
	}
}

func TestCountingReader_UnknownTotal(t *testing.T) {
	reader := NewCountingReader(strings.NewReader("abc"), 0)
	io.ReadAll(reader)
	if got := reader.Progress(); got != 0 {
		t.Errorf("Progress = %d, want 0 for unknown total", got)
	}
}

func TestWrapForLoad(t *testing.T) {
	br, counter := wrapForLoad(strings.NewReader("a;b"), 3)
	var got []byte
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadByte error = %v", err)
		}
		got = append(got, b)
	}
	if string(got) != "a;b" {
		t.Errorf("bytes = %q, want %q", got, "a;b")
	}
	if counter.BytesRead != 3 {
		t.Errorf("BytesRead = %d, want 3", counter.BytesRead)
	}
}
