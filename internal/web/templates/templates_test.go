package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/slightcsv/internal/core"
	"github.com/google/uuid"
)

func TestDatasetPreview(t *testing.T) {
	pv := core.Preview{
		Info: core.DatasetInfo{
			ID:       uuid.New(),
			Name:     "parts <2024>",
			File:     "parts.csv",
			Rows:     4,
			Columns:  2,
			Headers:  1,
			Settings: core.Settings{Separator: ";"},
		},
		Headers:   [][]string{{"name", "qty"}},
		Rows:      [][]string{{"<script>", "12"}, {"nut", "40"}},
		Truncated: true,
	}

	var buf bytes.Buffer
	if err := DatasetPreview(pv).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>parts &lt;2024&gt;</title>",
		"<th>name</th>",
		"<td>&lt;script&gt;</td>",
		"<th>2</th>",
		"Showing 2 of 3 data rows.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("cell content not escaped")
	}
}

func TestDatasetList(t *testing.T) {
	id := uuid.New()
	var buf bytes.Buffer
	err := DatasetList([]core.DatasetInfo{{ID: id, Name: "a.csv", File: "in/a.csv", Rows: 3, LoadedAt: time.Now()}}).
		Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render error = %v", err)
	}
	if !strings.Contains(buf.String(), `href="/datasets/`+id.String()+`"`) {
		t.Errorf("output missing dataset link: %s", buf.String())
	}

	buf.Reset()
	if err := DatasetList(nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error = %v", err)
	}
	if !strings.Contains(buf.String(), "No datasets loaded") {
		t.Errorf("output missing empty state: %s", buf.String())
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorPage("Dataset not found", "Load it again", "DATA002").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error = %v", err)
	}
	for _, want := range []string{"Dataset not found", "Load it again", "Code: DATA002"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}
