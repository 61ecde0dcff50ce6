// Package templates renders the HTML pages of the dataset browser.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/slightcsv/internal/core"
	"github.com/a-h/templ"
)

const style = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;font-size:14px}
th,td{border:1px solid #d1d5db;padding:4px 8px;text-align:left;white-space:pre}
thead th{background:#f3f4f6}
.meta{color:#6b7280;margin-bottom:1rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:4px}
.code{font-family:monospace;color:#991b1b}`

// writer collects the first write error so components can render in
// straight-line code.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

// layout wraps body in the page skeleton.
func layout(title string, body func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>")
		w.text(title)
		w.raw("</title><style>")
		w.raw(style)
		w.raw("</style></head><body>")
		body(w)
		w.raw("</body></html>")
		return w.err
	})
}

// DatasetList renders the index of loaded datasets.
func DatasetList(datasets []core.DatasetInfo) templ.Component {
	return layout("Datasets", func(w *writer) {
		w.raw("<h1>Datasets</h1>")
		if len(datasets) == 0 {
			w.raw("<p class=\"meta\">No datasets loaded. POST a file to /api/datasets.</p>")
			return
		}
		w.raw("<table><thead><tr><th>Name</th><th>File</th><th>Rows</th><th>Columns</th><th>Headers</th><th>Loaded</th></tr></thead><tbody>")
		for _, d := range datasets {
			w.raw("<tr><td><a href=\"/datasets/")
			w.text(d.ID.String())
			w.raw("\">")
			w.text(d.Name)
			w.raw("</a></td><td>")
			w.text(d.File)
			w.raw("</td><td>")
			w.text(strconv.Itoa(d.Rows))
			w.raw("</td><td>")
			w.text(strconv.Itoa(d.Columns))
			w.raw("</td><td>")
			w.text(strconv.Itoa(d.Headers))
			w.raw("</td><td>")
			w.text(d.LoadedAt.Format("2006-01-02 15:04:05"))
			w.raw("</td></tr>")
		}
		w.raw("</tbody></table>")
	})
}

// DatasetPreview renders the header rows and first data rows of a dataset.
func DatasetPreview(pv core.Preview) templ.Component {
	return layout(pv.Info.Name, func(w *writer) {
		w.raw("<p><a href=\"/\">All datasets</a></p><h1>")
		w.text(pv.Info.Name)
		w.raw("</h1><p class=\"meta\">")
		w.text(fmt.Sprintf("%s: %d rows, %d columns, %d header rows, separator %q",
			pv.Info.File, pv.Info.Rows, pv.Info.Columns, pv.Info.Headers, pv.Info.Settings.Separator))
		w.raw("</p><table>")
		if len(pv.Headers) > 0 {
			w.raw("<thead>")
			for _, row := range pv.Headers {
				cells(w, "th", -1, row)
			}
			w.raw("</thead>")
		}
		w.raw("<tbody>")
		for i, row := range pv.Rows {
			cells(w, "td", pv.Info.Headers+i, row)
		}
		w.raw("</tbody></table>")
		if pv.Truncated {
			w.raw("<p class=\"meta\">")
			w.text(fmt.Sprintf("Showing %d of %d data rows.", len(pv.Rows), pv.Info.Rows-pv.Info.Headers))
			w.raw("</p>")
		}
	})
}

// cells writes one table row. A non-negative index adds a row number cell.
func cells(w *writer, tag string, index int, row []string) {
	w.raw("<tr>")
	if index >= 0 {
		w.raw("<th>")
		w.text(strconv.Itoa(index))
		w.raw("</th>")
	} else {
		w.raw("<th></th>")
	}
	for _, c := range row {
		w.raw("<" + tag + ">")
		w.text(c)
		w.raw("</" + tag + ">")
	}
	w.raw("</tr>")
}

// ErrorPage renders a user-facing error.
func ErrorPage(message, action, code string) templ.Component {
	return layout("Error", func(w *writer) {
		w.raw("<div class=\"alert\"><strong>")
		w.text(message)
		w.raw("</strong>")
		if action != "" {
			w.raw("<p>")
			w.text(action)
			w.raw("</p>")
		}
		w.raw("<p class=\"code\">Code: ")
		w.text(code)
		w.raw("</p></div><p><a href=\"/\">Back to datasets</a></p>")
	})
}
