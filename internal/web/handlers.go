package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/slightcsv/internal/core"
	"github.com/JonMunkholm/slightcsv/internal/export"
	"github.com/JonMunkholm/slightcsv/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string                 `json:"status"`
	Datasets int                    `json:"datasets"`
	Loads    core.LoadLimiterStatus `json:"loads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Datasets: len(s.service.List()),
		Loads:    s.service.LimiterStatus(),
	})
}

// handleIndex renders the dataset list page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderHTML(w, r, templates.DatasetList(s.service.List()))
}

// handlePreview renders the first rows of a dataset.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	limit, err := queryInt(r, "rows", s.cfg.Load.PreviewRows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	pv, err := s.service.Preview(id, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderHTML(w, r, templates.DatasetPreview(pv))
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.List())
}

// handleLoadDataset loads a file from the data directory.
func (s *Server) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	var req core.LoadRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	info, err := s.service.Load(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/datasets/"+info.ID.String())
	s.writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	info, err := s.service.Get(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRemoveDataset(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.Remove(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReloadDataset(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	info, err := s.service.Reload(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// headersRequest is the body of PUT /api/datasets/{id}/headers.
type headersRequest struct {
	Count *int `json:"count"`
}

func (s *Server) handleSetHeaders(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req headersRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Count == nil {
		s.respondError(w, r, fmt.Errorf("%w: count is required", core.ErrBadRequest))
		return
	}
	info, err := s.service.SetHeaderCount(id, *req.Count)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// CellResponse is the body of a cell read.
type CellResponse struct {
	Row   int            `json:"row"`
	Col   int            `json:"col"`
	Type  core.ValueType `json:"type"`
	Value any            `json:"value"`
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	row, err := pathInt(r, "row")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	col, err := pathInt(r, "col")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	vt, err := core.ParseValueType(r.URL.Query().Get("type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	v, err := s.service.Cell(id, row, col, vt)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CellResponse{Row: row, Col: col, Type: vt, Value: v})
}

// SliceResponse is the body of a row or column read.
type SliceResponse struct {
	Index  int            `json:"index"`
	Start  int            `json:"start"`
	Type   core.ValueType `json:"type"`
	Values any            `json:"values"`
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	s.handleSlice(w, r, "row", s.service.Row)
}

func (s *Server) handleColumn(w http.ResponseWriter, r *http.Request) {
	s.handleSlice(w, r, "col", s.service.Column)
}

// handleSlice serves row and column reads, which differ only in the
// service call.
func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request, param string,
	read func(uuid.UUID, int, core.Range, core.ValueType) (any, error)) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	index, err := pathInt(r, param)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	rng, err := queryRange(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	vt, err := core.ParseValueType(r.URL.Query().Get("type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	values, err := read(id, index, rng, vt)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SliceResponse{Index: index, Start: rng.Start, Type: vt, Values: values})
}

// exportRequest is the body of POST /api/datasets/{id}/export.
type exportRequest struct {
	Table  string            `json:"table"`
	Schema string            `json:"schema,omitempty"`
	Append bool              `json:"append,omitempty"`
	Types  map[string]string `json:"types,omitempty"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req exportRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := export.Options{
		Table:  req.Table,
		Schema: req.Schema,
		Append: req.Append,
		Types:  make(map[string]export.ColumnType, len(req.Types)),
	}
	if opts.Schema == "" {
		opts.Schema = s.cfg.Database.ExportSchema
	}
	for col, name := range req.Types {
		ct, err := export.ParseColumnType(name)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		opts.Types[col] = ct
	}

	res, err := s.service.Export(r.Context(), id, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// renderHTML renders a page component.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.logger.Error("render page", "path", r.URL.Path, "error", err)
	}
}

// datasetID parses the {id} path parameter. A malformed id is reported as
// an unknown dataset.
func datasetID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", core.ErrDatasetNotFound, raw)
	}
	return id, nil
}

// pathInt parses a non-negative integer path parameter.
func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s %q is not a non-negative integer", core.ErrBadRequest, name, raw)
	}
	return n, nil
}

// queryInt parses an integer query parameter with a default value.
func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", core.ErrBadRequest, name, raw)
	}
	return n, nil
}

// queryRange reads ?start= and ?count=. A missing count reads to the end.
func queryRange(r *http.Request) (core.Range, error) {
	start, err := queryInt(r, "start", 0)
	if err != nil {
		return core.Range{}, err
	}
	if start < 0 {
		return core.Range{}, fmt.Errorf("%w: start %d is negative", core.ErrBadRequest, start)
	}
	if r.URL.Query().Get("count") == "" {
		return core.Range{Start: start, Count: core.ToEnd}, nil
	}
	count, err := queryInt(r, "count", 0)
	if err != nil {
		return core.Range{}, err
	}
	if count < 0 {
		return core.Range{}, fmt.Errorf("%w: count %d is negative", core.ErrBadRequest, count)
	}
	return core.Range{Start: start, Count: count}, nil
}

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrBadRequest, err)
	}
	return nil
}
