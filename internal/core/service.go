package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/slightcsv/internal/export"
	"github.com/google/uuid"
)

var (
	ErrDatasetNotFound   = errors.New("dataset not found")
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidPath       = errors.New("path outside data directory")
	ErrNoRows            = errors.New("file contains no rows")
	ErrExportUnavailable = errors.New("export not configured")
)

// DefaultLoadTimeout bounds a single load when ServiceConfig leaves it unset.
const DefaultLoadTimeout = 10 * time.Minute

// Exporter copies a dataset into a database. *export.Exporter implements it.
type Exporter interface {
	Export(ctx context.Context, src export.Source, opts export.Options) (export.Result, error)
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	DataDir            string        // root for every loaded file
	MaxFileSize        int64         // bytes, 0 for no limit
	MaxConcurrentLoads int           // 0 selects DefaultMaxConcurrentLoads
	MaxLoadWait        time.Duration // 0 selects DefaultMaxLoadWait
	LoadTimeout        time.Duration // 0 selects DefaultLoadTimeout
	Defaults           Settings      // parser settings used when a request leaves a field empty
}

// Service manages loaded datasets. Each dataset owns one Parser guarded by
// its own mutex, so reads on different datasets run in parallel.
type Service struct {
	cfg      ServiceConfig
	limiter  *LoadLimiter
	exporter Exporter
	logger   *slog.Logger

	mu       sync.RWMutex
	datasets map[uuid.UUID]*dataset
}

type dataset struct {
	mu       sync.Mutex
	id       uuid.UUID
	name     string
	file     string
	parser   *Parser
	loadedAt time.Time
}

// LoadRequest describes a file to load.
type LoadRequest struct {
	File        string   `json:"file"`                   // path relative to the data directory
	Name        string   `json:"name,omitempty"`         // display name, the file name when empty
	Settings    Settings `json:"settings"`               // merged over the service defaults
	HeaderCount *int     `json:"header_count,omitempty"` // overrides detection when set
}

// DatasetInfo describes a loaded dataset.
type DatasetInfo struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	File     string    `json:"file"`
	Settings Settings  `json:"settings"`
	Loaded   bool      `json:"loaded"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	Headers  int       `json:"headers"`
	Bytes    int64     `json:"bytes"`
	LoadedAt time.Time `json:"loaded_at"`
	LoadMS   int64     `json:"load_ms"`
}

// ToEnd as a Range count reads from Start to the end of the row or column.
const ToEnd = -1

// Range selects part of a row or column. Count is ToEnd or the number of
// cells to read; any other negative count is an index error.
type Range struct {
	Start int
	Count int
}

// All is the Range covering a whole row or column.
var All = Range{Start: 0, Count: ToEnd}

// NewService creates a Service. The data directory must exist.
func NewService(cfg ServiceConfig, logger *slog.Logger) (*Service, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	dir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dir)
	}
	cfg.DataDir = dir
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:      cfg,
		limiter:  NewLoadLimiter(cfg.MaxConcurrentLoads, cfg.MaxLoadWait),
		logger:   logger,
		datasets: make(map[uuid.UUID]*dataset),
	}, nil
}

// SetExporter enables Export. A nil exporter disables it.
func (s *Service) SetExporter(e Exporter) {
	s.mu.Lock()
	s.exporter = e
	s.mu.Unlock()
}

// DataDir returns the absolute data directory.
func (s *Service) DataDir() string {
	return s.cfg.DataDir
}

// Load reads a file from the data directory into a new dataset.
func (s *Service) Load(ctx context.Context, req LoadRequest) (DatasetInfo, error) {
	path, err := s.resolvePath(req.File)
	if err != nil {
		return DatasetInfo{}, err
	}
	if err := s.checkFile(path); err != nil {
		return DatasetInfo{}, err
	}

	p := NewParser().WithLogger(s.logger)
	if err := p.SetFilename(path); err != nil {
		return DatasetInfo{}, err
	}
	if err := p.Apply(req.Settings.Merge(s.cfg.Defaults)); err != nil {
		return DatasetInfo{}, err
	}

	if err := s.load(ctx, p); err != nil {
		return DatasetInfo{}, err
	}
	if req.HeaderCount != nil {
		if err := p.SetHeaderCount(*req.HeaderCount); err != nil {
			return DatasetInfo{}, err
		}
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(path)
	}
	ds := &dataset{
		id:       uuid.New(),
		name:     name,
		file:     req.File,
		parser:   p,
		loadedAt: time.Now(),
	}

	s.mu.Lock()
	s.datasets[ds.id] = ds
	s.mu.Unlock()

	info := ds.info()
	loggerFor(ctx, s.logger).Info("dataset loaded",
		"dataset_id", ds.id,
		"file", req.File,
		"rows", info.Rows,
		"columns", info.Columns,
	)
	return info, nil
}

// load runs one parser load under a limiter slot and the load timeout.
func (s *Service) load(ctx context.Context, p *Parser) error {
	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LoadTimeout)
	defer cancel()

	if _, err := p.LoadContext(ctx); err != nil {
		return err
	}
	if !p.Loaded() {
		return ErrNoRows
	}
	return nil
}

// resolvePath maps a request path to a file inside the data directory.
func (s *Service) resolvePath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", newError(KindFilename, "load", nil)
	}
	rel := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}
	return filepath.Join(s.cfg.DataDir, rel), nil
}

func (s *Service) checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return newError(KindFilename, "load", err)
	}
	if info.IsDir() {
		return newError(KindFilename, "load", fmt.Errorf("%s is a directory", filepath.Base(path)))
	}
	if s.cfg.MaxFileSize > 0 && info.Size() > s.cfg.MaxFileSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, info.Size(), s.cfg.MaxFileSize)
	}
	return nil
}

func (s *Service) get(id uuid.UUID) (*dataset, error) {
	s.mu.RLock()
	ds, ok := s.datasets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// Get returns the dataset with the given id.
func (s *Service) Get(id uuid.UUID) (DatasetInfo, error) {
	ds, err := s.get(id)
	if err != nil {
		return DatasetInfo{}, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.info(), nil
}

// List returns every dataset, oldest first.
func (s *Service) List() []DatasetInfo {
	s.mu.RLock()
	all := make([]*dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		all = append(all, ds)
	}
	s.mu.RUnlock()

	infos := make([]DatasetInfo, 0, len(all))
	for _, ds := range all {
		ds.mu.Lock()
		infos = append(infos, ds.info())
		ds.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].LoadedAt.Equal(infos[j].LoadedAt) {
			return infos[i].LoadedAt.Before(infos[j].LoadedAt)
		}
		return infos[i].ID.String() < infos[j].ID.String()
	})
	return infos
}

// Reload reads the dataset file again with unchanged settings. Header
// detection runs again, so an earlier header override is dropped. A failed
// reload leaves the dataset registered without data.
func (s *Service) Reload(ctx context.Context, id uuid.UUID) (DatasetInfo, error) {
	ds, err := s.get(id)
	if err != nil {
		return DatasetInfo{}, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	filename, err := ds.parser.Filename()
	if err != nil {
		return DatasetInfo{}, err
	}
	if err := s.checkFile(filename); err != nil {
		ds.parser.discard()
		return DatasetInfo{}, err
	}
	if err := s.load(ctx, ds.parser); err != nil {
		return DatasetInfo{}, err
	}
	ds.loadedAt = time.Now()

	info := ds.info()
	loggerFor(ctx, s.logger).Info("dataset reloaded", "dataset_id", id, "rows", info.Rows)
	return info, nil
}

// Remove drops a dataset.
func (s *Service) Remove(id uuid.UUID) error {
	s.mu.Lock()
	ds, ok := s.datasets[id]
	delete(s.datasets, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}

	ds.mu.Lock()
	ds.parser.Reset()
	ds.mu.Unlock()
	s.logger.Info("dataset removed", "dataset_id", id)
	return nil
}

// SetHeaderCount overrides the header count of a dataset.
func (s *Service) SetHeaderCount(id uuid.UUID, n int) (DatasetInfo, error) {
	ds, err := s.get(id)
	if err != nil {
		return DatasetInfo{}, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if err := ds.parser.SetHeaderCount(n); err != nil {
		return DatasetInfo{}, err
	}
	return ds.info(), nil
}

// Cell returns one cell converted to vt.
func (s *Service) Cell(id uuid.UUID, row, col int, vt ValueType) (any, error) {
	ds, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	cell, err := ds.parser.Cell(row, col)
	if err != nil {
		return nil, err
	}
	return convertCell(cell, vt), nil
}

// Row returns part of a row converted to vt.
func (s *Service) Row(id uuid.UUID, row int, r Range, vt ValueType) (any, error) {
	ds, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	count := r.Count
	if count == ToEnd {
		count = ds.parser.data.ColumnCount() - r.Start
	}
	cells, err := ds.parser.RowRange(row, r.Start, count)
	if err != nil {
		return nil, err
	}
	return convertCells(cells, vt), nil
}

// Column returns part of a column converted to vt. Header rows are included.
func (s *Service) Column(id uuid.UUID, col int, r Range, vt ValueType) (any, error) {
	ds, err := s.get(id)
	if err != nil {
		return nil, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	count := r.Count
	if count == ToEnd {
		count = ds.parser.data.RowCount() - r.Start
	}
	cells, err := ds.parser.ColumnRange(col, r.Start, count)
	if err != nil {
		return nil, err
	}
	return convertCells(cells, vt), nil
}

// Preview is the first rows of a dataset split into header and data rows.
type Preview struct {
	Info      DatasetInfo
	Headers   [][]string
	Rows      [][]string
	Truncated bool
}

// Preview returns the header rows and up to limit data rows. A negative limit
// returns every row.
func (s *Service) Preview(id uuid.UUID, limit int) (Preview, error) {
	ds, err := s.get(id)
	if err != nil {
		return Preview{}, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	pv := Preview{Info: ds.info()}
	if !pv.Info.Loaded {
		return pv, newError(KindData, "preview", nil)
	}
	end := pv.Info.Rows
	if limit >= 0 && limit < end-pv.Info.Headers {
		end = pv.Info.Headers + limit
		pv.Truncated = true
	}
	for i := 0; i < end; i++ {
		cells, err := ds.parser.data.Row(i)
		if err != nil {
			return Preview{}, readError("preview", err)
		}
		if i < pv.Info.Headers {
			pv.Headers = append(pv.Headers, cells)
		} else {
			pv.Rows = append(pv.Rows, cells)
		}
	}
	return pv, nil
}

// Export copies a dataset into the configured database.
func (s *Service) Export(ctx context.Context, id uuid.UUID, opts export.Options) (export.Result, error) {
	s.mu.RLock()
	exp := s.exporter
	s.mu.RUnlock()
	if exp == nil {
		return export.Result{}, ErrExportUnavailable
	}

	ds, err := s.get(id)
	if err != nil {
		return export.Result{}, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.parser.Loaded() {
		return export.Result{}, newError(KindData, "export", nil)
	}

	res, err := exp.Export(ctx, ds.parser, opts)
	if err != nil {
		loggerFor(ctx, s.logger).Error("dataset export failed", "dataset_id", id, "table", opts.Table, "error", err)
		return export.Result{}, err
	}
	loggerFor(ctx, s.logger).Info("dataset exported", "dataset_id", id, "table", res.Table, "rows", res.Rows)
	return res, nil
}

// LimiterStatus reports load slot usage.
func (s *Service) LimiterStatus() LoadLimiterStatus {
	return s.limiter.Status()
}

// Drain waits for in-flight loads to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}

// info must be called with ds.mu held.
func (ds *dataset) info() DatasetInfo {
	p := ds.parser
	st := p.Stats()
	info := DatasetInfo{
		ID:       ds.id,
		Name:     ds.name,
		File:     ds.file,
		Settings: p.Settings(),
		Loaded:   p.Loaded(),
		Bytes:    st.FileSize,
		LoadedAt: ds.loadedAt,
		LoadMS:   st.Duration.Milliseconds(),
	}
	if info.Loaded {
		info.Rows = p.data.RowCount()
		info.Columns = p.data.ColumnCount()
		info.Headers = p.data.HeaderCount()
	}
	return info
}
