package recorder

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/gridsim/core/logger"
	"github.com/kilianp07/gridsim/core/topology"
	"github.com/kilianp07/gridsim/pkg/export"
)

type csvFile struct {
	f *os.File
	w *csv.Writer
}

// CSVRecorder writes <dir>/<category>.csv with a header row written at Init.
type CSVRecorder struct {
	dir   string
	files map[topology.Category]*csvFile
	log   logger.Logger
}

// NewCSVRecorder creates dir if needed. Files are opened at Init.
func NewCSVRecorder(dir string, log logger.Logger) (*CSVRecorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("csv recorder: output directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &CSVRecorder{dir: dir, files: make(map[topology.Category]*csvFile), log: log}, nil
}

// Init creates one file per non-empty category and writes its header.
func (r *CSVRecorder) Init(_ context.Context, snap topology.Snapshot) error {
	for _, g := range snap {
		if _, err := r.open(g); err != nil {
			return err
		}
	}
	return nil
}

func (r *CSVRecorder) open(g topology.Group) (*csvFile, error) {
	if cf, ok := r.files[g.Category]; ok {
		return cf, nil
	}
	path := filepath.Join(r.dir, string(g.Category)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	cf := &csvFile{f: f, w: csv.NewWriter(f)}
	if err := cf.w.Write(export.Header(g.Components[0].Fields())); err != nil {
		_ = f.Close()
		return nil, err
	}
	r.files[g.Category] = cf
	r.log.Debugf("csv recorder: writing %s", path)
	return cf, nil
}

// Record appends one row per component and flushes every file.
func (r *CSVRecorder) Record(_ context.Context, tick int, snap topology.Snapshot) error {
	for _, g := range snap {
		cf, err := r.open(g)
		if err != nil {
			return err
		}
		for _, c := range g.Components {
			if err := cf.w.Write(export.Record(tick, c.Fields())); err != nil {
				return fmt.Errorf("csv recorder %s: %w", g.Category, err)
			}
		}
		cf.w.Flush()
		if err := cf.w.Error(); err != nil {
			return fmt.Errorf("csv recorder %s: %w", g.Category, err)
		}
	}
	return nil
}

// Close flushes and closes every file.
func (r *CSVRecorder) Close() error {
	var first error
	for cat, cf := range r.files {
		cf.w.Flush()
		if err := cf.w.Error(); err != nil && first == nil {
			first = err
		}
		if err := cf.f.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.files, cat)
	}
	return first
}
