package recorder

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/kilianp07/gridsim/core/topology"
	"gopkg.in/natefinch/lumberjack.v2"
)

// JSONLRecorder writes rows as JSON lines with size-based rotation.
type JSONLRecorder struct {
	out  *lumberjack.Logger
	enc  *json.Encoder
	path string
}

// NewJSONLRecorder creates a recorder with rotation options in megabytes and
// days. Zero values use the lumberjack defaults.
func NewJSONLRecorder(path string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) (*JSONLRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compress,
	}
	return &JSONLRecorder{out: lj, enc: json.NewEncoder(lj), path: path}, nil
}

// Init is a no-op; JSON lines are self-describing.
func (r *JSONLRecorder) Init(context.Context, topology.Snapshot) error { return nil }

// Record appends one line per component.
func (r *JSONLRecorder) Record(_ context.Context, tick int, snap topology.Snapshot) error {
	for _, row := range rows(tick, snap) {
		if err := r.enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// Query reads the active file and rotated backups. Backups are read first
// so rows come back oldest first.
func (r *JSONLRecorder) Query(_ context.Context, q RowQuery) ([]Row, error) {
	files, err := filepath.Glob(r.path + "*")
	if err != nil {
		return nil, err
	}
	backups, _ := filepath.Glob(backupPattern(r.path))
	files = append(files, backups...)
	sort.Slice(files, func(i, j int) bool {
		if files[i] == r.path {
			return false
		}
		if files[j] == r.path {
			return true
		}
		return files[i] < files[j]
	})
	seen := make(map[string]bool, len(files))
	var res []Row
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var row Row
			if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
				continue
			}
			if q.match(row) {
				res = append(res, row)
			}
		}
		_ = file.Close()
	}
	return res, nil
}

// backupPattern matches lumberjack backups, which are named
// <name>-<timestamp><ext> next to the active file.
func backupPattern(path string) string {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	return base + "-*" + ext + "*"
}

// Close closes the underlying writer.
func (r *JSONLRecorder) Close() error {
	return r.out.Close()
}
