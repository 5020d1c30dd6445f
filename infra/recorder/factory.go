package recorder

import (
	"github.com/google/uuid"
	"github.com/kilianp07/gridsim/core/factory"
	"github.com/kilianp07/gridsim/core/sim"
	"github.com/kilianp07/gridsim/infra/logger"
)

// init registers the built-in recorders.
func init() {
	_ = sim.RegisterRecorder("nop", func(map[string]any) (sim.Recorder, error) {
		return sim.NopRecorder{}, nil
	})

	_ = sim.RegisterRecorder("csv", func(conf map[string]any) (sim.Recorder, error) {
		var c struct {
			Dir string `json:"dir"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewCSVRecorder(c.Dir, logger.New("csv-recorder"))
	})

	_ = sim.RegisterRecorder("jsonl", func(conf map[string]any) (sim.Recorder, error) {
		var c struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
			Compress   bool   `json:"compress"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLRecorder(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays, c.Compress)
	})

	_ = sim.RegisterRecorder("sqlite", func(conf map[string]any) (sim.Recorder, error) {
		var c struct {
			Path  string `json:"path"`
			RunID string `json:"run_id"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.RunID == "" {
			c.RunID = uuid.NewString()
		}
		return NewSQLiteRecorder(c.Path, c.RunID)
	})
}
