// Package pipeline drives a sheet-music input through rasterization,
// recognition, accompaniment and export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/accompanist/accompaniment"
	"github.com/jsphweid/accompanist/catalog"
	"github.com/jsphweid/accompanist/config"
	"github.com/jsphweid/accompanist/constants"
	"github.com/jsphweid/accompanist/export"
	"github.com/jsphweid/accompanist/file"
	"github.com/jsphweid/accompanist/logger"
	"github.com/jsphweid/accompanist/metrics"
	"github.com/jsphweid/accompanist/model"
	"github.com/jsphweid/accompanist/musicxml"
	"github.com/jsphweid/accompanist/omr"
	"github.com/jsphweid/accompanist/raster"
)

type Options struct {
	Input     string
	MidiPath  string
	XMLPath   string
	PagesDir  string // page images, recreated on every run
	ScorePath string // recognizer output
	// Isolate moves PagesDir and ScorePath into a fresh directory under
	// WorkDir that is removed when the run ends.
	Isolate bool
	WorkDir string
}

func DefaultOptions() Options {
	return Options{
		MidiPath:  constants.DefaultMidiPath,
		XMLPath:   constants.DefaultXMLPath,
		PagesDir:  constants.DefaultPagesDir,
		ScorePath: constants.DefaultScorePath,
		WorkDir:   os.TempDir(),
	}
}

type Result struct {
	RunID    string
	MidiPath string
	XMLPath  string
	Parts    int // including the accompaniment
	Measures int
	Chords   int
	Rests    int
	Duration time.Duration
}

type Driver struct {
	Rasterizer raster.Rasterizer
	Recognizer omr.Recognizer
	Catalog    catalog.Catalog
	Metrics    metrics.Recorder
}

// New wires a driver from cfg. The catalog and metrics are no-ops unless
// configured.
func New(cfg *config.Config) (*Driver, error) {
	d := &Driver{
		Rasterizer: raster.NewPdftoppm(cfg.PdftoppmCommand, cfg.RasterDPI),
		Recognizer: omr.NewOemer(cfg.OMRCommand, cfg.OMRArgs),
		Catalog:    catalog.Nop{},
		Metrics:    metrics.Nop{},
	}
	if cfg.CatalogTable != "" {
		c, err := catalog.Open(cfg.CatalogTable, cfg.AWSRegion, cfg.CatalogEndpoint)
		if err != nil {
			return nil, err
		}
		d.Catalog = c
	}
	if cfg.MetricsEnabled {
		m, err := metrics.Open(cfg.AWSRegion, cfg.Environment)
		if err != nil {
			return nil, err
		}
		d.Metrics = m
	}
	return d, nil
}

func (d *Driver) recorder() metrics.Recorder {
	if d.Metrics == nil {
		return metrics.Nop{}
	}
	return d.Metrics
}

func (d *Driver) catalog() catalog.Catalog {
	if d.Catalog == nil {
		return catalog.Nop{}
	}
	return d.Catalog
}

// stage runs fn, records its timing and prefixes any error with name.
func (d *Driver) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	err := fn()
	took := time.Since(start)
	d.recorder().RecordStage(name, took, err)
	if err != nil {
		logger.Error("Stage failed", err, logger.Fields{"stage": name, "took": took})
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("Stage done", logger.Fields{"stage": name, "took": took})
	return nil
}

// Run converts opts.Input into MIDI and MusicXML files holding the
// recognized parts plus a generated piano accompaniment. Stages run in
// order and the first failure aborts the run.
func (d *Driver) Run(ctx context.Context, opts Options) (*Result, error) {
	started := time.Now()
	kind := file.SheetKind(opts.Input)
	if _, err := os.Stat(opts.Input); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	runID := uuid.NewString()
	if opts.Isolate {
		runDir := filepath.Join(opts.WorkDir, "accompanist-"+runID)
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			return nil, err
		}
		defer os.RemoveAll(runDir)
		opts.PagesDir = filepath.Join(runDir, filepath.Base(opts.PagesDir))
		opts.ScorePath = filepath.Join(runDir, filepath.Base(opts.ScorePath))
	}

	if prev, ok, err := d.catalog().Lookup(ctx, opts.Input); err != nil {
		logger.Warn("Catalog lookup failed", logger.Fields{"input": opts.Input, "error": err.Error()})
	} else if ok {
		logger.Info("Input converted before", logger.Fields{"input": opts.Input, "run": prev.RunID, "at": prev.CreatedAt})
	}

	logger.Info("Starting run", logger.Fields{"run": runID, "input": opts.Input})

	var (
		images []string
		err    error
	)
	err = d.stage(ctx, "rasterize", func() error {
		if kind == file.PDF {
			images, err = d.Rasterizer.Rasterize(ctx, opts.Input, opts.PagesDir)
			return err
		}
		img, err := raster.NormalizeImage(opts.Input, opts.PagesDir)
		images = []string{img}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = d.stage(ctx, "recognize", func() error {
		return d.Recognizer.Recognize(ctx, images, opts.ScorePath)
	})
	if err != nil {
		return nil, err
	}

	var score *model.Score
	err = d.stage(ctx, "parse", func() error {
		score, err = musicxml.ReadFile(opts.ScorePath)
		return err
	})
	if err != nil {
		return nil, err
	}

	var combined *model.Score
	err = d.stage(ctx, "accompany", func() error {
		combined, err = Accompany(score)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = d.stage(ctx, "export", func() error {
		if err := export.Export(combined, export.Midi, opts.MidiPath); err != nil {
			return err
		}
		return export.Export(combined, export.MusicXML, opts.XMLPath)
	})
	if err != nil {
		return nil, err
	}

	chords, rests := accompaniment.Summary(combined.Parts[len(combined.Parts)-1])
	res := &Result{
		RunID:    runID,
		MidiPath: opts.MidiPath,
		XMLPath:  opts.XMLPath,
		Parts:    len(combined.Parts),
		Measures: combined.MeasureCount(),
		Chords:   chords,
		Rests:    rests,
		Duration: time.Since(started),
	}

	err = d.catalog().Record(ctx, catalog.Entry{
		RunID:     runID,
		Input:     opts.Input,
		MidiPath:  res.MidiPath,
		XMLPath:   res.XMLPath,
		Parts:     res.Parts,
		Measures:  res.Measures,
		Chords:    res.Chords,
		Rests:     res.Rests,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Warn("Could not record run", logger.Fields{"run": runID, "error": err.Error()})
	}

	logger.Info("Run finished", logger.Fields{
		"run":      runID,
		"parts":    res.Parts,
		"measures": res.Measures,
		"chords":   res.Chords,
		"rests":    res.Rests,
		"took":     res.Duration,
	})
	return res, nil
}

// Accompany generates the accompaniment for score and returns the combined
// score. A measure count mismatch is only logged.
func Accompany(score *model.Score) (*model.Score, error) {
	if score == nil {
		return nil, errors.New("no score")
	}
	combined, part, err := accompaniment.Accompany(score)
	if errors.Is(err, accompaniment.ErrMeasureMismatch) {
		logger.Warn("Accompaniment is misaligned", logger.Fields{"error": err.Error()})
	} else if err != nil {
		return nil, err
	}
	chords, rests := accompaniment.Summary(part)
	logger.Info("Generated accompaniment", logger.Fields{"measures": len(part.Measures), "chords": chords, "rests": rests})
	return combined, nil
}
