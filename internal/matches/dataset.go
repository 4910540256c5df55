package matches

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Decode maps every row of a CSV or XLSX table to a Match. Rows are never
// dropped for bad fields; those produce warnings instead.
func Decode(name string, b []byte, layout Layout, loc *time.Location) ([]Match, []ParseWarning, error) {
	if err := layout.Validate(); err != nil {
		return nil, nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	s, err := decodeTable(name, b, layout.comma())
	if err != nil {
		return nil, nil, err
	}

	var warns []ParseWarning
	if missing := layout.Columns.Missing(s.header); len(missing) > 0 {
		if layout.Strict {
			return nil, nil, fmt.Errorf("missing required columns: %v", missing)
		}
		for _, role := range missing {
			warns = append(warns, ParseWarning{Line: 1, Field: role, Reason: "column not in header"})
		}
	}

	out := make([]Match, 0, len(s.rows))
	for i, row := range s.rows {
		m := MapRowIn(row, layout.Columns, loc)
		if m.Date == nil && m.DateRaw != "" {
			warns = append(warns, ParseWarning{Line: s.lines[i], Field: "date", Value: m.DateRaw, Reason: "not a DD/MM/YYYY calendar date"})
		}
		out = append(out, m)
	}
	return out, warns, nil
}

// LoadDataset decodes semicolon-delimited source text with the default layout.
func LoadDataset(text string) ([]Match, error) {
	records, _, err := Decode("inline.csv", []byte(text), DefaultLayout(), time.Local)
	if err != nil {
		return nil, &LoadError{Source: "inline", Err: err}
	}
	return records, nil
}

// LoadRecorder stores the outcome of each load attempt.
type LoadRecorder interface {
	Record(ctx context.Context, r *LoadRecord) error
}

// Snapshot is an installed dataset. Records must be treated as read-only.
type Snapshot struct {
	Source    string         `json:"source"`
	LoadedAt  time.Time      `json:"loaded_at"`
	Records   []Match        `json:"-"`
	Warnings  []ParseWarning `json:"warnings"`
	LastError string         `json:"last_error,omitempty"`
}

type DatasetConfig struct {
	Source   string
	Layout   Layout
	Location *time.Location
	Fetcher  *Fetcher
	Logger   *zap.Logger
	History  LoadRecorder
}

// Dataset owns the in-memory record set. Loads run one at a time; a failed
// load leaves the previously installed snapshot in place.
type Dataset struct {
	src     string
	layout  Layout
	loc     *time.Location
	fetcher *Fetcher
	log     *zap.Logger
	history LoadRecorder

	loadMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot
}

func NewDataset(cfg DatasetConfig) *Dataset {
	d := &Dataset{
		src:     cfg.Source,
		layout:  cfg.Layout,
		loc:     cfg.Location,
		fetcher: cfg.Fetcher,
		log:     cfg.Logger,
		history: cfg.History,
	}
	if d.layout == (Layout{}) {
		d.layout = DefaultLayout()
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	if d.fetcher == nil {
		d.fetcher = NewFetcher(nil)
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	d.snap.Source = cfg.Source
	return d
}

func (d *Dataset) Source() string { return d.src }

func (d *Dataset) Location() *time.Location { return d.loc }

// Snapshot returns the currently installed dataset.
func (d *Dataset) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

func (d *Dataset) Records() []Match { return d.Snapshot().Records }

// Load fetches and decodes the source and installs the result. Errors are
// *LoadError.
func (d *Dataset) Load(ctx context.Context) error {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	start := time.Now()
	records, warns, err := d.fetchAndDecode(ctx)
	rec := &LoadRecord{
		Source:     d.src,
		StartedAt:  start.UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		Rows:       len(records),
		Warnings:   len(warns),
	}

	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			rec.Status = le.Status
		}
		rec.Error = err.Error()
		d.mu.Lock()
		d.snap.LastError = err.Error()
		d.mu.Unlock()
		d.log.Error("load failed", zap.String("source", d.src), zap.Error(err))
		d.record(ctx, rec)
		return err
	}

	d.mu.Lock()
	d.snap = Snapshot{Source: d.src, LoadedAt: start, Records: records, Warnings: warns}
	d.mu.Unlock()

	for _, w := range warns {
		d.log.Debug("parse warning", zap.Int("line", w.Line), zap.String("field", w.Field), zap.String("value", w.Value), zap.String("reason", w.Reason))
	}
	d.log.Info("dataset loaded",
		zap.String("source", d.src),
		zap.Int("rows", len(records)),
		zap.Int("warnings", len(warns)),
		zap.Duration("took", time.Since(start)),
	)
	d.record(ctx, rec)
	return nil
}

func (d *Dataset) fetchAndDecode(ctx context.Context) ([]Match, []ParseWarning, error) {
	b, name, err := d.fetcher.Fetch(ctx, d.src)
	if err != nil {
		return nil, nil, err
	}
	records, warns, err := Decode(name, b, d.layout, d.loc)
	if err != nil {
		return nil, nil, &LoadError{Source: d.src, Err: err}
	}
	return records, warns, nil
}

func (d *Dataset) record(ctx context.Context, r *LoadRecord) {
	if d.history == nil {
		return
	}
	if err := d.history.Record(ctx, r); err != nil {
		d.log.Warn("record load history", zap.Error(err))
	}
}
