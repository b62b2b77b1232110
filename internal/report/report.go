// Package report exports incident collections to dated CSV and JSON files
// and raises alerts for the critical ones.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/alert"
	"github.com/crimson-sun/airs/internal/model"
)

// DefaultDir is used when no export directory is given.
const DefaultDir = "logs"

const dateLayout = "2006-01-02"

// Result describes one export.
type Result struct {
	CSVPath  string
	JSONPath string
	Alerts   []model.Incident
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the time source used for the file date. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithConsole sets where alerts and confirmations are printed. Default: stdout.
func WithConsole(c *alert.Console) Option {
	return func(e *Exporter) { e.console = c }
}

// WithNotifier adds a notifier (e.g. Slack) that receives the alerts after
// they are printed. Its failures are logged, not returned.
func WithNotifier(n alert.Notifier) Option {
	return func(e *Exporter) { e.notifier = n }
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// Exporter writes incident reports.
type Exporter struct {
	now      func() time.Time
	console  *alert.Console
	notifier alert.Notifier
	log      *zap.Logger
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.console == nil {
		e.console = alert.NewConsole(nil)
	}
	return e
}

// ProcessAndExport exports incidents into exportDir with the default
// Exporter.
func ProcessAndExport(ctx context.Context, incidents []model.Incident, exportDir string) (*Result, error) {
	return New().Export(ctx, incidents, exportDir)
}

// Export writes incidents_<date>.csv then incidents_<date>.json into dir,
// replacing any files from earlier the same day, and reports the alerts.
// A filesystem error aborts the export; the CSV may already be on disk.
func (e *Exporter) Export(ctx context.Context, incidents []model.Incident, dir string) (*Result, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	date := e.now().Format(dateLayout)
	res := &Result{
		CSVPath:  filepath.Join(dir, "incidents_"+date+".csv"),
		JSONPath: filepath.Join(dir, "incidents_"+date+".json"),
	}

	if err := writeCSV(res.CSVPath, incidents); err != nil {
		return nil, err
	}
	if err := writeJSON(res.JSONPath, incidents); err != nil {
		return nil, err
	}

	res.Alerts = alert.Select(incidents)
	e.console.Notify(ctx, res.Alerts)
	if e.notifier != nil && len(res.Alerts) > 0 {
		if err := e.notifier.Notify(ctx, res.Alerts); err != nil {
			e.log.Warn("alert delivery failed", zap.Int("alerts", len(res.Alerts)), zap.Error(err))
		}
	}
	e.console.Exported(res.CSVPath, res.JSONPath)

	e.log.Info("incidents exported",
		zap.Int("incidents", len(incidents)),
		zap.Int("alerts", len(res.Alerts)),
		zap.String("csv", res.CSVPath),
		zap.String("json", res.JSONPath),
	)
	return res, nil
}

// writeCSV writes a header and one CRLF-terminated row per incident.
func writeCSV(path string, incidents []model.Incident) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(model.IncidentFields); err != nil {
		f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	for _, inc := range incidents {
		if err := w.Write(inc.Record()); err != nil {
			f.Close()
			return fmt.Errorf("report: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", path, err)
	}
	return nil
}

// writeJSON writes the incidents as a 4-space indented array.
func writeJSON(path string, incidents []model.Incident) error {
	if incidents == nil {
		incidents = []model.Incident{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(incidents); err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
