// Package converter runs a reflection export through the whole pipeline:
// parse, group, anonymize, build tables and write one CSV per reflection type.
package converter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reflectcsv/internal/anonymize"
	"github.com/fyrsmithlabs/reflectcsv/internal/csvout"
	"github.com/fyrsmithlabs/reflectcsv/internal/logging"
	"github.com/fyrsmithlabs/reflectcsv/internal/metrics"
	"github.com/fyrsmithlabs/reflectcsv/internal/reflection"
)

// ErrNoInput is returned when Request.Input is empty.
var ErrNoInput = errors.New("input path is required")

// ErrNoOutputDir is returned when Request.OutputDir is empty.
var ErrNoOutputDir = errors.New("output directory is required")

// Request describes one conversion.
type Request struct {
	// Input is the JSON document to read.
	Input string
	// OutputDir receives one CSV per reflection type. Created if missing.
	OutputDir string
	// Filter restricts output to the named types. Nil keeps every type.
	Filter reflection.Filter
	// Parse controls parsing and table building.
	Parse reflection.Options
	// CSV controls encoding of the output files.
	CSV csvout.Options
	// Anonymize enables pseudonymization when non-nil.
	Anonymize *anonymize.Options
	// DryRun plans output paths without writing anything.
	DryRun bool
	// Metrics receives run metrics when non-nil.
	Metrics *metrics.Metrics
}

// TableReport describes one output table.
type TableReport struct {
	Reflection string `json:"reflection"`
	Path       string `json:"path"`
	Rows       int    `json:"rows"`
	Columns    int    `json:"columns"`
}

// Report summarizes a completed conversion.
type Report struct {
	Input     string        `json:"input"`
	OutputDir string        `json:"output_dir"`
	Records   int           `json:"records"`
	Skipped   []int         `json:"skipped,omitempty"`
	Tables    []TableReport `json:"tables"`
	DryRun    bool          `json:"dry_run"`
	Duration  time.Duration `json:"duration"`
}

// Rows returns the total row count across tables.
func (r *Report) Rows() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// Run executes req. Errors from the reflection package are returned unchanged
// so callers can match them with errors.As.
func Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	report, err := run(ctx, req)
	if req.Metrics != nil {
		req.Metrics.RecordRun(time.Since(start), err == nil, time.Now())
	}
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)

	logging.FromContext(ctx).Named("converter").Info(logging.WithInput(ctx, req.Input), "conversion complete",
		zap.Int("records", report.Records),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("tables", len(report.Tables)),
		zap.Int("rows", report.Rows()),
		zap.Bool("dry_run", report.DryRun),
		zap.Duration("duration", report.Duration))
	return report, nil
}

func run(ctx context.Context, req Request) (*Report, error) {
	if req.Input == "" {
		return nil, ErrNoInput
	}
	if req.OutputDir == "" {
		return nil, ErrNoOutputDir
	}
	ctx = logging.WithInput(ctx, req.Input)
	logger := logging.FromContext(ctx).Named("converter")

	doc, err := reflection.Load(ctx, req.Input, req.Parse)
	if err != nil {
		return nil, err
	}
	if req.Metrics != nil {
		req.Metrics.RecordParsed(len(doc.Records)+len(doc.Skipped), len(doc.Skipped))
	}

	groups := reflection.GroupRecords(doc.Records, req.Filter)
	if req.Filter != nil {
		logger.Debug(ctx, "applied reflection filter",
			zap.Strings("names", req.Filter.Names()),
			zap.Int("groups", len(groups)))
		warnUnmatched(ctx, logger, req.Filter, groups)
	}
	if req.Anonymize != nil {
		groups = anonymize.New(*req.Anonymize).Groups(groups)
	}

	tables := reflection.BuildTables(groups, req.Parse.ColumnOrder)
	writer := csvout.NewWriter(req.OutputDir, req.CSV)

	var planned []csvout.Planned
	if req.DryRun {
		planned = writer.Plan(tables)
	} else {
		planned, err = writer.WriteAll(ctx, tables)
		if err != nil {
			return nil, err
		}
	}

	report := &Report{
		Input:     req.Input,
		OutputDir: req.OutputDir,
		Records:   len(doc.Records),
		Skipped:   doc.Skipped,
		Tables:    make([]TableReport, 0, len(planned)),
		DryRun:    req.DryRun,
	}
	for _, p := range planned {
		report.Tables = append(report.Tables, TableReport{
			Reflection: p.Table.Name,
			Path:       p.Path,
			Rows:       len(p.Table.Rows),
			Columns:    len(p.Table.Header),
		})
		if req.Metrics != nil && !req.DryRun {
			req.Metrics.RecordTable(p.Table.Name, len(p.Table.Rows))
		}
	}
	return report, nil
}

// warnUnmatched logs filter names that matched no records.
func warnUnmatched(ctx context.Context, logger *logging.Logger, filter reflection.Filter, groups []*reflection.Group) {
	found := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		found[g.Type] = struct{}{}
	}
	for _, name := range filter.Names() {
		if _, ok := found[name]; !ok {
			logger.Warn(ctx, "no records for reflection", zap.String("reflection", name))
		}
	}
}
