// Package csvout writes reflection tables as CSV files, one per reflection type.
package csvout

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reflectcsv/internal/logging"
	"github.com/fyrsmithlabs/reflectcsv/internal/reflection"
	"github.com/fyrsmithlabs/reflectcsv/internal/sanitize"
)

const (
	// Extension is appended to every output file name.
	Extension = ".csv"

	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// Options controls CSV encoding.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// UseCRLF ends lines with \r\n.
	UseCRLF bool
}

// Planned pairs a table with its destination.
type Planned struct {
	Table reflection.Table
	Path  string
}

// Writer writes tables into one directory.
type Writer struct {
	dir  string
	opts Options
}

// NewWriter returns a Writer targeting dir.
func NewWriter(dir string, opts Options) *Writer {
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	return &Writer{dir: dir, opts: opts}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Plan assigns each table a file path without touching the disk. Names come
// from sanitize.FileName; collisions get numeric suffixes in table order.
func (w *Writer) Plan(tables []reflection.Table) []Planned {
	namer := sanitize.NewNamer()
	planned := make([]Planned, 0, len(tables))
	for _, t := range tables {
		planned = append(planned, Planned{
			Table: t,
			Path:  filepath.Join(w.dir, namer.Next(t.Name)+Extension),
		})
	}
	return planned
}

// WriteAll creates the output directory if needed and writes every table.
// The first failure aborts the run and is returned as *reflection.WriteError;
// files written before it are complete.
func (w *Writer) WriteAll(ctx context.Context, tables []reflection.Table) ([]Planned, error) {
	logger := logging.FromContext(ctx).Named("csvout")

	if err := os.MkdirAll(w.dir, dirMode); err != nil {
		return nil, &reflection.WriteError{Path: w.dir, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	planned := w.Plan(tables)
	for _, p := range planned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tctx := logging.WithReflection(ctx, p.Table.Name)
		if err := w.writeFile(p.Path, p.Table); err != nil {
			return nil, &reflection.WriteError{Reflection: p.Table.Name, Path: p.Path, Err: err}
		}
		logger.Debug(tctx, "wrote table",
			zap.String("path", p.Path),
			zap.Int("rows", len(p.Table.Rows)),
			zap.Int("columns", len(p.Table.Header)))
	}
	return planned, nil
}

// writeFile writes to a temp file in the destination directory and renames it
// into place, so path is either the complete table or untouched.
func (w *Writer) writeFile(path string, t reflection.Table) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".reflectcsv-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = Encode(tmp, t, w.opts); err != nil {
		return err
	}
	if err = tmp.Chmod(fileMode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Encode writes the header then every row of t.
func Encode(out io.Writer, t reflection.Table, opts Options) error {
	cw := csv.NewWriter(out)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	cw.UseCRLF = opts.UseCRLF

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
