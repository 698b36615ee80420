package gen

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Writer persists the documents of a generation run. Generated documents are
// always overwritten; scaffolds are created only when absent so hand-written
// changes survive regeneration.
type Writer struct {
	outDir  string
	workers int
	log     *zap.SugaredLogger

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks what a Writer did.
type WriterMetrics struct {
	FilesWritten int
	FilesSkipped int
	TotalBytes   int64
}

// NewWriter creates a writer for the given output directory.
func NewWriter(outDir string) *Writer {
	return &Writer{
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
		log:     zap.NewNop().Sugar(),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// WithLogger sets the logger receiving one event per file.
func (w *Writer) WithLogger(l *zap.SugaredLogger) *Writer {
	if l != nil {
		w.log = l
	}
	return w
}

// Metrics returns the write metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// formatOptions only groups and sorts imports. jennifer already tracks them,
// and resolving package-local selectors would scan the module cache.
var formatOptions = &imports.Options{Comments: true, TabIndent: true, TabWidth: 8, FormatOnly: true}

// fileTask represents a single file write.
type fileTask struct {
	File
	// keep leaves an existing file untouched.
	keep bool
}

// Write persists the output in parallel.
func (w *Writer) Write(ctx context.Context, out *Output) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return NewGenerationError("write", w.outDir, "create output directory", err)
	}
	var files []fileTask
	for _, f := range out.Generated() {
		files = append(files, fileTask{File: f})
	}
	for _, f := range out.Scaffolds {
		files = append(files, fileTask{File: f, keep: true})
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

// writeFile formats and writes a single file.
func (w *Writer) writeFile(f fileTask) error {
	fullPath := filepath.Join(w.outDir, f.Name)
	content := f.Content
	if strings.HasSuffix(f.Name, ".go") {
		formatted, err := imports.Process(fullPath, content, formatOptions)
		if err != nil {
			// Write unformatted file for debugging (errors intentionally ignored as we're already in error state)
			debugPath := fullPath + ".error"
			_ = os.WriteFile(debugPath, content, 0o644)
			return NewGenerationError("format", f.Name, "unformatted output written to "+debugPath, err)
		}
		content = formatted
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if f.keep {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	fd, err := os.OpenFile(fullPath, flag, 0o644)
	switch {
	case f.keep && errors.Is(err, fs.ErrExist):
		w.log.Debugw("keeping existing scaffold", "file", f.Name)
		w.mu.Lock()
		w.metrics.FilesSkipped++
		w.mu.Unlock()
		return nil
	case err != nil:
		return NewGenerationError("write", f.Name, "open", err)
	}
	if _, err := fd.Write(content); err != nil {
		fd.Close()
		return NewGenerationError("write", f.Name, "write", err)
	}
	if err := fd.Close(); err != nil {
		return NewGenerationError("write", f.Name, "close", err)
	}
	w.log.Debugw("wrote file", "file", f.Name, "bytes", len(content))

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(content))
	w.mu.Unlock()
	return nil
}
