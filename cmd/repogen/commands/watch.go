package commands

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change before a
// regeneration starts.
const DefaultDebounce = 500 * time.Millisecond

func newWatchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [files...]",
		Short: "Regenerate the repositories whenever an input changes",
		Long: `Generate once, then watch the schema, the type table and any extra files
given as arguments (typically the source the precompile command reads) and
regenerate after they change. Runs never overlap; bursts of changes are
coalesced into a single run. Failed runs are logged and watching continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			debounce, err := cmd.Flags().GetDuration("debounce")
			if err != nil {
				return err
			}
			w := &Watcher{
				Files:    append(s.Watched(), args...),
				Debounce: debounce,
				Log:      log.Sugar(),
				Run: func(ctx context.Context) error {
					_, err := Generate(ctx, s, log)
					return err
				},
			}
			return w.Watch(cmd.Context())
		},
	}
	cmd.Flags().Duration("debounce", DefaultDebounce, "quiet period before regenerating")
	return cmd
}

// Watcher runs Run once, then again after each burst of writes to Files.
type Watcher struct {
	Files    []string
	Debounce time.Duration
	Run      func(context.Context) error
	Log      *zap.SugaredLogger
}

// Watch blocks until ctx is done. Editors often replace files instead of
// writing them in place, so the parent directories are watched and events
// are filtered by file name.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fw.Close()

	files := make(map[string]bool, len(w.Files))
	dirs := make(map[string]bool)
	for _, f := range w.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", f)
		}
		files[abs] = true
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := fw.Add(dir); err != nil {
				return errors.Wrapf(err, "failed to watch %s", dir)
			}
			dirs[dir] = true
		}
	}

	w.run(ctx)
	w.Log.Infow("watching for changes", "files", len(files))

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// Only regenerate on Write or Create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err != nil || !files[abs] {
				continue
			}
			w.Log.Debugw("change detected", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.run(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Warnw("watcher error", "error", err)
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	start := time.Now()
	if err := w.Run(ctx); err != nil {
		w.Log.Errorw("regeneration failed", "error", err)
		return
	}
	w.Log.Infow("regenerated", "elapsed", time.Since(start))
}
