package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/deicod/htmldsl/runtime"
)

func newWatchCommand(a *app) *cobra.Command {
	var output string
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch TEMPLATE MODEL",
		Short: "Re-render whenever the template or model changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := &watcher{
				app:          a,
				templatePath: args[0],
				modelPath:    args[1],
				outPath:      output,
				debounce:     debounce,
				stdout:       cmd.OutOrStdout(),
				stderr:       cmd.ErrOrStderr(),
			}
			return w.run(ctx)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "Write output to file instead of stdout")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Wait for changes to settle before re-rendering")

	return cmd
}

// watcher re-renders a template whenever its source or model file changes.
type watcher struct {
	app          *app
	templatePath string
	modelPath    string
	outPath      string
	debounce     time.Duration
	stdout       io.Writer
	stderr       io.Writer
	env          *runtime.Environment
}

func (w *watcher) run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	w.env = w.app.newEnvironment()

	watched := map[string]bool{}
	for _, path := range []string{w.templatePath, w.modelPath} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		// Editors replace files on save, so watch the directory.
		dir := filepath.Dir(abs)
		if watched[dir] {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
	}

	w.renderOnce()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.isTracked(event.Name) {
				continue
			}
			w.env.InvalidateTemplate(templateName(w.templatePath))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.renderOnce()

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.app.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *watcher) isTracked(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, path := range []string{w.templatePath, w.modelPath} {
		if p, err := filepath.Abs(path); err == nil && p == abs {
			return true
		}
	}
	return false
}

func (w *watcher) renderOnce() {
	model, err := readModel(w.modelPath, "", nil)
	if err == nil {
		err = w.app.renderWith(w.env, w.templatePath, model, w.outPath, w.stdout)
	}
	if err != nil {
		fmt.Fprintln(w.stderr, formatError(err))
		return
	}
	if w.outPath == "" {
		fmt.Fprintln(w.stdout)
	}
	fmt.Fprintln(w.stderr, watchStyle.Render(fmt.Sprintf("[WATCH] rendered %s at %s", w.templatePath, time.Now().Format("15:04:05"))))
}
