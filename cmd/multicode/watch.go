package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/redvampir/multicode-sub002/nodepkg"
)

// WatchCmd regenerates a document whenever it or its packages change.
type WatchCmd struct {
	Input    string        `arg:"" type:"existingfile" help:"Graph document (JSON)"`
	Output   string        `short:"o" required:"" type:"path" help:"Output file"`
	Strict   bool          `help:"Reject calls to undefined functions before generating"`
	Debounce time.Duration `default:"200ms" help:"Quiet period before regenerating"`

	PackageFlags `embed:""`
	OptionFlags  `embed:""`
}

// Run executes the watch command.
func (c *WatchCmd) Run(env *Env) error {
	ctx, stop := signalContext()
	defer stop()
	return c.run(ctx, env)
}

func (c *WatchCmd) run(ctx context.Context, env *Env) error {
	p, release, err := env.pipeline(c.CacheDir)
	if err != nil {
		return err
	}
	defer release()

	input, err := filepath.Abs(c.Input)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	regenerate := func() []string {
		req, err := loadDocument(input, c.Strict, c.PackageFlags, c.OptionFlags)
		if err != nil {
			printInvalid(env.Stderr, c.Input, []string{err.Error()})
			return nil
		}
		res, err := p.Run(req)
		if err != nil {
			printInvalid(env.Stderr, c.Input, []string{err.Error()})
			return req.PackageDirs()
		}
		if err := writeCode(env, c.Output, res.Code); err != nil {
			env.Logger.Error().Err(err).Msg("writing output")
			return req.PackageDirs()
		}
		printDiagnostics(env.Stderr, res.Diagnostics, req.Options.Locale)
		printGenerated(env.Stderr, c.Output, res)
		return req.PackageDirs()
	}

	dirs := regenerate()
	fmt.Fprintf(env.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", c.Input)

	w := &watcher{
		debounce: c.Debounce,
		logger:   env.Logger,
		match: func(path string) bool {
			return path == input || filepath.Ext(path) == nodepkg.Extension
		},
	}
	err = w.Watch(ctx, append([]string{filepath.Dir(input)}, dirs...), func(changed []string) {
		env.Logger.Info().Strs("files", changed).Msg("change detected")
		regenerate()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch error: %w", err)
	}
	fmt.Fprintln(env.Stderr, "Watch mode stopped.")
	return nil
}

// watcher batches file system events below a set of directories
type watcher struct {
	debounce time.Duration
	match    func(path string) bool
	logger   zerolog.Logger
}

// Watch calls onChange with the sorted matching paths that changed during
// each quiet period. It blocks until ctx is done. Missing directories are
// skipped; directories created later are not picked up.
func (w *watcher) Watch(ctx context.Context, dirs []string, onChange func(changed []string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range dirs {
		if err := addTree(fsw, dir); err != nil {
			return fmt.Errorf("setting up watcher: %w", err)
		}
	}

	changed := make(map[string]bool)
	batchTimer := time.NewTimer(w.debounce)
	batchTimer.Stop()
	defer batchTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !w.match(path) {
				continue
			}
			changed[path] = true
			batchTimer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")

		case <-batchTimer.C:
			if len(changed) == 0 {
				continue
			}
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			changed = make(map[string]bool)
			onChange(paths)
		}
	}
}

// addTree watches dir and every directory below it
func addTree(fsw *fsnotify.Watcher, dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
