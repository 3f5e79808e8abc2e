package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [file...]",
		Short: "Re-validate descriptors when they change",
		Long: `Validate build descriptors, then validate again whenever a descriptor
or the versions file changes. Stop with Ctrl+C.`,
		Example: `  # Watch the configured descriptor
  leapbuild watch

  # Watch two descriptors with a longer debounce
  leapbuild watch android/app/build.yaml flavors/staging.yaml --debounce 500ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 100*time.Millisecond, "Delay before re-validating after a change")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	paths := cmdCtx.Paths(args)
	for _, p := range paths {
		if p == stdinName {
			return errors.New("watch cannot read from stdin")
		}
	}

	var mu sync.Mutex
	check := func() {
		mu.Lock()
		defer mu.Unlock()

		cmdCtx.Reset()
		if _, err := cmdCtx.Resolver(); err != nil {
			cmdCtx.Renderer.Error(err.Error())
			return
		}
		_ = renderValidate(cmdCtx, validateAll(cmdCtx, paths, len(paths)))
	}

	watched := append([]string{}, paths...)
	if cmdCtx.Cfg.VersionsFile != "" {
		watched = append(watched, cmdCtx.Cfg.VersionsFile)
	}
	targets, dirs, err := watchTargets(watched)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Directories are watched rather than files so editors that replace
	// files on save are still seen.
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	check()
	cmdCtx.Renderer.Println(cmdCtx.Renderer.Styles().Muted.Render(
		fmt.Sprintf("Watching %d file(s). Press Ctrl+C to stop.", len(targets))))

	return watchLoop(ctx, watcher, targets, opts.Debounce, cmdCtx.Logger.Debug, func(name string) {
		cmdCtx.Logger.Info("change detected", "file", filepath.Base(name))
		check()
	})
}

// watchTargets returns the cleaned absolute paths to react to and the
// distinct directories holding them.
func watchTargets(paths []string) (map[string]bool, []string, error) {
	targets := make(map[string]bool, len(paths))
	seenDirs := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, err
		}
		targets[abs] = true
		if dir := filepath.Dir(abs); !seenDirs[dir] {
			seenDirs[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return targets, dirs, nil
}

// watchLoop calls onChange once per burst of events on targets, after
// debounce has passed without further events. It returns when ctx is done
// or the watcher closes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, targets map[string]bool,
	debounce time.Duration, logf func(msg string, args ...any), onChange func(name string)) error {
	// Debounce timer
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Only handle write/create/rename events for watched files
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !targets[name] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				if ctx.Err() != nil {
					return
				}
				onChange(name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logf("watcher error", "error", err)
		}
	}
}
