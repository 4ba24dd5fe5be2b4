package commands

import (
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/seamsql/seamsql/pkg/format"
	"github.com/spf13/cobra"
)

// debounceDelay coalesces editor save bursts into one reformat pass.
const debounceDelay = 100 * time.Millisecond

// watchTargets decides which changed paths belong to the fmt
// invocation: files named explicitly, or any .sql file under a
// directory argument.
type watchTargets struct {
	files map[string]struct{}
	dirs  []string
}

func newWatchTargets(args []string) (*watchTargets, error) {
	t := &watchTargets{files: make(map[string]struct{})}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			t.dirs = append(t.dirs, filepath.Clean(arg))
		} else {
			t.files[filepath.Clean(arg)] = struct{}{}
		}
	}
	return t, nil
}

func (t *watchTargets) allows(path string) bool {
	path = filepath.Clean(path)
	if _, ok := t.files[path]; ok {
		return true
	}
	for _, dir := range t.dirs {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return strings.EqualFold(filepath.Ext(path), ".sql")
		}
	}
	return false
}

// watchAndFormat formats the targets once, then keeps them formatted
// as they change until interrupted.
func watchAndFormat(cmd *cobra.Command, cmdCtx *CommandContext, args, files []string, opts format.Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, err := newWatchTargets(args)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch directories rather than files: editors replace files on
	// save, which silently drops per-file watches.
	if err := addWatchDirs(watcher, targets); err != nil {
		return err
	}

	// Initial pass so the watch starts from a formatted state.
	if err := writeFiles(cmdCtx, files, opts); err != nil {
		cmdCtx.Renderer.Error(err)
	}

	logger := cmdCtx.Logger
	r := cmdCtx.Renderer
	r.Println("Watching for changes. Press Ctrl+C to stop.")

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !targets.allows(event.Name) {
				continue
			}

			mu.Lock()
			pending[filepath.Clean(event.Name)] = struct{}{}
			mu.Unlock()

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				mu.Lock()
				batch := make([]string, 0, len(pending))
				for path := range pending {
					batch = append(batch, path)
				}
				clear(pending)
				mu.Unlock()

				sort.Strings(batch)
				for _, path := range batch {
					changed, err := rewriteFile(path, cmdCtx.Syntax, opts)
					if err != nil {
						logger.Error("format failed", "file", path, "error", err)
						r.Error(err)
						continue
					}
					if changed {
						logger.Debug("reformatted", "file", path)
						r.Printf("Formatted %s\n", path)
					}
				}
			})

		case err := <-watcher.Errors:
			logger.Error("watcher error", "error", err)
		}
	}
}

// addWatchDirs registers the directories the targets live in,
// recursing into directory arguments.
func addWatchDirs(watcher *fsnotify.Watcher, targets *watchTargets) error {
	added := make(map[string]struct{})
	add := func(dir string) error {
		if _, ok := added[dir]; ok {
			return nil
		}
		added[dir] = struct{}{}
		return watcher.Add(dir)
	}

	for file := range targets.files {
		if err := add(filepath.Dir(file)); err != nil {
			return err
		}
	}
	for _, dir := range targets.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return add(path)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
