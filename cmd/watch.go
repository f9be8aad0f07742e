package cmd

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/jsphweid/accompanist/file"
	"github.com/jsphweid/accompanist/logger"
	"github.com/jsphweid/accompanist/pipeline"
	"github.com/spf13/cobra"
)

var quietPeriod time.Duration

func init() {
	watchCmd.Flags().DurationVar(&quietPeriod, "quiet", 2*time.Second, "wait this long after the last change before converting")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Converts sheet music dropped into a directory",
	Long: `Watches a directory for PDFs and images. Each new or changed file is
converted once writes to it settle, and <name>.mid and <name>.musicxml are
written next to it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, err := newDriver(cfg)
		if err != nil {
			return err
		}
		return Watch(cmd.Context(), driver, args[0], cfg.WorkDir, quietPeriod)
	},
}

// dropQueue collects changed inputs until the quiet period has passed.
type dropQueue struct {
	mu      sync.Mutex
	pending map[string]bool
}

func (q *dropQueue) add(path string) bool {
	switch file.KindOf(path) {
	case file.PDF, file.Image:
	default:
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[string]bool)
	}
	q.pending[path] = true
	return true
}

func (q *dropQueue) take() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	paths := make([]string, 0, len(q.pending))
	for p := range q.pending {
		paths = append(paths, p)
	}
	q.pending = nil
	sort.Strings(paths)
	return paths
}

// dropOptions writes outputs next to the input and isolates intermediates.
func dropOptions(input, workDir string) pipeline.Options {
	o := pipeline.DefaultOptions()
	base := filepath.Join(filepath.Dir(input), file.Stem(input))
	o.Input = input
	o.MidiPath = base + ".mid"
	o.XMLPath = base + ".musicxml"
	o.Isolate = true
	o.WorkDir = workDir
	return o
}

// Watch converts files created or written in dir until ctx is done. Runs
// happen one at a time on the calling goroutine.
func Watch(ctx context.Context, driver *pipeline.Driver, dir, workDir string, quiet time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	var queue dropQueue
	ready := make(chan struct{}, 1)
	debounced := debounce.New(quiet)
	signalReady := func() {
		select {
		case ready <- struct{}{}:
		default:
		}
	}

	logger.Info("Watching", logger.Fields{"dir": dir, "quiet": quiet})
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if queue.add(event.Name) {
				debounced(signalReady)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", logger.Fields{"error": err.Error()})
		case <-ready:
			for _, input := range queue.take() {
				res, err := driver.Run(ctx, dropOptions(input, workDir))
				if err != nil {
					logger.Error("Conversion failed", err, logger.Fields{"input": input})
					continue
				}
				logger.Info("Converted", logger.Fields{"input": input, "midi": res.MidiPath, "xml": res.XMLPath})
			}
		}
	}
}
