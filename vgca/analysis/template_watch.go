package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// TemplateWatcher hot-reloads a prompt template file into a PromptBuilder
// whenever the file changes on disk. A reload that fails (unreadable file,
// missing placeholder) keeps the previous template active.
type TemplateWatcher struct {
	watcher  *fsnotify.Watcher
	builder  *PromptBuilder
	path     string
	debounce time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu      sync.Mutex
	running bool
}

// NewTemplateWatcher creates a watcher for the template file at path.
func NewTemplateWatcher(path string, builder *PromptBuilder, logger zerolog.Logger) (*TemplateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &TemplateWatcher{
		watcher:  watcher,
		builder:  builder,
		path:     filepath.Clean(path),
		debounce: 500 * time.Millisecond, // Debounce rapid saves
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start loads the template once and begins watching. Editors commonly
// replace files by rename, so the watch is on the parent directory with
// events filtered to the template path.
func (tw *TemplateWatcher) Start(ctx context.Context) error {
	tw.mu.Lock()
	if tw.running {
		tw.mu.Unlock()
		return nil
	}
	tw.running = true
	tw.mu.Unlock()

	// Roll back the running flag on a failed start so Stop never waits
	// for a goroutine that was never spawned.
	fail := func(err error) error {
		tw.mu.Lock()
		tw.running = false
		tw.mu.Unlock()
		return err
	}

	if err := tw.reload(); err != nil {
		return fail(err)
	}

	if err := tw.watcher.Add(filepath.Dir(tw.path)); err != nil {
		return fail(fmt.Errorf("watch template dir: %w", err))
	}
	tw.logger.Debug().Str("path", tw.path).Msg("watching prompt template")

	go tw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for cleanup.
func (tw *TemplateWatcher) Stop() {
	tw.mu.Lock()
	if !tw.running {
		tw.mu.Unlock()
		return
	}
	tw.running = false
	tw.mu.Unlock()

	close(tw.stopCh)
	<-tw.doneCh

	if err := tw.watcher.Close(); err != nil {
		tw.logger.Error().Err(err).Msg("error closing template watcher")
	}
}

func (tw *TemplateWatcher) run(ctx context.Context) {
	defer close(tw.doneCh)

	reload := time.NewTimer(tw.debounce)
	if !reload.Stop() {
		<-reload.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-tw.stopCh:
			return

		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload.Reset(tw.debounce)

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Error().Err(err).Msg("template watcher error")

		case <-reload.C:
			if err := tw.reload(); err != nil {
				tw.logger.Warn().Err(err).Str("path", tw.path).Msg("template reload failed, keeping previous template")
			}
		}
	}
}

func (tw *TemplateWatcher) reload() error {
	content, err := os.ReadFile(tw.path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if err := tw.builder.SetTemplate(string(content)); err != nil {
		return err
	}
	tw.logger.Debug().Str("path", tw.path).Int("bytes", len(content)).Msg("prompt template loaded")
	return nil
}
