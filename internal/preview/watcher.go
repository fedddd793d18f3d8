package preview

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/screenforge/screenforge/internal/pipeline"
)

// Watcher polls the API description for changes and reruns the generation
// pipeline, publishing a regeneration event after each pass. Polling keeps
// the preview loop dependency-free and works on every filesystem.
type Watcher struct {
	opts     pipeline.Options
	bus      *Bus
	interval time.Duration
}

// NewWatcher creates a watcher. interval <= 0 defaults to two seconds.
func NewWatcher(opts pipeline.Options, bus *Bus, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{opts: opts, bus: bus, interval: interval}
}

// Start blocks until the context is cancelled, regenerating whenever the
// document's modification time advances.
func (w *Watcher) Start(ctx context.Context) {
	var lastMod time.Time
	if info, err := os.Stat(w.opts.SpecPath); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.opts.SpecPath)
			if err != nil {
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()

			summary, err := pipeline.Run(ctx, w.opts)
			if err != nil {
				log.Printf("preview: regeneration failed: %v", err)
				continue
			}
			ops := make([]string, 0, len(summary.Results))
			for _, r := range summary.Results {
				ops = append(ops, r.OperationID)
			}
			log.Printf("preview: regenerated %d screens (%d decisions)", len(ops), summary.Decisions())
			w.bus.Publish(Event{
				Type:            EventRegenerated,
				DocumentVersion: summary.DocumentVersion,
				Operations:      ops,
				Decisions:       summary.Decisions(),
				At:              time.Now().UTC(),
			})
		}
	}
}
