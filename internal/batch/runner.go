// Package batch discovers image files and names them one by one, logging
// each outcome and never aborting the run because of a single file.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	imgnamer "github.com/anatolykoptev/go-imgnamer"
)

// Rename outcomes reported to OnRename.
const (
	StatusRenamed   = "renamed"
	StatusDryRun    = "dry_run"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Namer suggests a name for an image file. *imgnamer.Config implements it.
type Namer interface {
	SuggestName(ctx context.Context, path string, opts imgnamer.SuggestOpts) (string, error)
}

// Runner names and renames a list of files sequentially.
type Runner struct {
	Namer    Namer
	Opts     imgnamer.SuggestOpts
	DryRun   bool
	Logger   *slog.Logger        // default: slog.Default()
	OnRename func(status string) // optional, e.g. metrics
}

// Run processes files in order. It stops early only when ctx is done.
func (r *Runner) Run(ctx context.Context, files []string) Stats {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	stats := Stats{Total: len(files)}
	resolver := imgnamer.NewCollisionResolver()

	for i, path := range files {
		if ctx.Err() != nil {
			log.Warn("interrupted", "done", i, "total", len(files))
			break
		}
		stats.Current = i + 1
		status := r.processFile(ctx, log.With("file", filepath.Base(path), "n", stats.Current, "of", stats.Total), path, resolver)
		switch status {
		case StatusRenamed, StatusDryRun:
			stats.Renamed++
		case StatusUnchanged:
			stats.Unchanged++
		case StatusSkipped:
			stats.NoSuggestion++
		case StatusFailed:
			stats.Failed++
		}
		if r.OnRename != nil {
			r.OnRename(status)
		}
	}
	return stats
}

func (r *Runner) processFile(ctx context.Context, log *slog.Logger, path string, resolver *imgnamer.CollisionResolver) string {
	name, err := r.Namer.SuggestName(ctx, path, r.Opts)
	switch {
	case errors.Is(err, imgnamer.ErrEmptyResultSet):
		log.Warn("no search results, keeping name")
		return StatusSkipped
	case err != nil:
		log.Error("suggestion failed", "error", err.Error())
		return StatusFailed
	case name == "":
		log.Warn("no usable suggestion, keeping name")
		return StatusSkipped
	}

	target, err := imgnamer.RenameFile(path, name, imgnamer.RenameOpts{DryRun: r.DryRun, Resolver: resolver})
	switch {
	case err != nil:
		log.Error("rename failed", "error", err.Error())
		return StatusFailed
	case target == "":
		log.Warn("suggestion has no usable characters", "suggestion", name)
		return StatusSkipped
	case target == path:
		log.Info("already named", "name", name)
		return StatusUnchanged
	case r.DryRun:
		return StatusDryRun
	}
	return StatusRenamed
}
