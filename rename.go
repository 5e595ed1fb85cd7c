package imgnamer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver hands out target paths so that two files never get the
// same name, neither within one run nor against files already on disk.
// Collisions get " (N)" appended to the stem. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // target path → source path that claimed it
	counters map[string]int    // requested path → next suffix counter
	exists   func(path string) bool
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
		exists:   pathExists,
	}
}

// Resolve returns the final target path for source. The requested path is
// returned as-is when it is free, already owned by source, or is source itself.
func (cr *CollisionResolver) Resolve(source, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.free(source, requested) {
		cr.owners[requested] = source
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := max(cr.counters[requested], 2)
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, counter, ext))
		if cr.free(source, candidate) {
			cr.counters[requested] = counter + 1
			cr.owners[candidate] = source
			return candidate
		}
		counter++
	}
}

func (cr *CollisionResolver) free(source, target string) bool {
	if owner, claimed := cr.owners[target]; claimed {
		return owner == source
	}
	if !cr.exists(target) {
		return true
	}
	return sameFile(source, target)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func sameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

// RenameOpts controls RenameFile.
type RenameOpts struct {
	DryRun   bool               // compute the target without touching the disk
	Resolver *CollisionResolver // default: a fresh resolver (disk checks only)
}

// RenameFile renames the file at path to name, keeping its directory and
// extension. Forbidden filename characters are stripped from name first.
// An empty name is a no-op returning "". The returned path is the new
// location (or the would-be location with DryRun).
func RenameFile(path, name string, opts RenameOpts) (string, error) {
	name = strings.TrimSpace(StripForbidden(name))
	if name == "" {
		slog.Debug("imgnamer: empty name, rename skipped", "path", path)
		return "", nil
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewCollisionResolver()
	}
	target := resolver.Resolve(path, filepath.Join(filepath.Dir(path), name+filepath.Ext(path)))
	if target == path {
		return path, nil
	}
	if opts.DryRun {
		slog.Info("imgnamer: would rename", "from", filepath.Base(path), "to", filepath.Base(target))
		return target, nil
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	slog.Info("imgnamer: renamed", "from", filepath.Base(path), "to", filepath.Base(target))
	return target, nil
}
