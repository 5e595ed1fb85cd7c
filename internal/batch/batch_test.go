package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	imgnamer "github.com/anatolykoptev/go-imgnamer"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestDiscover_FiltersExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "notes.txt", "c.avif", "d.tiff", "song.mp3", ".hidden.jpg"} {
		touch(t, dir, name)
	}
	touch(t, dir, "sub/e.gif")

	files, err := Discover([]string{dir}, false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a.png", "b.JPG", "c.avif", "d.tiff"}
	if got := basenames(files); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_Recursive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "a.png")
	touch(t, dir, "sub/deeper/b.webp")
	touch(t, dir, ".git/c.png")

	files, err := Discover([]string{dir}, true)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := basenames(files); !slices.Equal(got, []string{"a.png", "b.webp"}) {
		t.Errorf("got %v", got)
	}
}

func TestDiscover_FilesAndDuplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := touch(t, dir, "a.bmp")

	files, err := Discover([]string{a, dir, a}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("got %v, want a single file", files)
	}

	if _, err := Discover([]string{touch(t, dir, "x.txt")}, false); err == nil {
		t.Error("explicit non-image file accepted")
	}
	if _, err := Discover([]string{filepath.Join(dir, "missing")}, false); err == nil {
		t.Error("missing path accepted")
	}
}

type fakeNamer map[string]struct {
	name string
	err  error
}

func (f fakeNamer) SuggestName(_ context.Context, path string, _ imgnamer.SuggestOpts) (string, error) {
	r := f[filepath.Base(path)]
	return r.name, r.err
}

func TestRunner_OutcomesAndStats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		touch(t, dir, "1.jpg"),
		touch(t, dir, "2.jpg"),
		touch(t, dir, "3.jpg"),
		touch(t, dir, "4.jpg"),
		touch(t, dir, "Tower.jpg"),
		touch(t, dir, "6.jpg"),
	}
	namer := fakeNamer{
		"1.jpg":     {name: "Tower"},
		"2.jpg":     {err: imgnamer.ErrEmptyResultSet},
		"3.jpg":     {err: errors.New("boom")},
		"4.jpg":     {name: ""},
		"Tower.jpg": {name: "Tower"},
		"6.jpg":     {name: "Tower"},
	}

	var statuses []string
	r := &Runner{Namer: namer, OnRename: func(s string) { statuses = append(statuses, s) }}
	stats := r.Run(context.Background(), files)

	want := []string{StatusRenamed, StatusSkipped, StatusFailed, StatusSkipped, StatusUnchanged, StatusRenamed}
	if !slices.Equal(statuses, want) {
		t.Errorf("statuses = %v, want %v", statuses, want)
	}
	if stats.Total != 6 || stats.Renamed != 2 || stats.NoSuggestion != 2 || stats.Failed != 1 || stats.Unchanged != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Processed() != stats.Total {
		t.Errorf("Processed = %d, want %d", stats.Processed(), stats.Total)
	}

	for _, name := range []string{"Tower (2).jpg", "Tower (3).jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestRunner_DryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := touch(t, dir, "1.jpg")
	r := &Runner{Namer: fakeNamer{"1.jpg": {name: "Tower"}}, DryRun: true}

	stats := r.Run(context.Background(), []string{src})
	if stats.Renamed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("dry run moved the file: %v", err)
	}
}

func TestRunner_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Namer: fakeNamer{}}
	if stats := r.Run(ctx, []string{"a.jpg", "b.jpg"}); stats.Processed() != 0 {
		t.Errorf("processed %d files after cancel", stats.Processed())
	}
}
