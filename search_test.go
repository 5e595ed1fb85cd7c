package imgnamer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeProvider returns canned results and records calls.
type fakeProvider struct {
	name    string
	results []SearchResult
	err     error

	mu        sync.Mutex
	calls     []SearchOpts
	deadlines []time.Duration // remaining budget seen by each call
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, _ string, opts SearchOpts) ([]SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	if d, ok := ctx.Deadline(); ok {
		f.deadlines = append(f.deadlines, time.Until(d))
	}
	f.mu.Unlock()
	return f.results, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type guessingProvider struct {
	fakeProvider
	guess string
}

func (g *guessingProvider) BestGuess(context.Context, string) (string, error) {
	return g.guess, nil
}

func TestSearchResults_MergesInProviderOrder(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "a", results: []SearchResult{{Title: "A1"}, {Title: "A2"}}}
	broken := &fakeProvider{name: "broken", err: errors.New("captcha")}
	b := &fakeProvider{name: "b", results: []SearchResult{{Title: "B1"}}}

	type call struct {
		provider string
		results  int
		failed   bool
	}
	var seen []call
	cfg := &Config{
		Providers: []SearchProvider{a, broken, b},
		OnSearch: func(provider string, results int, err error) {
			seen = append(seen, call{provider, results, err != nil})
		},
	}

	got := cfg.SearchResults(context.Background(), "x.png", SearchOpts{Sites: []string{"artstation.com"}, Num: 3})
	titles := make([]string, len(got))
	for i, r := range got {
		titles[i] = r.Title
	}
	if len(titles) != 3 || titles[0] != "A1" || titles[1] != "A2" || titles[2] != "B1" {
		t.Errorf("titles = %v, want [A1 A2 B1]", titles)
	}

	want := []call{{"a", 2, false}, {"broken", 0, true}, {"b", 1, false}}
	if len(seen) != len(want) {
		t.Fatalf("OnSearch calls = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("OnSearch[%d] = %+v, want %+v", i, seen[i], want[i])
		}
	}
	if opts := a.calls[0]; opts.Num != 3 || len(opts.Sites) != 1 {
		t.Errorf("provider got opts %+v", opts)
	}
}

func TestSearchResults_DefaultProviderIsGoogle(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	providers := cfg.resolveProviders()
	if len(providers) != 1 || providers[0].Name() != "google" {
		t.Errorf("default providers = %v", providers)
	}
}

func TestSuggestName(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake", results: []SearchResult{
		{Title: "tower wallpaper hd", Location: "wallpapers.example.com"},
		{Title: "Eiffel tower: at night", Location: "example.com"},
	}}
	var events []SuggestionEvent
	cfg := &Config{
		Rules:        DefaultRuleSet(),
		Providers:    []SearchProvider{p},
		OnSuggestion: func(ev SuggestionEvent) { events = append(events, ev) },
	}

	got, err := cfg.SuggestName(context.Background(), testImagePath(t), SuggestOpts{})
	if err != nil {
		t.Fatalf("SuggestName: %v", err)
	}
	if got != "Eiffel Tower At Night" {
		t.Errorf("SuggestName = %q, want %q", got, "Eiffel Tower At Night")
	}
	if len(events) != 1 || events[0].Name != got || events[0].Candidates != 2 || events[0].Cached {
		t.Errorf("events = %+v", events)
	}
}

func TestSuggestName_Cache(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake", results: []SearchResult{{Title: "tower", Location: "example.com"}}}
	cache := NewMemoryCache()
	var events []SuggestionEvent
	cfg := &Config{
		Providers:    []SearchProvider{p},
		Cache:        cache,
		OnSuggestion: func(ev SuggestionEvent) { events = append(events, ev) },
	}
	path := testImagePath(t)

	for i := 0; i < 2; i++ {
		got, err := cfg.SuggestName(context.Background(), path, SuggestOpts{})
		if err != nil || got != "Tower" {
			t.Fatalf("SuggestName = %q, %v", got, err)
		}
	}
	if p.callCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.callCount())
	}
	if cache.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", cache.Len())
	}
	if len(events) != 2 || !events[1].Cached {
		t.Errorf("second event not marked cached: %+v", events)
	}

	// A different hint is a different question.
	if _, err := cfg.SuggestName(context.Background(), path, SuggestOpts{Hint: "paris"}); err != nil {
		t.Fatal(err)
	}
	if p.callCount() != 2 {
		t.Errorf("provider called %d times after new hint, want 2", p.callCount())
	}
}

func TestSuggestName_NoResults(t *testing.T) {
	t.Parallel()

	var events []SuggestionEvent
	cfg := &Config{
		Providers:    []SearchProvider{&fakeProvider{name: "empty"}},
		OnSuggestion: func(ev SuggestionEvent) { events = append(events, ev) },
	}
	got, err := cfg.SuggestName(context.Background(), testImagePath(t), SuggestOpts{})
	if !errors.Is(err, ErrEmptyResultSet) || got != "" {
		t.Errorf("SuggestName = %q, %v; want \"\", ErrEmptyResultSet", got, err)
	}
	if len(events) != 1 || !errors.Is(events[0].Err, ErrEmptyResultSet) {
		t.Errorf("events = %+v", events)
	}
}

func TestSuggestName_BestGuessFallback(t *testing.T) {
	t.Parallel()

	cfg := &Config{Providers: []SearchProvider{
		&fakeProvider{name: "empty"},
		&guessingProvider{fakeProvider: fakeProvider{name: "guess"}, guess: "eiffel tower"},
	}}
	got, err := cfg.SuggestName(context.Background(), testImagePath(t), SuggestOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Eiffel Tower" {
		t.Errorf("SuggestName = %q, want %q", got, "Eiffel Tower")
	}
}

func TestSuggestName_UseReference(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake", results: []SearchResult{
		{Title: "Tiny thumbnail", Location: "example.com", Dimensions: Dimensions{10, 100}},
		{Title: "Full size", Location: "example.com", Dimensions: Dimensions{64, 48}},
	}}
	cfg := &Config{Providers: []SearchProvider{p}}

	got, err := cfg.SuggestName(context.Background(), testImagePath(t), SuggestOpts{UseReference: true})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Full Size" {
		t.Errorf("SuggestName = %q, want %q", got, "Full Size")
	}
}

func TestSuggestName_TimeoutReachesProvider(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake", results: []SearchResult{{Title: "tower", Location: "example.com"}}}
	cfg := &Config{Providers: []SearchProvider{p}}

	if _, err := cfg.SuggestName(context.Background(), testImagePath(t), SuggestOpts{Timeout: 2 * time.Second}); err != nil {
		t.Fatal(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.deadlines) != 1 {
		t.Fatalf("provider saw %d deadlines, want 1", len(p.deadlines))
	}
	if left := p.deadlines[0]; left <= 0 || left > 2*time.Second {
		t.Errorf("provider budget = %v, want at most 2s", left)
	}
	if p.calls[0].Timeout != 2*time.Second {
		t.Errorf("SearchOpts.Timeout = %v, want 2s", p.calls[0].Timeout)
	}
}

func TestSuggestName_OnRank(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake", results: []SearchResult{
		{Title: "tower wallpaper hd", Location: "example.com"},
		{Title: "Eiffel tower", Location: "example.com"},
	}}
	var got []RankedResult
	var gotPath string
	cfg := &Config{
		Rules:     DefaultRuleSet(),
		Providers: []SearchProvider{p},
		OnRank: func(path string, ranked []RankedResult) {
			gotPath, got = path, ranked
		},
	}
	path := testImagePath(t)

	name, err := cfg.SuggestName(context.Background(), path, SuggestOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != path || len(got) != 2 {
		t.Fatalf("OnRank(%q, %d results)", gotPath, len(got))
	}
	if Prettify(got[0].Result.Title) != name || got[0].Index != 1 {
		t.Errorf("ranking head = %+v, suggestion %q", got[0], name)
	}
}
