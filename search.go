package imgnamer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const defaultSearchTimeout = 60 * time.Second

// SearchProvider is a reverse-image search backend.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, imagePath string, opts SearchOpts) ([]SearchResult, error)
}

// BestGuesser is implemented by providers that offer their own one-line
// label for an image. SuggestName falls back to it when ranking has nothing
// to choose from.
type BestGuesser interface {
	BestGuess(ctx context.Context, imagePath string) (string, error)
}

// SearchOpts controls a single reverse-image search.
type SearchOpts struct {
	Sites   []string          // preferred sites, searched first with q=<site>
	Params  map[string]string // extra GET parameters for result pages
	Num     int               // max results per provider (default 5)
	Timeout time.Duration     // whole search budget (default 60s)
}

func (o SearchOpts) num() int {
	if o.Num > 0 {
		return o.Num
	}
	return defaultNumResult
}

// SuggestOpts controls SuggestName.
type SuggestOpts struct {
	Hint            string
	Sites           []string
	Params          map[string]string
	Num             int
	UseReference    bool          // compare result dimensions with the file's own
	UseMetadataHint bool          // use embedded title/description when Hint is empty
	Timeout         time.Duration // whole search budget (default 60s)
}

// SearchResults runs every configured provider sequentially and returns the
// concatenated results in provider order. Provider errors are logged and
// skipped so that remaining providers still contribute results.
func (cfg *Config) SearchResults(ctx context.Context, imagePath string, opts SearchOpts) []SearchResult {
	timeout := defaultSearchTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var all []SearchResult
	for _, p := range cfg.resolveProviders() {
		results, err := p.Search(ctx, imagePath, opts)
		if cfg.OnSearch != nil {
			cfg.OnSearch(p.Name(), len(results), err)
		}
		if err != nil {
			slog.Warn("imgnamer: provider search failed", "provider", p.Name(), "path", imagePath, "error", err.Error())
			continue
		}
		slog.Debug("imgnamer: provider search done", "provider", p.Name(), "path", imagePath, "results", len(results))
		all = append(all, results...)
	}
	return all
}

// resolveProviders returns the effective provider list.
// If Providers is set, it is used directly. Otherwise a GoogleProvider is
// created from the configured HTTP clients.
func (cfg *Config) resolveProviders() []SearchProvider {
	if len(cfg.Providers) > 0 {
		return cfg.Providers
	}
	return []SearchProvider{&GoogleProvider{Client: cfg.client()}}
}

func (cfg *Config) client() Client {
	return Client{
		HTTPClient:    cfg.HTTPClient,
		StealthClient: cfg.StealthClient,
		UserAgent:     cfg.userAgent(),
	}
}

// SuggestName returns a prettified name for the image at path, or "" when
// no suggestion could be made. Results are cached by perceptual fingerprint
// when Config.Cache is set.
func (cfg *Config) SuggestName(ctx context.Context, imagePath string, opts SuggestOpts) (string, error) {
	ev := SuggestionEvent{Path: imagePath}
	defer func() {
		if cfg.OnSuggestion != nil {
			cfg.OnSuggestion(ev)
		}
	}()

	hint := opts.Hint
	if hint == "" && opts.UseMetadataHint {
		hint = cfg.metadataHint(imagePath)
	}

	cacheKey := cfg.suggestionKey(imagePath, hint, opts.Sites)
	if cacheKey != "" {
		var cached string
		if cfg.Cache.Get(ctx, cacheKey, &cached) && cached != "" {
			slog.Debug("imgnamer: suggestion cache hit", "path", imagePath, "name", cached)
			ev.Name, ev.Cached = cached, true
			return cached, nil
		}
	}

	results := cfg.SearchResults(ctx, imagePath, SearchOpts{
		Sites:   opts.Sites,
		Params:  opts.Params,
		Num:     opts.Num,
		Timeout: opts.Timeout,
	})
	ev.Candidates = len(results)

	rankOpts := RankOpts{Hint: hint}
	if opts.UseReference {
		rankOpts.ReferenceFile = imagePath
	}
	if cfg.OnRank != nil && len(results) > 0 {
		if ranked, err := cfg.Rank(results, rankOpts); err == nil {
			cfg.OnRank(imagePath, ranked)
		}
	}
	title, err := cfg.ChooseBest(results, rankOpts)
	if err != nil {
		title, err = cfg.bestGuess(ctx, imagePath)
		if err != nil {
			ev.Err = err
			return "", err
		}
	}

	name := Prettify(title)
	ev.Name = name
	if name != "" && cacheKey != "" {
		cfg.Cache.Set(ctx, cacheKey, name)
	}
	return name, nil
}

// bestGuess asks providers implementing BestGuesser, in order, for a label.
func (cfg *Config) bestGuess(ctx context.Context, imagePath string) (string, error) {
	for _, p := range cfg.resolveProviders() {
		g, ok := p.(BestGuesser)
		if !ok {
			continue
		}
		guess, err := g.BestGuess(ctx, imagePath)
		if err != nil {
			slog.Debug("imgnamer: best guess failed", "provider", p.Name(), "error", err.Error())
			continue
		}
		if guess != "" {
			return guess, nil
		}
	}
	return "", ErrEmptyResultSet
}

func (cfg *Config) metadataHint(imagePath string) string {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return ""
	}
	meta := ExtractImageMetadata(data)
	if meta == nil {
		return ""
	}
	return meta.Hint()
}

// suggestionKey is empty when caching is disabled or the image cannot be
// fingerprinted.
func (cfg *Config) suggestionKey(imagePath, hint string, sites []string) string {
	if cfg.Cache == nil {
		return ""
	}
	fp, err := Fingerprint(imagePath)
	if err != nil {
		slog.Debug("imgnamer: fingerprint failed", "path", imagePath, "error", err.Error())
		return ""
	}
	return cfg.Cache.Key("suggestion", fmt.Sprintf("%s|%s|%s", fp, strings.ToLower(hint), strings.Join(sites, ",")))
}
