package imgnamer

import (
	"context"
	"errors"
	"net/http"
)

// DefaultUserAgent is sent to search engines when Config.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0"

// DefaultMinHintWordLength is the minimum rune count for a hint word to count.
const DefaultMinHintWordLength = 2

var (
	// ErrEmptyResultSet is returned when there is no candidate to rank.
	ErrEmptyResultSet = errors.New("imgnamer: empty result set")
	// ErrInvalidDimension is returned for negative or otherwise unusable dimensions.
	ErrInvalidDimension = errors.New("imgnamer: invalid dimension")
	// ErrRuleSetUnavailable is returned when a rule file cannot be read or parsed.
	ErrRuleSetUnavailable = errors.New("imgnamer: rule set unavailable")
	// ErrUnsupportedFormat is returned by the dimension reader for unknown image layouts.
	ErrUnsupportedFormat = errors.New("imgnamer: unsupported image format")
)

// Cache abstracts key-value caching (Redis, in-memory map, etc.)
type Cache interface {
	Key(prefix, value string) string
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
}

// DimensionReader returns the pixel dimensions of an image file.
type DimensionReader func(path string) (Dimensions, error)

// Config holds all dependencies injected by the consumer.
type Config struct {
	Rules           *RuleSet         // nil = every pattern factor is neutral
	Providers       []SearchProvider // search backends, queried in order
	Cache           Cache            // optional: caches whole suggestions by image fingerprint
	DimensionReader DimensionReader  // default: ReadDimensions
	StealthClient   *http.Client     // optional: tried first for result pages
	HTTPClient      *http.Client     // default: http.DefaultClient
	UserAgent       string           // default: DefaultUserAgent

	// MinHintWordLength drops shorter hint words (default: DefaultMinHintWordLength).
	MinHintWordLength int

	// Optional callbacks for metrics/logging.
	OnSearch     func(provider string, results int, err error)
	OnSuggestion func(SuggestionEvent)

	// OnRank receives the full ranking of each SuggestName call that had
	// candidates, best first.
	OnRank func(path string, ranked []RankedResult)
}

// SuggestionEvent describes the outcome of one SuggestName call.
type SuggestionEvent struct {
	Path       string
	Name       string // empty when no suggestion was made
	Candidates int
	Cached     bool
	Err        error
}

// The accessors below resolve defaults without writing to the Config, so one
// Config can serve concurrent calls.

func (c *Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c *Config) dimensionReader() DimensionReader {
	if c.DimensionReader != nil {
		return c.DimensionReader
	}
	return ReadDimensions
}

func (c *Config) minHintWordLength() int {
	if c.MinHintWordLength > 0 {
		return c.MinHintWordLength
	}
	return DefaultMinHintWordLength
}
