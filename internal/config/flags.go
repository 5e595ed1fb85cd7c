package config

// Flags mirror the environment overrides; short aliases follow the usual
// -r/-n/-v conventions.

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// listValue is a comma-separated flag.Value. Repeating the flag appends.
type listValue struct {
	dst *[]string
	set bool
}

func (l *listValue) String() string {
	if l.dst == nil {
		return ""
	}
	return strings.Join(*l.dst, ",")
}

func (l *listValue) Set(s string) error {
	if !l.set {
		*l.dst = nil
		l.set = true
	}
	*l.dst = append(*l.dst, splitList(s)...)
	return nil
}

// ParseFlags parses args (without the program name) into cfg. Flag defaults
// are the values already in cfg. Returns flag.ErrHelp for -h/--help.
func ParseFlags(cfg *Config, args []string, output io.Writer) error {
	fs := flag.NewFlagSet("imgnamer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { printUsage(fs) }

	var noReference, noMetadataHint bool

	fs.Var(&listValue{dst: &cfg.Engines}, "engines", "Search engines, comma-separated: google, tineye")
	fs.Var(&listValue{dst: &cfg.Sites}, "sites", "Preferred sites searched first, comma-separated")
	fs.StringVar(&cfg.Hint, "hint", cfg.Hint, "Words expected in the name (e.g. a series or artist)")
	fs.IntVar(&cfg.Num, "num", cfg.Num, "Max results per engine")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Search budget per image")
	fs.BoolVar(&cfg.Render, "render", cfg.Render, "Render result pages in headless Chrome")
	fs.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent sent to search engines")
	fs.StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "Title rule file (json, yaml or toml)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the suggestion cache")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Suggestion cache TTL")
	fs.BoolVar(&noReference, "no-reference", false, "Do not compare result sizes with the file's own")
	fs.BoolVar(&noMetadataHint, "no-metadata-hint", false, "Do not use embedded titles as hint")

	fs.BoolVar(&cfg.Recursive, "recursive", cfg.Recursive, "Descend into subdirectories")
	fs.BoolVar(&cfg.Recursive, "r", cfg.Recursive, "Same as --recursive")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Print new names without renaming")
	fs.BoolVar(&cfg.DryRun, "n", cfg.DryRun, "Same as --dry-run")

	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log the full ranking for every file")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this file on exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if noReference {
		cfg.UseReference = false
	}
	if noMetadataHint {
		cfg.MetadataHint = false
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Paths = fs.Args()
	return nil
}

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "Usage: imgnamer [flags] <file-or-dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Names images after their best reverse-image search result.")
	fmt.Fprintln(w, "Every flag can also be set as IMGNAMER_<FLAG>, e.g. IMGNAMER_REDIS_ADDR.")
	fmt.Fprintln(w)
	fs.PrintDefaults()
}
