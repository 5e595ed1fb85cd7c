package imgnamer

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// SitePlaceholder is replaced by the source site label in rule templates.
const SitePlaceholder = "%s"

// Category weights. A category whose templates match multiplies the bonus by its weight.
const (
	SpecificWeight = 2.0
	GenericWeight  = 1.5
	AvoidWeight    = 0.5
)

//go:embed rules.json
var defaultRulesJSON []byte

// RuleSet holds the regular-expression templates used by PatternBonus.
// It is never mutated after loading and may be shared between goroutines.
type RuleSet struct {
	Specific []string `mapstructure:"specific"`
	Generic  []string `mapstructure:"generic"`
	Avoid    []string `mapstructure:"avoid"`
}

type ruleCategory struct {
	name      string
	templates []string
	weight    float64
}

// categories returns the rule lists in evaluation order.
func (r *RuleSet) categories() []ruleCategory {
	return []ruleCategory{
		{"specific", r.Specific, SpecificWeight},
		{"generic", r.Generic, GenericWeight},
		{"avoid", r.Avoid, AvoidWeight},
	}
}

// DefaultRuleSet returns the built-in rule set.
func DefaultRuleSet() *RuleSet {
	v := viper.New()
	v.SetConfigType("json")
	rs, err := decodeRuleSet(v, v.ReadConfig(bytes.NewReader(defaultRulesJSON)))
	if err != nil {
		// rules.json is compiled in; failing to parse it is a build defect.
		panic(err)
	}
	return rs
}

// LoadRuleSet reads a rule document (JSON, YAML or TOML, chosen by extension)
// with the arrays "specific", "generic" and "avoid". Any of them may be empty
// or absent, but not all three.
func LoadRuleSet(path string) (*RuleSet, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return decodeRuleSet(v, v.ReadInConfig())
}

// LoadRuleSetOrDefault loads path, falling back to the built-in rules when path
// is empty and to a neutral rule set when the file cannot be used.
func LoadRuleSetOrDefault(path string) *RuleSet {
	if path == "" {
		return DefaultRuleSet()
	}
	rs, err := LoadRuleSet(path)
	if err != nil {
		slog.Warn("imgnamer: rule set unavailable, pattern bonuses disabled", "path", path, "error", err.Error())
		return &RuleSet{}
	}
	return rs
}

func decodeRuleSet(v *viper.Viper, readErr error) (*RuleSet, error) {
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleSetUnavailable, readErr)
	}
	if !v.IsSet("specific") && !v.IsSet("generic") && !v.IsSet("avoid") {
		return nil, fmt.Errorf("%w: no specific, generic or avoid list", ErrRuleSetUnavailable)
	}
	var rs RuleSet
	if err := v.Unmarshal(&rs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleSetUnavailable, err)
	}
	return &rs, nil
}

// PatternBonus returns the product of the per-category factors for title:
// within a category the first matching template applies the category weight,
// otherwise the category contributes 1. A nil rule set is neutral.
func PatternBonus(title, location string, rules *RuleSet) float64 {
	if rules == nil {
		return 1
	}
	site := siteLabel(location)
	bonus := 1.0
	for _, cat := range rules.categories() {
		if matchesAny(title, site, cat.templates) {
			bonus *= cat.weight
		}
	}
	return bonus
}

func matchesAny(title, site string, templates []string) bool {
	for _, tmpl := range templates {
		re := resolveTemplate(tmpl, site)
		if re != nil && re.MatchString(title) {
			return true
		}
	}
	return false
}

// resolveTemplate substitutes the site label and compiles a case-insensitive
// pattern. Returns nil for templates that cannot apply: unknown site or bad regex.
func resolveTemplate(tmpl, site string) *regexp.Regexp {
	if strings.Contains(tmpl, SitePlaceholder) {
		if site == "" {
			return nil
		}
		tmpl = strings.ReplaceAll(tmpl, SitePlaceholder, regexp.QuoteMeta(site))
	}
	re, err := regexp.Compile("(?i)" + tmpl)
	if err != nil {
		slog.Debug("imgnamer: skipping bad rule template", "template", tmpl, "error", err.Error())
		return nil
	}
	return re
}

// siteLabel returns the lowercased primary hostname label of location:
// "https://www.deviantart.com/art/x" → "deviantart". Locations without a
// scheme are accepted. Unparseable input falls back to the raw lowercased string.
func siteLabel(location string) string {
	fields := strings.Fields(location)
	if len(fields) == 0 {
		return ""
	}
	loc := fields[0]

	host := hostname(loc)
	if host == "" {
		return strings.ToLower(loc)
	}
	labels := strings.Split(host, ".")
	if labels[0] == "www" && len(labels) > 1 {
		return labels[1]
	}
	return labels[0]
}

func hostname(loc string) string {
	if u, err := url.Parse(loc); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	if strings.Contains(loc, "://") {
		return ""
	}
	if u, err := url.Parse("//" + loc); err == nil {
		return strings.ToLower(u.Hostname())
	}
	return ""
}
