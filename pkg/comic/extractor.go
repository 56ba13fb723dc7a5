package comic

import (
	"fmt"
	"regexp"
	"strings"

	"comicdl/pkg/config"
)

// Extractor finds the strip image URL inside a page body.
//
// When the pattern has a capture group, the first group is used; otherwise
// the whole match is. The prefix is prepended to the result.
type Extractor struct {
	name    string
	pattern *regexp.Regexp
	group   int
	prefix  string
}

// NewExtractor compiles a custom extraction rule
func NewExtractor(name, pattern, prefix string) (*Extractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid image pattern: %w", err)
	}

	group := 0
	if re.NumSubexp() > 0 {
		group = 1
	}

	return &Extractor{
		name:    name,
		pattern: re,
		group:   group,
		prefix:  prefix,
	}, nil
}

// AttributeExtractor returns the canonical rule: a protocol-relative URL
// inside a data-image attribute, made absolute with "https:".
func AttributeExtractor() *Extractor {
	e, _ := NewExtractor(config.RuleAttribute, AttributePattern, AttributePrefix)
	return e
}

// DirectExtractor returns the rule matching a fully-qualified asset URL
func DirectExtractor() *Extractor {
	e, _ := NewExtractor(config.RuleDirect, DirectPattern, "")
	return e
}

// ExtractorForRule resolves a configured rule name to an extractor
func ExtractorForRule(rule, pattern, prefix string) (*Extractor, error) {
	if pattern != "" {
		return NewExtractor(config.RuleCustom, pattern, prefix)
	}

	switch strings.ToLower(strings.TrimSpace(rule)) {
	case "", config.RuleAttribute:
		return AttributeExtractor(), nil
	case config.RuleDirect:
		return DirectExtractor(), nil
	case config.RuleCustom:
		return nil, fmt.Errorf("custom rule requires an image pattern")
	default:
		return nil, fmt.Errorf("unknown extraction rule %q", rule)
	}
}

// Extract returns the resolved image URL and whether the pattern matched
func (e *Extractor) Extract(body string) (string, bool) {
	match := e.pattern.FindStringSubmatch(body)
	if match == nil {
		return "", false
	}
	return e.prefix + match[e.group], true
}

// Name returns the rule name
func (e *Extractor) Name() string {
	return e.name
}
