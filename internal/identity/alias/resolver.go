package alias

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/conclave-run/taskcore/internal/identity"
)

// compiledPattern pairs a user-supplied pattern with its compiled regex and
// the canonical template used to render a match.
type compiledPattern struct {
	regex     *regexp.Regexp
	canonical string
	varNames  []string
}

// Resolver maps external identity-provider user strings to canonical
// identity.UserIDs using an ordered list of patterns.
//
// A Resolver with no patterns is a valid passthrough: Resolve returns its
// input unchanged. This lets deployments that use a single identity
// provider skip configuration entirely.
type Resolver struct {
	patterns []compiledPattern
}

// variableRe matches {name} or {name*} placeholders in a pattern string.
var variableRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\*?\}`)

// compilePattern converts a pattern string to a compiled, anchored regex.
//
// Pattern: "okta:{email}" → Regex: ^okta:(?P<email>[^/]+)$.
// Pattern: "ldap/{dn*}" → Regex: ^ldap/(?P<dn>.+)$.
func compilePattern(pattern string) (*regexp.Regexp, []string, error) {
	varNames := make([]string, 0, 2) //nolint:mnd // preallocate for typical pattern

	escaped := regexp.QuoteMeta(pattern)
	result := escaped

	matches := variableRe.FindAllStringSubmatch(pattern, -1)
	for _, match := range matches {
		fullMatch := match[0] // e.g., "{email}" or "{dn*}"
		varName := match[1]   // e.g., "email" or "dn"
		isGreedy := strings.HasSuffix(fullMatch, "*}")

		varNames = append(varNames, varName)

		var captureGroup string
		if isGreedy {
			captureGroup = "(?P<" + varName + ">.+)"
		} else {
			captureGroup = "(?P<" + varName + ">[^/]+)"
		}

		escapedVar := regexp.QuoteMeta(fullMatch)
		result = strings.Replace(result, escapedVar, captureGroup, 1)
	}

	result = "^" + result + "$"

	re, err := regexp.Compile(result)
	if err != nil {
		return nil, nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	return re, varNames, nil
}

// substituteVariables replaces {var} placeholders in canonical with captured values.
func substituteVariables(canonical string, captures map[string]string) string {
	result := canonical

	for varName, value := range captures {
		result = strings.ReplaceAll(result, "{"+varName+"}", value)
		result = strings.ReplaceAll(result, "{"+varName+"*}", value)
	}

	return result
}

// NewResolver builds a Resolver from cfg.
//
// Patterns with an empty Pattern or Canonical field, or with a Pattern that
// fails to compile, are skipped with a logged warning rather than failing
// construction - a single malformed pattern must not prevent every other
// identity from resolving.
//
// A nil cfg, or one with no patterns, yields a no-op passthrough resolver.
func NewResolver(cfg *Config) *Resolver {
	r := &Resolver{}

	if cfg == nil {
		return r
	}

	for _, p := range cfg.UserPatterns {
		if p.Pattern == "" || p.Canonical == "" {
			slog.Warn("skipping identity alias pattern with empty pattern or canonical",
				slog.String("pattern", p.Pattern),
				slog.String("canonical", p.Canonical))

			continue
		}

		re, varNames, err := compilePattern(p.Pattern)
		if err != nil {
			slog.Warn("skipping identity alias pattern with invalid regex",
				slog.String("pattern", p.Pattern),
				slog.String("error", err.Error()))

			continue
		}

		r.patterns = append(r.patterns, compiledPattern{
			regex:     re,
			canonical: p.Canonical,
			varNames:  varNames,
		})
	}

	return r
}

// PatternCount returns the number of compiled patterns the resolver holds.
func (r *Resolver) PatternCount() int {
	return len(r.patterns)
}

// Resolve maps an external identity-provider user string to a canonical
// UserID, applying the first matching pattern. A string matching no
// pattern is returned unchanged as a UserID - an unrecognized provider
// format is not itself an error; it is up to the caller to decide whether
// an unaliased identity is acceptable.
func (r *Resolver) Resolve(externalUser string) identity.UserID {
	canonical, _ := r.Match(externalUser)

	return identity.UserID(canonical)
}

// Match reports whether externalUser matches any configured pattern and,
// if so, returns its canonical rendering.
func (r *Resolver) Match(externalUser string) (string, bool) {
	for _, p := range r.patterns {
		match := p.regex.FindStringSubmatch(externalUser)
		if match == nil {
			continue
		}

		captures := make(map[string]string, len(p.varNames))

		for i, name := range p.regex.SubexpNames() {
			if name == "" || i >= len(match) {
				continue
			}

			captures[name] = match[i]
		}

		return substituteVariables(p.canonical, captures), true
	}

	return externalUser, false
}
