// Package ner extracts admissions entities (universities, programs, tests,
// locations, deadlines, scores) with gazetteer lookups and regular expressions.
package ner

import (
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"eduverse/internal/domain"
)

type scoreMatcher struct {
	kind string
	re   *regexp.Regexp
}

type locationMatcher struct {
	code string
	re   *regexp.Regexp
}

// PatternExtractor implements domain.EntityExtractor with fixed rules.
// It holds no mutable state and is safe for concurrent use.
type PatternExtractor struct {
	universities []string
	locations    []locationMatcher
	programs     []*regexp.Regexp
	tests        []*regexp.Regexp
	deadlines    []*regexp.Regexp
	scores       []scoreMatcher
}

var _ domain.EntityExtractor = (*PatternExtractor)(nil)

// New compiles the rules. Any pattern error is a configuration error.
func New(rules Rules) (*PatternExtractor, error) {
	e := &PatternExtractor{}
	for _, u := range rules.Universities {
		u = strings.ToLower(strings.TrimSpace(u))
		if u != "" {
			e.universities = append(e.universities, u)
		}
	}
	for _, code := range rules.Locations {
		re, err := compile(`\b` + regexp.QuoteMeta(strings.ToLower(code)) + `\b`)
		if err != nil {
			return nil, err
		}
		e.locations = append(e.locations, locationMatcher{code: strings.ToUpper(code), re: re})
	}
	var err error
	if e.programs, err = compileAll(rules.ProgramPatterns); err != nil {
		return nil, err
	}
	if e.tests, err = compileAll(rules.TestPatterns); err != nil {
		return nil, err
	}
	if e.deadlines, err = compileAll(rules.DeadlinePatterns); err != nil {
		return nil, err
	}
	for _, sp := range rules.ScorePatterns {
		re, err := compile(sp.Pattern)
		if err != nil {
			return nil, err
		}
		if re.NumSubexp() != 1 {
			return nil, goerr.Wrap(ErrInvalidScorePattern, "bad score pattern",
				goerr.V("kind", sp.Kind), goerr.V("pattern", sp.Pattern))
		}
		e.scores = append(e.scores, scoreMatcher{kind: sp.Kind, re: re})
	}
	return e, nil
}

// MustNew is New for rules known at compile time.
func MustNew(rules Rules) *PatternExtractor {
	e, err := New(rules)
	if err != nil {
		panic(err)
	}
	return e
}

// Validate compiles patterns without building an extractor.
func Validate(patterns []string) error {
	_, err := compileAll(patterns)
	return err
}

// Extract returns all entities found in text. It never fails; categories
// with no match come back empty.
func (e *PatternExtractor) Extract(text string) domain.Entities {
	lower := strings.ToLower(text)

	var ents domain.Entities
	for _, u := range e.universities {
		if strings.Contains(lower, u) {
			ents.Universities = appendUnique(ents.Universities, u)
		}
	}

	for _, re := range e.programs {
		for _, m := range re.FindAllString(lower, -1) {
			ents.Programs = appendUnique(ents.Programs, strings.TrimSpace(m))
		}
	}

	for _, re := range e.tests {
		for _, m := range re.FindAllString(lower, -1) {
			ents.Tests = appendUnique(ents.Tests, strings.ToUpper(m))
		}
	}
	sort.Strings(ents.Tests)

	for _, loc := range e.locations {
		if loc.re.MatchString(lower) {
			ents.Locations = append(ents.Locations, loc.code)
		}
	}

	// Repeated mentions, or one phrase hit by two patterns, are kept.
	for _, re := range e.deadlines {
		for _, m := range re.FindAllString(lower, -1) {
			ents.Deadlines = append(ents.Deadlines, strings.TrimSpace(m))
		}
	}

	for _, sm := range e.scores {
		if m := sm.re.FindStringSubmatch(lower); m != nil {
			if ents.Scores == nil {
				ents.Scores = make(map[string]string)
			}
			ents.Scores[sm.kind] = m[1]
		}
	}
	return ents
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidPattern, "failed to compile pattern",
			goerr.V("pattern", pattern), goerr.V("cause", err.Error()))
	}
	return re, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
