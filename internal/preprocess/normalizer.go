// Package preprocess cleans raw user queries into tokens for the NLP pipeline.
package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/text/unicode/norm"
)

// Options toggles each cleanup step.
type Options struct {
	Lowercase          bool
	StripURLs          bool
	StripEmails        bool
	StripSpecialChars  bool
	CollapseWhitespace bool
	StripStopwords     bool
	Language           string
	Stem               bool
}

// DefaultOptions enables every cleanup step except stemming.
func DefaultOptions() Options {
	return Options{
		Lowercase:          true,
		StripURLs:          true,
		StripEmails:        true,
		StripSpecialChars:  true,
		CollapseWhitespace: true,
		StripStopwords:     true,
		Language:           "english",
	}
}

var (
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailRe      = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`)
	specialRe    = regexp.MustCompile(`[^a-z0-9\s.,+\-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Periods survive inside tokens so scores like "3.8" stay whole.
	tokenRe = regexp.MustCompile(`[a-z0-9]+(?:[.'\-][a-z0-9]+)*\+*`)
)

// Normalizer implements domain.Normalizer.
type Normalizer struct {
	opts      Options
	stopwords map[string]struct{}
}

// New builds a normalizer. Only English stopwords are bundled.
func New(opts Options) (*Normalizer, error) {
	lang := strings.ToLower(strings.TrimSpace(opts.Language))
	if lang == "" {
		lang = "english"
	}
	if lang != "english" {
		return nil, goerr.New("unsupported normalizer language", goerr.V("language", opts.Language))
	}
	opts.Language = lang
	return &Normalizer{opts: opts, stopwords: englishStopwords()}, nil
}

// NormalizeText applies the string-level cleanup steps only.
func (n *Normalizer) NormalizeText(text string) string {
	result := strings.TrimSpace(norm.NFKC.String(text))
	if n.opts.Lowercase {
		result = strings.ToLower(result)
	}
	if n.opts.StripURLs {
		result = urlRe.ReplaceAllString(result, " ")
	}
	if n.opts.StripEmails {
		result = emailRe.ReplaceAllString(result, " ")
	}
	if n.opts.StripSpecialChars {
		result = specialRe.ReplaceAllString(result, " ")
	}
	if n.opts.CollapseWhitespace {
		result = strings.TrimSpace(whitespaceRe.ReplaceAllString(result, " "))
	}
	return result
}

// Normalize runs the full pipeline: clean, tokenize, drop stopwords, stem,
// and drop single-character noise while keeping digits.
func (n *Normalizer) Normalize(text string) []string {
	cleaned := n.NormalizeText(text)
	if !n.opts.Lowercase {
		// the token pattern is lowercase-only
		cleaned = strings.ToLower(cleaned)
	}
	raw := tokenRe.FindAllString(cleaned, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if n.opts.StripStopwords {
			if _, isStop := n.stopwords[tok]; isStop {
				continue
			}
		}
		if n.opts.Stem && isAlpha(tok) {
			tok = english.Stem(tok, false)
		}
		if len(tok) <= 1 && !isDigits(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func englishStopwords() map[string]struct{} {
	words := []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours", "yourself",
		"yourselves", "he", "him", "his", "himself", "she", "her", "hers", "herself", "it", "its", "itself",
		"they", "them", "their", "theirs", "themselves", "what", "which", "who", "whom", "this", "that",
		"these", "those", "am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
		"having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if", "or", "because", "as",
		"until", "while", "of", "at", "by", "for", "with", "about", "against", "between", "into", "through",
		"during", "before", "after", "above", "below", "to", "from", "up", "down", "in", "out", "on", "off",
		"over", "under", "again", "further", "then", "once", "here", "there", "when", "where", "why", "how",
		"all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no", "nor", "not",
		"only", "own", "same", "so", "than", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
