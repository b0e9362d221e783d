// Package chunker splits plain-text knowledge files into passage documents.
package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"eduverse/internal/domain"
)

// A sentence ends at terminal punctuation followed by whitespace, so decimals
// such as "3.7" stay inside their sentence. Trailing text without
// punctuation is its own sentence.
var sentencePattern = regexp.MustCompile(`(?s)\S.*?(?:[.!?]+(?:\s+|$)|$)`)

// SplitSentences returns the trimmed sentences of text.
func SplitSentences(text string) []string {
	raw := sentencePattern.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SentenceChunker groups sentences into passages with optional overlap.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
}

// NewSentenceChunker returns a chunker; non-positive sizes select 2 sentences
// per passage. Overlap is clamped below the passage size.
func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 2
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
	}
}

// Chunk implements domain.Chunker. Passage IDs are "<id>:<index>" and every
// passage carries a copy of metadata. Blank text yields no passages.
func (c *SentenceChunker) Chunk(id, text string, metadata map[string]string) ([]domain.Document, error) {
	sentences := SplitSentences(text)
	var docs []domain.Document
	idx := 0
	for i := 0; i < len(sentences); {
		end := min(i+c.sentencesPerChunk, len(sentences))
		docs = append(docs, domain.Document{
			ID:       id + ":" + strconv.Itoa(idx),
			Text:     strings.Join(sentences[i:end], " "),
			Metadata: copyMetadata(metadata),
		})
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
		idx++
	}
	return docs, nil
}

func copyMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
