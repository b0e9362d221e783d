// Package response renders the advisor's grounded answer from the detected
// intent, dialogue context and retrieved passages.
package response

import (
	"strings"

	"eduverse/internal/domain"
)

// MaxPassages bounds the evidence bullets in one answer.
const MaxPassages = 3

// Guardrails are the rules every answer is written under. They are
// informational and not enforced by Compose.
var Guardrails = []string{
	"Only state facts supported by retrieved passages or widely-known requirements.",
	"For specific deadlines or fees, recommend checking the official program website.",
	"If information is missing, ask a clarifying question rather than guessing.",
	"Use hedging language ('typically', 'generally') for uncertain information.",
}

var guidance = map[string]string{
	domain.IntentAdmissions:   "Share your target degree (MS/PhD), major, and intake term (Fall/Spring) to refine requirements.",
	domain.IntentSOP:          "If you paste your SOP draft, I can suggest structure improvements and stronger evidence of fit.",
	domain.IntentScholarships: "Funding varies by university and program; consider merit scholarships, TA/RA positions, and external fellowships.",
	domain.IntentTestPrep:     "Share your current scores and timeline; I can suggest a study plan and practice resources.",
}

// FallbackGuidance is used for intents outside the guidance table.
const FallbackGuidance = "Please clarify whether you need help with admissions, SOP, scholarships, or test preparation."

// Disclaimer closes every answer.
const Disclaimer = "For official deadlines and fee amounts, always verify on the university/program website."

const bullet = "• "

// Inputs is everything Compose needs. Entities and Question are carried for
// callers and future templates; the current layout does not print them.
type Inputs struct {
	Intent   string
	Entities domain.Entities
	Context  string
	Passages []string
	Question string
}

// Guidance returns the tip for intent and whether the table knows it.
func Guidance(intent string) (string, bool) {
	g, ok := guidance[intent]
	if !ok {
		return FallbackGuidance, false
	}
	return g, true
}

// Compose renders the answer. It is pure: equal inputs give equal output.
func Compose(in Inputs) string {
	var lines []string
	lines = append(lines, "**Intent detected:** "+in.Intent)

	if in.Context != "" {
		lines = append(lines, "**Context:** "+in.Context)
	}

	if len(in.Passages) > 0 {
		lines = append(lines, "\n**Relevant Information:**")
		passages := in.Passages
		if len(passages) > MaxPassages {
			passages = passages[:MaxPassages]
		}
		for _, p := range passages {
			lines = append(lines, bullet+p)
		}
	}

	g, _ := Guidance(in.Intent)
	lines = append(lines, "\n**Guidance:**", bullet+g)
	lines = append(lines, "\n**Note:**", bullet+Disclaimer)

	return strings.Join(lines, "\n")
}

// Passages extracts document texts in retrieval order.
func Passages(evidence []domain.ScoredDocument) []string {
	out := make([]string, len(evidence))
	for i, e := range evidence {
		out[i] = e.Document.Text
	}
	return out
}
