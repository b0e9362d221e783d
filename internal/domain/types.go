package domain

// Intent labels known to the classifier and the guidance table.
const (
	IntentAdmissions   = "admissions"
	IntentSOP          = "sop"
	IntentScholarships = "scholarships"
	IntentTestPrep     = "test_prep"
)

// Intents lists the fixed label set in canonical order.
var Intents = []string{IntentAdmissions, IntentSOP, IntentScholarships, IntentTestPrep}

// Document is a single fact passage of the knowledge base.
type Document struct {
	ID       string            `yaml:"id" json:"id"`
	Text     string            `yaml:"text" json:"text"`
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Topic returns the "topic" metadata tag, if any.
func (d Document) Topic() string { return d.Metadata["topic"] }

// ScoredDocument is a retrieved document with its similarity to the query.
type ScoredDocument struct {
	Document Document
	Score    float64
}

// Entities holds what was extracted from a single utterance.
type Entities struct {
	Universities []string
	Programs     []string
	Locations    []string
	Tests        []string
	Deadlines    []string
	Scores       map[string]string
}

// IsEmpty reports whether nothing was extracted.
func (e Entities) IsEmpty() bool {
	return len(e.Universities) == 0 && len(e.Programs) == 0 && len(e.Locations) == 0 &&
		len(e.Tests) == 0 && len(e.Deadlines) == 0 && len(e.Scores) == 0
}

// IntentPrediction is the classifier output for one text.
type IntentPrediction struct {
	Intent        string
	Confidence    float64
	Probabilities map[string]float64
}

// DialogueState accumulates what is known about one conversation.
// List fields are ordered sets; Scores is last-write-wins per key.
type DialogueState struct {
	LastIntent   string
	Universities []string
	Programs     []string
	Locations    []string
	Tests        []string
	Deadlines    []string
	Scores       map[string]string
}

// IsEmpty reports whether the state carries no context at all.
func (s DialogueState) IsEmpty() bool {
	return s.LastIntent == "" && len(s.Universities) == 0 && len(s.Programs) == 0 &&
		len(s.Locations) == 0 && len(s.Tests) == 0 && len(s.Deadlines) == 0 && len(s.Scores) == 0
}

// Turn is the full result of processing one user message.
type Turn struct {
	Question   string
	Tokens     []string
	Prediction IntentPrediction
	Entities   Entities
	State      DialogueState
	Evidence   []ScoredDocument
	Answer     string
}
