package ner

// ScorePattern binds a score kind to a pattern with exactly one capture group.
type ScorePattern struct {
	Kind    string
	Pattern string
}

// Rules is the raw gazetteer and pattern configuration. It is compiled once
// at startup and never mutated afterwards.
type Rules struct {
	Universities     []string
	Locations        []string
	ProgramPatterns  []string
	TestPatterns     []string
	DeadlinePatterns []string
	ScorePatterns    []ScorePattern
}

// DefaultRules returns the built-in admissions gazetteer and patterns.
func DefaultRules() Rules {
	return Rules{
		Universities: []string{
			"mit", "stanford", "harvard", "carnegie mellon",
			"uc berkeley", "university of southern california", "usc",
			"new york university", "nyu", "columbia", "cornell",
			"princeton", "yale", "ucla", "caltech",
		},
		Locations: []string{"CA", "NY", "TX", "MA", "IL", "PA", "WA", "GA", "NC", "NJ"},
		ProgramPatterns: []string{
			`\bms\s+in\s+[a-z\s]+`,
			`\bmaster'?s\s+in\s+[a-z\s]+`,
			`\bphd\s+in\s+[a-z\s]+`,
			`\b(?:ms|phd|master'?s)\s+admissions?\b`,
			`\bcomputer\s+science\b`,
			`\bdata\s+science\b`,
			`\bmachine\s+learning\b`,
		},
		TestPatterns: []string{`\bgre\b`, `\btoefl\b`, `\bielts\b`, `\bgmat\b`},
		DeadlinePatterns: []string{
			`\bfall\s+20\d{2}\b`,
			`\bspring\s+20\d{2}\b`,
			`\b(\w{3,9})\s+(\d{1,2})(st|nd|rd|th)?\b`,
			`\b\d{1,2}/\d{1,2}/20\d{2}\b`,
		},
		ScorePatterns: []ScorePattern{
			{Kind: "gpa", Pattern: `\bgpa\s*(?:is|:)?\s*(\d\.\d{1,2})\b`},
			{Kind: "toefl", Pattern: `\btoefl\s*(?:is|:)?\s*(\d{2,3})\b`},
			{Kind: "ielts", Pattern: `\bielts\s*(?:is|:)?\s*(\d(?:\.\d)?)\b`},
			{Kind: "gre", Pattern: `\bgre\s*(?:is|:)?\s*(\d{3})\b`},
		},
	}
}

// With returns a copy of r extended with extra gazetteer entries and program patterns.
func (r Rules) With(universities, programPatterns []string) Rules {
	out := r
	out.Universities = append(append([]string(nil), r.Universities...), universities...)
	out.ProgramPatterns = append(append([]string(nil), r.ProgramPatterns...), programPatterns...)
	return out
}
