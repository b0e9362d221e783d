package knowledge

import "eduverse/internal/domain"

// BuiltIn returns the default knowledge base. Each call returns fresh values.
func BuiltIn() []domain.Document {
	return []domain.Document{
		{
			ID:       "admissions_basics",
			Text:     "U.S. graduate admissions require transcripts, SOP, letters of recommendation, test scores, and a resume.",
			Metadata: map[string]string{"topic": domain.IntentAdmissions},
		},
		{
			ID:       "sop_structure",
			Text:     "A strong SOP covers motivation, academic background, research experience, program fit, and career goals.",
			Metadata: map[string]string{"topic": domain.IntentSOP},
		},
		{
			ID:       "funding_options",
			Text:     "Funding options include merit scholarships, assistantships (TA/RA), and external fellowships like Fulbright.",
			Metadata: map[string]string{"topic": domain.IntentScholarships},
		},
		{
			ID:       "gre_overview",
			Text:     "The GRE has Verbal (130-170), Quantitative (130-170), and Analytical Writing (0-6) sections. Target 315+ for MS.",
			Metadata: map[string]string{"topic": domain.IntentTestPrep},
		},
		{
			ID:       "toefl_requirements",
			Text:     "TOEFL iBT scores range 0-120. Most universities require 80-100; top programs expect 100+.",
			Metadata: map[string]string{"topic": domain.IntentTestPrep},
		},
	}
}
