package intent

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"eduverse/internal/domain"
)

// Dataset is a labelled set of queries. Texts and Labels are parallel.
type Dataset struct {
	Texts  []string
	Labels []string
}

// Len returns the number of examples.
func (d Dataset) Len() int { return len(d.Texts) }

// SeedDataset returns the built-in training examples, two per intent.
func SeedDataset() Dataset {
	return Dataset{
		Texts: []string{
			"What documents are required for MS admissions in the USA?",
			"Application deadline for fall intake and LOR requirements",
			"How do I write a strong statement of purpose for computer science?",
			"Can you review my SOP draft and suggest improvements?",
			"Any scholarships for international students in the US?",
			"Assistantships and funding options for MS students",
			"GRE 315 plan in 6 weeks and TOEFL tips",
			"IELTS 7.0 study strategy and practice resources",
		},
		Labels: []string{
			domain.IntentAdmissions, domain.IntentAdmissions,
			domain.IntentSOP, domain.IntentSOP,
			domain.IntentScholarships, domain.IntentScholarships,
			domain.IntentTestPrep, domain.IntentTestPrep,
		},
	}
}

type datasetFile struct {
	Examples []struct {
		Text  string `yaml:"text"`
		Label string `yaml:"label"`
	} `yaml:"examples"`
}

// LoadDataset reads a YAML file of the form
//
//	examples:
//	  - {text: "...", label: admissions}
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, goerr.Wrap(err, "failed to read dataset", goerr.V("path", path))
	}
	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Dataset{}, goerr.Wrap(err, "failed to parse dataset", goerr.V("path", path))
	}
	var ds Dataset
	for i, ex := range f.Examples {
		if strings.TrimSpace(ex.Text) == "" || strings.TrimSpace(ex.Label) == "" {
			return Dataset{}, goerr.New("dataset example needs text and label",
				goerr.V("path", path), goerr.V("index", i))
		}
		ds.Texts = append(ds.Texts, ex.Text)
		ds.Labels = append(ds.Labels, ex.Label)
	}
	if ds.Len() == 0 {
		return Dataset{}, goerr.Wrap(ErrEmptyDataset, "no examples in dataset", goerr.V("path", path))
	}
	return ds, nil
}
