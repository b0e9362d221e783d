package intent

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Report summarizes classifier quality on a labelled dataset.
type Report struct {
	Total   int
	Correct int
	// Labels orders the rows (true label) and columns (predicted) of Confusion.
	Labels    []string
	Confusion [][]int
}

// Accuracy returns Correct/Total, or 0 for an empty report.
func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// String renders the accuracy and confusion matrix as plain text.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "accuracy: %.2f (%d/%d)\n", r.Accuracy(), r.Correct, r.Total)
	width := 0
	for _, l := range r.Labels {
		width = max(width, len(l))
	}
	fmt.Fprintf(&b, "%*s", width, "")
	for _, l := range r.Labels {
		fmt.Fprintf(&b, " %*s", width, l)
	}
	b.WriteString("\n")
	for i, row := range r.Confusion {
		fmt.Fprintf(&b, "%*s", width, r.Labels[i])
		for _, n := range row {
			fmt.Fprintf(&b, " %*d", width, n)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Evaluate predicts every example of ds and tallies the results. Labels
// unknown to the classifier get their own row.
func (c *Classifier) Evaluate(ds Dataset) (Report, error) {
	if len(ds.Labels) != len(ds.Texts) {
		return Report{}, goerr.Wrap(ErrLabelCount, "cannot evaluate classifier",
			goerr.V("texts", len(ds.Texts)), goerr.V("labels", len(ds.Labels)))
	}
	labels := distinct(append(c.Labels(), ds.Labels...))
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	report := Report{Labels: labels, Confusion: make([][]int, len(labels))}
	for i := range report.Confusion {
		report.Confusion[i] = make([]int, len(labels))
	}
	for i, text := range ds.Texts {
		pred, err := c.Predict(text)
		if err != nil {
			return Report{}, err
		}
		report.Total++
		if pred.Intent == ds.Labels[i] {
			report.Correct++
		}
		report.Confusion[index[ds.Labels[i]]][index[pred.Intent]]++
	}
	return report, nil
}
