// Package dialogue tracks what is known about a conversation across turns.
package dialogue

import (
	"fmt"
	"sort"
	"strings"

	"eduverse/internal/domain"
)

// New returns an empty state for a fresh conversation.
func New() domain.DialogueState {
	return domain.DialogueState{}
}

// Merge folds one turn's intent and entities into state and returns the
// result. The input state is left untouched and shares no memory with the
// returned value. Lists grow as order-preserving set unions; incoming scores
// overwrite same-key entries.
func Merge(state domain.DialogueState, intent string, ents domain.Entities) domain.DialogueState {
	out := Clone(state)
	if intent != "" {
		out.LastIntent = intent
	}

	out.Universities = union(out.Universities, ents.Universities)
	out.Programs = union(out.Programs, ents.Programs)
	out.Locations = union(out.Locations, ents.Locations)
	out.Tests = union(out.Tests, ents.Tests)
	out.Deadlines = union(out.Deadlines, ents.Deadlines)

	if len(ents.Scores) > 0 {
		if out.Scores == nil {
			out.Scores = make(map[string]string, len(ents.Scores))
		}
		for k, v := range ents.Scores {
			out.Scores[k] = v
		}
	}
	return out
}

// Clone deep-copies a state.
func Clone(s domain.DialogueState) domain.DialogueState {
	out := domain.DialogueState{
		LastIntent:   s.LastIntent,
		Universities: cloneStrings(s.Universities),
		Programs:     cloneStrings(s.Programs),
		Locations:    cloneStrings(s.Locations),
		Tests:        cloneStrings(s.Tests),
		Deadlines:    cloneStrings(s.Deadlines),
	}
	if s.Scores != nil {
		out.Scores = make(map[string]string, len(s.Scores))
		for k, v := range s.Scores {
			out.Scores[k] = v
		}
	}
	return out
}

// ContextString renders the state for display and logging.
func ContextString(s domain.DialogueState) string {
	var parts []string
	if s.LastIntent != "" {
		parts = append(parts, "intent="+s.LastIntent)
	}
	parts = appendList(parts, "universities", s.Universities)
	parts = appendList(parts, "programs", s.Programs)
	parts = appendList(parts, "locations", s.Locations)
	parts = appendList(parts, "tests", s.Tests)
	parts = appendList(parts, "deadlines", s.Deadlines)
	if len(s.Scores) > 0 {
		keys := make([]string, 0, len(s.Scores))
		for k := range s.Scores {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s: %s", k, s.Scores[k])
		}
		parts = append(parts, "scores={"+strings.Join(pairs, ", ")+"}")
	}
	if len(parts) == 0 {
		return "(no context)"
	}
	return strings.Join(parts, " | ")
}

// Summary is ContextString without the intent and without the empty
// placeholder; it returns "" when there is nothing worth showing.
func Summary(s domain.DialogueState) string {
	s.LastIntent = ""
	if s.IsEmpty() {
		return ""
	}
	return ContextString(s)
}

func appendList(parts []string, name string, values []string) []string {
	if len(values) == 0 {
		return parts
	}
	return append(parts, name+"=["+strings.Join(values, ", ")+"]")
}

func union(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range incoming {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		existing = append(existing, v)
	}
	return existing
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
