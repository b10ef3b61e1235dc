package merriamwebster

import (
	"strconv"
	"strings"

	"github.com/rbhz/mw-vocabulary/app/markup"
)

// Entries holds entries of a single lookup: homographs and related entries
type Entries []Entry

// ID returns stable identifier of the entries: headword and homograph number of the first entry
func (e Entries) ID() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].ID()
}

// Equal returns true if both lookups have the same identifier
func (e Entries) Equal(other Entries) bool {
	return e.ID() == other.ID()
}

// Headword returns headword of the first entry
func (e Entries) Headword() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Headword()
}

// AllPronunciations returns headword pronunciations of all entries.
// Pronunciations are deduplicated by written form, the first one wins.
func (e Entries) AllPronunciations() []Pronunciation {
	seen := make(map[string]struct{})
	result := make([]Pronunciation, 0)
	for _, entry := range e {
		for _, p := range entry.HeadwordInfo.Pronunciations {
			key := p.WrittenForm()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, p)
		}
	}
	return result
}

// AllSenses returns displayable senses of all entries
func (e Entries) AllSenses() []Sense {
	var result []Sense
	for _, entry := range e {
		result = append(result, entry.AllSenses()...)
	}
	return result
}

// HasSense returns true if any entry has a displayable sense
func (e Entries) HasSense() bool {
	for _, entry := range e {
		if entry.HasSense() {
			return true
		}
	}
	return false
}

// FirstDefinition returns the first non empty definition among all entries
func (e Entries) FirstDefinition() string {
	for _, entry := range e {
		if d := entry.FirstDefinition(); d != "" {
			return d
		}
	}
	return ""
}

// ID returns headword with homograph number
func (e Entry) ID() string {
	id := e.Headword()
	if e.Homograph != nil {
		id += ":" + strconv.Itoa(*e.Homograph)
	}
	return id
}

// Headword returns headword without syllable separators
func (e Entry) Headword() string {
	return strings.ReplaceAll(e.HeadwordInfo.Headword, "*", "")
}

// AllSenses flattens sense sequences of the entry.
// Sense groups are expanded, truncated senses are skipped and back senses are unwrapped.
func (e Entry) AllSenses() []Sense {
	var result []Sense
	for _, def := range e.Definitions {
		for _, seq := range def.SenseSequences {
			result = flattenSenses(result, seq)
		}
	}
	return result
}

func flattenSenses(result []Sense, seq SenseSequence) []Sense {
	for _, node := range seq {
		switch n := node.(type) {
		case Sense:
			result = append(result, n)
		case BackSense:
			result = append(result, n.Sense)
		case SenseGroup:
			result = flattenSenses(result, n.Senses)
		}
	}
	return result
}

// HasSense returns true if entry has at least one displayable sense
func (e Entry) HasSense() bool {
	return len(e.AllSenses()) > 0
}

// FirstDefinition returns display text of the first sense with text.
// Falls back to the first short definition.
func (e Entry) FirstDefinition() string {
	for _, s := range e.AllSenses() {
		if d := s.Definition(); d != "" {
			return d
		}
	}
	for _, d := range e.ShortDefinitions {
		if d != "" {
			return d
		}
	}
	return ""
}

// InflectionLabel returns label for entry inflections
func (e Entry) InflectionLabel() markup.Runs {
	return InflectionLabel(e.Inflections)
}

// CrossReferenceLabel returns label for entry cross-references
func (e Entry) CrossReferenceLabel() string {
	return CrossReferenceLabel(e.CrossReferences)
}

// Definition returns display text of the sense
func (s Sense) Definition() string {
	return s.Text.Display()
}

// Display renders plain text elements
func (d DefiningText) Display() string {
	parts := make([]string, 0, len(d))
	for _, node := range d {
		text, ok := node.(Text)
		if !ok {
			continue
		}
		if t := DisplayText(string(text)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Examples returns display text of verbal illustrations
func (d DefiningText) Examples() []string {
	var result []string
	for _, node := range d {
		vis, ok := node.(VerbalIllustrations)
		if !ok {
			continue
		}
		for _, vi := range vis {
			result = append(result, DisplayText(vi.Text))
		}
	}
	return result
}

// WrittenForm returns written pronunciation with its labels
func (p Pronunciation) WrittenForm() string {
	parts := make([]string, 0, 3)
	if p.LabelBefore != nil && *p.LabelBefore != "" {
		parts = append(parts, *p.LabelBefore)
	}
	parts = append(parts, p.Written)
	if p.LabelAfter != nil && *p.LabelAfter != "" {
		parts = append(parts, *p.LabelAfter)
	}
	return strings.Join(parts, " ")
}

// InflectionLabel joins inflections: italic label and bold form of each one.
// A record with a label (even an empty one) is separated by "; ", others by a space.
func InflectionLabel(ins []Inflection) markup.Runs {
	var runs markup.Runs
	for i, in := range ins {
		if i > 0 {
			if in.Label != nil {
				runs = runs.Append("; ", markup.Plain)
			} else {
				runs = runs.Append(" ", markup.Plain)
			}
		}
		if in.Label != nil {
			runs = runs.Append(*in.Label, markup.Italic)
		}
		if in.Form != nil {
			if in.Label != nil && *in.Label != "" {
				runs = runs.Append(" ", markup.Plain)
			}
			runs = runs.Append(strings.ReplaceAll(*in.Form, "*", "·"), markup.Bold)
		}
	}
	return runs
}

// CrossReferenceLabel joins cross-references: label followed by uppercased targets
func CrossReferenceLabel(cxs []CrossReference) string {
	parts := make([]string, 0, len(cxs))
	for _, cx := range cxs {
		targets := make([]string, 0, len(cx.Targets))
		for _, t := range cx.Targets {
			targets = append(targets, t.Target)
		}
		label := cx.Label
		if len(targets) > 0 {
			label = strings.TrimSpace(label + " " + strings.ToUpper(strings.Join(targets, ", ")))
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "; ")
}
