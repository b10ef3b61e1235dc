package bot

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/quiz"
)

const (
	maxMessageEntries = 3
	maxEntrySenses    = 5
)

const entriesTemplate = `
{{- range $e := .Entries }}
<b>{{ $e.Headword | html }}</b>
{{- if $e.FunctionalLabel }} <i>{{ $e.FunctionalLabel | html }}</i>{{- end }}
{{- if $e.Pronunciations }}
\{{ $e.Pronunciations | html }}\
{{- end }}
{{- if $e.Inflections }}
{{ $e.Inflections }}
{{- end }}
{{- if $e.CrossReferences }}
<i>{{ $e.CrossReferences | html }}</i>
{{- end }}
{{- range $i, $s := $e.Senses }}
<b>{{ inc $i }}</b> {{ $s.Definition | html }}
{{- range $x := $s.Examples }}
    <i>{{ $x | html }}</i>
{{- end }}
{{- end }}
___
{{- end }}
`

const quizMessageTemplate = `
<i>{{ .Title }} ({{ inc .Index }}/{{ .Total }})</i>: <b>{{ .Prompt | html }}</b>
<i>Choices</i>:
{{- range $choiceIdx, $choice := .Choices }}

<b>{{- if $.Validation }}{{- if eq $.Chosen $choiceIdx }}☑️ {{- end }}{{- if index $.Validation $choiceIdx }}✅ {{- end }}{{- end }}{{inc $choiceIdx }}</b>: {{ $choice | html }}
{{- end }}
`

var templateFuncs = template.FuncMap{
	"inc": func(i int) int {
		return i + 1
	},
}

type entryView struct {
	Headword        string
	FunctionalLabel string
	Pronunciations  string
	Inflections     string
	CrossReferences string
	Senses          []senseView
}

type senseView struct {
	Definition string
	Examples   []string
}

func newEntryView(e merriamwebster.Entry) entryView {
	view := entryView{
		Headword:        strings.ReplaceAll(e.HeadwordInfo.Headword, "*", "·"),
		Inflections:     e.InflectionLabel().HTML(),
		CrossReferences: e.CrossReferenceLabel(),
	}
	if e.FunctionalLabel != nil {
		view.FunctionalLabel = *e.FunctionalLabel
	}
	prs := make([]string, 0, len(e.HeadwordInfo.Pronunciations))
	for _, p := range e.HeadwordInfo.Pronunciations {
		prs = append(prs, p.WrittenForm())
	}
	view.Pronunciations = strings.Join(prs, ", ")
	for _, s := range e.AllSenses() {
		if len(view.Senses) == maxEntrySenses {
			break
		}
		definition := s.Definition()
		if definition == "" {
			continue
		}
		view.Senses = append(view.Senses, senseView{Definition: definition, Examples: s.Text.Examples()})
	}
	return view
}

// GetEntriesMessageText returns text for dictionary entries message
func GetEntriesMessageText(entries merriamwebster.Entries) (string, error) {
	views := make([]entryView, 0, maxMessageEntries)
	for _, e := range entries {
		if len(views) == maxMessageEntries {
			break
		}
		views = append(views, newEntryView(e))
	}
	return executeTemplate(entriesTemplate, map[string]interface{}{"Entries": views})
}

// GetQuizMessageText returns text for quiz question message.
// Validation marks correct choice and the chosen one, nil for unanswered question.
func GetQuizMessageText(q quiz.Question, total int, validation []bool, chosen int) (string, error) {
	title := "Definition of"
	if q.Type == quiz.QueryMatch {
		title = "Word for"
	}
	return executeTemplate(quizMessageTemplate, map[string]interface{}{
		"Title":      title,
		"Index":      q.Index,
		"Total":      total,
		"Prompt":     q.Prompt,
		"Choices":    q.Choices,
		"Validation": validation,
		"Chosen":     chosen,
	})
}

// GetSummaryText returns text for finished quiz
func GetSummaryText(s quiz.Summary) string {
	if s.Answered == 0 {
		return "Quiz finished, no questions answered"
	}
	return fmt.Sprintf("Quiz finished: %d of %d correct", s.Correct, s.Answered)
}

func executeTemplate(text string, data interface{}) (string, error) {
	tmpl, err := template.New("template").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
