// Package markup renders the `{tag|field|field}` token language embedded in dictionary strings.
package markup

import (
	"html"
	"regexp"
	"strings"
)

// Substitution replaces every occurrence of Token with Value
type Substitution struct {
	Token string
	Value string
}

// TokenMap is an ordered list of substitutions.
// Substitutions are applied in order, so a later one sees text produced by an earlier one.
type TokenMap []Substitution

var (
	// tokenPattern matches tokens removed by RemoveAllTokens
	tokenPattern = regexp.MustCompile(`\{[\w/\\|\s]*\}`)
	// anyTokenPattern matches tokens left after substitution
	anyTokenPattern = regexp.MustCompile(`\{[^{}]*\}`)
)

// MarkTokens applies substitutions from tokens and renders the remaining tokens.
// A remaining token is split on "|": the first piece is the tag and the rest are fields.
// With two or more fields the second field is rendered, otherwise the token renders as empty text.
func MarkTokens(source string, tokens TokenMap) string {
	for _, s := range tokens {
		if s.Token == "" {
			continue
		}
		source = strings.ReplaceAll(source, s.Token, s.Value)
	}
	return anyTokenPattern.ReplaceAllStringFunc(source, renderToken)
}

func renderToken(token string) string {
	fields := strings.Split(token[1:len(token)-1], "|")[1:]
	if len(fields) >= 2 {
		return fields[1]
	}
	return ""
}

// RemoveAllTokens strips every token and returns the remaining text
func RemoveAllTokens(source string) string {
	return tokenPattern.ReplaceAllString(source, "")
}

// TokenFields returns tag and fields of every token found in source, in order of appearance
func TokenFields(source string) [][]string {
	matches := anyTokenPattern.FindAllString(source, -1)
	result := make([][]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, strings.Split(m[1:len(m)-1], "|"))
	}
	return result
}

// LinkTokens builds substitutions rendering link tokens ({a_link|word}, {sx|word||} and alike)
// as their first field. tags lists the link tags to look for.
func LinkTokens(source string, tags ...string) TokenMap {
	known := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		known[t] = struct{}{}
	}
	var result TokenMap
	seen := make(map[string]struct{})
	for _, m := range anyTokenPattern.FindAllString(source, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		pieces := strings.Split(m[1:len(m)-1], "|")
		if _, ok := known[pieces[0]]; !ok || len(pieces) < 2 {
			continue
		}
		seen[m] = struct{}{}
		result = append(result, Substitution{Token: m, Value: pieces[1]})
	}
	return result
}

// Style of a text run
type Style int

// available styles
const (
	Plain Style = iota
	Italic
	Bold
	Superscript
	Subscript
)

// Run is a piece of text rendered with a single style
type Run struct {
	Text  string
	Style Style
}

// Runs is styled text
type Runs []Run

// Append adds text with style, merging it into the last run when styles match
func (r Runs) Append(text string, style Style) Runs {
	if text == "" {
		return r
	}
	if n := len(r); n > 0 && r[n-1].Style == style {
		r[n-1].Text += text
		return r
	}
	return append(r, Run{Text: text, Style: style})
}

// String returns text without styling
func (r Runs) String() string {
	var b strings.Builder
	for _, run := range r {
		b.WriteString(run.Text)
	}
	return b.String()
}

// HTML renders runs using the HTML subset supported by Telegram.
// Superscript and subscript runs have no Telegram tag and render as plain text.
func (r Runs) HTML() string {
	var b strings.Builder
	for _, run := range r {
		text := html.EscapeString(run.Text)
		switch run.Style {
		case Italic:
			b.WriteString("<i>" + text + "</i>")
		case Bold:
			b.WriteString("<b>" + text + "</b>")
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

// SuperscriptRuns renders text between pairs of marker as superscript
func SuperscriptRuns(source string, marker rune) Runs {
	return scriptRuns(source, marker, Superscript)
}

// SubscriptRuns renders text between pairs of marker as subscript
func SubscriptRuns(source string, marker rune) Runs {
	return scriptRuns(source, marker, Subscript)
}

// scriptRuns drops marker characters around styled text.
// An unterminated marker is kept together with the text after it as plain text.
func scriptRuns(source string, marker rune, style Style) Runs {
	var (
		runs Runs
		buf  strings.Builder
		open bool
	)
	for _, r := range source {
		if r != marker {
			buf.WriteRune(r)
			continue
		}
		if open {
			runs = runs.Append(buf.String(), style)
		} else {
			runs = runs.Append(buf.String(), Plain)
		}
		buf.Reset()
		open = !open
	}
	if open {
		runs = runs.Append(string(marker)+buf.String(), Plain)
	} else {
		runs = runs.Append(buf.String(), Plain)
	}
	return runs
}
