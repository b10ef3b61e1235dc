package merriamwebster

import (
	"strings"

	"github.com/rbhz/mw-vocabulary/app/markup"
)

// DefaultTokens renders formatting tokens of the Merriam-Webster markup as plain text
var DefaultTokens = markup.TokenMap{
	{Token: "{bc}", Value: ""},
	{Token: "{ldquo}", Value: "“"},
	{Token: "{rdquo}", Value: "”"},
	{Token: "{p_br}", Value: "\n"},
	{Token: "{it}", Value: ""},
	{Token: "{/it}", Value: ""},
	{Token: "{b}", Value: ""},
	{Token: "{/b}", Value: ""},
	{Token: "{inf}", Value: ""},
	{Token: "{/inf}", Value: ""},
	{Token: "{sup}", Value: ""},
	{Token: "{/sup}", Value: ""},
	{Token: "{sc}", Value: ""},
	{Token: "{/sc}", Value: ""},
	{Token: "{wi}", Value: ""},
	{Token: "{/wi}", Value: ""},
	{Token: "{phrase}", Value: ""},
	{Token: "{/phrase}", Value: ""},
	{Token: "{qword}", Value: ""},
	{Token: "{/qword}", Value: ""},
	{Token: "{parahw}", Value: ""},
	{Token: "{/parahw}", Value: ""},
	{Token: "{gloss}", Value: "["},
	{Token: "{/gloss}", Value: "]"},
	{Token: "{dx}", Value: "— "},
	{Token: "{/dx}", Value: ""},
	{Token: "{dx_def}", Value: "("},
	{Token: "{/dx_def}", Value: ")"},
	{Token: "{dx_ety}", Value: "— "},
	{Token: "{/dx_ety}", Value: ""},
	{Token: "{ma}", Value: "— more at "},
	{Token: "{/ma}", Value: ""},
}

// linkTags are tokens rendered as their first field
var linkTags = []string{"a_link", "d_link", "i_link", "et_link", "mat", "sx", "dxt"}

// DisplayText renders a string with embedded tokens as plain text
func DisplayText(source string) string {
	tokens := make(markup.TokenMap, 0, len(DefaultTokens))
	tokens = append(tokens, markup.LinkTokens(source, linkTags...)...)
	tokens = append(tokens, DefaultTokens...)
	return strings.TrimSpace(markup.MarkTokens(source, tokens))
}
