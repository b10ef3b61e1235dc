package merriamwebster

import (
	"encoding/json"
	"fmt"
)

// defining text element tags
const (
	tagText       = "text"
	tagNoteText   = "t"
	tagUsageNotes = "uns"
	tagVerbal     = "vis"
	tagCalledAlso = "ca"
	tagSupplement = "snote"
)

// TextNode is an element of defining text: Text, UsageNotes, VerbalIllustrations, CalledAlso or SupplementalNote
type TextNode interface {
	textNode()
}

// Text is a plain text value with embedded tokens
type Text string

// UsageNotes holds usage notes, each of them is defining text on its own
type UsageNotes []DefiningText

// VerbalIllustrations holds example sentences
type VerbalIllustrations []VerbalIllustration

// SupplementalNote holds supplemental information.
// Its text elements are tagged "t" instead of "text".
type SupplementalNote []TextNode

func (Text) textNode()                {}
func (UsageNotes) textNode()          {}
func (VerbalIllustrations) textNode() {}
func (CalledAlso) textNode()          {}
func (SupplementalNote) textNode()    {}

// DefiningText is an ordered list of text nodes.
// Nodes that can't be decoded are skipped.
type DefiningText []TextNode

// UnmarshalJSON decodes text nodes skipping malformed ones
func (d *DefiningText) UnmarshalJSON(data []byte) error {
	nodes, err := decodeList(data, DecodeTextNode)
	if err != nil {
		return fmt.Errorf("decode defining text: %w", err)
	}
	*d = nodes
	return nil
}

// MarshalJSON encodes text nodes as [tag, payload] arrays
func (d DefiningText) MarshalJSON() ([]byte, error) {
	return encodeList(d, EncodeTextNode)
}

// UnmarshalJSON decodes supplemental note elements skipping malformed ones
func (n *SupplementalNote) UnmarshalJSON(data []byte) error {
	nodes, err := decodeList(data, decodeNoteNode)
	if err != nil {
		return fmt.Errorf("decode supplemental note: %w", err)
	}
	*n = nodes
	return nil
}

// MarshalJSON encodes supplemental note elements as [tag, payload] arrays
func (n SupplementalNote) MarshalJSON() ([]byte, error) {
	return encodeList(n, encodeNoteNode)
}

// DecodeTextNode decodes a single [tag, payload] defining text element
func DecodeTextNode(data []byte) (TextNode, error) {
	return decodeTextNode(data, tagText)
}

// EncodeTextNode encodes a defining text element as a [tag, payload] array
func EncodeTextNode(node TextNode) ([]byte, error) {
	return encodeTextNode(node, tagText)
}

func decodeNoteNode(data []byte) (TextNode, error) {
	return decodeTextNode(data, tagNoteText)
}

func encodeNoteNode(node TextNode) ([]byte, error) {
	return encodeTextNode(node, tagNoteText)
}

// decodeTextNode decodes a text node, textTag is the tag used for plain text values
func decodeTextNode(data []byte, textTag string) (TextNode, error) {
	tag, payload, err := splitTagged(data)
	if err != nil {
		return nil, err
	}
	if isNull(payload) {
		return nil, fmt.Errorf("%w: %q without payload", ErrMalformedNode, tag)
	}
	var node TextNode
	switch tag {
	case textTag:
		var text Text
		err = json.Unmarshal(payload, &text)
		node = text
	case tagUsageNotes:
		var notes UsageNotes
		err = json.Unmarshal(payload, &notes)
		node = notes
	case tagVerbal:
		var vis VerbalIllustrations
		err = json.Unmarshal(payload, &vis)
		node = vis
	case tagCalledAlso:
		var ca CalledAlso
		err = json.Unmarshal(payload, &ca)
		node = ca
	case tagSupplement:
		var note SupplementalNote
		err = json.Unmarshal(payload, &note)
		node = note
	default:
		return nil, fmt.Errorf("%w: unknown text tag %q", ErrMalformedNode, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedNode, tag, err)
	}
	return node, nil
}

func encodeTextNode(node TextNode, textTag string) ([]byte, error) {
	switch n := node.(type) {
	case Text:
		return joinTagged(textTag, string(n))
	case UsageNotes:
		return joinTagged(tagUsageNotes, n)
	case VerbalIllustrations:
		return joinTagged(tagVerbal, n)
	case CalledAlso:
		return joinTagged(tagCalledAlso, n)
	case SupplementalNote:
		return joinTagged(tagSupplement, n)
	default:
		return nil, fmt.Errorf("encode text node: unsupported type %T", node)
	}
}
