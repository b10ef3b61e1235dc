package merriamwebster

import (
	"encoding/json"
	"fmt"
)

// sense sequence element tags
const (
	tagSense      = "sense"
	tagSen        = "sen"
	tagBackSense  = "bs"
	tagSenseGroup = "pseq"
)

// SenseNode is an element of a sense sequence: Sense, Sen, BackSense or SenseGroup
type SenseNode interface {
	senseTag() string
}

// Sense holds a single meaning of a headword
type Sense struct {
	Number         *string         `json:"sn,omitempty"`
	Text           DefiningText    `json:"dt"`
	Etymology      DefiningText    `json:"et"`
	Inflections    []Inflection    `json:"ins"`
	Labels         []string        `json:"lbs"`
	Pronunciations []Pronunciation `json:"prs"`
	GrammarLabel   *string         `json:"sgram,omitempty"`
	StatusLabels   []string        `json:"sls"`
	Variants       []Variant       `json:"vrs"`
	Divided        *DividedSense   `json:"sdsense,omitempty"`
}

// Sen is a truncated sense carrying labels shared by the senses after it
type Sen struct {
	Number         *string         `json:"sn,omitempty"`
	Etymology      DefiningText    `json:"et"`
	Inflections    []Inflection    `json:"ins"`
	Labels         []string        `json:"lbs"`
	Pronunciations []Pronunciation `json:"prs"`
	GrammarLabel   *string         `json:"sgram,omitempty"`
	StatusLabels   []string        `json:"sls"`
	Variants       []Variant       `json:"vrs"`
}

// BackSense is a sense introduced by "b": it is encoded as {"sense": {...}}
type BackSense struct {
	Sense Sense `json:"sense"`
}

// SenseGroup holds parenthesized senses
type SenseGroup struct {
	Senses SenseSequence
}

func (Sense) senseTag() string      { return tagSense }
func (Sen) senseTag() string        { return tagSen }
func (BackSense) senseTag() string  { return tagBackSense }
func (SenseGroup) senseTag() string { return tagSenseGroup }

// SenseSequence is an ordered list of sense nodes.
// Nodes that can't be decoded are skipped.
type SenseSequence []SenseNode

// UnmarshalJSON decodes sense nodes skipping malformed ones
func (s *SenseSequence) UnmarshalJSON(data []byte) error {
	nodes, err := decodeList(data, DecodeSenseNode)
	if err != nil {
		return fmt.Errorf("decode sense sequence: %w", err)
	}
	*s = nodes
	return nil
}

// MarshalJSON encodes sense nodes as [tag, payload] arrays
func (s SenseSequence) MarshalJSON() ([]byte, error) {
	return encodeList(s, EncodeSenseNode)
}

// SenseSequences is the list of sense sequences of a definition.
// Sequences that can't be decoded are skipped.
type SenseSequences []SenseSequence

// UnmarshalJSON decodes sense sequences skipping malformed ones
func (s *SenseSequences) UnmarshalJSON(data []byte) error {
	seqs, err := decodeList(data, decodeSenseSequence)
	if err != nil {
		// not an array, definition has no senses
		seqs = nil
	}
	*s = seqs
	return nil
}

func decodeSenseSequence(data []byte) (SenseSequence, error) {
	var seq SenseSequence
	if err := seq.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return seq, nil
}

// DecodeSenseNode decodes a single [tag, payload] sense sequence element
func DecodeSenseNode(data []byte) (SenseNode, error) {
	tag, payload, err := splitTagged(data)
	if err != nil {
		return nil, err
	}
	if isNull(payload) {
		return nil, fmt.Errorf("%w: %q without payload", ErrMalformedNode, tag)
	}
	switch tag {
	case tagSense:
		var sense Sense
		if err := json.Unmarshal(payload, &sense); err != nil {
			return nil, fmt.Errorf("%w: sense: %v", ErrMalformedNode, err)
		}
		return sense, nil
	case tagSen:
		var sen Sen
		if err := json.Unmarshal(payload, &sen); err != nil {
			return nil, fmt.Errorf("%w: sen: %v", ErrMalformedNode, err)
		}
		return sen, nil
	case tagBackSense:
		var bs BackSense
		if err := json.Unmarshal(payload, &bs); err != nil {
			return nil, fmt.Errorf("%w: bs: %v", ErrMalformedNode, err)
		}
		return bs, nil
	case tagSenseGroup:
		var group SenseSequence
		if err := json.Unmarshal(payload, &group); err != nil {
			return nil, fmt.Errorf("%w: pseq: %v", ErrMalformedNode, err)
		}
		return SenseGroup{Senses: group}, nil
	default:
		return nil, fmt.Errorf("%w: unknown sense tag %q", ErrMalformedNode, tag)
	}
}

// EncodeSenseNode encodes a sense node as a [tag, payload] array
func EncodeSenseNode(node SenseNode) ([]byte, error) {
	switch n := node.(type) {
	case Sense, Sen, BackSense:
		return joinTagged(n.senseTag(), n)
	case SenseGroup:
		return joinTagged(tagSenseGroup, n.Senses)
	default:
		return nil, fmt.Errorf("encode sense node: unsupported type %T", node)
	}
}
