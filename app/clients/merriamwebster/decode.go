package merriamwebster

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is returned when a response is neither a list of entries nor a list of suggestions
var ErrDecode = errors.New("failed to decode dictionary response")

// Response holds a decoded API response.
// The API answers with entries or, for unknown words, with a list of spelling suggestions.
type Response struct {
	Entries     Entries
	Suggestions []string
}

// HasSuggestions returns true if response is a "did you mean" list
func (r Response) HasSuggestions() bool {
	return r.Suggestions != nil
}

// Decode decodes raw API response
func Decode(data []byte) (Response, error) {
	var entries Entries
	entriesErr := json.Unmarshal(data, &entries)
	if entriesErr == nil {
		return Response{Entries: entries}, nil
	}
	var suggestions []string
	if err := json.Unmarshal(data, &suggestions); err == nil && suggestions != nil {
		return Response{Suggestions: suggestions}, nil
	}
	return Response{}, fmt.Errorf("%w: %v", ErrDecode, entriesErr)
}
