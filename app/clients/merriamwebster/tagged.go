package merriamwebster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedNode is returned when a [tag, payload] node can't be decoded
var ErrMalformedNode = errors.New("malformed node")

// splitTagged reads a two element [tag, payload] array
func splitTagged(data []byte) (string, json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("%w: expected 2 elements, got %d", ErrMalformedNode, len(parts))
	}
	var tag string
	if err := json.Unmarshal(parts[0], &tag); err != nil {
		return "", nil, fmt.Errorf("%w: tag: %v", ErrMalformedNode, err)
	}
	return tag, parts[1], nil
}

// joinTagged encodes payload as a [tag, payload] array
func joinTagged(tag string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal([]interface{}{tag, payload})
	if err != nil {
		return nil, fmt.Errorf("encode %q node: %w", tag, err)
	}
	return data, nil
}

// decodeList decodes every element of a JSON array with decode.
// Elements that fail to decode are skipped.
func decodeList[T any](data []byte, decode func([]byte) (T, error)) ([]T, error) {
	if isNull(data) {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	result := make([]T, 0, len(raw))
	for _, r := range raw {
		node, err := decode(r)
		if err != nil {
			continue
		}
		result = append(result, node)
	}
	return result, nil
}

// encodeList encodes every element with encode into a JSON array
func encodeList[T any](nodes []T, encode func(T) ([]byte, error)) ([]byte, error) {
	if nodes == nil {
		return []byte("null"), nil
	}
	raw := make([]json.RawMessage, 0, len(nodes))
	for _, n := range nodes {
		data, err := encode(n)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	return json.Marshal(raw)
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
