package heat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotArray = errors.New("asset is not a JSON array")

// DecodeEntries parses an asset file body. The top level must be an array;
// elements that are not objects of the expected shape are dropped.
func DecodeEntries(b []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode asset array: %w", err)
	}
	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		if len(r) == 0 || r[0] != '{' {
			continue
		}
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
