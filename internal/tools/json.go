package tools

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexFloat decodes numbers that upstreams send either as JSON numbers or
// as strings. Missing, null and unparsable values decode to zero with Valid unset.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = v, true
	return nil
}

// Ptr returns a pointer to the value, or nil when absent.
func (f flexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// flexBool decodes booleans sent as true/false, "1"/"0" or "true"/"false".
type flexBool struct {
	Value bool
	Valid bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`)) {
	case "true", "1":
		f.Value, f.Valid = true, true
	case "false", "0":
		f.Value, f.Valid = false, true
	}
	return nil
}

// Ptr returns a pointer to the value, or nil when absent.
func (f flexBool) Ptr() *bool {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// decodeListOrWrapped decodes either a bare JSON array or an object holding
// the array under key.
func decodeListOrWrapped(body []byte, key string, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	raw, ok := wrapped[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}
