package rainclassroom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an identifier the platform sends as either a JSON number or string.
type ID string

// UnmarshalJSON accepts 123, "123", and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// answerList decodes a problem's answer array. Answers are usually strings but
// some problem types send numbers or objects; those keep their JSON text.
type answerList []string

func (a *answerList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var single string
		if errSingle := json.Unmarshal(data, &single); errSingle == nil {
			*a = answerList{single}
			return nil
		}
		return fmt.Errorf("decode answers: %w", err)
	}
	out := make(answerList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	*a = out
	return nil
}
