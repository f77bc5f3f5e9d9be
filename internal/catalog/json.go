package catalog

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes None as null so an unset type round-trips as "no
// selection" rather than an empty id.
func (t ReformaType) MarshalJSON() ([]byte, error) {
	if t == None {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON accepts null or a string id. Unknown ids are kept so callers
// can reject them explicitly.
func (t *ReformaType) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ReformaType(s)
	return nil
}
