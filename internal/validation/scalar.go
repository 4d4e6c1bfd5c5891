package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Scalar is a request field that decodes any JSON value without failing.
// Strings keep their contents; numbers, booleans, objects and arrays keep
// their literal JSON text; null decodes to "". A type mismatch therefore
// reaches the validator as a field error instead of aborting the bind.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	default:
		*s = Scalar(b)
	}
	return nil
}

// Uint parses s as a base-10 unsigned integer.
func (s Scalar) Uint() (uint64, error) {
	return strconv.ParseUint(string(s), 10, 64)
}

// StringPtr returns nil for a nil Scalar and the text otherwise.
func (s *Scalar) StringPtr() *string {
	if s == nil {
		return nil
	}
	str := string(*s)
	return &str
}
