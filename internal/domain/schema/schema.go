// Package schema holds the lenient scalar types used to coerce upstream JSON
// payloads into fully-defaulted domain values.
package schema

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a string that also accepts JSON numbers, booleans and null.
// Null decodes to the empty string.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
// PRE: data is a single JSON value
// POST: t holds the textual form of the value; never fails on scalar input
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(string(data))
	return nil
}

// String returns the plain string value.
func (t Text) String() string { return string(t) }

// Num is a float64 that also accepts numeric strings and null.
// Anything that does not parse decodes to zero.
type Num float64

// UnmarshalJSON implements json.Unmarshaler.
// PRE: data is a single JSON value
// POST: n holds the numeric value or zero; never fails on scalar input
func (n *Num) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Num(f)
	return nil
}

// Float returns the value as float64.
func (n Num) Float() float64 { return float64(n) }

// Int returns the value truncated to int.
func (n Num) Int() int { return int(n) }

// Flag is a bool that also accepts 0/1 and "true"/"false" strings.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}
