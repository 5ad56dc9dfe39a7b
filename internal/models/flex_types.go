package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// The types below let request bodies accept the loose encodings sent by
// browser form clients: numbers and booleans as strings, nested objects and
// arrays as JSON-encoded strings.

// FlexFloat decodes a JSON number or numeric string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s, ok := scalarText(data)
	if !ok {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt decodes a JSON number or numeric string into an int.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	s, ok := scalarText(data)
	if !ok {
		*i = 0
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		*i = FlexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) || v >= math.MaxInt || v < math.MinInt {
		return fmt.Errorf("invalid integer %q", s)
	}
	*i = FlexInt(int(v))
	return nil
}

// FlexBool decodes true/false or their string forms.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	s, ok := scalarText(data)
	if !ok {
		*b = false
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", s)
	}
	*b = FlexBool(v)
	return nil
}

// FlexString decodes a JSON string or number as text.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	text, _ := scalarText(data)
	*s = FlexString(text)
	return nil
}

// FlexTime decodes RFC 3339 timestamps or plain YYYY-MM-DD dates.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s, ok := scalarText(data)
	if !ok {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// JSONList decodes a JSON array or a string holding one.
type JSONList[T any] []T

func (l *JSONList[T]) UnmarshalJSON(data []byte) error {
	raw, text, err := unwrapEncoded(data)
	if err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("expected a JSON array, got %q", text)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// finite rejects NaN and the infinities, which encoding/json cannot write back.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// scalarText returns the textual form of a JSON scalar; ok is false for
// null and empty strings.
func scalarText(data []byte) (string, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	s := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
