package models

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// idPattern matches Firestore auto-generated document IDs.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9]{20}$`)

// ValidID reports whether id has the shape of a generated document ID.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Location is a GeoJSON-style point plus free-text address fields.
// Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type,omitempty" firestore:"type,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty" firestore:"coordinates,omitempty"`
	Address     string    `json:"address,omitempty" firestore:"address,omitempty"`
	City        string    `json:"city,omitempty" firestore:"city,omitempty"`
	State       string    `json:"state,omitempty" firestore:"state,omitempty"`
	Country     string    `json:"country,omitempty" firestore:"country,omitempty"`
}

// UnmarshalJSON accepts either a JSON object or a JSON-encoded string holding
// one. Multipart clients send the latter. A plain string that is not JSON is
// kept as the address.
func (l *Location) UnmarshalJSON(data []byte) error {
	type plain Location
	raw, text, err := unwrapEncoded(data)
	if err != nil {
		return err
	}
	if raw == nil {
		*l = Location{Address: text}
		return nil
	}
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	*l = Location(p)
	if l.Type == "" && len(l.Coordinates) > 0 {
		l.Type = "Point"
	}
	return nil
}

// unwrapEncoded returns the JSON document carried by data. When data is a JSON
// string whose content is itself JSON, the inner document is returned. When
// the string content is not JSON, raw is nil and text holds the string.
func unwrapEncoded(data []byte) (raw []byte, text string, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed, "", nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, "", err
	}
	inner := bytes.TrimSpace([]byte(s))
	if len(inner) == 0 {
		return []byte("null"), "", nil
	}
	if json.Valid(inner) {
		return inner, "", nil
	}
	return nil, s, nil
}
