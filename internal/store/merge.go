package store

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Filter matches documents whose field equals a value, compared as strings.
// Field uses gjson path syntax ("profile.subscriptionStatus").
type Filter struct {
	Field  string
	Equals string
}

// Where is shorthand for Filter{Field: field, Equals: value}.
func Where(field, value string) Filter {
	return Filter{Field: field, Equals: value}
}

// Matches reports whether doc satisfies f.
func (f Filter) Matches(doc []byte) bool {
	res := gjson.GetBytes(doc, f.Field)
	return res.Exists() && res.String() == f.Equals
}

// MatchesAll reports whether doc satisfies every filter.
func MatchesAll(doc []byte, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(doc) {
			return false
		}
	}
	return true
}

// Merge applies dotted-path field updates to doc and returns the new document.
// Fields are applied in key order so the result is deterministic.
func Merge(doc []byte, fields map[string]any) ([]byte, error) {
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := slices.Clone(doc)
	for _, k := range keys {
		var err error
		out, err = sjson.SetBytes(out, k, fields[k])
		if err != nil {
			return nil, fmt.Errorf("setting field %q: %w", k, err)
		}
	}
	return out, nil
}

// ValidateDocument returns ErrInvalidDocument unless doc is a JSON object.
func ValidateDocument(doc []byte) error {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return ErrInvalidDocument
	}
	return nil
}
