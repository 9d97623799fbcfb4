package resolver

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Upstream services are inconsistent about types: a duration may be 12 or "12",
// a flag may be true or 1, a nested object may be "" or missing entirely.
// The types below decode those shapes without failing the whole response.

// looseString accepts a string, number or bool; anything else decodes to "".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = ""
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			*s = ""
			return nil
		}
		*s = looseString(v)
	case '{', '[', 'n':
		*s = ""
	default:
		*s = looseString(b)
	}
	return nil
}

func (s looseString) String() string {
	return strings.TrimSpace(string(s))
}

// looseBool accepts true/false, numbers and their string forms.
type looseBool bool

func (v *looseBool) UnmarshalJSON(b []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(s.String()) {
	case "true", "1", "yes":
		*v = true
	default:
		if f, err := strconv.ParseFloat(s.String(), 64); err == nil && f != 0 {
			*v = true
			return nil
		}
		*v = false
	}
	return nil
}

// object decodes T only when the value is a JSON object.
type object[T any] struct {
	Value T
	Set   bool
}

func (o *object[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		var zero T
		o.Value = zero
		return nil
	}
	o.Set = true
	return nil
}

// list decodes an array of T, dropping elements that are not objects.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*l = nil
		return nil
	}
	var items []object[T]
	if err := json.Unmarshal(b, &items); err != nil {
		*l = nil
		return nil
	}
	out := make(list[T], 0, len(items))
	for _, it := range items {
		if it.Set {
			out = append(out, it.Value)
		}
	}
	*l = out
	return nil
}

// stringOrList accepts either a single string or an array of strings.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = nil
		return nil
	}
	if b[0] == '[' {
		var items []looseString
		if err := json.Unmarshal(b, &items); err != nil {
			*s = nil
			return nil
		}
		out := make(stringOrList, 0, len(items))
		for _, it := range items {
			out = append(out, it.String())
		}
		*s = out
		return nil
	}
	var one looseString
	if err := one.UnmarshalJSON(b); err != nil {
		return err
	}
	if one.String() == "" {
		*s = nil
		return nil
	}
	*s = stringOrList{one.String()}
	return nil
}

// First returns the first element, or "" for an empty list
func (s stringOrList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// rendition is one entry of a quality→format collection
type rendition struct {
	Key    string
	Format renditionFormat
}

type renditionFormat struct {
	URL   looseString `json:"url"`
	Size  looseString `json:"size"`
	Ext   looseString `json:"f"`
	Q     looseString `json:"q"`
	QText looseString `json:"q_text"`
	K     looseString `json:"k"`
}

func (f renditionFormat) toFormat() Format {
	return Format{
		URL:     f.URL.String(),
		Quality: f.Q.String(),
		Label:   f.QText.String(),
		Size:    f.Size.String(),
		Ext:     f.Ext.String(),
		Key:     f.K.String(),
	}
}

// label is the quality an array item announces for itself
func (f renditionFormat) label() string {
	if q := strings.TrimSpace(f.Q.String()); q != "" {
		return q
	}
	return strings.TrimSpace(f.QText.String())
}

// renditions decodes either {"1080": {...}, "720": {...}} or [{...}, {...}].
// Array items are keyed by their q (or q_text) label, falling back to the
// index; objects are sorted by key.
type renditions []rendition

func (r *renditions) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = nil
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '[':
		var items []object[renditionFormat]
		if err := json.Unmarshal(b, &items); err != nil {
			return nil
		}
		seen := make(map[string]bool, len(items))
		for i, it := range items {
			if !it.Set {
				continue
			}
			key := it.Value.label()
			if key == "" || seen[key] {
				key = strconv.Itoa(i)
			}
			seen[key] = true
			*r = append(*r, rendition{Key: key, Format: it.Value})
		}
	case '{':
		var items map[string]object[renditionFormat]
		if err := json.Unmarshal(b, &items); err != nil {
			return nil
		}
		keys := make([]string, 0, len(items))
		for k, it := range items {
			if it.Set {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			*r = append(*r, rendition{Key: k, Format: items[k].Value})
		}
	}
	return nil
}

// formats converts renditions into the public Formats map; a single
// rendition yields no map
func (r renditions) formats() map[string]Format {
	if len(r) < 2 {
		return nil
	}
	out := make(map[string]Format, len(r))
	for _, it := range r {
		out[it.Key] = it.Format.toFormat()
	}
	return out
}

// decode unmarshals a top-level JSON object into v
func decode(body []byte, v any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return errNotObject
	}
	return json.Unmarshal(body, v)
}
