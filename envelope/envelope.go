// Package envelope extracts canonical record collections from the response
// bodies returned by the booking API.
//
// The API wraps payloads as {success, data, message?, error?, pagination?},
// but the client is not version-locked to the server, so the wrapper is
// sniffed with an ordered list of shape matchers. The first matcher that finds
// a sequence wins; when none does the result is an empty collection together
// with a ShapeMismatch error that callers log and otherwise ignore.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

// Matcher returns the sequence found in v, or ok=false.
type Matcher struct {
	Name  string
	Match func(v any) (seq []any, ok bool)
}

// ContainerFields are the collection-named fields probed after "data".
var ContainerFields = []string{"bookings", "venues", "items", "results", "records"}

// DefaultMatchers is the recognition order used by Records.
var DefaultMatchers = []Matcher{
	{Name: "sequence", Match: asSequence},
	{Name: "data", Match: field("data")},
	{Name: "container", Match: anyField(ContainerFields...)},
	{Name: "data.data", Match: path("data", "data")},
	{Name: "data.container", Match: under("data", anyField(ContainerFields...))},
}

// Envelope is the documented wrapper. Data stays raw so callers can decide
// between a single record and a collection.
type Envelope struct {
	Success    *bool              `json:"success,omitempty"`
	Data       json.RawMessage    `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// Decode parses a JSON body into generic values. Numbers are kept as
// json.Number so that re-encoding a record is lossless.
func Decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return v, nil
}

// Records runs DefaultMatchers over v.
func Records(v any) ([]map[string]any, error) {
	return Match(v, DefaultMatchers...)
}

// Match runs matchers in order and keeps the object elements of the first
// sequence found. The returned slice is never nil.
func Match(v any, matchers ...Matcher) ([]map[string]any, error) {
	for _, m := range matchers {
		seq, ok := m.Match(v)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(seq))
		for _, item := range seq {
			if rec, ok := item.(map[string]any); ok {
				out = append(out, rec)
			}
		}
		return out, nil
	}
	return []map[string]any{}, &models.Error{
		Kind:    models.KindShapeMismatch,
		Message: fmt.Sprintf("no recognizable collection in %s", describe(v)),
	}
}

// Record extracts a single record: the data object of an envelope (one level
// of data.data is unwrapped too), or v itself when it is a bare object.
func Record(v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &models.Error{Kind: models.KindShapeMismatch, Message: fmt.Sprintf("expected an object, got %s", describe(v))}
	}
	if data, ok := obj["data"].(map[string]any); ok {
		if inner, ok := data["data"].(map[string]any); ok {
			return inner, nil
		}
		return data, nil
	}
	if _, wrapped := obj["success"]; wrapped {
		return nil, &models.Error{Kind: models.KindShapeMismatch, Message: "envelope carries no data object"}
	}
	return obj, nil
}

// Pagination looks for a pagination block at the top level, then under data.
func Pagination(v any) (models.Pagination, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return models.Pagination{}, false
	}
	raw, ok := obj["pagination"]
	if !ok {
		if data, isObj := obj["data"].(map[string]any); isObj {
			raw, ok = data["pagination"]
		}
	}
	if !ok {
		return models.Pagination{}, false
	}
	var p models.Pagination
	if err := convert(raw, &p); err != nil {
		return models.Pagination{}, false
	}
	return p, true
}

// DecodeRecords converts generic records into T. Records that do not decode
// are skipped; the returned error then reports how many were dropped.
func DecodeRecords[T any](records []map[string]any) ([]T, error) {
	out := make([]T, 0, len(records))
	var dropped int
	var first error
	for _, rec := range records {
		var item T
		if err := convert(rec, &item); err != nil {
			dropped++
			if first == nil {
				first = err
			}
			continue
		}
		out = append(out, item)
	}
	if dropped > 0 {
		return out, &models.Error{
			Kind:    models.KindShapeMismatch,
			Message: fmt.Sprintf("dropped %d of %d records", dropped, len(records)),
			Err:     first,
		}
	}
	return out, nil
}

// DecodeRecord converts one generic record into T.
func DecodeRecord[T any](record map[string]any) (T, error) {
	var item T
	if err := convert(record, &item); err != nil {
		return item, &models.Error{Kind: models.KindShapeMismatch, Message: "record does not match the expected shape", Err: err}
	}
	return item, nil
}

func convert(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func asSequence(v any) ([]any, bool) {
	seq, ok := v.([]any)
	return seq, ok
}

func field(name string) func(any) ([]any, bool) {
	return func(v any) ([]any, bool) {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		return asSequence(obj[name])
	}
}

func anyField(names ...string) func(any) ([]any, bool) {
	return func(v any) ([]any, bool) {
		for _, name := range names {
			if seq, ok := field(name)(v); ok {
				return seq, true
			}
		}
		return nil, false
	}
}

func path(names ...string) func(any) ([]any, bool) {
	return func(v any) ([]any, bool) {
		cur := v
		for _, name := range names {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			cur = obj[name]
		}
		return asSequence(cur)
	}
}

func under(name string, inner func(any) ([]any, bool)) func(any) ([]any, bool) {
	return func(v any) ([]any, bool) {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		return inner(obj[name])
	}
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return fmt.Sprintf("object with %d field(s)", len(t))
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
