package core

import (
	"encoding/json"
	"maps"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// IDField is the only field the store interprets.
const IDField = "id"

// Record is a single item of an entity collection. Apart from "id" its fields are
// owned by the caller.
type Record map[string]any

// Clone returns a shallow copy of r. A nil record clones to an empty one.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// ID returns the record id coerced to an integer.
func (r Record) ID() (int64, bool) {
	n, ok := Number(r[IDField])
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return int64(n), true
}

// HasID reports whether the record carries a usable id. Missing, empty and zero ids
// count as absent.
func (r Record) HasID() bool {
	return !IsFalsy(r[IDField])
}

// SameID reports whether the record id numerically equals id.
func (r Record) SameID(id any) bool {
	a, ok := Number(r[IDField])
	if !ok {
		return false
	}
	b, ok := Number(id)
	return ok && a == b
}

// Matches reports whether r satisfies every non-empty criterion. String criteria
// against string fields match as case-insensitive substrings; anything else must be
// equal, with numbers compared by value.
func (r Record) Matches(criteria Record) bool {
	for key, want := range criteria {
		if IsFalsy(want) {
			continue
		}
		got := r[key]
		ws, wok := want.(string)
		gs, gok := got.(string)
		if wok && gok {
			if !strings.Contains(strings.ToLower(gs), strings.ToLower(ws)) {
				return false
			}
			continue
		}
		if !strictEqual(got, want) {
			return false
		}
	}
	return true
}

// Number coerces v to a float64: numeric values as-is, numeric strings parsed.
func Number(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return numeric(v)
}

// IsFalsy reports whether v counts as "no value": nil, false, zero, NaN or "".
func IsFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	}
	if n, ok := numeric(v); ok {
		return n == 0
	}
	if n, ok := v.(float64); ok && math.IsNaN(n) {
		return true
	}
	return false
}

// NextID returns one more than the largest numeric id in records, or 1.
func NextID(records []Record) int64 {
	var max int64
	for _, rec := range records {
		n, ok := Number(rec[IDField])
		if !ok {
			continue
		}
		if id := int64(math.Floor(n)); id > max {
			max = id
		}
	}
	return max + 1
}

// numeric converts Go numeric kinds (and json.Number) without parsing strings.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		if math.IsNaN(t) {
			return 0, false
		}
		return t, true
	case float32:
		if math.IsNaN(float64(t)) {
			return 0, false
		}
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}

func strictEqual(a, b any) bool {
	na, aok := numeric(a)
	nb, bok := numeric(b)
	if aok || bok {
		return aok && bok && na == nb
	}
	return reflect.DeepEqual(a, b)
}

func decodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func encodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
