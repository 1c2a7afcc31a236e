package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FieldRecord maps a row header to its normalized value(s), preserving
// document order of the rows. Duplicate headers keep their first
// position; the value from the last row wins.
type FieldRecord struct {
	keys   []string
	values map[string]FieldValue
}

// NewFieldRecord returns an empty record.
func NewFieldRecord() *FieldRecord {
	return &FieldRecord{values: make(map[string]FieldValue)}
}

// Set stores value under key, replacing any earlier value.
func (r *FieldRecord) Set(key string, value FieldValue) {
	if r.values == nil {
		r.values = make(map[string]FieldValue)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *FieldRecord) Get(key string) (FieldValue, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in document order.
func (r *FieldRecord) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *FieldRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Equal reports whether both records hold the same fields in the same
// order. Used by go-cmp in tests.
func (r *FieldRecord) Equal(o *FieldRecord) bool {
	if r.Len() != o.Len() {
		return false
	}
	for i, key := range r.Keys() {
		if o.keys[i] != key {
			return false
		}
		a := r.values[key]
		b := o.values[key]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON writes the fields as a JSON object in document order.
func (r *FieldRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the record, preserving key order.
func (r *FieldRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field record: expected object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]FieldValue)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("field record: expected key, got %v", keyTok)
		}
		var value FieldValue
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

// SectionSet maps section key → FieldRecord in a stable order. Every
// known section is present even when the page lacked it.
type SectionSet struct {
	keys    []string
	records map[string]*FieldRecord
}

// NewSectionSet returns an empty set.
func NewSectionSet() *SectionSet {
	return &SectionSet{records: make(map[string]*FieldRecord)}
}

// Set stores record under key, replacing any earlier record.
func (s *SectionSet) Set(key string, record *FieldRecord) {
	if s.records == nil {
		s.records = make(map[string]*FieldRecord)
	}
	if _, ok := s.records[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.records[key] = record
}

// Get returns the record stored under key.
func (s *SectionSet) Get(key string) (*FieldRecord, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.records[key]
	return r, ok
}

// Keys returns the section keys in insertion order.
func (s *SectionSet) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of sections.
func (s *SectionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Equal reports whether both sets hold equal records under the same
// keys in the same order.
func (s *SectionSet) Equal(o *SectionSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i, key := range s.Keys() {
		if o.keys[i] != key {
			return false
		}
		if !s.records[key].Equal(o.records[key]) {
			return false
		}
	}
	return true
}

// StatEntry is one row of the base-stats table. Min and Max are Values
// rather than integers: the synthesized "Total" footer entry carries
// the footer's header labels there instead of numbers.
type StatEntry struct {
	StatName string `json:"statName"`
	Base     int64  `json:"base"`
	Min      Value  `json:"min"`
	Max      Value  `json:"max"`
}

// EvolutionNode is one entity in an evolution chain. TransitionDetail
// holds the annotation on the transition out of this form; the final
// form in a branch carries nil.
type EvolutionNode struct {
	Name             string   `json:"name"`
	ID               string   `json:"identifier"`
	Types            []string `json:"types"`
	Image            string   `json:"imageRef,omitempty"`
	TransitionDetail *string  `json:"transitionDetail"`
}

// TypeInteraction describes how one attacking type fares against the
// entry, from the type-effectiveness table.
type TypeInteraction struct {
	Effectiveness Value  `json:"effectiveness"`
	Description   string `json:"description,omitempty"`
}

// SpriteTable maps variant label → column header → image URL, with "—"
// marking columns without a sprite. Row shape is uniform: every row
// carries the full header-column key set.
type SpriteTable map[string]map[string]string

// SpriteAbsent marks a sprite cell with no image.
const SpriteAbsent = "—"

// UnknownVariant labels sprite rows whose variant cell is empty.
const UnknownVariant = "Unknown Type"

// Record is the assembled catalog entry for one species page.
type Record struct {
	Description      []string
	Sections         *SectionSet
	BaseStats        []StatEntry
	TypeInteractions map[string]TypeInteraction
	Evolutions       []EvolutionNode
	Sprites          SpriteTable
}

// MarshalJSON flattens section records to top-level keys alongside the
// fixed fields, keeping section order stable.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(v)
		return nil
	}

	description := r.Description
	if description == nil {
		description = []string{}
	}
	if err := write("description", description); err != nil {
		return nil, err
	}
	for _, key := range r.Sections.Keys() {
		section, _ := r.Sections.Get(key)
		if section == nil {
			section = NewFieldRecord()
		}
		if err := write(key, section); err != nil {
			return nil, err
		}
	}

	stats := r.BaseStats
	if stats == nil {
		stats = []StatEntry{}
	}
	if err := write("baseStats", stats); err != nil {
		return nil, err
	}
	interactions := r.TypeInteractions
	if interactions == nil {
		interactions = map[string]TypeInteraction{}
	}
	if err := write("typeInteractions", interactions); err != nil {
		return nil, err
	}
	evolutions := r.Evolutions
	if evolutions == nil {
		evolutions = []EvolutionNode{}
	}
	if err := write("evolutions", evolutions); err != nil {
		return nil, err
	}
	sprites := r.Sprites
	if sprites == nil {
		sprites = SpriteTable{}
	}
	if err := write("sprites", sprites); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a record; unknown top-level keys become
// sections, in the order they appear.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	r.Sections = NewSectionSet()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", keyTok)
		}

		switch key {
		case "description":
			err = dec.Decode(&r.Description)
		case "baseStats":
			err = dec.Decode(&r.BaseStats)
		case "typeInteractions":
			err = dec.Decode(&r.TypeInteractions)
		case "evolutions":
			err = dec.Decode(&r.Evolutions)
		case "sprites":
			err = dec.Decode(&r.Sprites)
		default:
			section := NewFieldRecord()
			if err = dec.Decode(section); err == nil {
				r.Sections.Set(key, section)
			}
		}
		if err != nil {
			return fmt.Errorf("record: decode %q: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}

// IndexEntry is one row of the catalog index listing.
type IndexEntry struct {
	Name string
	URL  string
}

// CrawlResult summarizes one pipeline run.
type CrawlResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Total        int
	Processed    int
	Skipped      int
	Failed       int
	RetryCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
}
