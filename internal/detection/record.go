// Package detection holds the detection-result pipeline: normalizing raw
// detector output, drawing it onto images and cropping by class name.
package detection

import (
	"image"
	"sort"
	"strings"
)

// RawBox is one detector-native box: xmin, ymin, xmax, ymax, confidence, class id.
type RawBox []float32

// Field positions inside a RawBox.
const (
	FieldXMin = iota
	FieldYMin
	FieldXMax
	FieldYMax
	FieldConfidence
	FieldClass

	rawBoxFields
)

// LabelTable maps a class id to its human-readable name.
type LabelTable map[int]string

// Record is one normalized detected object.
type Record struct {
	XMin       float64 `json:"xmin"`
	YMin       float64 `json:"ymin"`
	XMax       float64 `json:"xmax"`
	YMax       float64 `json:"ymax"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class"`
	Name       string  `json:"name"`
}

// Rect returns the record's box in integer pixel space.
func (r Record) Rect() image.Rectangle {
	return image.Rect(int(r.XMin), int(r.YMin), int(r.XMax), int(r.YMax))
}

// Set is the ordered result of one detector run. Order is the detector's
// emission order and is never changed after Normalize builds it.
type Set struct {
	records []Record
}

// NewSet copies records into a new Set.
func NewSet(records ...Record) Set {
	out := make([]Record, len(records))
	copy(out, records)
	return Set{records: out}
}

// Len returns the number of records.
func (s Set) Len() int {
	return len(s.records)
}

// Records returns a copy of the records in emission order. The result is
// never nil so it serializes as an empty array.
func (s Set) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// First returns the first record whose name equals className exactly.
func (s Set) First(className string) (Record, bool) {
	for _, r := range s.records {
		if r.Name == className {
			return r, true
		}
	}
	return Record{}, false
}

// Names returns the unique detected names, sorted, joined with ", ".
func (s Set) Names() string {
	seen := make(map[string]struct{}, len(s.records))
	names := make([]string, 0, len(s.records))
	for _, r := range s.records {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
