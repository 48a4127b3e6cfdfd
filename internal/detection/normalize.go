package detection

import (
	"fmt"
	"image"
	"math"
)

// Normalize turns raw detector boxes into a Set, one record per box in the
// same order, resolving each class id through labels.
func Normalize(raw []RawBox, labels LabelTable) (Set, error) {
	return NormalizeWithin(raw, labels, image.Rectangle{})
}

// NormalizeWithin is Normalize that also rejects boxes reaching past the
// source image bounds. An empty bounds disables the check.
func NormalizeWithin(raw []RawBox, labels LabelTable, bounds image.Rectangle) (Set, error) {
	records := make([]Record, 0, len(raw))

	for i, box := range raw {
		record, err := normalizeBox(box, labels, bounds)
		if err != nil {
			return Set{}, &SchemaError{Index: i, Reason: err.Error()}
		}
		records = append(records, record)
	}

	return Set{records: records}, nil
}

func normalizeBox(box RawBox, labels LabelTable, bounds image.Rectangle) (Record, error) {
	if len(box) < rawBoxFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", rawBoxFields, len(box))
	}

	values := make([]float64, rawBoxFields)
	for i := range values {
		v := float64(box[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, fmt.Errorf("field %d is not a finite number", i)
		}
		values[i] = v
	}

	class := values[FieldClass]
	if class < 0 || class != math.Trunc(class) {
		return Record{}, fmt.Errorf("class id %v is not a non-negative integer", class)
	}
	classID := int(class)

	name, ok := labels[classID]
	if !ok || name == "" {
		return Record{}, fmt.Errorf("class id %d has no label", classID)
	}

	xmin, ymin, xmax, ymax := values[FieldXMin], values[FieldYMin], values[FieldXMax], values[FieldYMax]
	if xmin < 0 || ymin < 0 {
		return Record{}, fmt.Errorf("negative coordinates (%v, %v)", xmin, ymin)
	}
	if xmin > xmax || ymin > ymax {
		return Record{}, fmt.Errorf("inverted box (%v, %v)-(%v, %v)", xmin, ymin, xmax, ymax)
	}
	if !bounds.Empty() && (xmax > float64(bounds.Max.X) || ymax > float64(bounds.Max.Y)) {
		return Record{}, fmt.Errorf("box (%v, %v)-(%v, %v) exceeds %dx%d image", xmin, ymin, xmax, ymax, bounds.Dx(), bounds.Dy())
	}

	confidence := values[FieldConfidence]
	if confidence < 0 || confidence > 1 {
		return Record{}, fmt.Errorf("confidence %v outside [0, 1]", confidence)
	}

	return Record{
		XMin:       xmin,
		YMin:       ymin,
		XMax:       xmax,
		YMax:       ymax,
		Confidence: confidence,
		ClassID:    classID,
		Name:       name,
	}, nil
}
