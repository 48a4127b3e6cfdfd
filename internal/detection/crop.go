package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// CropByClass returns a copy of the region of img covered by the first record
// named className. Later records with the same name are ignored: one primary
// instance per request.
//
// A degenerate box yields an empty Mat rather than an error.
func CropByClass(img gocv.Mat, set Set, className string) (gocv.Mat, error) {
	record, ok := set.First(className)
	if !ok {
		return gocv.NewMat(), &NotFoundError{ClassName: className}
	}

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	region := record.Rect().Intersect(bounds)
	if region.Empty() {
		return gocv.NewMat(), nil
	}

	roi := img.Region(region)
	defer roi.Close()

	return roi.Clone(), nil
}
