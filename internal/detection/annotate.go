package detection

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// palette is indexed by class id, so a class keeps its color across requests.
var palette = []color.RGBA{
	{R: 255, G: 56, B: 56, A: 255},
	{R: 255, G: 157, B: 151, A: 255},
	{R: 255, G: 112, B: 31, A: 255},
	{R: 255, G: 178, B: 29, A: 255},
	{R: 207, G: 210, B: 49, A: 255},
	{R: 72, G: 249, B: 10, A: 255},
	{R: 146, G: 204, B: 23, A: 255},
	{R: 61, G: 219, B: 134, A: 255},
	{R: 26, G: 147, B: 52, A: 255},
	{R: 0, G: 212, B: 187, A: 255},
	{R: 44, G: 153, B: 168, A: 255},
	{R: 0, G: 194, B: 255, A: 255},
	{R: 52, G: 69, B: 147, A: 255},
	{R: 100, G: 115, B: 255, A: 255},
	{R: 0, G: 24, B: 236, A: 255},
	{R: 132, G: 56, B: 255, A: 255},
	{R: 82, G: 0, B: 133, A: 255},
	{R: 203, G: 56, B: 255, A: 255},
	{R: 255, G: 149, B: 200, A: 255},
	{R: 255, G: 55, B: 199, A: 255},
}

const (
	labelFont    = gocv.FontHersheySimplex
	labelPadding = 3
)

// AnnotateOptions tunes how labels are drawn. Zero values pick sizes from the
// image dimensions.
type AnnotateOptions struct {
	ShowConfidence bool
	LineWidth      int
	FontScale      float64
}

// ClassColor returns the drawing color for a class id.
func ClassColor(classID int) color.RGBA {
	if classID < 0 {
		classID = -classID
	}
	return palette[classID%len(palette)]
}

// Annotate draws every record of set onto a copy of img, in set order, and
// returns the copy. img itself is left untouched.
func Annotate(img gocv.Mat, set Set, opts AnnotateOptions) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), errors.New("cannot annotate an empty image")
	}

	out := img.Clone()
	if set.Len() == 0 {
		return out, nil
	}

	lineWidth := opts.LineWidth
	if lineWidth <= 0 {
		lineWidth = max((out.Rows()+out.Cols())*3/2000, 2)
	}
	fontScale := opts.FontScale
	if fontScale <= 0 {
		fontScale = float64(lineWidth) / 3
	}
	textThickness := max(lineWidth-1, 1)

	for i, r := range set.records {
		c := ClassColor(r.ClassID)

		if err := gocv.Rectangle(&out, r.Rect(), c, lineWidth); err != nil {
			out.Close()
			return gocv.NewMat(), errors.Wrapf(err, "draw box %d", i)
		}

		if err := drawLabel(&out, r, c, opts.ShowConfidence, fontScale, textThickness); err != nil {
			out.Close()
			return gocv.NewMat(), errors.Wrapf(err, "draw label %d", i)
		}
	}

	return out, nil
}

func drawLabel(img *gocv.Mat, r Record, c color.RGBA, withConfidence bool, scale float64, thickness int) error {
	text := r.Name
	if withConfidence {
		text = fmt.Sprintf("%s %.2f", r.Name, r.Confidence)
	}

	plate, origin := labelPlate(text, r.Rect(), img.Cols(), scale, thickness)
	if err := gocv.Rectangle(img, plate, c, -1); err != nil {
		return err
	}
	return gocv.PutText(img, text, origin, labelFont, scale, textColor(c), thickness)
}

// labelPlate places the filled plate for text above box. Without room above,
// the plate goes inside the box; it is shifted left to stay within imgWidth.
// origin is the text baseline start inside the plate.
func labelPlate(text string, box image.Rectangle, imgWidth int, scale float64, thickness int) (plate image.Rectangle, origin image.Point) {
	size, baseline := gocv.GetTextSizeWithBaseline(text, labelFont, scale, thickness)
	plateW := size.X + 2*labelPadding
	plateH := size.Y + baseline + 2*labelPadding

	x := box.Min.X
	top := box.Min.Y - plateH
	if top < 0 {
		top = box.Min.Y
	}
	if x+plateW > imgWidth {
		x = max(imgWidth-plateW, 0)
	}

	plate = image.Rect(x, top, x+plateW, top+plateH)
	origin = image.Pt(x+labelPadding, top+labelPadding+size.Y)
	return plate, origin
}

// textColor picks black or white, whichever reads better on c.
func textColor(c color.RGBA) color.RGBA {
	luma := 299*int(c.R) + 587*int(c.G) + 114*int(c.B)
	if luma > 150000 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}
