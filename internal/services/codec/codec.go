// Package codec converts between uploaded bytes and gocv images.
package codec

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultJPEGQuality is used when EncodeJPEG gets a quality outside 1..100.
const DefaultJPEGQuality = 90

// DecodeError reports an upload that is not a readable image.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "invalid image: " + e.Reason
}

// Decode reads an encoded image into a 3-channel BGR Mat.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), &DecodeError{Reason: "empty upload"}
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), &DecodeError{Reason: err.Error()}
	}

	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), &DecodeError{Reason: "unsupported or corrupt image data"}
	}

	return mat, nil
}

// EncodeJPEG encodes img as JPEG bytes owned by the caller.
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	if img.Empty() {
		return nil, errors.New("cannot encode an empty image")
	}
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())

	return out, nil
}
